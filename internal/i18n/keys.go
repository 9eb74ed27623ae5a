// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthSessionMismatch    = "auth.session_mismatch"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthNoSession          = "auth.no_session"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// Users
	KeyUserProfileUpdated = "user.profile_updated"
	KeyUserNotFound       = "user.not_found"
	KeyUserWalletUpdated  = "user.wallet_updated"

	// Access
	KeyAccessDenied    = "access.denied"
	KeyAdminAccessOnly = "access.admin_only"

	// Beats
	KeyBeatCreated      = "beat.created"
	KeyBeatUpdated      = "beat.updated"
	KeyBeatDeleted      = "beat.deleted"
	KeyBeatNotFound     = "beat.not_found"
	KeyBeatRated        = "beat.rated"
	KeyBeatAudioMissing = "beat.audio_missing"

	// Cart
	KeyCartItemAdded         = "cart.item_added"
	KeyCartItemRemoved       = "cart.item_removed"
	KeyCartCleared           = "cart.cleared"
	KeyCartEmpty             = "cart.empty"
	KeyCartInsufficientFunds = "cart.insufficient_funds"
	KeyCartCheckoutSuccess   = "cart.checkout_success"

	// Social
	KeyFriendRequestSent     = "friend.request_sent"
	KeyFriendRequestAccepted = "friend.request_accepted"
	KeyFriendRequestRejected = "friend.request_rejected"
	KeyFriendRemoved         = "friend.removed"
	KeyFriendNotFound        = "friend.not_found"
	KeyCollaborationSaved    = "collaboration.saved"
	KeyCollaborationNotFound = "collaboration.not_found"

	// Notifications
	KeyNotificationRead     = "notification.marked_read"
	KeyNotificationDeleted  = "notification.deleted"
	KeyNotificationNotFound = "notification.not_found"

	// News
	KeyNewsCreated  = "news.created"
	KeyNewsUpdated  = "news.updated"
	KeyNewsDeleted  = "news.deleted"
	KeyNewsNotFound = "news.not_found"

	// Files
	KeyFileUploadFailed = "file.upload_failed"
	KeyFileTooLarge     = "file.too_large"
	KeyFileUnsupported  = "file.unsupported"

	// Player
	KeyPlayerNoBeat = "player.no_beat"

	// Validation
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationRequired = "validation.required"

	// System
	KeyRateLimitExceeded = "rate_limit.exceeded"
	KeyServerError       = "server.error"
)
