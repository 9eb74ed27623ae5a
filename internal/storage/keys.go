// internal/storage/keys.go
package storage

const (
	KeyUsers          = "beatmarket_users"
	KeyCurrentUser    = "beatmarket_current_user"
	KeyBeats          = "beatmarket_beats"
	KeyPurchases      = "beatmarket_purchases"
	KeyFavorites      = "beatmarket_favorites"
	KeyRatings        = "beatmarket_ratings"
	KeyFriends        = "beatmarket_friends"
	KeyCollaborations = "beatmarket_collaborations"
	KeyNotifications  = "beatmarket_notifications"
	KeyNews           = "beatmarket_news"

	CartKeyPrefix = "beatmarket_cart_"
)

// CartKey returns the key holding a single user's cart.
func CartKey(userID string) string {
	return CartKeyPrefix + userID
}
