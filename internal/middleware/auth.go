// internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/beatmarket/internal/i18n"
	"github.com/javajoker/beatmarket/internal/models"
	"github.com/javajoker/beatmarket/internal/services"
	"github.com/javajoker/beatmarket/internal/utils"
)

// BearerToken extracts the token from "Authorization: Bearer <token>". The
// player channel may pass it as ?token= since browsers cannot set headers on
// WebSocket upgrades.
func BearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return c.Query("token")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate resolves the request token to the active session user. The
// caller must hold the marketplace lock.
func Authenticate(c *gin.Context, market *services.Marketplace) (*models.User, string) {
	token := BearerToken(c)
	if token == "" {
		return nil, i18n.KeyAuthRequired
	}

	claims, err := utils.ValidateSessionToken(token)
	if err != nil {
		return nil, i18n.KeyAuthInvalidToken
	}

	current := market.Identity.CurrentUser()
	if current == nil {
		return nil, i18n.KeyAuthNoSession
	}
	if current.ID != claims.UserID || market.Identity.SessionToken() != token {
		return nil, i18n.KeyAuthSessionMismatch
	}
	return current, ""
}

// SessionRequired admits requests whose bearer token belongs to the active
// session and stores user_id and user_role on the context.
func SessionRequired(market *services.Marketplace) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, failure := Authenticate(c, market)
		if user == nil {
			utils.UnauthorizedResponse(c, i18n.T(utils.GetLangFromContext(c), failure))
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user_role", string(user.Role))
		c.Next()
	}
}

func AdminRequired() gin.HandlerFunc {
	return RoleRequired(models.RoleAdmin)
}

// RoleRequired admits the listed roles; admins are always admitted.
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		role, exists := utils.GetUserRoleFromContext(c)
		if !exists {
			utils.UnauthorizedResponse(c, "")
			c.Abort()
			return
		}
		if role == string(models.RoleAdmin) {
			c.Next()
			return
		}
		for _, allowed := range roles {
			if role == string(allowed) {
				c.Next()
				return
			}
		}

		key := i18n.KeyAccessDenied
		if len(roles) == 1 && roles[0] == models.RoleAdmin {
			key = i18n.KeyAdminAccessOnly
		}
		utils.ForbiddenResponse(c, i18n.T(lang, key))
		c.Abort()
	}
}

// OptionalSession sets user_id when the token matches the active session and
// lets the request through either way.
func OptionalSession(market *services.Marketplace) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, _ := Authenticate(c, market); user != nil {
			c.Set("user_id", user.ID)
			c.Set("user_role", string(user.Role))
		}
		c.Next()
	}
}
