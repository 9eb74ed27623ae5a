// internal/handlers/auth.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/beatmarket/internal/i18n"
	"github.com/javajoker/beatmarket/internal/services"
	"github.com/javajoker/beatmarket/internal/utils"
)

type AuthHandler struct {
	market *services.Marketplace
}

func NewAuthHandler(market *services.Marketplace) *AuthHandler {
	return &AuthHandler{
		market: market,
	}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.market.Identity.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "user")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyAuthRegisterSuccess),
		"user":       user.Public(),
		"token":      h.market.Identity.SessionToken(),
		"token_type": "Bearer",
	})
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.market.Identity.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "user")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyAuthLoginSuccess),
		"user":       user.Public(),
		"token":      h.market.Identity.SessionToken(),
		"token_type": "Bearer",
	})
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	h.market.Logout(c.Request.Context())

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAuthLogoutSuccess),
	})
}

// GET /auth/me
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user := h.market.Identity.CurrentUser()
	if user == nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user":           user.Public(),
		"wallet":         gin.H{"rub": user.WalletRub, "usd": user.WalletUsd},
		"unread_count":   h.market.Notifications.UnreadCount(user.ID),
		"cart_items":     len(h.market.Cart.Cart(c.Request.Context(), user.ID)),
		"purchase_count": len(h.market.Cart.BuyerPurchases(user.ID)),
	})
}
