// internal/handlers/cart.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/beatmarket/internal/i18n"
	"github.com/javajoker/beatmarket/internal/services"
	"github.com/javajoker/beatmarket/internal/utils"
)

type CartHandler struct {
	market *services.Marketplace
}

func NewCartHandler(market *services.Marketplace) *CartHandler {
	return &CartHandler{
		market: market,
	}
}

// GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	h.respondCart(c, userID, "")
}

// POST /cart
func (h *CartHandler) AddToCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CartRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.market.Catalog.GetBeat(req.BeatID); err != nil {
		respondError(c, err, "beat")
		return
	}

	h.market.Cart.AddToCart(c.Request.Context(), userID, req.BeatID)
	h.respondCart(c, userID, i18n.KeyCartItemAdded)
}

// DELETE /cart/:beatId
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.market.Cart.RemoveFromCart(c.Request.Context(), userID, c.Param("beatId"))
	h.respondCart(c, userID, i18n.KeyCartItemRemoved)
}

// DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.market.Cart.ClearCart(c.Request.Context(), userID)
	h.respondCart(c, userID, i18n.KeyCartCleared)
}

// POST /cart/checkout
func (h *CartHandler) Checkout(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.market.Cart.Checkout(c.Request.Context(), userID, req.Currency)
	if err != nil {
		respondError(c, err, "cart")
		return
	}

	user, _ := h.market.Identity.FindUserByID(userID)
	response := gin.H{
		"message":   i18n.T(lang, i18n.KeyCartCheckoutSuccess),
		"purchases": result.Purchases,
		"currency":  result.Currency,
		"total":     result.Total,
	}
	if user != nil {
		response["wallet"] = gin.H{"rub": user.WalletRub, "usd": user.WalletUsd}
	}
	utils.SuccessResponse(c, response)
}

func (h *CartHandler) respondCart(c *gin.Context, userID, messageKey string) {
	ctx := c.Request.Context()
	response := gin.H{
		"items":  h.market.Cart.Cart(ctx, userID),
		"totals": h.market.Cart.CartTotal(ctx, userID),
	}
	if messageKey != "" {
		response["message"] = i18n.T(utils.GetLangFromContext(c), messageKey)
	}
	utils.SuccessResponse(c, response)
}
