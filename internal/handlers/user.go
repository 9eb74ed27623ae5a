// internal/handlers/user.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/javajoker/beatmarket/internal/i18n"
	"github.com/javajoker/beatmarket/internal/models"
	"github.com/javajoker/beatmarket/internal/services"
	"github.com/javajoker/beatmarket/internal/utils"
)

type UserHandler struct {
	market *services.Marketplace
}

// ProfileView is what other users see of an account.
type ProfileView struct {
	ID         string          `json:"id"`
	Role       models.UserRole `json:"role"`
	Name       string          `json:"name"`
	Avatar     string          `json:"avatar,omitempty"`
	Bio        string          `json:"bio,omitempty"`
	BeatCount  int             `json:"beatCount"`
	Friendship *models.Friend  `json:"friendship,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type AdjustWalletRequest struct {
	Rub decimal.Decimal `json:"rub"`
	Usd decimal.Decimal `json:"usd"`
}

// PurchaseView pairs a purchase with the beat it bought, when it still exists.
type PurchaseView struct {
	models.Purchase
	Beat *models.Beat `json:"beat,omitempty"`
}

func NewUserHandler(market *services.Marketplace) *UserHandler {
	return &UserHandler{
		market: market,
	}
}

// PUT /me/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.market.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "user")
		return
	}
	if user == nil {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthNoSession))
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUserProfileUpdated),
		"user":    user.Public(),
	})
}

// GET /users?search=
func (h *UserHandler) SearchUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	viewerID, _ := utils.GetUserIDFromContext(c)

	users := h.market.Identity.SearchUsers(params.Search, viewerID)
	views := make([]ProfileView, 0, len(users))
	for i := range users {
		views = append(views, h.profileView(&users[i], viewerID))
	}

	result := utils.CreatePaginationResult(utils.Paginate(views, params), int64(len(views)), params)
	utils.PaginatedResponse(c, result)
}

// GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.market.Identity.FindUserByID(c.Param("id"))
	if err != nil {
		respondError(c, err, "user")
		return
	}

	viewerID, _ := utils.GetUserIDFromContext(c)
	utils.SuccessResponse(c, gin.H{
		"user": h.profileView(user, viewerID),
	})
}

// GET /users/:id/beats
func (h *UserHandler) GetUserBeats(c *gin.Context) {
	user, err := h.market.Identity.FindUserByID(c.Param("id"))
	if err != nil {
		respondError(c, err, "user")
		return
	}

	params := utils.GetPaginationParams(c)
	beats := h.market.Catalog.ListBeats(services.BeatFilter{SellerID: user.ID, Sort: params.Sort})
	result := utils.CreatePaginationResult(utils.Paginate(beats, params), int64(len(beats)), params)
	utils.PaginatedResponse(c, result)
}

// GET /me/purchases
func (h *UserHandler) GetPurchases(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	utils.SuccessResponse(c, gin.H{
		"purchases": h.purchaseViews(h.market.Cart.BuyerPurchases(userID)),
	})
}

// GET /me/sales
func (h *UserHandler) GetSales(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	utils.SuccessResponse(c, gin.H{
		"earnings": h.market.Cart.SellerEarnings(userID),
		"sales":    h.purchaseViews(h.market.Cart.SellerPurchases(userID)),
		"beats":    h.market.Catalog.SellerBeats(userID),
	})
}

// GET /me/favorites
func (h *UserHandler) GetFavorites(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	utils.SuccessResponse(c, gin.H{
		"beats": h.market.Catalog.Favorites(userID),
	})
}

// GET /admin/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users := h.market.Identity.SearchUsers(params.Search, "")
	public := make([]models.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}

	result := utils.CreatePaginationResult(utils.Paginate(public, params), int64(len(public)), params)
	utils.PaginatedResponse(c, result)
}

// PUT /admin/users/:id/wallet
func (h *UserHandler) AdjustWallet(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req AdjustWalletRequest
	if !bindJSON(c, &req) {
		return
	}

	userID := c.Param("id")
	if _, err := h.market.Identity.FindUserByID(userID); err != nil {
		respondError(c, err, "user")
		return
	}

	h.market.Identity.AdjustWallet(c.Request.Context(), userID, req.Rub, req.Usd)
	user, err := h.market.Identity.FindUserByID(userID)
	if err != nil {
		respondError(c, err, "user")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUserWalletUpdated),
		"user":    user.Public(),
	})
}

// GET /admin/purchases
func (h *UserHandler) ListPurchases(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	views := h.purchaseViews(h.market.Cart.AllPurchases())

	result := utils.CreatePaginationResult(utils.Paginate(views, params), int64(len(views)), params)
	utils.PaginatedResponse(c, result)
}

func (h *UserHandler) profileView(user *models.User, viewerID string) ProfileView {
	return profileOf(h.market, user, viewerID)
}

// profileOf builds the public view of user as seen by viewerID. Wallets and
// email stay private.
func profileOf(market *services.Marketplace, user *models.User, viewerID string) ProfileView {
	view := ProfileView{
		ID:        user.ID,
		Role:      user.Role,
		Name:      user.Name,
		Avatar:    user.Avatar,
		Bio:       user.Bio,
		BeatCount: len(market.Catalog.SellerBeats(user.ID)),
		CreatedAt: user.CreatedAt,
	}
	if viewerID != "" && viewerID != user.ID {
		view.Friendship = market.Social.FriendshipBetween(viewerID, user.ID)
	}
	return view
}

func (h *UserHandler) purchaseViews(purchases []models.Purchase) []PurchaseView {
	views := make([]PurchaseView, 0, len(purchases))
	for _, p := range purchases {
		view := PurchaseView{Purchase: p}
		if beat, err := h.market.Catalog.GetBeat(p.BeatID); err == nil {
			view.Beat = beat
		}
		views = append(views, view)
	}
	return views
}
