// internal/handlers/news.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/beatmarket/internal/i18n"
	"github.com/javajoker/beatmarket/internal/services"
	"github.com/javajoker/beatmarket/internal/utils"
)

type NewsHandler struct {
	market *services.Marketplace
}

func NewNewsHandler(market *services.Marketplace) *NewsHandler {
	return &NewsHandler{
		market: market,
	}
}

// GET /news
func (h *NewsHandler) GetNews(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	news := h.market.News.ListNews()

	result := utils.CreatePaginationResult(utils.Paginate(news, params), int64(len(news)), params)
	utils.PaginatedResponse(c, result)
}

// GET /news/:id
func (h *NewsHandler) GetNewsItem(c *gin.Context) {
	item, err := h.market.News.GetNews(c.Param("id"))
	if err != nil {
		respondError(c, err, "news")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"news": item,
	})
}

// POST /admin/news
func (h *NewsHandler) CreateNews(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateNewsRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Author == "" {
		if user := h.market.Identity.CurrentUser(); user != nil {
			req.Author = user.Name
		}
	}

	item, err := h.market.News.CreateNews(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "news")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyNewsCreated),
		"news":    item,
	})
}

// PUT /admin/news/:id
func (h *NewsHandler) UpdateNews(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.UpdateNewsRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.market.News.UpdateNews(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "news")
		return
	}
	if item == nil {
		utils.NotFoundResponse(c, "news")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyNewsUpdated),
		"news":    item,
	})
}

// DELETE /admin/news/:id
func (h *NewsHandler) DeleteNews(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	if _, err := h.market.News.GetNews(c.Param("id")); err != nil {
		respondError(c, err, "news")
		return
	}
	h.market.News.DeleteNews(c.Request.Context(), c.Param("id"))

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyNewsDeleted),
	})
}
