// internal/handlers/notification.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/beatmarket/internal/i18n"
	"github.com/javajoker/beatmarket/internal/models"
	"github.com/javajoker/beatmarket/internal/services"
	"github.com/javajoker/beatmarket/internal/utils"
)

type NotificationHandler struct {
	market *services.Marketplace
}

func NewNotificationHandler(market *services.Marketplace) *NotificationHandler {
	return &NotificationHandler{
		market: market,
	}
}

// GET /notifications?unread=true
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var notifications []models.Notification
	if c.Query("unread") == "true" {
		notifications = h.market.Notifications.ListUnread(userID)
	} else {
		notifications = h.market.Notifications.ListAll(userID)
	}

	utils.SuccessResponse(c, gin.H{
		"notifications": notifications,
		"unread_count":  h.market.Notifications.UnreadCount(userID),
	})
}

// PUT /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	notification, ok := h.owned(c)
	if !ok {
		return
	}

	h.market.Notifications.MarkRead(c.Request.Context(), notification.ID)
	utils.SuccessResponse(c, gin.H{
		"message":      i18n.T(lang, i18n.KeyNotificationRead),
		"unread_count": h.market.Notifications.UnreadCount(notification.UserID),
	})
}

// PUT /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	changed := h.market.Notifications.MarkAllRead(c.Request.Context(), userID)
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyNotificationRead),
		"updated": changed,
	})
}

// DELETE /notifications/:id
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	notification, ok := h.owned(c)
	if !ok {
		return
	}

	h.market.Notifications.Delete(c.Request.Context(), notification.ID)
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyNotificationDeleted),
	})
}

func (h *NotificationHandler) owned(c *gin.Context) (*models.Notification, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}

	notification, err := h.market.Notifications.Get(c.Param("id"))
	if err != nil {
		respondError(c, err, "notification")
		return nil, false
	}
	if notification.UserID != userID {
		// Someone else's notification is reported as missing.
		utils.NotFoundResponse(c, "notification")
		return nil, false
	}
	return notification, true
}
