// internal/handlers/social.go
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/beatmarket/internal/i18n"
	"github.com/javajoker/beatmarket/internal/models"
	"github.com/javajoker/beatmarket/internal/services"
	"github.com/javajoker/beatmarket/internal/utils"
)

type SocialHandler struct {
	market *services.Marketplace
}

// FriendView is an edge seen from one of its ends.
type FriendView struct {
	models.Friend
	Counterpart *ProfileView `json:"counterpart,omitempty"`
}

func NewSocialHandler(market *services.Marketplace) *SocialHandler {
	return &SocialHandler{
		market: market,
	}
}

// GET /friends
func (h *SocialHandler) GetFriends(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	social := h.market.Social
	utils.SuccessResponse(c, gin.H{
		"friends":  h.views(userID, social.ListFriends(userID)),
		"incoming": h.views(userID, social.IncomingRequests(userID)),
		"outgoing": h.views(userID, social.OutgoingRequests(userID)),
	})
}

// POST /friends
func (h *SocialHandler) SendFriendRequest(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.FriendRequest
	if !bindJSON(c, &req) {
		return
	}

	edge, err := h.market.Social.SendFriendRequest(c.Request.Context(), userID, req.FriendID)
	if err != nil {
		respondError(c, err, "user")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyFriendRequestSent),
		"friend":  edge,
	})
}

// PUT /friends/:id/accept
func (h *SocialHandler) AcceptFriendRequest(c *gin.Context) {
	h.settle(c, h.market.Social.AcceptFriendRequest, i18n.KeyFriendRequestAccepted)
}

// PUT /friends/:id/reject
func (h *SocialHandler) RejectFriendRequest(c *gin.Context) {
	h.settle(c, h.market.Social.RejectFriendRequest, i18n.KeyFriendRequestRejected)
}

// DELETE /friends/:id
func (h *SocialHandler) RemoveFriend(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	edge, ok := h.partyEdge(c)
	if !ok {
		return
	}

	h.market.Social.RemoveFriendEdge(c.Request.Context(), edge.ID)
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyFriendRemoved),
	})
}

// GET /collaborations
func (h *SocialHandler) GetCollaborations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	type collaborationView struct {
		models.Collaboration
		Beat *models.Beat `json:"beat,omitempty"`
	}

	collabs := h.market.Social.CollaborationsFor(userID)
	views := make([]collaborationView, 0, len(collabs))
	for _, collab := range collabs {
		view := collaborationView{Collaboration: collab}
		if beat, err := h.market.Catalog.GetBeat(collab.BeatID); err == nil {
			view.Beat = beat
		}
		views = append(views, view)
	}

	utils.SuccessResponse(c, gin.H{
		"collaborations": views,
	})
}

// PUT /beats/:id/collaborators
func (h *SocialHandler) SetCollaborators(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CollaborationRequest
	if !bindJSON(c, &req) {
		return
	}

	beat, err := h.market.Catalog.GetBeat(c.Param("id"))
	if err != nil {
		respondError(c, err, "beat")
		return
	}
	if beat.SellerID != userID && !isAdmin(c) {
		utils.ForbiddenResponse(c, "")
		return
	}

	collab, err := h.market.Social.AddCollaboration(c.Request.Context(), userID, beat.ID, req.CollaboratorIDs)
	if err != nil {
		respondError(c, err, "beat")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":       i18n.T(lang, i18n.KeyCollaborationSaved),
		"collaboration": collab,
	})
}

// GET /beats/:id/collaborators
func (h *SocialHandler) GetCollaborators(c *gin.Context) {
	collab, err := h.market.Social.CollaborationForBeat(c.Param("id"))
	if err != nil {
		respondError(c, err, "collaboration")
		return
	}

	members := make([]ProfileView, 0, len(collab.Collaborators))
	for _, id := range collab.Collaborators {
		if user, err := h.market.Identity.FindUserByID(id); err == nil {
			members = append(members, profileOf(h.market, user, ""))
		}
	}

	utils.SuccessResponse(c, gin.H{
		"collaboration": collab,
		"members":       members,
	})
}

type settleFunc func(ctx context.Context, actorID, edgeID string) (*models.Friend, error)

func (h *SocialHandler) settle(c *gin.Context, fn settleFunc, messageKey string) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	edge, err := fn(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err, "friend")
		return
	}
	if edge == nil {
		utils.NotFoundResponse(c, "friend")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, messageKey),
		"friend":  edge,
	})
}

// partyEdge loads the :id edge and checks the caller is one of its ends.
func (h *SocialHandler) partyEdge(c *gin.Context) (*models.Friend, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}

	edge, err := h.market.Social.FriendEdge(c.Param("id"))
	if err != nil {
		respondError(c, err, "friend")
		return nil, false
	}
	if !edge.Involves(userID) && !isAdmin(c) {
		utils.ForbiddenResponse(c, "")
		return nil, false
	}
	return edge, true
}

func (h *SocialHandler) views(userID string, edges []models.Friend) []FriendView {
	views := make([]FriendView, 0, len(edges))
	for _, edge := range edges {
		view := FriendView{Friend: edge}
		if user, err := h.market.Identity.FindUserByID(edge.Other(userID)); err == nil {
			profile := profileOf(h.market, user, "")
			view.Counterpart = &profile
		}
		views = append(views, view)
	}
	return views
}
