// internal/services/social_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/beatmarket/internal/models"
	"github.com/javajoker/beatmarket/internal/storage"
)

// SocialService owns friend edges and beat collaborations.
type SocialService struct {
	p             *persister
	notifications *NotificationService
	identity      *IdentityService
	catalog       *CatalogService
	log           logrus.FieldLogger

	friends        []models.Friend
	collaborations []models.Collaboration
}

type FriendRequest struct {
	FriendID string `json:"friendId" validate:"required"`
}

type CollaborationRequest struct {
	CollaboratorIDs []string `json:"collaboratorIds" validate:"required,min=1,max=20,dive,required"`
}

func NewSocialService(p *persister, notifications *NotificationService, identity *IdentityService, catalog *CatalogService, log logrus.FieldLogger) *SocialService {
	return &SocialService{
		p:             p,
		notifications: notifications,
		identity:      identity,
		catalog:       catalog,
		log:           log.WithField("component", "social"),
	}
}

func (s *SocialService) Load(ctx context.Context) {
	s.friends, _ = loadSlice(ctx, s.p, storage.KeyFriends, []models.Friend{})
	s.collaborations, _ = loadSlice(ctx, s.p, storage.KeyCollaborations, []models.Collaboration{})
}

// activeEdge finds the pending or accepted edge of the pair, if any.
func (s *SocialService) activeEdge(a, b string) int {
	for i := range s.friends {
		f := &s.friends[i]
		if f.Status != models.FriendStatusPending && f.Status != models.FriendStatusAccepted {
			continue
		}
		if f.Connects(a, b) {
			return i
		}
	}
	return -1
}

// SendFriendRequest creates a pending edge from fromID to toID. When the pair
// already has a pending or accepted edge that edge is returned unchanged.
func (s *SocialService) SendFriendRequest(ctx context.Context, fromID, toID string) (*models.Friend, error) {
	if fromID == "" || toID == "" || fromID == toID {
		return nil, fmt.Errorf("%w: invalid friend request", ErrValidation)
	}
	sender, err := s.identity.FindUserByID(fromID)
	if err != nil {
		return nil, err
	}
	if _, err := s.identity.FindUserByID(toID); err != nil {
		return nil, err
	}

	if idx := s.activeEdge(fromID, toID); idx >= 0 {
		existing := s.friends[idx]
		return &existing, nil
	}

	edge := models.Friend{
		ID:        uuid.NewString(),
		UserID:    fromID,
		FriendID:  toID,
		Status:    models.FriendStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	s.friends = append(s.friends, edge)
	s.persistFriends(ctx)

	s.notify(ctx, NotificationRequest{
		UserID:    toID,
		Type:      models.NotificationFriendRequest,
		SenderID:  fromID,
		RelatedID: edge.ID,
		Data:      map[string]string{"SenderName": sender.Name},
	})
	return &edge, nil
}

// AcceptFriendRequest marks a pending edge accepted. Only the recipient may
// accept. Unknown or settled edges are left alone.
func (s *SocialService) AcceptFriendRequest(ctx context.Context, actorID, edgeID string) (*models.Friend, error) {
	idx := s.edgeIndex(edgeID)
	if idx < 0 {
		return nil, nil
	}
	edge := &s.friends[idx]
	if !edge.Involves(actorID) {
		return nil, ErrForbidden
	}
	if edge.Status != models.FriendStatusPending {
		out := *edge
		return &out, nil
	}
	if edge.FriendID != actorID {
		return nil, ErrForbidden
	}

	edge.Status = models.FriendStatusAccepted
	out := *edge
	s.persistFriends(ctx)

	s.notifyCounterpart(ctx, out, actorID, models.NotificationFriendAccepted)
	return &out, nil
}

// RejectFriendRequest removes a pending edge. Either party may reject; the
// other party is notified.
func (s *SocialService) RejectFriendRequest(ctx context.Context, actorID, edgeID string) (*models.Friend, error) {
	idx := s.edgeIndex(edgeID)
	if idx < 0 {
		return nil, nil
	}
	edge := s.friends[idx]
	if !edge.Involves(actorID) {
		return nil, ErrForbidden
	}
	if edge.Status != models.FriendStatusPending {
		return &edge, nil
	}

	s.friends = append(s.friends[:idx], s.friends[idx+1:]...)
	s.persistFriends(ctx)

	edge.Status = models.FriendStatusRejected
	s.notifyCounterpart(ctx, edge, actorID, models.NotificationFriendRejected)
	return &edge, nil
}

// RemoveFriendEdge deletes an edge regardless of status.
func (s *SocialService) RemoveFriendEdge(ctx context.Context, edgeID string) {
	idx := s.edgeIndex(edgeID)
	if idx < 0 {
		return
	}
	s.friends = append(s.friends[:idx], s.friends[idx+1:]...)
	s.persistFriends(ctx)
}

func (s *SocialService) FriendEdge(edgeID string) (*models.Friend, error) {
	idx := s.edgeIndex(edgeID)
	if idx < 0 {
		return nil, ErrNotFound
	}
	out := s.friends[idx]
	return &out, nil
}

// ListFriends returns accepted edges touching userID in either direction.
func (s *SocialService) ListFriends(userID string) []models.Friend {
	return s.filterFriends(func(f *models.Friend) bool {
		return f.Status == models.FriendStatusAccepted && f.Involves(userID)
	})
}

func (s *SocialService) IncomingRequests(userID string) []models.Friend {
	return s.filterFriends(func(f *models.Friend) bool {
		return f.Status == models.FriendStatusPending && f.FriendID == userID
	})
}

func (s *SocialService) OutgoingRequests(userID string) []models.Friend {
	return s.filterFriends(func(f *models.Friend) bool {
		return f.Status == models.FriendStatusPending && f.UserID == userID
	})
}

// FriendshipBetween returns the pending or accepted edge of the pair, if any.
func (s *SocialService) FriendshipBetween(a, b string) *models.Friend {
	idx := s.activeEdge(a, b)
	if idx < 0 {
		return nil
	}
	out := s.friends[idx]
	return &out
}

// AddCollaboration stores the collaborator set of a beat, replacing any
// previous one. The uploading seller is always part of the set and everyone
// in it other than the actor is invited.
func (s *SocialService) AddCollaboration(ctx context.Context, actorID, beatID string, collaboratorIDs []string) (*models.Collaboration, error) {
	beat, err := s.catalog.GetBeat(beatID)
	if err != nil {
		return nil, err
	}
	actor, err := s.identity.FindUserByID(actorID)
	if err != nil {
		return nil, err
	}

	members := []string{beat.SellerID}
	seen := map[string]bool{beat.SellerID: true}
	for _, id := range collaboratorIDs {
		if id == "" || seen[id] {
			continue
		}
		if _, err := s.identity.FindUserByID(id); err != nil {
			continue
		}
		seen[id] = true
		members = append(members, id)
	}

	collab := models.Collaboration{
		ID:            uuid.NewString(),
		BeatID:        beatID,
		Collaborators: members,
		CreatedAt:     time.Now().UTC(),
	}
	if idx := s.collaborationIndex(beatID); idx >= 0 {
		collab.ID = s.collaborations[idx].ID
		collab.CreatedAt = s.collaborations[idx].CreatedAt
		s.collaborations[idx] = collab
	} else {
		s.collaborations = append(s.collaborations, collab)
	}
	s.persistCollaborations(ctx)

	for _, id := range members {
		if id == actorID {
			continue
		}
		s.notify(ctx, NotificationRequest{
			UserID:    id,
			Type:      models.NotificationCollaborationInvite,
			SenderID:  actorID,
			RelatedID: collab.ID,
			Data: map[string]string{
				"SenderName": actor.Name,
				"BeatTitle":  beat.Title,
			},
		})
	}

	out := collab
	out.Collaborators = append([]string(nil), collab.Collaborators...)
	return &out, nil
}

// CollaborationsFor returns every collaboration including userID.
func (s *SocialService) CollaborationsFor(userID string) []models.Collaboration {
	out := []models.Collaboration{}
	for _, c := range s.collaborations {
		if c.Includes(userID) {
			out = append(out, c)
		}
	}
	return out
}

// CollaborationBeatIDs lists the beats userID collaborates on.
func (s *SocialService) CollaborationBeatIDs(userID string) []string {
	var ids []string
	for _, c := range s.CollaborationsFor(userID) {
		ids = append(ids, c.BeatID)
	}
	return ids
}

func (s *SocialService) CollaborationForBeat(beatID string) (*models.Collaboration, error) {
	idx := s.collaborationIndex(beatID)
	if idx < 0 {
		return nil, ErrNotFound
	}
	out := s.collaborations[idx]
	return &out, nil
}

// RemoveCollaborationForBeat is the beat deletion hook.
func (s *SocialService) RemoveCollaborationForBeat(ctx context.Context, beatID string) {
	idx := s.collaborationIndex(beatID)
	if idx < 0 {
		return
	}
	s.collaborations = append(s.collaborations[:idx], s.collaborations[idx+1:]...)
	s.persistCollaborations(ctx)
}

func (s *SocialService) notifyCounterpart(ctx context.Context, edge models.Friend, actorID string, kind models.NotificationType) {
	name := ""
	if actor, err := s.identity.FindUserByID(actorID); err == nil {
		name = actor.Name
	}
	s.notify(ctx, NotificationRequest{
		UserID:    edge.Other(actorID),
		Type:      kind,
		SenderID:  actorID,
		RelatedID: edge.ID,
		Data:      map[string]string{"SenderName": name},
	})
}

func (s *SocialService) notify(ctx context.Context, req NotificationRequest) {
	if _, err := s.notifications.Notify(ctx, req); err != nil {
		s.log.WithError(err).WithField("type", req.Type).Warn("Failed to create notification")
	}
}

func (s *SocialService) filterFriends(keep func(f *models.Friend) bool) []models.Friend {
	out := []models.Friend{}
	for i := range s.friends {
		if keep(&s.friends[i]) {
			out = append(out, s.friends[i])
		}
	}
	return out
}

func (s *SocialService) edgeIndex(id string) int {
	for i := range s.friends {
		if s.friends[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *SocialService) collaborationIndex(beatID string) int {
	for i := range s.collaborations {
		if s.collaborations[i].BeatID == beatID {
			return i
		}
	}
	return -1
}

func (s *SocialService) persistFriends(ctx context.Context) {
	s.p.save(ctx, storage.KeyFriends, s.friends)
}

func (s *SocialService) persistCollaborations(ctx context.Context) {
	s.p.save(ctx, storage.KeyCollaborations, s.collaborations)
}
