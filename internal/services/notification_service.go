// internal/services/notification_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/beatmarket/internal/models"
	"github.com/javajoker/beatmarket/internal/storage"
)

type NotificationService struct {
	p   *persister
	log logrus.FieldLogger

	notifications []models.Notification
}

type NotificationTemplate struct {
	Title   string
	Message string
}

// NotificationRequest describes one notification. Title and Message are
// rendered from the type's template when left empty.
type NotificationRequest struct {
	UserID    string                  `json:"userId" validate:"required"`
	Type      models.NotificationType `json:"type" validate:"required,oneof=friend_request friend_accepted friend_rejected collaboration_invite"`
	Title     string                  `json:"title,omitempty"`
	Message   string                  `json:"message,omitempty"`
	SenderID  string                  `json:"senderId,omitempty"`
	RelatedID string                  `json:"relatedId,omitempty"`
	Data      map[string]string       `json:"data,omitempty"`
}

var notificationTemplates = map[models.NotificationType]NotificationTemplate{
	models.NotificationFriendRequest: {
		Title:   "New friend request",
		Message: "{{.SenderName}} wants to add you as a friend",
	},
	models.NotificationFriendAccepted: {
		Title:   "Friend request accepted",
		Message: "{{.SenderName}} accepted your friend request",
	},
	models.NotificationFriendRejected: {
		Title:   "Friend request declined",
		Message: "{{.SenderName}} declined your friend request",
	},
	models.NotificationCollaborationInvite: {
		Title:   "Collaboration invite",
		Message: `{{.SenderName}} added you as a collaborator on "{{.BeatTitle}}"`,
	},
}

func NewNotificationService(p *persister, log logrus.FieldLogger) *NotificationService {
	return &NotificationService{
		p:   p,
		log: log.WithField("component", "notifications"),
	}
}

func (s *NotificationService) Load(ctx context.Context) {
	s.notifications, _ = loadSlice(ctx, s.p, storage.KeyNotifications, []models.Notification{})
}

// Notify appends an unread notification for req.UserID.
func (s *NotificationService) Notify(ctx context.Context, req NotificationRequest) (*models.Notification, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: recipient is required", ErrValidation)
	}
	tmpl, ok := notificationTemplates[req.Type]
	if !ok {
		return nil, fmt.Errorf("%w: unknown notification type %q", ErrValidation, req.Type)
	}

	title, message := req.Title, req.Message
	if title == "" {
		rendered, err := s.renderTemplate(tmpl.Title, req.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to render notification title: %w", err)
		}
		title = rendered
	}
	if message == "" {
		rendered, err := s.renderTemplate(tmpl.Message, req.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to render notification message: %w", err)
		}
		message = rendered
	}

	notification := models.Notification{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     title,
		Message:   message,
		SenderID:  req.SenderID,
		RelatedID: req.RelatedID,
		CreatedAt: time.Now().UTC(),
	}
	s.notifications = append(s.notifications, notification)
	s.persist(ctx)

	s.log.WithFields(logrus.Fields{
		"user_id": notification.UserID,
		"type":    notification.Type,
	}).Debug("Notification created")
	return &notification, nil
}

func (s *NotificationService) Get(id string) (*models.Notification, error) {
	for _, n := range s.notifications {
		if n.ID == id {
			out := n
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) {
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			if !s.notifications[i].IsRead {
				s.notifications[i].IsRead = true
				s.persist(ctx)
			}
			return
		}
	}
}

// MarkAllRead marks every unread notification of the user and returns how
// many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) int {
	changed := 0
	for i := range s.notifications {
		if s.notifications[i].UserID == userID && !s.notifications[i].IsRead {
			s.notifications[i].IsRead = true
			changed++
		}
	}
	if changed > 0 {
		s.persist(ctx)
	}
	return changed
}

func (s *NotificationService) Delete(ctx context.Context, id string) {
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

// ListAll returns the user's notifications, newest first.
func (s *NotificationService) ListAll(userID string) []models.Notification {
	return s.filter(func(n *models.Notification) bool { return n.UserID == userID })
}

func (s *NotificationService) ListUnread(userID string) []models.Notification {
	return s.filter(func(n *models.Notification) bool { return n.UserID == userID && !n.IsRead })
}

func (s *NotificationService) UnreadCount(userID string) int {
	count := 0
	for _, n := range s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count
}

func (s *NotificationService) filter(keep func(n *models.Notification) bool) []models.Notification {
	out := []models.Notification{}
	for i := range s.notifications {
		if keep(&s.notifications[i]) {
			out = append(out, s.notifications[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *NotificationService) persist(ctx context.Context) {
	s.p.save(ctx, storage.KeyNotifications, s.notifications)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("notification").Option("missingkey=zero").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
