// internal/services/identity_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/beatmarket/internal/config"
	"github.com/javajoker/beatmarket/internal/models"
	"github.com/javajoker/beatmarket/internal/storage"
	"github.com/javajoker/beatmarket/internal/utils"
)

// IdentityService owns the user collection, the active session and wallets.
type IdentityService struct {
	p   *persister
	cfg *config.Config
	log logrus.FieldLogger

	users   []models.User
	current *models.User
	token   string
}

type RegisterRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=6"`
	Name     string          `json:"name" validate:"required,min=2,max=100"`
	Role     models.UserRole `json:"role" validate:"required,signup_role"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Bio    *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	Avatar *string `json:"avatar,omitempty" validate:"omitempty,max=2048"`
}

func NewIdentityService(p *persister, cfg *config.Config, log logrus.FieldLogger) *IdentityService {
	return &IdentityService{
		p:   p,
		cfg: cfg,
		log: log.WithField("component", "identity"),
	}
}

// Load reads the user collection, seeding demo accounts when none is stored.
func (s *IdentityService) Load(ctx context.Context) error {
	users, found := loadSlice(ctx, s.p, storage.KeyUsers, []models.User{})
	s.users = users
	if !found && s.cfg.Market.SeedDemoData {
		seeded, err := seedUsers(s.cfg.Market.BcryptCost)
		if err != nil {
			return fmt.Errorf("failed to seed users: %w", err)
		}
		s.users = seeded
		s.persist(ctx)
	}
	s.log.WithField("count", len(s.users)).Debug("Users loaded")
	return nil
}

// RestoreSession re-establishes the persisted session. A missing, expired or
// foreign token is treated as no session.
func (s *IdentityService) RestoreSession(ctx context.Context) {
	var token string
	if !s.p.load(ctx, storage.KeyCurrentUser, &token) || token == "" {
		return
	}

	claims, err := utils.ValidateSessionToken(token)
	if err != nil {
		s.log.WithError(err).Info("Discarding invalid session token")
		s.p.remove(ctx, storage.KeyCurrentUser)
		return
	}

	idx := s.indexOf(claims.UserID)
	if idx < 0 {
		s.p.remove(ctx, storage.KeyCurrentUser)
		return
	}

	user := s.users[idx]
	s.current = &user
	s.token = token
	s.log.WithField("user_id", user.ID).Info("Session restored")
}

func (s *IdentityService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = utils.SanitizeText(req.Name)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	for i := range s.users {
		if strings.EqualFold(s.users[i].Email, req.Email) {
			return nil, ErrDuplicateEmail
		}
	}

	user := models.User{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Role:      req.Role,
		Name:      req.Name,
		WalletRub: decimal.Zero,
		WalletUsd: decimal.Zero,
		CreatedAt: time.Now().UTC(),
	}
	if req.Role == models.RoleBuyer {
		user.WalletRub = decimal.NewFromInt(s.cfg.Market.StarterRub)
		user.WalletUsd = decimal.NewFromInt(s.cfg.Market.StarterUsd)
	}
	if err := user.SetPassword(req.Password, s.cfg.Market.BcryptCost); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s.users = append(s.users, user)
	s.persist(ctx)
	s.startSession(ctx, user)

	s.log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User registered")
	return s.CurrentUser(), nil
}

func (s *IdentityService) Login(ctx context.Context, req LoginRequest) (*models.User, error) {
	email := strings.TrimSpace(req.Email)

	var matched []int
	for i := range s.users {
		if strings.EqualFold(s.users[i].Email, email) {
			matched = append(matched, i)
		}
	}
	if len(matched) != 1 {
		return nil, ErrInvalidCredentials
	}

	user := s.users[matched[0]]
	if err := user.CheckPassword(req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.startSession(ctx, user)
	s.log.WithField("user_id", user.ID).Info("User logged in")
	return s.CurrentUser(), nil
}

// Logout clears the session; it never fails.
func (s *IdentityService) Logout(ctx context.Context) {
	if s.current != nil {
		s.log.WithField("user_id", s.current.ID).Info("User logged out")
	}
	s.current = nil
	s.token = ""
	s.p.remove(ctx, storage.KeyCurrentUser)
}

// UpdateProfile merges the patch into the active user. Without a session it
// does nothing and returns nil.
func (s *IdentityService) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*models.User, error) {
	if s.current == nil {
		return nil, nil
	}
	if req.Name != nil {
		name := utils.SanitizeText(*req.Name)
		req.Name = &name
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	idx := s.indexOf(s.current.ID)
	if idx < 0 {
		return nil, nil
	}

	user := &s.users[idx]
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Bio != nil {
		user.Bio = utils.SanitizeText(*req.Bio)
	}
	if req.Avatar != nil {
		user.Avatar = strings.TrimSpace(*req.Avatar)
	}

	s.persist(ctx)
	s.refreshSession(*user)
	return s.CurrentUser(), nil
}

// AdjustWallet adds the deltas to a user's balances. No floor is enforced.
// Unknown users are ignored.
func (s *IdentityService) AdjustWallet(ctx context.Context, userID string, rubDelta, usdDelta decimal.Decimal) {
	idx := s.indexOf(userID)
	if idx < 0 {
		return
	}

	user := &s.users[idx]
	user.WalletRub = user.WalletRub.Add(rubDelta)
	user.WalletUsd = user.WalletUsd.Add(usdDelta)

	s.persist(ctx)
	s.refreshSession(*user)
}

func (s *IdentityService) FindUserByID(id string) (*models.User, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	user := s.users[idx]
	return &user, nil
}

// CurrentUser returns a copy of the active user, or nil.
func (s *IdentityService) CurrentUser() *models.User {
	if s.current == nil {
		return nil
	}
	user := *s.current
	return &user
}

func (s *IdentityService) SessionToken() string {
	return s.token
}

func (s *IdentityService) ListUsers() []models.User {
	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out
}

// SearchUsers matches name or email case-insensitively.
func (s *IdentityService) SearchUsers(query, excludeID string) []models.User {
	query = strings.ToLower(strings.TrimSpace(query))
	out := []models.User{}
	for _, user := range s.users {
		if user.ID == excludeID {
			continue
		}
		if query == "" ||
			strings.Contains(strings.ToLower(user.Name), query) ||
			strings.Contains(strings.ToLower(user.Email), query) {
			out = append(out, user)
		}
	}
	return out
}

func (s *IdentityService) startSession(ctx context.Context, user models.User) {
	s.current = &user

	token, err := utils.GenerateSessionToken(user.ID, string(user.Role), s.cfg.Session.TTLHours)
	if err != nil {
		s.log.WithError(err).Warn("Failed to sign session token")
		s.token = ""
		return
	}
	s.token = token
	s.p.save(ctx, storage.KeyCurrentUser, token)
}

func (s *IdentityService) refreshSession(user models.User) {
	if s.current != nil && s.current.ID == user.ID {
		s.current = &user
	}
}

func (s *IdentityService) persist(ctx context.Context) {
	s.p.save(ctx, storage.KeyUsers, s.users)
}

func (s *IdentityService) indexOf(id string) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}
