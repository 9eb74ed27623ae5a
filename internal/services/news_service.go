// internal/services/news_service.go
package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/beatmarket/internal/config"
	"github.com/javajoker/beatmarket/internal/models"
	"github.com/javajoker/beatmarket/internal/storage"
	"github.com/javajoker/beatmarket/internal/utils"
)

type NewsService struct {
	p   *persister
	cfg *config.Config
	log logrus.FieldLogger

	news []models.NewsItem
}

type CreateNewsRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=1000"`
	Text        string `json:"text" validate:"max=20000"`
	ImageURL    string `json:"imageUrl" validate:"max=2048"`
	Category    string `json:"category" validate:"required,max=50"`
	Author      string `json:"author" validate:"max=100"`
}

type UpdateNewsRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Text        *string `json:"text,omitempty" validate:"omitempty,max=20000"`
	ImageURL    *string `json:"imageUrl,omitempty" validate:"omitempty,max=2048"`
	Category    *string `json:"category,omitempty" validate:"omitempty,min=1,max=50"`
	Author      *string `json:"author,omitempty" validate:"omitempty,max=100"`
}

func NewNewsService(p *persister, cfg *config.Config, log logrus.FieldLogger) *NewsService {
	return &NewsService{
		p:   p,
		cfg: cfg,
		log: log.WithField("component", "news"),
	}
}

func (s *NewsService) Load(ctx context.Context) {
	news, found := loadSlice(ctx, s.p, storage.KeyNews, []models.NewsItem{})
	s.news = news
	if !found && s.cfg.Market.SeedDemoData {
		s.news = seedNews()
		s.persist(ctx)
	}
}

func (s *NewsService) CreateNews(ctx context.Context, req CreateNewsRequest) (*models.NewsItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	item := models.NewsItem{
		ID:          uuid.NewString(),
		Title:       utils.SanitizeText(req.Title),
		Description: utils.SanitizeText(req.Description),
		Text:        utils.SanitizeText(req.Text),
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Category:    utils.SanitizeText(req.Category),
		Author:      utils.SanitizeText(req.Author),
		CreatedAt:   time.Now().UTC(),
	}
	s.news = append(s.news, item)
	s.persist(ctx)
	return &item, nil
}

// UpdateNews merges the patch; unknown ids return nil.
func (s *NewsService) UpdateNews(ctx context.Context, id string, req UpdateNewsRequest) (*models.NewsItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, nil
	}

	item := &s.news[idx]
	if req.Title != nil {
		item.Title = utils.SanitizeText(*req.Title)
	}
	if req.Description != nil {
		item.Description = utils.SanitizeText(*req.Description)
	}
	if req.Text != nil {
		item.Text = utils.SanitizeText(*req.Text)
	}
	if req.ImageURL != nil {
		item.ImageURL = strings.TrimSpace(*req.ImageURL)
	}
	if req.Category != nil {
		item.Category = utils.SanitizeText(*req.Category)
	}
	if req.Author != nil {
		item.Author = utils.SanitizeText(*req.Author)
	}
	s.persist(ctx)

	out := *item
	return &out, nil
}

func (s *NewsService) DeleteNews(ctx context.Context, id string) {
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	s.news = append(s.news[:idx], s.news[idx+1:]...)
	s.persist(ctx)
}

func (s *NewsService) GetNews(id string) (*models.NewsItem, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	out := s.news[idx]
	return &out, nil
}

// ListNews returns every item, newest first.
func (s *NewsService) ListNews() []models.NewsItem {
	out := make([]models.NewsItem, len(s.news))
	copy(out, s.news)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *NewsService) persist(ctx context.Context) {
	s.p.save(ctx, storage.KeyNews, s.news)
}

func (s *NewsService) indexOf(id string) int {
	for i := range s.news {
		if s.news[i].ID == id {
			return i
		}
	}
	return -1
}
