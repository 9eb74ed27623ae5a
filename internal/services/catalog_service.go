// internal/services/catalog_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/beatmarket/internal/blobstore"
	"github.com/javajoker/beatmarket/internal/config"
	"github.com/javajoker/beatmarket/internal/models"
	"github.com/javajoker/beatmarket/internal/storage"
	"github.com/javajoker/beatmarket/internal/utils"
)

// BeatRemovedHook runs after a beat is deleted so other collections can drop
// references to it.
type BeatRemovedHook func(ctx context.Context, beatID string)

// CatalogService owns beats, ratings and favorites.
type CatalogService struct {
	p        *persister
	blobs    blobstore.Store
	identity *IdentityService
	cfg      *config.Config
	log      logrus.FieldLogger

	beats     []models.Beat
	favorites []models.FavoriteItem
	ratings   []models.Rating
	onRemoved []BeatRemovedHook
}

type CreateBeatRequest struct {
	SellerID    string          `json:"-" validate:"required"`
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	CoverURL    string          `json:"coverUrl" validate:"max=2048"`
	AudioURL    string          `json:"audioUrl" validate:"max=2048"`
	WavURL      string          `json:"wavUrl" validate:"max=2048"`
	PriceRub    decimal.Decimal `json:"priceRub"`
	PriceUsd    decimal.Decimal `json:"priceUsd"`
	Currency    models.Currency `json:"currency" validate:"omitempty,currency"`
	Genre       string          `json:"genre" validate:"required,max=50"`
	Tags        []string        `json:"tags" validate:"max=20"`
	BPM         int             `json:"bpm" validate:"required,min=20,max=400"`
	Key         string          `json:"key" validate:"required,musical_key"`
}

type UpdateBeatRequest struct {
	Title       *string          `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	CoverURL    *string          `json:"coverUrl,omitempty" validate:"omitempty,max=2048"`
	PriceRub    *decimal.Decimal `json:"priceRub,omitempty"`
	PriceUsd    *decimal.Decimal `json:"priceUsd,omitempty"`
	Currency    *models.Currency `json:"currency,omitempty" validate:"omitempty,currency"`
	Genre       *string          `json:"genre,omitempty" validate:"omitempty,min=1,max=50"`
	Tags        *[]string        `json:"tags,omitempty" validate:"omitempty,max=20"`
	BPM         *int             `json:"bpm,omitempty" validate:"omitempty,min=20,max=400"`
	Key         *string          `json:"key,omitempty" validate:"omitempty,musical_key"`
}

func NewCatalogService(p *persister, blobs blobstore.Store, identity *IdentityService, cfg *config.Config, log logrus.FieldLogger) *CatalogService {
	return &CatalogService{
		p:        p,
		blobs:    blobs,
		identity: identity,
		cfg:      cfg,
		log:      log.WithField("component", "catalog"),
	}
}

// OnBeatRemoved registers a cascade hook for DeleteBeat.
func (s *CatalogService) OnBeatRemoved(hook BeatRemovedHook) {
	s.onRemoved = append(s.onRemoved, hook)
}

// Load reads beats, ratings and favorites. When no beats are stored the
// starter manifest is tried once; any failure leaves the catalog empty.
func (s *CatalogService) Load(ctx context.Context) {
	beats, found := loadSlice(ctx, s.p, storage.KeyBeats, []models.Beat{})
	s.beats = beats
	if !found || len(beats) == 0 {
		manifest, err := loadManifest(ctx, s.cfg.Market.ManifestSource)
		if err != nil {
			s.log.WithError(err).WithField("source", s.cfg.Market.ManifestSource).
				Warn("Failed to load beat manifest, starting with an empty catalog")
		}
		if len(manifest) > 0 {
			s.beats = manifest
			s.persistBeats(ctx)
			s.log.WithField("count", len(manifest)).Info("Catalog seeded from manifest")
		}
	}

	s.ratings, _ = loadSlice(ctx, s.p, storage.KeyRatings, []models.Rating{})
	s.favorites, _ = loadSlice(ctx, s.p, storage.KeyFavorites, []models.FavoriteItem{})
}

func (s *CatalogService) CreateBeat(ctx context.Context, req CreateBeatRequest, audio, wav *blobstore.Payload) (*models.Beat, error) {
	req.Title = utils.SanitizeText(req.Title)
	req.Description = utils.SanitizeText(req.Description)
	req.Genre = utils.SanitizeText(req.Genre)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if req.PriceRub.IsNegative() || req.PriceUsd.IsNegative() ||
		(!req.PriceRub.IsPositive() && !req.PriceUsd.IsPositive()) {
		return nil, fmt.Errorf("%w: a positive price is required", ErrValidation)
	}
	hasAudio := audio != nil && len(audio.Data) > 0
	if !hasAudio && strings.TrimSpace(req.AudioURL) == "" {
		return nil, fmt.Errorf("%w: audio is required", ErrValidation)
	}

	seller, err := s.identity.FindUserByID(req.SellerID)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown seller", ErrValidation)
	}

	currency := req.Currency
	if currency == "" {
		currency = models.CurrencyRUB
	}

	beat := models.Beat{
		ID:          uuid.NewString(),
		SellerID:    seller.ID,
		SellerName:  seller.Name,
		Title:       req.Title,
		Description: req.Description,
		CoverURL:    strings.TrimSpace(req.CoverURL),
		AudioURL:    strings.TrimSpace(req.AudioURL),
		WavURL:      strings.TrimSpace(req.WavURL),
		PriceRub:    req.PriceRub,
		PriceUsd:    req.PriceUsd,
		Currency:    currency,
		Genre:       req.Genre,
		Tags:        utils.SanitizeTags(req.Tags),
		BPM:         req.BPM,
		Key:         req.Key,
		CreatedAt:   time.Now().UTC(),
	}

	if hasAudio {
		s.putBlob(ctx, blobstore.BucketAudio, beat.ID, audio)
		beat.AudioURL = blobstore.AudioRef(beat.ID)
	}
	if wav != nil && len(wav.Data) > 0 {
		s.putBlob(ctx, blobstore.BucketWav, beat.ID, wav)
		beat.WavURL = blobstore.WavRef(beat.ID)
	}

	s.beats = append(s.beats, beat)
	s.persistBeats(ctx)

	s.log.WithFields(logrus.Fields{
		"beat_id":   beat.ID,
		"seller_id": beat.SellerID,
	}).Info("Beat created")
	out := beat.Clone()
	return &out, nil
}

// UpdateBeat merges listing fields. Unknown ids are ignored and return nil.
func (s *CatalogService) UpdateBeat(ctx context.Context, id string, req UpdateBeatRequest) (*models.Beat, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	for _, price := range []*decimal.Decimal{req.PriceRub, req.PriceUsd} {
		if price != nil && price.IsNegative() {
			return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
		}
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, nil
	}

	beat := &s.beats[idx]
	if req.Title != nil {
		beat.Title = utils.SanitizeText(*req.Title)
	}
	if req.Description != nil {
		beat.Description = utils.SanitizeText(*req.Description)
	}
	if req.CoverURL != nil {
		beat.CoverURL = strings.TrimSpace(*req.CoverURL)
	}
	if req.PriceRub != nil {
		beat.PriceRub = *req.PriceRub
	}
	if req.PriceUsd != nil {
		beat.PriceUsd = *req.PriceUsd
	}
	if req.Currency != nil {
		beat.Currency = *req.Currency
	}
	if req.Genre != nil {
		beat.Genre = utils.SanitizeText(*req.Genre)
	}
	if req.Tags != nil {
		beat.Tags = utils.SanitizeTags(*req.Tags)
	}
	if req.BPM != nil {
		beat.BPM = *req.BPM
	}
	if req.Key != nil {
		beat.Key = *req.Key
	}

	s.persistBeats(ctx)
	out := beat.Clone()
	return &out, nil
}

// DeleteBeat removes the beat with its favorites, ratings and blobs, then
// runs the registered cascade hooks. Unknown ids are ignored.
func (s *CatalogService) DeleteBeat(ctx context.Context, id string) {
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	s.beats = append(s.beats[:idx], s.beats[idx+1:]...)

	favorites := s.favorites[:0]
	for _, fav := range s.favorites {
		if fav.BeatID != id {
			favorites = append(favorites, fav)
		}
	}
	s.favorites = favorites

	ratings := s.ratings[:0]
	for _, rating := range s.ratings {
		if rating.BeatID != id {
			ratings = append(ratings, rating)
		}
	}
	s.ratings = ratings

	s.persistBeats(ctx)
	s.p.save(ctx, storage.KeyFavorites, s.favorites)
	s.p.save(ctx, storage.KeyRatings, s.ratings)

	for _, hook := range s.onRemoved {
		hook(ctx, id)
	}

	for _, bucket := range []string{blobstore.BucketAudio, blobstore.BucketWav} {
		if err := s.blobs.Delete(ctx, bucket, id); err != nil && !errors.Is(err, blobstore.ErrNotFound) {
			s.log.WithFields(logrus.Fields{
				"bucket":  bucket,
				"beat_id": id,
			}).WithError(err).Warn("persistence warning")
		}
	}

	s.log.WithField("beat_id", id).Info("Beat deleted")
}

func (s *CatalogService) IncrementPlays(ctx context.Context, id string) {
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	s.beats[idx].Plays++
	s.persistBeats(ctx)
}

// RecordSale bumps the sales counter of a beat.
func (s *CatalogService) RecordSale(ctx context.Context, id string) {
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	s.beats[idx].SalesCount++
	s.persistBeats(ctx)
}

// Rate upserts the user's rating and recomputes the beat aggregate from the
// full rating set after the upsert.
func (s *CatalogService) Rate(ctx context.Context, userID, beatID string, value int) (*models.Beat, error) {
	if value < 1 || value > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	idx := s.indexOf(beatID)
	if idx < 0 {
		return nil, nil
	}

	upserted := false
	for i := range s.ratings {
		if s.ratings[i].UserID == userID && s.ratings[i].BeatID == beatID {
			s.ratings[i].Rating = value
			s.ratings[i].CreatedAt = time.Now().UTC()
			upserted = true
			break
		}
	}
	if !upserted {
		s.ratings = append(s.ratings, models.Rating{
			ID:        uuid.NewString(),
			BeatID:    beatID,
			UserID:    userID,
			Rating:    value,
			CreatedAt: time.Now().UTC(),
		})
	}

	sum, count := 0, 0
	for _, rating := range s.ratings {
		if rating.BeatID == beatID {
			sum += rating.Rating
			count++
		}
	}

	beat := &s.beats[idx]
	beat.RatingCount = count
	beat.Rating = 0
	if count > 0 {
		beat.Rating = float64(sum) / float64(count)
	}

	s.p.save(ctx, storage.KeyRatings, s.ratings)
	s.persistBeats(ctx)

	out := beat.Clone()
	return &out, nil
}

// ToggleFavorite flips the (user, beat) favorite and returns the new state.
func (s *CatalogService) ToggleFavorite(ctx context.Context, userID, beatID string) bool {
	for i, fav := range s.favorites {
		if fav.UserID == userID && fav.BeatID == beatID {
			s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
			s.p.save(ctx, storage.KeyFavorites, s.favorites)
			return false
		}
	}
	if s.indexOf(beatID) < 0 {
		return false
	}

	s.favorites = append(s.favorites, models.FavoriteItem{
		BeatID:  beatID,
		UserID:  userID,
		AddedAt: time.Now().UTC(),
	})
	s.p.save(ctx, storage.KeyFavorites, s.favorites)
	return true
}

func (s *CatalogService) IsFavorite(userID, beatID string) bool {
	for _, fav := range s.favorites {
		if fav.UserID == userID && fav.BeatID == beatID {
			return true
		}
	}
	return false
}

// Favorites returns the user's favorite beats, most recently added first.
func (s *CatalogService) Favorites(userID string) []models.Beat {
	var items []models.FavoriteItem
	for _, fav := range s.favorites {
		if fav.UserID == userID {
			items = append(items, fav)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].AddedAt.After(items[j].AddedAt)
	})

	out := []models.Beat{}
	for _, fav := range items {
		if idx := s.indexOf(fav.BeatID); idx >= 0 {
			out = append(out, s.beats[idx].Clone())
		}
	}
	return out
}

// UserRating returns the stored rating of a user for a beat, if any.
func (s *CatalogService) UserRating(userID, beatID string) (int, bool) {
	for _, rating := range s.ratings {
		if rating.UserID == userID && rating.BeatID == beatID {
			return rating.Rating, true
		}
	}
	return 0, false
}

// Ratings returns every stored rating for a beat.
func (s *CatalogService) Ratings(beatID string) []models.Rating {
	out := []models.Rating{}
	for _, rating := range s.ratings {
		if rating.BeatID == beatID {
			out = append(out, rating)
		}
	}
	return out
}

func (s *CatalogService) GetBeat(id string) (*models.Beat, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	out := s.beats[idx].Clone()
	return &out, nil
}

func (s *CatalogService) SellerBeats(sellerID string) []models.Beat {
	out := []models.Beat{}
	for _, beat := range s.beats {
		if beat.SellerID == sellerID {
			out = append(out, beat.Clone())
		}
	}
	return out
}

// AllBeats returns every beat in insertion order.
func (s *CatalogService) AllBeats() []models.Beat {
	out := make([]models.Beat, 0, len(s.beats))
	for _, beat := range s.beats {
		out = append(out, beat.Clone())
	}
	return out
}

// PropagateSellerName rewrites the cached seller name on every beat owned by
// sellerID and returns how many beats changed.
func (s *CatalogService) PropagateSellerName(ctx context.Context, sellerID, name string) int {
	changed := 0
	for i := range s.beats {
		if s.beats[i].SellerID == sellerID && s.beats[i].SellerName != name {
			s.beats[i].SellerName = name
			changed++
		}
	}
	if changed > 0 {
		s.persistBeats(ctx)
	}
	return changed
}

// OpenAudio reads a blob-backed payload of a beat. Beats whose audio is a
// remote URL return ErrNotFound.
func (s *CatalogService) OpenAudio(ctx context.Context, beatID string, wav bool) (*blobstore.Object, error) {
	idx := s.indexOf(beatID)
	if idx < 0 {
		return nil, ErrNotFound
	}

	ref := s.beats[idx].AudioURL
	if wav {
		ref = s.beats[idx].WavURL
	}
	bucket, id, ok := blobstore.ParseRef(ref)
	if !ok {
		return nil, ErrNotFound
	}

	obj, err := s.blobs.Get(ctx, bucket, id)
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	return obj, nil
}

func (s *CatalogService) putBlob(ctx context.Context, bucket, id string, payload *blobstore.Payload) {
	if err := s.blobs.Put(ctx, bucket, id, payload); err != nil {
		s.log.WithFields(logrus.Fields{
			"bucket":  bucket,
			"beat_id": id,
		}).WithError(err).Warn("persistence warning")
	}
}

func (s *CatalogService) persistBeats(ctx context.Context) {
	s.p.save(ctx, storage.KeyBeats, s.beats)
}

func (s *CatalogService) indexOf(id string) int {
	for i := range s.beats {
		if s.beats[i].ID == id {
			return i
		}
	}
	return -1
}
