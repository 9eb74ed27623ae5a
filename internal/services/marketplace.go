// internal/services/marketplace.go
package services

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/beatmarket/internal/blobstore"
	"github.com/javajoker/beatmarket/internal/config"
	"github.com/javajoker/beatmarket/internal/models"
	"github.com/javajoker/beatmarket/internal/storage"
)

// Marketplace owns every service and the single lock that serializes all
// mutations. Callers hold the lock around each request or player message;
// service methods never lock on their own.
type Marketplace struct {
	mu sync.Mutex

	cfg   *config.Config
	log   logrus.FieldLogger
	store storage.KVStore
	blobs blobstore.Store

	Identity      *IdentityService
	Catalog       *CatalogService
	Notifications *NotificationService
	Social        *SocialService
	Cart          *CartService
	Playback      *PlaybackService
	News          *NewsService
}

func NewMarketplace(cfg *config.Config, store storage.KVStore, blobs blobstore.Store, log logrus.FieldLogger) *Marketplace {
	p := newPersister(store, log)

	identity := NewIdentityService(p, cfg, log)
	catalog := NewCatalogService(p, blobs, identity, cfg, log)
	notifications := NewNotificationService(p, log)
	social := NewSocialService(p, notifications, identity, catalog, log)
	cart := NewCartService(p, catalog, identity, log)
	playback := NewPlaybackService(catalog, identity, cfg, log)
	news := NewNewsService(p, cfg, log)

	catalog.OnBeatRemoved(cart.RemoveBeatEverywhere)
	catalog.OnBeatRemoved(social.RemoveCollaborationForBeat)

	return &Marketplace{
		cfg:           cfg,
		log:           log,
		store:         store,
		blobs:         blobs,
		Identity:      identity,
		Catalog:       catalog,
		Notifications: notifications,
		Social:        social,
		Cart:          cart,
		Playback:      playback,
		News:          news,
	}
}

func (m *Marketplace) Lock()   { m.mu.Lock() }
func (m *Marketplace) Unlock() { m.mu.Unlock() }

// Bootstrap loads every collection once and restores the persisted session.
func (m *Marketplace) Bootstrap(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.Identity.Load(ctx); err != nil {
		return err
	}
	m.Catalog.Load(ctx)
	m.Notifications.Load(ctx)
	m.Social.Load(ctx)
	m.Cart.Load(ctx)
	m.News.Load(ctx)
	m.Identity.RestoreSession(ctx)

	m.log.WithFields(logrus.Fields{
		"users": len(m.Identity.ListUsers()),
		"beats": len(m.Catalog.AllBeats()),
	}).Info("Marketplace state loaded")
	return nil
}

// Logout ends the session, stops playback and drops the cart view.
func (m *Marketplace) Logout(ctx context.Context) {
	if user := m.Identity.CurrentUser(); user != nil {
		m.Cart.DropCartView(user.ID)
	}
	m.Playback.Stop()
	m.Identity.Logout(ctx)
}

// UpdateProfile applies the patch and rewrites the cached seller name on the
// user's beats in the same step.
func (m *Marketplace) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*models.User, error) {
	before := m.Identity.CurrentUser()
	user, err := m.Identity.UpdateProfile(ctx, req)
	if err != nil || user == nil {
		return user, err
	}
	if before != nil && before.Name != user.Name {
		changed := m.Catalog.PropagateSellerName(ctx, user.ID, user.Name)
		m.log.WithFields(logrus.Fields{
			"user_id": user.ID,
			"beats":   changed,
		}).Info("Seller name propagated")
	}
	return user, nil
}

// ListBeats lists the catalog for viewerID, merging in the beats the viewer
// collaborates on.
func (m *Marketplace) ListBeats(filter BeatFilter, viewerID string) []models.Beat {
	if viewerID != "" {
		filter.IncludeBeatIDs = append(filter.IncludeBeatIDs, m.Social.CollaborationBeatIDs(viewerID)...)
	}
	return m.Catalog.ListBeats(filter)
}

// Close releases the key-value store.
func (m *Marketplace) Close() error {
	return m.store.Close()
}
