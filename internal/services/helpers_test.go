// internal/services/helpers_test.go
package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/javajoker/beatmarket/internal/blobstore"
	"github.com/javajoker/beatmarket/internal/config"
	"github.com/javajoker/beatmarket/internal/logging"
	"github.com/javajoker/beatmarket/internal/models"
	"github.com/javajoker/beatmarket/internal/storage"
	"github.com/javajoker/beatmarket/internal/utils"
)

func testConfig() *config.Config {
	utils.SetJWTSecret("services-test-secret")
	return &config.Config{
		Environment: "test",
		Storage:     config.StorageConfig{Driver: "memory"},
		Blob:        config.BlobConfig{Driver: "memory"},
		Session:     config.SessionConfig{SecretKey: "services-test-secret", TTLHours: 1},
		Market: config.MarketConfig{
			StarterRub:           10000,
			StarterUsd:           100,
			PlayThresholdSeconds: 30,
			DefaultVolume:        0.7,
			BcryptCost:           bcrypt.MinCost,
			SeedDemoData:         true,
		},
	}
}

type fixture struct {
	cfg    *config.Config
	store  *storage.MemoryStore
	blobs  *blobstore.MemoryStore
	market *Marketplace
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, testConfig(), storage.NewMemoryStore(), blobstore.NewMemoryStore())
}

func newFixtureWith(t *testing.T, cfg *config.Config, store *storage.MemoryStore, blobs *blobstore.MemoryStore) *fixture {
	t.Helper()
	market := NewMarketplace(cfg, store, blobs, logging.Discard())
	require.NoError(t, market.Bootstrap(context.Background()))
	return &fixture{cfg: cfg, store: store, blobs: blobs, market: market}
}

func (f *fixture) login(t *testing.T, email, password string) *models.User {
	t.Helper()
	user, err := f.market.Identity.Login(context.Background(), LoginRequest{Email: email, Password: password})
	require.NoError(t, err)
	return user
}

func (f *fixture) createBeat(t *testing.T, sellerID, title string, rub, usd int64) *models.Beat {
	t.Helper()
	beat, err := f.market.Catalog.CreateBeat(context.Background(), CreateBeatRequest{
		SellerID: sellerID,
		Title:    title,
		PriceRub: decimal.NewFromInt(rub),
		PriceUsd: decimal.NewFromInt(usd),
		Genre:    "Trap",
		Tags:     []string{"dark", "808"},
		BPM:      140,
		Key:      "Am",
	}, &blobstore.Payload{Data: []byte("ID3"), FileName: title + ".mp3"}, nil)
	require.NoError(t, err)
	return beat
}

func (f *fixture) wallet(t *testing.T, userID string) (decimal.Decimal, decimal.Decimal) {
	t.Helper()
	user, err := f.market.Identity.FindUserByID(userID)
	require.NoError(t, err)
	return user.WalletRub, user.WalletUsd
}

func writeManifest(t *testing.T, beats []models.Beat) string {
	t.Helper()
	data, err := json.Marshal(beats)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
