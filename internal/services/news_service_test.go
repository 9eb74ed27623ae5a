// internal/services/news_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/beatmarket/internal/blobstore"
	"github.com/javajoker/beatmarket/internal/storage"
)

func TestNewsSeededNewestFirst(t *testing.T) {
	f := newFixture(t)

	news := f.market.News.ListNews()
	require.Len(t, news, 4)
	assert.Equal(t, "news-1", news[0].ID)
	assert.Equal(t, "news-4", news[3].ID)
}

func TestNewsNotSeededWhenDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Market.SeedDemoData = false

	f := newFixtureWith(t, cfg, storage.NewMemoryStore(), blobstore.NewMemoryStore())
	assert.Empty(t, f.market.News.ListNews())
	assert.Empty(t, f.market.Identity.ListUsers())
}

func TestNewsLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	item, err := f.market.News.CreateNews(ctx, CreateNewsRequest{
		Title:       "Winter <i>sale</i>",
		Description: "Everything half price",
		Category:    "Новости",
	})
	require.NoError(t, err)
	assert.Equal(t, "Winter sale", item.Title)
	assert.Equal(t, item.ID, f.market.News.ListNews()[0].ID)

	title := "Spring sale"
	updated, err := f.market.News.UpdateNews(ctx, item.ID, UpdateNewsRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Spring sale", updated.Title)
	assert.Equal(t, "Everything half price", updated.Description)

	missing, err := f.market.News.UpdateNews(ctx, "ghost", UpdateNewsRequest{Title: &title})
	assert.NoError(t, err)
	assert.Nil(t, missing)

	f.market.News.DeleteNews(ctx, item.ID)
	_, err = f.market.News.GetNews(item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, f.market.News.ListNews(), 4)

	_, err = f.market.News.CreateNews(ctx, CreateNewsRequest{Title: "No category"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeletedSeedNewsStaysDeleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, item := range f.market.News.ListNews() {
		f.market.News.DeleteNews(ctx, item.ID)
	}

	restarted := newFixtureWith(t, f.cfg, f.store, f.blobs)
	assert.Empty(t, restarted.market.News.ListNews())
}
