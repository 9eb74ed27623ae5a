// internal/services/catalog_query.go
package services

import (
	"sort"
	"strings"

	"github.com/javajoker/beatmarket/internal/models"
)

const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"
	SortPopular   = "popular"

	TonalityMajor = "major"
	TonalityMinor = "minor"
)

// BeatFilter narrows a catalog listing. Zero values match everything.
type BeatFilter struct {
	Search   string   `form:"search"`
	Genre    string   `form:"genre"`
	Tags     []string `form:"tags"`
	Key      string   `form:"key"`
	Tonality string   `form:"tonality"`
	SellerID string   `form:"seller_id"`
	Sort     string   `form:"sort"`

	// IncludeBeatIDs are appended after filtering when not already present.
	// Collaboration beats of the viewer travel here.
	IncludeBeatIDs []string `form:"-"`
}

// ListBeats filters and sorts the catalog.
func (s *CatalogService) ListBeats(filter BeatFilter) []models.Beat {
	query := strings.ToLower(strings.TrimSpace(filter.Search))

	result := []models.Beat{}
	seen := make(map[string]bool)
	for _, beat := range s.beats {
		if !matchesFilter(&beat, filter, query) {
			continue
		}
		result = append(result, beat.Clone())
		seen[beat.ID] = true
	}

	for _, id := range filter.IncludeBeatIDs {
		if seen[id] {
			continue
		}
		if idx := s.indexOf(id); idx >= 0 {
			result = append(result, s.beats[idx].Clone())
			seen[id] = true
		}
	}

	sortBeats(result, filter.Sort)
	return result
}

func matchesFilter(beat *models.Beat, filter BeatFilter, query string) bool {
	if query != "" && !matchesSearch(beat, query) {
		return false
	}
	if filter.Genre != "" && filter.Genre != "all" && beat.Genre != filter.Genre {
		return false
	}
	if len(filter.Tags) > 0 {
		hit := false
		for _, tag := range filter.Tags {
			if beat.HasTag(tag) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if filter.Key != "" && beat.Key != filter.Key {
		return false
	}
	switch filter.Tonality {
	case TonalityMajor:
		if beat.IsMinor() {
			return false
		}
	case TonalityMinor:
		if !beat.IsMinor() {
			return false
		}
	}
	if filter.SellerID != "" && beat.SellerID != filter.SellerID {
		return false
	}
	return true
}

func matchesSearch(beat *models.Beat, query string) bool {
	if strings.Contains(strings.ToLower(beat.Title), query) ||
		strings.Contains(strings.ToLower(beat.SellerName), query) ||
		strings.Contains(strings.ToLower(beat.Description), query) {
		return true
	}
	for _, tag := range beat.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func sortBeats(beats []models.Beat, order string) {
	var less func(a, b *models.Beat) bool
	switch order {
	case SortOldest:
		less = func(a, b *models.Beat) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortPriceLow:
		less = func(a, b *models.Beat) bool { return a.PriceRub.LessThan(b.PriceRub) }
	case SortPriceHigh:
		less = func(a, b *models.Beat) bool { return a.PriceRub.GreaterThan(b.PriceRub) }
	case SortRating:
		less = func(a, b *models.Beat) bool { return a.Rating > b.Rating }
	case SortPopular:
		less = func(a, b *models.Beat) bool { return a.Plays > b.Plays }
	default:
		less = func(a, b *models.Beat) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(beats, func(i, j int) bool {
		return less(&beats[i], &beats[j])
	})
}
