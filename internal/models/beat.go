// internal/models/beat.go
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Beat struct {
	ID          string          `json:"id"`
	SellerID    string          `json:"sellerId"`
	SellerName  string          `json:"sellerName"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	CoverURL    string          `json:"coverUrl"`
	AudioURL    string          `json:"audioUrl"`
	WavURL      string          `json:"wavUrl,omitempty"`
	PriceRub    decimal.Decimal `json:"priceRub"`
	PriceUsd    decimal.Decimal `json:"priceUsd"`
	Currency    Currency        `json:"currency"`
	Genre       string          `json:"genre"`
	Tags        []string        `json:"tags"`
	BPM         int             `json:"bpm"`
	Key         string          `json:"key"`
	Rating      float64         `json:"rating"`
	RatingCount int             `json:"ratingCount"`
	SalesCount  int             `json:"salesCount"`
	Plays       int             `json:"plays"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (b *Beat) Price(currency Currency) decimal.Decimal {
	if currency == CurrencyUSD {
		return b.PriceUsd
	}
	return b.PriceRub
}

// IsMinor reports a minor tonality, written with a trailing "m".
func (b *Beat) IsMinor() bool {
	return strings.HasSuffix(b.Key, "m")
}

func (b *Beat) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone copies the beat including its tag slice.
func (b Beat) Clone() Beat {
	b.Tags = append(make([]string, 0, len(b.Tags)), b.Tags...)
	return b
}
