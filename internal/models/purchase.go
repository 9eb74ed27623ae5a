// internal/models/purchase.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is immutable once written.
type Purchase struct {
	ID          string          `json:"id"`
	BeatID      string          `json:"beatId"`
	BuyerID     string          `json:"buyerId"`
	SellerID    string          `json:"sellerId"`
	PriceRub    decimal.Decimal `json:"priceRub"`
	PriceUsd    decimal.Decimal `json:"priceUsd"`
	Currency    Currency        `json:"currency"`
	PurchasedAt time.Time       `json:"purchasedAt"`
}

func (p *Purchase) Paid() decimal.Decimal {
	if p.Currency == CurrencyUSD {
		return p.PriceUsd
	}
	return p.PriceRub
}

type FavoriteItem struct {
	BeatID  string    `json:"beatId"`
	UserID  string    `json:"userId"`
	AddedAt time.Time `json:"addedAt"`
}

type Rating struct {
	ID        string    `json:"id"`
	BeatID    string    `json:"beatId"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}
