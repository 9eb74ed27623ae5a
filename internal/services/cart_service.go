// internal/services/cart_service.go
package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/beatmarket/internal/models"
	"github.com/javajoker/beatmarket/internal/storage"
)

// CartService owns per-user carts and the purchase ledger.
type CartService struct {
	p        *persister
	catalog  *CatalogService
	identity *IdentityService
	log      logrus.FieldLogger

	carts     map[string][]models.CartItem
	purchases []models.Purchase
}

type CartRequest struct {
	BeatID string `json:"beatId" validate:"required"`
}

type CheckoutRequest struct {
	Currency models.Currency `json:"currency" validate:"required,currency"`
}

type CartTotals struct {
	Rub   decimal.Decimal `json:"rub"`
	Usd   decimal.Decimal `json:"usd"`
	Items int             `json:"items"`
}

type CheckoutResult struct {
	Purchases []models.Purchase `json:"purchases"`
	Currency  models.Currency   `json:"currency"`
	Total     decimal.Decimal   `json:"total"`
}

type EarningsSummary struct {
	Rub   decimal.Decimal `json:"rub"`
	Usd   decimal.Decimal `json:"usd"`
	Sales int             `json:"sales"`
}

func NewCartService(p *persister, catalog *CatalogService, identity *IdentityService, log logrus.FieldLogger) *CartService {
	return &CartService{
		p:        p,
		catalog:  catalog,
		identity: identity,
		log:      log.WithField("component", "cart"),
		carts:    make(map[string][]models.CartItem),
	}
}

func (s *CartService) Load(ctx context.Context) {
	s.purchases, _ = loadSlice(ctx, s.p, storage.KeyPurchases, []models.Purchase{})
}

// cart returns the user's cart, reading it from the store on first use.
func (s *CartService) cart(ctx context.Context, userID string) []models.CartItem {
	if items, ok := s.carts[userID]; ok {
		return items
	}
	items, _ := loadSlice(ctx, s.p, storage.CartKey(userID), []models.CartItem{})
	s.carts[userID] = items
	return items
}

func (s *CartService) setCart(ctx context.Context, userID string, items []models.CartItem) {
	s.carts[userID] = items
	s.p.save(ctx, storage.CartKey(userID), items)
}

// DropCartView forgets the in-memory copy of a cart; the stored cart stays.
func (s *CartService) DropCartView(userID string) {
	delete(s.carts, userID)
}

// AddToCart snapshots the beat into the user's cart. Adding a beat that is
// already in the cart or that does not exist changes nothing.
func (s *CartService) AddToCart(ctx context.Context, userID, beatID string) []models.CartItem {
	items := s.cart(ctx, userID)
	for _, item := range items {
		if item.BeatID == beatID {
			return s.Cart(ctx, userID)
		}
	}

	beat, err := s.catalog.GetBeat(beatID)
	if err != nil {
		return s.Cart(ctx, userID)
	}

	items = append(items, models.CartItem{
		BeatID:  beatID,
		Beat:    *beat,
		AddedAt: time.Now().UTC(),
	})
	s.setCart(ctx, userID, items)
	return s.Cart(ctx, userID)
}

func (s *CartService) RemoveFromCart(ctx context.Context, userID, beatID string) []models.CartItem {
	items := s.cart(ctx, userID)
	kept := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		if item.BeatID != beatID {
			kept = append(kept, item)
		}
	}
	if len(kept) != len(items) {
		s.setCart(ctx, userID, kept)
	}
	return s.Cart(ctx, userID)
}

func (s *CartService) ClearCart(ctx context.Context, userID string) {
	s.setCart(ctx, userID, []models.CartItem{})
}

// Cart returns a copy of the user's cart lines.
func (s *CartService) Cart(ctx context.Context, userID string) []models.CartItem {
	items := s.cart(ctx, userID)
	out := make([]models.CartItem, len(items))
	for i, item := range items {
		item.Beat = item.Beat.Clone()
		out[i] = item
	}
	return out
}

func (s *CartService) CartTotal(ctx context.Context, userID string) CartTotals {
	totals := CartTotals{Rub: decimal.Zero, Usd: decimal.Zero}
	for _, item := range s.cart(ctx, userID) {
		totals.Rub = totals.Rub.Add(item.Beat.PriceRub)
		totals.Usd = totals.Usd.Add(item.Beat.PriceUsd)
		totals.Items++
	}
	return totals
}

// Checkout converts the cart into purchases paid in one currency. Balance is
// checked before anything changes, so a failure leaves cart, wallets and
// purchases untouched. Prices come from the cart snapshots.
func (s *CartService) Checkout(ctx context.Context, userID string, currency models.Currency) (*CheckoutResult, error) {
	if !currency.Valid() {
		return nil, fmt.Errorf("%w: unsupported currency %q", ErrValidation, currency)
	}
	buyer, err := s.identity.FindUserByID(userID)
	if err != nil {
		return nil, err
	}

	items := s.cart(ctx, userID)
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Beat.Price(currency))
	}
	if buyer.Balance(currency).LessThan(total) {
		return nil, ErrInsufficientFunds
	}

	now := time.Now().UTC()
	result := &CheckoutResult{Currency: currency, Total: total}
	for _, item := range items {
		purchase := models.Purchase{
			ID:          uuid.NewString(),
			BeatID:      item.BeatID,
			BuyerID:     userID,
			SellerID:    item.Beat.SellerID,
			PriceRub:    item.Beat.PriceRub,
			PriceUsd:    item.Beat.PriceUsd,
			Currency:    currency,
			PurchasedAt: now,
		}
		s.purchases = append(s.purchases, purchase)
		result.Purchases = append(result.Purchases, purchase)

		s.catalog.RecordSale(ctx, item.BeatID)
		rub, usd := split(currency, purchase.Paid())
		s.identity.AdjustWallet(ctx, purchase.SellerID, rub, usd)
	}
	s.p.save(ctx, storage.KeyPurchases, s.purchases)

	rub, usd := split(currency, total.Neg())
	s.identity.AdjustWallet(ctx, userID, rub, usd)
	s.ClearCart(ctx, userID)

	s.log.WithFields(logrus.Fields{
		"buyer_id": userID,
		"items":    len(result.Purchases),
		"total":    total.String(),
		"currency": currency,
	}).Info("Checkout completed")
	return result, nil
}

// split places amount on the side of the given currency.
func split(currency models.Currency, amount decimal.Decimal) (rub, usd decimal.Decimal) {
	if currency == models.CurrencyUSD {
		return decimal.Zero, amount
	}
	return amount, decimal.Zero
}

// BuyerPurchases returns the user's purchases, newest first.
func (s *CartService) BuyerPurchases(buyerID string) []models.Purchase {
	return s.filterPurchases(func(p *models.Purchase) bool { return p.BuyerID == buyerID })
}

func (s *CartService) SellerPurchases(sellerID string) []models.Purchase {
	return s.filterPurchases(func(p *models.Purchase) bool { return p.SellerID == sellerID })
}

func (s *CartService) AllPurchases() []models.Purchase {
	return s.filterPurchases(func(*models.Purchase) bool { return true })
}

func (s *CartService) HasPurchased(userID, beatID string) bool {
	for _, p := range s.purchases {
		if p.BuyerID == userID && p.BeatID == beatID {
			return true
		}
	}
	return false
}

// SellerEarnings sums what buyers paid the seller in each currency.
func (s *CartService) SellerEarnings(sellerID string) EarningsSummary {
	summary := EarningsSummary{Rub: decimal.Zero, Usd: decimal.Zero}
	for _, p := range s.purchases {
		if p.SellerID != sellerID {
			continue
		}
		summary.Sales++
		if p.Currency == models.CurrencyUSD {
			summary.Usd = summary.Usd.Add(p.PriceUsd)
		} else {
			summary.Rub = summary.Rub.Add(p.PriceRub)
		}
	}
	return summary
}

// RemoveBeatEverywhere drops the beat from every stored and loaded cart.
func (s *CartService) RemoveBeatEverywhere(ctx context.Context, beatID string) {
	users := make(map[string]bool)
	for _, key := range s.p.keys(ctx, storage.CartKeyPrefix) {
		users[key[len(storage.CartKeyPrefix):]] = true
	}
	for userID := range s.carts {
		users[userID] = true
	}

	for userID := range users {
		items := s.cart(ctx, userID)
		kept := make([]models.CartItem, 0, len(items))
		for _, item := range items {
			if item.BeatID != beatID {
				kept = append(kept, item)
			}
		}
		if len(kept) != len(items) {
			s.setCart(ctx, userID, kept)
		}
	}
}

func (s *CartService) filterPurchases(keep func(p *models.Purchase) bool) []models.Purchase {
	out := []models.Purchase{}
	for i := range s.purchases {
		if keep(&s.purchases[i]) {
			out = append(out, s.purchases[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PurchasedAt.After(out[j].PurchasedAt)
	})
	return out
}
