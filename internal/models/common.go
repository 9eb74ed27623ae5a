// internal/models/common.go
package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices and wallets travel as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Enums
type UserRole string

const (
	RoleBuyer  UserRole = "buyer"
	RoleSeller UserRole = "seller"
	RoleAdmin  UserRole = "admin"
)

type Currency string

const (
	CurrencyRUB Currency = "RUB"
	CurrencyUSD Currency = "USD"
)

func (c Currency) Valid() bool {
	return c == CurrencyRUB || c == CurrencyUSD
}

// ParseCurrency accepts any casing and defaults to RUB.
func ParseCurrency(s string) (Currency, bool) {
	switch Currency(strings.ToUpper(strings.TrimSpace(s))) {
	case CurrencyRUB, "":
		return CurrencyRUB, true
	case CurrencyUSD:
		return CurrencyUSD, true
	default:
		return "", false
	}
}

type FriendStatus string

const (
	FriendStatusPending  FriendStatus = "pending"
	FriendStatusAccepted FriendStatus = "accepted"
	FriendStatusRejected FriendStatus = "rejected"
)

type NotificationType string

const (
	NotificationFriendRequest       NotificationType = "friend_request"
	NotificationFriendAccepted      NotificationType = "friend_accepted"
	NotificationFriendRejected      NotificationType = "friend_rejected"
	NotificationCollaborationInvite NotificationType = "collaboration_invite"
)

// MusicalKeys lists every key a beat may declare.
var MusicalKeys = []string{
	"C", "Cm", "C#", "C#m",
	"D", "Dm", "D#", "D#m",
	"E", "Em",
	"F", "Fm", "F#", "F#m",
	"G", "Gm", "G#", "G#m",
	"A", "Am", "A#", "A#m",
	"B", "Bm",
}

var Genres = []string{
	"Trap", "Hip-Hop", "R&B", "Pop", "Electronic",
	"Lo-Fi", "Drill", "Reggaeton", "Afrobeat", "Rock",
}

var PopularTags = []string{
	"dark", "melodic", "hard", "chill", "emotional",
	"aggressive", "summer", "oldschool", "808", "sample",
	"guitar", "piano", "synth", "minimal", "ambient",
}

func IsMusicalKey(key string) bool {
	for _, k := range MusicalKeys {
		if k == key {
			return true
		}
	}
	return false
}
