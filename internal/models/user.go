// internal/models/user.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// User is the persisted account record, password hash included.
type User struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"passwordHash"`
	Role         UserRole        `json:"role"`
	Name         string          `json:"name"`
	Avatar       string          `json:"avatar,omitempty"`
	Bio          string          `json:"bio,omitempty"`
	WalletRub    decimal.Decimal `json:"walletRub"`
	WalletUsd    decimal.Decimal `json:"walletUsd"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// PublicUser is what the API exposes about a user.
type PublicUser struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Role      UserRole        `json:"role"`
	Name      string          `json:"name"`
	Avatar    string          `json:"avatar,omitempty"`
	Bio       string          `json:"bio,omitempty"`
	WalletRub decimal.Decimal `json:"walletRub"`
	WalletUsd decimal.Decimal `json:"walletUsd"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (u *User) SetPassword(password string, cost int) error {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) Balance(currency Currency) decimal.Decimal {
	if currency == CurrencyUSD {
		return u.WalletUsd
	}
	return u.WalletRub
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		Name:      u.Name,
		Avatar:    u.Avatar,
		Bio:       u.Bio,
		WalletRub: u.WalletRub,
		WalletUsd: u.WalletUsd,
		CreatedAt: u.CreatedAt,
	}
}
