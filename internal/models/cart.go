// internal/models/cart.go
package models

import "time"

// CartItem keeps a snapshot of the beat taken when it was added.
type CartItem struct {
	BeatID  string    `json:"beatId"`
	Beat    Beat      `json:"beat"`
	AddedAt time.Time `json:"addedAt"`
}
