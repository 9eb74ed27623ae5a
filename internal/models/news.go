// internal/models/news.go
package models

import "time"

type NewsItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Text        string    `json:"text,omitempty"`
	ImageURL    string    `json:"imageUrl"`
	Category    string    `json:"category"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"createdAt"`
}
