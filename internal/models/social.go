// internal/models/social.go
package models

import "time"

// Friend is a friendship edge. UserID sent the request, FriendID received it.
type Friend struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	FriendID  string       `json:"friendId"`
	Status    FriendStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Involves reports whether userID is either end of the edge.
func (f *Friend) Involves(userID string) bool {
	return f.UserID == userID || f.FriendID == userID
}

// Other returns the end of the edge that is not userID.
func (f *Friend) Other(userID string) string {
	if f.UserID == userID {
		return f.FriendID
	}
	return f.UserID
}

// Connects reports whether the edge joins a and b in either direction.
func (f *Friend) Connects(a, b string) bool {
	return (f.UserID == a && f.FriendID == b) || (f.UserID == b && f.FriendID == a)
}

type Collaboration struct {
	ID            string    `json:"id"`
	BeatID        string    `json:"beatId"`
	Collaborators []string  `json:"collaborators"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (c *Collaboration) Includes(userID string) bool {
	for _, id := range c.Collaborators {
		if id == userID {
			return true
		}
	}
	return false
}

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	SenderID  string           `json:"senderId,omitempty"`
	RelatedID string           `json:"relatedId,omitempty"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}
