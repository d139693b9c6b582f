package model

import "time"

// Item is a user-owned record. Only the owner may update or delete it;
// any authenticated user may read it.
type Item struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsOwnedBy reports whether the item belongs to the given user.
func (i *Item) IsOwnedBy(userID int64) bool {
	return i.OwnerID == userID
}
