package domain

import "time"

// Restaurant is a place whose dishes can be reviewed.
type Restaurant struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Description *string   `json:"description,omitempty"`
	ImageKey    *string   `json:"image_key,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsOwnedBy reports whether userID created the restaurant.
func (r *Restaurant) IsOwnedBy(userID string) bool {
	return userID != "" && r.CreatedBy == userID
}
