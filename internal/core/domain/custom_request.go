package domain

import "time"

// CustomRequest is a write-once request for a product not in the catalog.
type CustomRequest struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Product   string    `json:"product"`
	Category  string    `json:"category,omitempty"`
	Details   string    `json:"details,omitempty"`
	Image     ImageRef  `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
}
