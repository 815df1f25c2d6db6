package domain

import (
	"math"
	"strings"
	"time"
)

// Product is a catalog entry.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	Image     ImageRef  `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsFinite reports whether f is neither NaN nor an infinity. Non-finite
// amounts cannot be encoded as JSON.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Validate checks the invariants every stored product must hold.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return Invalid("name", "name is required")
	}
	if !IsFinite(p.Price) || p.Price < 0 {
		return Invalid("price", "price must be a non-negative number")
	}
	if p.Stock < 0 {
		return Invalid("stock", "stock must be a non-negative integer")
	}
	if _, err := NewImageRef(p.Image.URL, p.Image.Handle); err != nil {
		return err
	}
	return nil
}
