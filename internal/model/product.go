package model

import (
	"time"
)

// Brand is pre-existing reference data a product belongs to.
type Brand struct {
	ID          int64
	Name        string
	CountryCode string
}

// Category is pre-existing reference data a product is filed under.
type Category struct {
	ID   int64
	Name string
}

// Product represents a catalog product with its brand and categories.
type Product struct {
	ID             int64
	Name           string
	Rating         float64
	Featured       bool
	CreatedAt      time.Time
	ExpirationDate *time.Time
	ReceiptDate    *time.Time
	Brand          Brand
	Categories     []Category
	ItemsInStock   int
}

// InitMeta initializes the server-assigned creation timestamp at the precision PostgreSQL stores.
func (p *Product) InitMeta() {
	p.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
}

// CategoryIDs returns the ids of the product categories in their current order.
func (p *Product) CategoryIDs() []int64 {
	ids := make([]int64, 0, len(p.Categories))
	for _, c := range p.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}
