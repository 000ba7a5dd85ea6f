package domain

import "time"

// Brand represents a product brand.
type Brand struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Category represents a product category.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ProductSize is one purchasable size of a product. Available is the sole
// gate for whether the size can be added to a cart.
type ProductSize struct {
	Size      int  `json:"size"`
	Available bool `json:"available"`
}

// Product is the catalog entity as stored. Prices are integer minor units
// (cents) everywhere; there is no floating-point money in the system.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Care        string    `json:"care"`
	PriceCents  int64     `json:"price_cents"`
	ImageURL    string    `json:"image_url"`
	BrandID     int64     `json:"brand_id"`
	CategoryID  int64     `json:"category_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProductView is the read-shaped projection returned to callers: brand and
// category names resolved, gallery and features and sizes hydrated as
// ordered lists.
type ProductView struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Slug        string        `json:"slug"`
	Description string        `json:"description"`
	Care        string        `json:"care"`
	PriceCents  int64         `json:"price_cents"`
	ImageURL    string        `json:"image_url"`
	Brand       string        `json:"brand"`
	Category    string        `json:"category"`
	Gallery     []string      `json:"gallery"`
	Features    []string      `json:"features"`
	Sizes       []ProductSize `json:"sizes"`
	CreatedAt   time.Time     `json:"created_at"`
}

// HasAvailableSize reports whether the product carries an available size
// entry for the given size number.
func (p *ProductView) HasAvailableSize(size int) bool {
	for _, s := range p.Sizes {
		if s.Size == size && s.Available {
			return true
		}
	}
	return false
}
