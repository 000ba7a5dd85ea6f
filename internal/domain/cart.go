package domain

import "time"

// Cart is the per-session cart document. It is stored and replaced as a
// whole; Version supports optimistic concurrency on save.
type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []CartLine `json:"items"`
	Version   int        `json:"version"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartLine is one (product, size, quantity) entry within a session's cart.
// At most one line exists per (product, size) pair.
type CartLine struct {
	ID        string    `json:"id"`
	ProductID int64     `json:"product_id"`
	Size      int       `json:"size"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// CartLineView joins a line with its product's current name, price, and
// image at read time, so catalog changes show up retroactively.
type CartLineView struct {
	ID         string `json:"id"`
	ProductID  int64  `json:"product_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	ImageURL   string `json:"image_url"`
	Size       int    `json:"size"`
	Quantity   int    `json:"quantity"`
}

// FindLineIndex returns the index of the line matching (productID, size),
// or -1 if none exists.
func (c *Cart) FindLineIndex(productID int64, size int) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].Size == size {
			return i
		}
	}
	return -1
}

// FindLineByID returns the index of the line with the given ID, or -1.
func (c *Cart) FindLineByID(id string) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// RemoveLineAt deletes the line at index i, preserving order.
func (c *Cart) RemoveLineAt(i int) {
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

// ItemCount returns the total quantity across all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}
