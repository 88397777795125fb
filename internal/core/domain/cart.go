package domain

import "time"

// CartLine is a (product, quantity) pair. Quantity is always > 0 once stored.
type CartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart is the per-user shopping cart. A user owns at most one cart.
type Cart struct {
	OwnerID   int64      `json:"-"`
	Lines     []CartLine `json:"lines"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Line returns the line for productID, if present.
func (c *Cart) Line(productID string) (CartLine, bool) {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return CartLine{}, false
}

// SetLine creates or overwrites the line for productID.
func (c *Cart) SetLine(productID string, quantity int) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity = quantity
			return
		}
	}
	c.Lines = append(c.Lines, CartLine{ProductID: productID, Quantity: quantity})
}

// RemoveLine deletes the line for productID. It reports whether a line was removed.
func (c *Cart) RemoveLine(productID string) bool {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the cart.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	out.Lines = append([]CartLine(nil), c.Lines...)
	return &out
}
