package domain

// CartLine is one product-quantity pairing in a session's cart.
// Prices are minor units (cents). StockAtAdd records the catalog stock seen
// when the line was added, for the UI's quantity clamp.
type CartLine struct {
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	Name       string `json:"name"`
	UnitPrice  int64  `json:"unit_price"`
	ImageURL   string `json:"image_url,omitempty"`
	StockAtAdd int    `json:"stock_at_add"`
}

// Cart holds one browser session's cart lines in insertion order.
// At most one line exists per product ID.
type Cart struct {
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
}

// TotalAmount is the total price of all lines (in cents).
func (c *Cart) TotalAmount() int64 {
	var total int64
	for _, line := range c.Lines {
		total += line.UnitPrice * int64(line.Quantity)
	}
	return total
}

// LineCount returns the total number of units across all lines.
func (c *Cart) LineCount() int {
	var count int
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// FindLineIndex returns the index of the line for the given product ID,
// or -1 if the product is not in the cart.
func (c *Cart) FindLineIndex(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}
