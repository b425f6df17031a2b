// Package cart implements the per-session shopping cart.
package cart

import (
	"encoding/json"
	"sync"

	"cicli-volante/internal/domain"
	"cicli-volante/internal/pricing"

	"github.com/shopspring/decimal"
)

// Snapshot is the product data copied into the cart when an item is added.
// Later catalog edits never reprice an open cart.
type Snapshot struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Price            decimal.Decimal `json:"price"`
	Image            string          `json:"image"`
	Category         domain.Category `json:"category"`
	ShortDescription string          `json:"shortDescription"`
}

// SnapshotOf copies the cart-relevant fields of p
func SnapshotOf(p *domain.Product) Snapshot {
	return Snapshot{
		ID:               p.ID,
		Name:             p.Name,
		Price:            p.Price,
		Image:            p.MainImage,
		Category:         p.Category,
		ShortDescription: p.ShortDescription,
	}
}

// Line is one product and its quantity
type Line struct {
	Product  Snapshot `json:"product"`
	Quantity int      `json:"quantity"`
}

// Subtotal returns price times quantity
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds at most one line per product id. The zero value is not usable;
// create carts with New.
type Cart struct {
	mu    sync.Mutex
	order []int64
	lines map[int64]*Line
}

// New returns an empty cart
func New() *Cart {
	return &Cart{lines: make(map[int64]*Line)}
}

// AddItem adds quantity units of the product, merging into an existing
// line. Quantities below 1 add a single unit.
func (c *Cart) AddItem(product Snapshot, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if line, ok := c.lines[product.ID]; ok {
		line.Quantity += quantity
		return
	}
	c.lines[product.ID] = &Line{Product: product, Quantity: quantity}
	c.order = append(c.order, product.ID)
}

// UpdateQuantity sets the quantity of a line; zero or less removes it.
// Unknown product ids are ignored.
func (c *Cart) UpdateQuantity(productID int64, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line, ok := c.lines[productID]
	if !ok {
		return
	}
	if quantity <= 0 {
		c.removeLocked(productID)
		return
	}
	line.Quantity = quantity
}

// RemoveItem deletes the line for productID if present
func (c *Cart) RemoveItem(productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(productID)
}

func (c *Cart) removeLocked(productID int64) {
	if _, ok := c.lines[productID]; !ok {
		return
	}
	delete(c.lines, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = make(map[int64]*Line)
	c.order = nil
}

// Total is the sum of snapshot price times quantity over all lines
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Quote applies the shipping rule to the cart total
func (c *Cart) Quote() pricing.Quote {
	return pricing.QuoteFor(c.Total())
}

// Lines returns a copy of the lines in the order they were first added
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		lines = append(lines, *c.lines[id])
	}
	return lines
}

// Len returns the number of distinct products
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// ItemCount returns the number of units across all lines
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

// OrderLines converts the cart into the items payload of an order submission
func (c *Cart) OrderLines() []domain.OrderLine {
	lines := c.Lines()
	items := make([]domain.OrderLine, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.OrderLine{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
		})
	}
	return items
}

// MarshalJSON encodes the lines in insertion order
func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Lines())
}

// UnmarshalJSON replaces the cart content. Lines with a quantity below 1
// are dropped and repeated products are merged.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}

	c.Clear()
	for _, line := range lines {
		if line.Quantity < 1 {
			continue
		}
		c.AddItem(line.Product, line.Quantity)
	}
	return nil
}
