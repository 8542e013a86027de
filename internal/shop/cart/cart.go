// Package cart holds the shopper's in-progress selection and keeps it in
// sync with client-local storage.
package cart

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nordmart/storefront/internal/shop/storage"
)

// Line is a single cart entry. UnitPrice is in minor currency units.
type Line struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// Item identifies a product being added to the cart.
type Item struct {
	ProductID int64
	Name      string
	UnitPrice int64
}

// Cart is a session-scoped cart backed by a Store. Every mutation persists
// synchronously before returning.
type Cart struct {
	mu    sync.Mutex
	lines []Line
	store storage.Store
}

// New loads the persisted cart from the store. Absent or unparsable state
// yields an empty cart rather than an error.
func New(store storage.Store) *Cart {
	c := &Cart{store: store}
	if store == nil {
		return c
	}
	data, err := store.Get(storage.KeyCart)
	if err != nil {
		return c
	}
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return c
	}
	c.lines = lines
	return c
}

// Add merges the item into the cart, incrementing the quantity when a line
// for the same product already exists.
func (c *Cart) Add(item Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == item.ProductID {
			c.lines[i].Quantity++
			return c.persist()
		}
	}
	c.lines = append(c.lines, Line{
		ProductID: item.ProductID,
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		Quantity:  1,
	})
	return c.persist()
}

// Remove drops the line for the product. Removing an absent product is a
// no-op.
func (c *Cart) Remove(productID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return c.persist()
		}
	}
	return nil
}

// SetQuantity replaces the quantity of the matching line. The value is
// accepted as given; the display layer bounds it, this store does not.
func (c *Cart) SetQuantity(productID int64, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity = quantity
			return c.persist()
		}
	}
	return nil
}

// Lines returns a copy of the cart contents in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...)
}

// Total sums quantity times unit price over all lines.
func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, line := range c.lines {
		total += line.UnitPrice * int64(line.Quantity)
	}
	return total
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// Clear removes every line and the persisted state.
func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	if c.store == nil {
		return nil
	}
	if err := c.store.Delete(storage.KeyCart); err != nil {
		return fmt.Errorf("cart: clear: %w", err)
	}
	return nil
}

func (c *Cart) persist() error {
	if c.store == nil {
		return nil
	}
	data, err := json.Marshal(c.lines)
	if err != nil {
		return fmt.Errorf("cart: encode: %w", err)
	}
	if err := c.store.Set(storage.KeyCart, data); err != nil {
		return fmt.Errorf("cart: persist: %w", err)
	}
	return nil
}
