// Package cart is the shopper-side cart engine. It keeps the selection in
// local storage between runs and hands a structured checkout request to the
// order API.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/artistgrade/storefront/internal/core/domain"
)

// StorageKey names the persisted cart entry.
const StorageKey = "storefront.cart"

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrCheckoutFailed = errors.New("checkout failed")
)

// Product is what the catalog shows the shopper.
type Product struct {
	ID    string
	Name  string
	Price float64
}

// CheckoutDetails is what the shopper enters on the checkout form.
type CheckoutDetails struct {
	Customer      domain.Customer
	TransactionID string
}

// CheckoutRequest is the body of POST /api/orders.
type CheckoutRequest struct {
	domain.Customer
	TransactionID string            `json:"transactionId"`
	CartItems     []domain.LineItem `json:"cartItems"`
	TotalAmount   float64           `json:"totalAmount"`
}

// Submitter delivers a checkout to the order API and returns the order id.
type Submitter interface {
	Submit(ctx context.Context, req CheckoutRequest) (string, error)
}

type snapshot struct {
	Items []domain.LineItem `json:"items"`
	Count int               `json:"count"`
}

// Cart holds line items in insertion order, at most one line per product.
type Cart struct {
	mu        sync.Mutex
	items     []domain.LineItem
	storage   Storage
	submitter Submitter
	log       zerolog.Logger

	placeholder        bool
	placeholderRenders int
}

// New restores the cart from storage. An unreadable entry is discarded.
func New(storage Storage, submitter Submitter, log zerolog.Logger) *Cart {
	c := &Cart{storage: storage, submitter: submitter, log: log}
	c.restore()
	if len(c.items) == 0 {
		c.showPlaceholder()
	}
	return c
}

func (c *Cart) restore() {
	raw, err := c.storage.Load(StorageKey)
	if err != nil {
		if !errors.Is(err, ErrNotStored) {
			c.log.Warn().Err(err).Msg("cart storage unreadable")
		}
		return
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil || !validItems(snap.Items) {
		c.log.Warn().Msg("discarding corrupt cart entry")
		_ = c.storage.Remove(StorageKey)
		return
	}
	c.items = snap.Items
}

func validItems(items []domain.LineItem) bool {
	for _, it := range items {
		if it.ProductID == "" || it.Quantity < 1 || it.Price < 0 || !domain.IsFinite(it.Price) {
			return false
		}
	}
	return true
}

// AddItem adds qty units of p, merging with an existing line. qty below 1
// counts as 1.
func (c *Cart) AddItem(p Product, qty int) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("cart: product id is required")
	}
	if !domain.IsFinite(p.Price) || p.Price < 0 {
		return fmt.Errorf("cart: invalid price for product %s", p.ID)
	}
	if qty < 1 {
		qty = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	merged := false
	for i := range c.items {
		if c.items[i].ProductID == p.ID {
			c.items[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		c.items = append(c.items, domain.LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  qty,
		})
	}
	c.placeholder = false
	return c.persist()
}

// RemoveItem drops the line for productID. Emptying the cart removes the
// stored entry and shows the empty-state placeholder.
func (c *Cart) RemoveItem(productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i := range c.items {
		if c.items[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)

	if len(c.items) == 0 {
		c.showPlaceholder()
		return c.storage.Remove(StorageKey)
	}
	return c.persist()
}

// Items returns a copy of the lines.
func (c *Cart) Items() []domain.LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.LineItem(nil), c.items...)
}

// Count is the total quantity across lines.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count()
}

func (c *Cart) count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.SumLineItems(c.items).Round(2)
}

// PlaceholderShown reports whether the empty-state placeholder is on screen.
func (c *Cart) PlaceholderShown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.placeholder
}

// PlaceholderRenders counts how many times the placeholder was drawn.
func (c *Cart) PlaceholderRenders() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.placeholderRenders
}

// Checkout submits the cart. An empty cart fails with ErrEmptyCart without
// calling the submitter. A failed submission leaves the cart as it was.
func (c *Cart) Checkout(ctx context.Context, details CheckoutDetails) (string, error) {
	c.mu.Lock()
	if len(c.items) == 0 {
		c.mu.Unlock()
		return "", ErrEmptyCart
	}
	req := CheckoutRequest{
		Customer:      details.Customer,
		TransactionID: details.TransactionID,
		CartItems:     append([]domain.LineItem(nil), c.items...),
		TotalAmount:   domain.SumLineItems(c.items).Round(2).InexactFloat64(),
	}
	c.mu.Unlock()

	orderID, err := c.submitter.Submit(ctx, req)
	if err != nil {
		c.log.Warn().Err(err).Msg("checkout failed, cart kept")
		return "", fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.showPlaceholder()
	if err := c.storage.Remove(StorageKey); err != nil {
		c.log.Warn().Err(err).Msg("clear cart storage after checkout")
	}
	return orderID, nil
}

func (c *Cart) showPlaceholder() {
	if c.placeholder {
		return
	}
	c.placeholder = true
	c.placeholderRenders++
}

func (c *Cart) persist() error {
	raw, err := json.Marshal(snapshot{Items: c.items, Count: c.count()})
	if err != nil {
		return fmt.Errorf("cart: encode: %w", err)
	}
	if err := c.storage.Save(StorageKey, raw); err != nil {
		return fmt.Errorf("cart: save: %w", err)
	}
	return nil
}
