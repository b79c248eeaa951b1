// Package cart holds the operator's open cart. The store never fails: bad
// quantities are clamped and unknown ids are ignored.
package cart

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/laundry-pos/internal/catalog"
	"github.com/wichananm65/laundry-pos/internal/pricing"
)

// Line is one catalog item in the cart. UnitPrice is the price captured
// when the item was first added.
type Line struct {
	ItemID    int
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// LineTotal is UnitPrice × Quantity.
func (l Line) LineTotal() decimal.Decimal {
	return pricing.LineTotal(l.UnitPrice, l.Quantity)
}

// Store keeps lines most-recently-added first and a raw discount. The
// discount is stored as entered; pricing clamps it when totals are read.
type Store struct {
	mu       sync.Mutex
	lines    []Line
	discount decimal.Decimal

	// held across mutate+notify so subscribers observe mutations in order
	notifyMu sync.Mutex
	subs     map[int]func(pricing.Preview)
	nextSub  int
}

func NewStore() *Store {
	return &Store{subs: map[int]func(pricing.Preview){}}
}

// Subscribe registers fn to receive a fresh preview after every mutation.
// fn must not mutate the store. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(pricing.Preview)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Add increments the line for ref, or inserts it at the front with
// quantity 1. Inactive catalog items are ignored.
func (s *Store) Add(ref catalog.Ref) {
	if !ref.IsActive {
		return
	}
	s.mutate(func() bool {
		for i := range s.lines {
			if s.lines[i].ItemID == ref.ID {
				s.lines[i].Quantity++
				return true
			}
		}
		line := Line{ItemID: ref.ID, Name: ref.Name, UnitPrice: ref.UnitPrice, Quantity: 1}
		s.lines = append([]Line{line}, s.lines...)
		return true
	})
}

// SetQuantity sets the line quantity, clamped to at least 1.
func (s *Store) SetQuantity(itemID, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	s.mutate(func() bool {
		for i := range s.lines {
			if s.lines[i].ItemID == itemID {
				if s.lines[i].Quantity == quantity {
					return false
				}
				s.lines[i].Quantity = quantity
				return true
			}
		}
		return false
	})
}

func (s *Store) Remove(itemID int) {
	s.mutate(func() bool {
		for i := range s.lines {
			if s.lines[i].ItemID == itemID {
				s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
				return true
			}
		}
		return false
	})
}

// Clear empties the cart and resets the discount. Only call it once an
// order has been accepted.
func (s *Store) Clear() {
	s.mutate(func() bool {
		s.lines = nil
		s.discount = decimal.Zero
		return true
	})
}

func (s *Store) SetDiscount(value decimal.Decimal) {
	s.mutate(func() bool {
		s.discount = value
		return true
	})
}

// Lines returns a copy of the current lines.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Discount returns the raw stored discount.
func (s *Store) Discount() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discount
}

// Snapshot returns the lines and raw discount read together.
func (s *Store) Snapshot() ([]Line, decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out, s.discount
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Preview prices the current cart.
func (s *Store) Preview() pricing.Preview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previewLocked()
}

func (s *Store) previewLocked() pricing.Preview {
	lines := make([]pricing.Line, len(s.lines))
	for i, l := range s.lines {
		lines[i] = pricing.Line{UnitPrice: l.UnitPrice, Quantity: l.Quantity}
	}
	return pricing.Compute(lines, s.discount)
}

// mutate applies fn and, when it reports a change, pushes the new preview
// to subscribers before the next mutation can start.
func (s *Store) mutate(fn func() bool) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	changed := fn()
	if !changed || len(s.subs) == 0 {
		s.mu.Unlock()
		return
	}
	preview := s.previewLocked()
	subs := make([]func(pricing.Preview), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(preview)
	}
}
