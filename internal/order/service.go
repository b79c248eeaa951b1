package order

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wichananm65/laundry-pos/internal/catalog"
	"github.com/wichananm65/laundry-pos/internal/pricing"
)

// ErrInvalidDraft wraps every reason a draft is rejected before pricing.
var ErrInvalidDraft = errors.New("invalid order")

// Catalog resolves the items referenced by a draft.
type Catalog interface {
	GetByIDs(ids []int) ([]catalog.Item, error)
}

// Service prices drafts against the current catalog and stores them.
type Service struct {
	repo    Repository
	catalog Catalog
	now     func() time.Time

	// serializes the idempotency lookup with the insert
	mu sync.Mutex
}

func NewService(r Repository, c Catalog) *Service {
	return &Service{repo: r, catalog: c, now: time.Now}
}

func (s *Service) List() ([]Order, error) {
	return s.repo.List()
}

func (s *Service) GetByID(id int) (Order, error) {
	return s.repo.GetByID(id)
}

// Create prices the draft with current catalog prices and persists it.
// A repeated idempotency key returns the order stored the first time.
func (s *Service) Create(d Draft, key string) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key != "" {
		existing, err := s.repo.GetByKey(key)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Order{}, err
		}
	}

	ord, err := s.price(d)
	if err != nil {
		return Order{}, err
	}
	return s.repo.Create(ord, key)
}

func (s *Service) price(d Draft) (Order, error) {
	if len(d.Items) == 0 {
		return Order{}, fmt.Errorf("%w: items cannot be empty", ErrInvalidDraft)
	}
	if d.Discount.IsNegative() {
		return Order{}, fmt.Errorf("%w: discount must be non-negative", ErrInvalidDraft)
	}

	// merge repeated ids, keeping first-seen order
	qty := map[int]int{}
	ids := make([]int, 0, len(d.Items))
	for _, it := range d.Items {
		if it.Quantity < 1 {
			return Order{}, fmt.Errorf("%w: qty for service %d must be at least 1", ErrInvalidDraft, it.ItemID)
		}
		if _, seen := qty[it.ItemID]; !seen {
			ids = append(ids, it.ItemID)
		}
		qty[it.ItemID] += it.Quantity
	}

	found, err := s.catalog.GetByIDs(ids)
	if err != nil {
		return Order{}, err
	}
	byID := make(map[int]catalog.Item, len(found))
	for _, it := range found {
		byID[it.ID] = it
	}

	items := make([]Item, 0, len(ids))
	lines := make([]pricing.Line, 0, len(ids))
	for _, id := range ids {
		ci, ok := byID[id]
		if !ok {
			return Order{}, fmt.Errorf("%w: unknown service %d", ErrInvalidDraft, id)
		}
		if !ci.IsActive {
			return Order{}, fmt.Errorf("%w: service %d is inactive", ErrInvalidDraft, id)
		}
		price := pricing.Round2(ci.BasePrice)
		items = append(items, Item{
			ItemID:    id,
			Name:      ci.Name,
			UnitPrice: price,
			Quantity:  qty[id],
			LineTotal: pricing.LineTotal(price, qty[id]),
		})
		lines = append(lines, pricing.Line{UnitPrice: price, Quantity: qty[id]})
	}

	// money is stored to the cent, so the discount is rounded before pricing
	totals := pricing.Compute(lines, pricing.Round2(d.Discount))
	return Order{
		CustomerName:  normalizeOptional(d.CustomerName),
		CustomerPhone: normalizeOptional(d.CustomerPhone),
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		Taxable:       totals.Taxable,
		VAT:           totals.VAT,
		Total:         totals.Total,
		Status:        StatusPending,
		CreatedAt:     s.now().UTC(),
		Items:         items,
	}, nil
}

// normalizeOptional maps blank strings to nil so walk-in customers are
// stored the same way whether the field was omitted or left empty.
func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

