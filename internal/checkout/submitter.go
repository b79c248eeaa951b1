// Package checkout turns the open cart into an order on the Order service.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/laundry-pos/internal/apiclient"
	"github.com/wichananm65/laundry-pos/internal/cart"
	"github.com/wichananm65/laundry-pos/internal/order"
	"github.com/wichananm65/laundry-pos/internal/pricing"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrSubmissionBusy = errors.New("an order submission is already in progress")
)

// SubmissionError reports a failed call to the Order service. Status is
// the HTTP status, or 0 when no response was received.
type SubmissionError struct {
	Status  int
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	return e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Customer is optional order metadata. nil means not provided.
type Customer struct {
	Name  *string
	Phone *string
}

// OrderCreator is implemented by *apiclient.Client.
type OrderCreator interface {
	CreateOrder(ctx context.Context, d order.Draft, idempotencyKey string) (order.Order, error)
}

// Submitter sends the cart to the Order service, one submission at a time.
type Submitter struct {
	cart   *cart.Store
	orders OrderCreator
	logger *zap.Logger
	newKey func() string

	inFlight atomic.Bool

	mu   sync.RWMutex
	last *order.Order

	// key and draft of the last failed attempt; reused while the draft is
	// unchanged so a retry after a lost response is deduplicated
	pendingKey   string
	pendingDraft order.Draft
}

func NewSubmitter(c *cart.Store, orders OrderCreator, logger *zap.Logger) *Submitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Submitter{cart: c, orders: orders, logger: logger, newKey: uuid.NewString}
}

// Preview is the locally computed, non-authoritative totals of the cart.
func (s *Submitter) Preview() pricing.Preview {
	return s.cart.Preview()
}

// Last returns the most recent order accepted by the Order service.
func (s *Submitter) Last() (order.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return order.Order{}, false
	}
	return *s.last, true
}

// Busy reports whether a submission is in flight.
func (s *Submitter) Busy() bool {
	return s.inFlight.Load()
}

// Submit sends the cart as a draft order. On success the server's order
// becomes Last and the cart is cleared. On any error the cart is left
// exactly as it was.
func (s *Submitter) Submit(ctx context.Context, customer Customer) (order.Order, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return order.Order{}, ErrSubmissionBusy
	}
	defer s.inFlight.Store(false)

	draft, ok := s.draft(customer)
	if !ok {
		return order.Order{}, ErrEmptyCart
	}

	key := s.keyFor(draft)
	created, err := s.orders.CreateOrder(ctx, draft, key)
	if err != nil {
		s.mu.Lock()
		s.pendingKey, s.pendingDraft = key, draft
		s.mu.Unlock()
		serr := toSubmissionError(err)
		s.logger.Warn("order submission failed",
			zap.Int("status", serr.Status),
			zap.String("message", serr.Message),
			zap.String("idempotency_key", key),
		)
		return order.Order{}, serr
	}

	s.mu.Lock()
	s.last = &created
	s.pendingKey, s.pendingDraft = "", order.Draft{}
	s.mu.Unlock()
	s.cart.Clear()

	s.logger.Info("order submitted",
		zap.Int("order_id", created.ID),
		zap.String("total", created.Total.StringFixed(2)),
		zap.String("idempotency_key", key),
	)
	return created, nil
}

func (s *Submitter) draft(customer Customer) (order.Draft, bool) {
	lines, discount := s.cart.Snapshot()
	if len(lines) == 0 {
		return order.Draft{}, false
	}
	items := make([]order.DraftItem, len(lines))
	for i, l := range lines {
		items[i] = order.DraftItem{ItemID: l.ItemID, Quantity: l.Quantity}
	}
	// the cart keeps what was typed; a draft never carries a negative discount
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return order.Draft{
		CustomerName:  copyOptional(customer.Name),
		CustomerPhone: copyOptional(customer.Phone),
		Discount:      discount,
		Items:         items,
	}, true
}

// keyFor reuses the failed attempt's key for an identical draft and
// issues a new one otherwise.
func (s *Submitter) keyFor(d order.Draft) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingKey != "" && sameDraft(s.pendingDraft, d) {
		return s.pendingKey
	}
	return s.newKey()
}

func sameDraft(a, b order.Draft) bool {
	if !sameOptional(a.CustomerName, b.CustomerName) || !sameOptional(a.CustomerPhone, b.CustomerPhone) {
		return false
	}
	if !a.Discount.Equal(b.Discount) || len(a.Items) != len(b.Items) {
		return false
	}
	for i := range a.Items {
		if a.Items[i] != b.Items[i] {
			return false
		}
	}
	return true
}

func copyOptional(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func sameOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func toSubmissionError(err error) *SubmissionError {
	var se *apiclient.StatusError
	if errors.As(err, &se) {
		msg := strings.TrimSpace(se.Body)
		if msg == "" {
			msg = fmt.Sprintf("failed to create order (%d)", se.Status)
		}
		return &SubmissionError{Status: se.Status, Message: msg, Err: err}
	}
	return &SubmissionError{Message: err.Error(), Err: err}
}
