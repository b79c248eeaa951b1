package cart

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/laundry-pos/internal/catalog"
	"github.com/wichananm65/laundry-pos/internal/pricing"
)

func ref(id int, price int64) catalog.Ref {
	return catalog.Ref{ID: id, Name: "svc", UnitPrice: decimal.NewFromInt(price), IsActive: true}
}

func ids(lines []Line) []int {
	out := make([]int, len(lines))
	for i, l := range lines {
		out[i] = l.ItemID
	}
	return out
}

func TestAdd_NewestFirstAndIncrement(t *testing.T) {
	s := NewStore()
	s.Add(ref(1, 500))
	s.Add(ref(2, 300))
	s.Add(ref(1, 500))

	lines := s.Lines()
	if got := ids(lines); !reflect.DeepEqual(got, []int{2, 1}) {
		t.Fatalf("expected order [2 1], got %v", got)
	}
	if lines[1].Quantity != 2 || lines[0].Quantity != 1 {
		t.Fatalf("unexpected quantities %+v", lines)
	}
}

func TestAdd_SnapshotsPrice(t *testing.T) {
	s := NewStore()
	s.Add(ref(1, 500))
	// catalog price changed afterwards; the open cart keeps the old price
	s.Add(ref(1, 900))
	if l := s.Lines()[0]; !l.UnitPrice.Equal(decimal.NewFromInt(500)) || l.Quantity != 2 {
		t.Fatalf("expected price snapshot 500 qty 2, got %+v", l)
	}
}

func TestAdd_InactiveIgnored(t *testing.T) {
	s := NewStore()
	r := ref(1, 100)
	r.IsActive = false
	s.Add(r)
	if s.Len() != 0 {
		t.Fatalf("inactive item must not be added")
	}
}

func TestSetQuantity_Clamps(t *testing.T) {
	s := NewStore()
	s.Add(ref(1, 100))
	for _, q := range []int{0, -1, -100} {
		s.SetQuantity(1, q)
		lines := s.Lines()
		if len(lines) != 1 || lines[0].Quantity != 1 {
			t.Fatalf("quantity %d: expected line kept with qty 1, got %+v", q, lines)
		}
	}
	s.SetQuantity(1, 7)
	if s.Lines()[0].Quantity != 7 {
		t.Fatalf("expected qty 7")
	}
	// unknown id is a no-op
	s.SetQuantity(42, 3)
	if s.Len() != 1 {
		t.Fatalf("unexpected line created")
	}
}

func TestRemove_Idempotent(t *testing.T) {
	once := NewStore()
	twice := NewStore()
	for _, s := range []*Store{once, twice} {
		s.Add(ref(1, 100))
		s.Add(ref(2, 200))
		s.Add(ref(3, 300))
	}
	once.Remove(2)
	twice.Remove(2)
	twice.Remove(2)

	if !reflect.DeepEqual(once.Lines(), twice.Lines()) {
		t.Fatalf("remove twice differs from once: %+v vs %+v", once.Lines(), twice.Lines())
	}
	if got := ids(once.Lines()); !reflect.DeepEqual(got, []int{3, 1}) {
		t.Fatalf("unexpected remaining lines %v", got)
	}
}

func TestClear_ResetsDiscount(t *testing.T) {
	s := NewStore()
	s.Add(ref(1, 100))
	s.SetDiscount(decimal.NewFromInt(30))
	s.Clear()
	if s.Len() != 0 || !s.Discount().IsZero() {
		t.Fatalf("expected empty cart and zero discount, got %d lines discount %s", s.Len(), s.Discount())
	}
}

func TestDiscount_StoredRawClampedOnRead(t *testing.T) {
	s := NewStore()
	s.Add(ref(1, 100))
	s.SetDiscount(decimal.NewFromInt(250))

	if !s.Discount().Equal(decimal.NewFromInt(250)) {
		t.Fatalf("raw discount must be stored unclamped, got %s", s.Discount())
	}
	if p := s.Preview(); !p.Discount.Equal(decimal.NewFromInt(100)) || !p.Total.IsZero() {
		t.Fatalf("expected clamped preview, got %+v", p)
	}

	// raising the subtotal unlocks more of the stored discount
	s.SetQuantity(1, 3)
	if p := s.Preview(); !p.Discount.Equal(decimal.NewFromInt(250)) || !p.Taxable.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected full discount applied, got %+v", p)
	}
}

func TestSubscribe_SeesLatestMutation(t *testing.T) {
	s := NewStore()
	var seen []string
	cancel := s.Subscribe(func(p pricing.Preview) {
		seen = append(seen, p.Subtotal.String())
	})

	s.Add(ref(1, 500))
	s.Add(ref(1, 500))
	s.Add(ref(2, 300))
	s.SetQuantity(2, 1) // unchanged, no notification
	s.Remove(1)

	want := []string{"500", "1000", "1300", "300"}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("expected previews %v, got %v", want, seen)
	}

	cancel()
	s.Clear()
	if len(seen) != len(want) {
		t.Fatalf("unsubscribed callback still invoked")
	}
}

func TestLineTotal(t *testing.T) {
	l := Line{UnitPrice: decimal.RequireFromString("12.50"), Quantity: 4}
	if !l.LineTotal().Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected 50, got %s", l.LineTotal())
	}
}
