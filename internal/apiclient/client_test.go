package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/laundry-pos/internal/order"
)

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.Write([]byte(`{"status":"ok"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", nil, nil)
	status, err := c.Health(context.Background())
	if err != nil || status != "ok" {
		t.Fatalf("expected ok, got %q %v", status, err)
	}
}

func TestHealth_NonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>proxy</html>"))
	}))
	defer srv.Close()

	status, err := NewClient(srv.URL, nil, nil).Health(context.Background())
	if err != nil || status != "" {
		t.Fatalf("expected empty status without error, got %q %v", status, err)
	}
}

func TestListServices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"name":"Wash & Fold","category":"General","base_price":200,"unit":"kg","is_active":true},
			{"id":2,"name":"Old","category":"General","base_price":"99.50","unit":"piece","is_active":false}]`))
	}))
	defer srv.Close()

	items, err := NewClient(srv.URL, nil, nil).ListServices(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || !items[1].BasePrice.Equal(decimal.RequireFromString("99.5")) || items[1].IsActive {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestCreateOrder(t *testing.T) {
	var gotKey string
	var gotDraft order.Draft
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotKey = r.Header.Get(order.IdempotencyKeyHeader)
		json.NewDecoder(r.Body).Decode(&gotDraft)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":5,"subtotal":1300,"discount":200,"taxable":1100,"vat":176,"total":1276,"status":"pending","items":[]}`))
	}))
	defer srv.Close()

	ord, err := NewClient(srv.URL, nil, nil).CreateOrder(context.Background(), order.Draft{
		Discount: decimal.NewFromInt(200),
		Items:    []order.DraftItem{{ItemID: 1, Quantity: 2}},
	}, "k-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ord.ID != 5 || !ord.Total.Equal(decimal.NewFromInt(1276)) {
		t.Fatalf("unexpected order %+v", ord)
	}
	if gotKey != "k-1" {
		t.Fatalf("expected idempotency key to be sent, got %q", gotKey)
	}
	if len(gotDraft.Items) != 1 || gotDraft.Items[0].Quantity != 2 || gotDraft.CustomerName != nil {
		t.Fatalf("unexpected draft on the wire %+v", gotDraft)
	}
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"unknown service 9"}` + "\n"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil, nil).CreateOrder(context.Background(), order.Draft{}, "")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %T %v", err, err)
	}
	if se.Status != http.StatusUnprocessableEntity || se.Body != `{"message":"unknown service 9"}` {
		t.Fatalf("unexpected status error %+v", se)
	}
}

func TestContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewClient(srv.URL, nil, nil).Health(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
