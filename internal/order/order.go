package order

import (
	"time"

	"github.com/shopspring/decimal"
)

const StatusPending = "pending"

// DraftItem is one requested line of a draft order.
type DraftItem struct {
	ItemID   int `json:"service_id"`
	Quantity int `json:"qty"`
}

// Draft is the unpriced payload sent by the POS. Customer fields are
// optional; nil and "" both mean a walk-in customer.
type Draft struct {
	CustomerName  *string         `json:"customer_name,omitempty"`
	CustomerPhone *string         `json:"customer_phone,omitempty"`
	Discount      decimal.Decimal `json:"discount"`
	Items         []DraftItem     `json:"items"`
}

// Item is a priced order line as stored by the Order service.
type Item struct {
	ID        int             `json:"id"`
	ItemID    int             `json:"service_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"qty"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Order is the persisted, server-priced record. Its totals are
// authoritative over any locally computed preview.
type Order struct {
	ID            int             `json:"id"`
	CustomerName  *string         `json:"customer_name"`
	CustomerPhone *string         `json:"customer_phone"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Taxable       decimal.Decimal `json:"taxable"`
	VAT           decimal.Decimal `json:"vat"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []Item          `json:"items"`
}
