package catalog

import "github.com/shopspring/decimal"

// Item is a sellable service in the catalog (e.g. "Wash & Fold") and maps
// to the `services` table. JSON tags follow the snake_case API contract.
type Item struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	BasePrice decimal.Decimal `json:"base_price"`
	Unit      string          `json:"unit"`
	IsActive  bool            `json:"is_active"`
}

// Ref is the read-only snapshot of an item captured when it is added to a
// cart. Later catalog edits never reach an open cart.
type Ref struct {
	ID        int
	Name      string
	UnitPrice decimal.Decimal
	IsActive  bool
}

// Ref snapshots the fields the cart needs.
func (i Item) Ref() Ref {
	return Ref{ID: i.ID, Name: i.Name, UnitPrice: i.BasePrice, IsActive: i.IsActive}
}

const (
	DefaultCategory = "General"
	DefaultUnit     = "piece"
)
