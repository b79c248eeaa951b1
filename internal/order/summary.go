package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary is the daily activity shown on the dashboard.
type Summary struct {
	Orders  int
	Revenue decimal.Decimal
}

// Summarize counts the orders created on the same calendar day as day, in
// day's location, and sums their totals.
func Summarize(orders []Order, day time.Time) Summary {
	y, m, d := day.Date()
	loc := day.Location()
	sum := Summary{Revenue: decimal.Zero}
	for _, o := range orders {
		oy, om, od := o.CreatedAt.In(loc).Date()
		if oy != y || om != m || od != d {
			continue
		}
		sum.Orders++
		sum.Revenue = sum.Revenue.Add(o.Total)
	}
	return sum
}
