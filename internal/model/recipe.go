package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe represents a recipe owned by exactly one user.
//
// UserID is set at creation from the authenticated caller and is immutable
// afterwards — the service layer ignores any attempt to change it. It is
// deliberately excluded from JSON: the owner is implied by whose token made
// the request, and echoing it would leak nothing useful but invite clients
// to try setting it.
//
// WHY decimal.Decimal FOR PRICE?
// Money must round-trip exactly. float64 cannot represent 5.99, so a value
// stored through a float would read back as 5.99000000000000021. The decimal
// type keeps an exact base-10 representation with 2 fractional digits, and
// serializes to JSON as the string "5.99" — the same wire shape a decimal
// field has in most API frameworks.
type Recipe struct {
	ID          string          `json:"id"`
	UserID      string          `json:"-"`
	Title       string          `json:"title"`
	Description string          `json:"description"` // optional, default empty
	TimeMinutes int             `json:"time_minutes"`
	Price       decimal.Decimal `json:"price"`
	Link        string          `json:"link"` // optional URL, default empty
	CreatedAt   time.Time       `json:"-"`
	UpdatedAt   time.Time       `json:"-"`
}
