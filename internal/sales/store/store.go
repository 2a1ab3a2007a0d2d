// Package store provides the persisted, append-only sales ledger.
package store

import (
	"context"

	"github.com/shopspring/decimal"
)

// Sale is a ledger record as persisted in the sales CSV resource.
// UnitPrice is the price captured at transaction time; it is decoupled from
// the product's current price so history stays accurate.
type Sale struct {
	ID            int64
	Date          string
	ProductID     int64
	Quantity      int64
	UnitPrice     decimal.Decimal
	PaymentMethod string
}

// SaleStore owns the sales ledger's persisted state. The ledger is
// append-only: no update or delete operation exists.
type SaleStore interface {
	// FindAll loads every sale from the backing resource. Rows that fail
	// type conversion are dropped with a logged warning, and a resource
	// that does not exist yet yields an empty ledger, not an error.
	FindAll(ctx context.Context) ([]Sale, error)

	// Append assigns the next sale identifier (max existing + 1, starting
	// at 1), appends the record and persists the full ledger. The returned
	// sale carries the assigned ID.
	Append(ctx context.Context, sale Sale) (*Sale, error)
}
