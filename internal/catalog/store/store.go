// Package store provides the persisted product catalog.
package store

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is a catalog record as persisted in the products CSV resource.
type Product struct {
	ID        int64
	Name      string
	Category  string
	UnitPrice decimal.Decimal
	Stock     int64
	Unit      string
}

// ProductPatch is a partial update: only non-nil fields are applied.
type ProductPatch struct {
	Name      *string
	Category  *string
	UnitPrice *decimal.Decimal
	Stock     *int64
	Unit      *string
}

// ProductStore is the sole authority over the product catalog's persisted
// state. It abstracts the underlying resource, allowing for different
// implementations (e.g., in-memory, CSV file).
type ProductStore interface {
	// FindAll loads every product from the backing resource. Rows that fail
	// type conversion are dropped with a logged warning, and a resource that
	// does not exist yet yields an empty catalog, not an error.
	FindAll(ctx context.Context) ([]Product, error)

	// FindByID retrieves a single product by its identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Product, error)

	// Create assigns the next identifier (max existing + 1, starting at 1),
	// appends the record and rewrites the collection. The returned product
	// carries the assigned ID.
	Create(ctx context.Context, draft Product) (*Product, error)

	// Update applies the patch to the product with the given ID and rewrites
	// the collection. Returns false (and no error) if no such product exists.
	Update(ctx context.Context, id int64, patch ProductPatch) (bool, error)

	// UpdateStock replaces the stock quantity of a product and rewrites the
	// collection. Returns false (and no error) if no such product exists.
	UpdateStock(ctx context.Context, id int64, stock int64) (bool, error)

	// Delete removes the product with the given ID and rewrites the
	// collection. Returns false (and no error) if no such product exists.
	Delete(ctx context.Context, id int64) (bool, error)
}
