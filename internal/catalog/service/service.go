// Package service provides the implementation of catalog business logic.
package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/velmoro/tienda/internal/catalog/store"
	"github.com/shopspring/decimal"
)

// CatalogService defines the methods for managing the product catalog.
type CatalogService interface {
	// FindAll returns every product in the catalog.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// FindByID retrieves a single product by its identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*ProductDto, error)

	// Create adds a new product to the catalog and returns it with its
	// assigned identifier.
	Create(ctx context.Context, draft ProductCreateDto) (*ProductDto, error)

	// Update applies a partial update to an existing product.
	// Returns false if no product exists with the given ID.
	Update(ctx context.Context, id int64, patch ProductUpdateDto) (bool, error)

	// Delete removes a product by its ID.
	// Returns false if no product exists with the given ID.
	Delete(ctx context.Context, id int64) (bool, error)
}

// Service implements CatalogService on top of a ProductStore.
type Service struct {
	repository store.ProductStore
}

// NewService creates a new instance of CatalogService with the provided repository.
func NewService(repo store.ProductStore) *Service {
	return &Service{
		repository: repo,
	}
}

// ProductCreateDto carries caller input for a new product. Numeric fields
// arrive as text (they come from form or flag input): a missing or invalid
// value is coerced to zero rather than rejected.
type ProductCreateDto struct {
	Name      string `json:"name" validate:"max=100"`
	Category  string `json:"category" validate:"max=100"`
	UnitPrice string `json:"unit_price"`
	Stock     string `json:"stock"`
	Unit      string `json:"unit" validate:"max=20"`
}

// ProductUpdateDto is a partial update: only non-nil fields are applied,
// with the same text-to-number coercion as ProductCreateDto.
type ProductUpdateDto struct {
	Name      *string `json:"name,omitempty"`
	Category  *string `json:"category,omitempty"`
	UnitPrice *string `json:"unit_price,omitempty"`
	Stock     *string `json:"stock,omitempty"`
	Unit      *string `json:"unit,omitempty"`
}

// ProductDto represents a catalog record as exposed to callers.
type ProductDto struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Stock     int64           `json:"stock"`
	Unit      string          `json:"unit"`
}

// FindAll retrieves every product and returns them as ProductDtos.
func (s *Service) FindAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDtos := make([]ProductDto, len(products))
	for i, item := range products {
		productDtos[i] = *toDto(&item)
	}
	return productDtos, nil
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id int64) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}
	return toDto(product), nil
}

// Create normalizes the draft (trimmed strings, parse-or-zero numerics) and
// stores it. The returned ProductDto carries the assigned identifier.
func (s *Service) Create(ctx context.Context, draft ProductCreateDto) (*ProductDto, error) {
	product, err := s.repository.Create(ctx, store.Product{
		Name:      strings.TrimSpace(draft.Name),
		Category:  strings.TrimSpace(draft.Category),
		UnitPrice: decimalOrZero(draft.UnitPrice),
		Stock:     intOrZero(draft.Stock),
		Unit:      strings.TrimSpace(draft.Unit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return toDto(product), nil
}

// Update applies the patch to an existing product.
// Returns false if no product exists with the given ID.
func (s *Service) Update(ctx context.Context, id int64, patch ProductUpdateDto) (bool, error) {
	storePatch := store.ProductPatch{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		storePatch.Name = &name
	}
	if patch.Category != nil {
		category := strings.TrimSpace(*patch.Category)
		storePatch.Category = &category
	}
	if patch.UnitPrice != nil {
		price := decimalOrZero(*patch.UnitPrice)
		storePatch.UnitPrice = &price
	}
	if patch.Stock != nil {
		stock := intOrZero(*patch.Stock)
		storePatch.Stock = &stock
	}
	if patch.Unit != nil {
		unit := strings.TrimSpace(*patch.Unit)
		storePatch.Unit = &unit
	}
	updated, err := s.repository.Update(ctx, id, storePatch)
	if err != nil {
		return false, fmt.Errorf("failed to update product with ID %d: %w", id, err)
	}
	return updated, nil
}

// Delete removes a product by its ID.
// Returns false if no product exists with the given ID.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.repository.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete product with ID %d: %w", id, err)
	}
	return deleted, nil
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:        product.ID,
		Name:      product.Name,
		Category:  product.Category,
		UnitPrice: product.UnitPrice,
		Stock:     product.Stock,
		Unit:      product.Unit,
	}
}

// decimalOrZero converts caller-supplied text to a decimal, falling back to
// zero on missing or unparsable input.
func decimalOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// intOrZero converts caller-supplied text to an integer, falling back to
// zero on missing or unparsable input.
func intOrZero(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
