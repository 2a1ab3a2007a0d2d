package store

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	cerrors "github.com/velmoro/tienda/internal/catalog/errors"
	"github.com/velmoro/tienda/internal/storage/csvfile"
)

// productColumns is the ordered column layout of the products resource.
var productColumns = []string{"id", "name", "category", "unitPrice", "stock", "unit"}

// CSVStore implements ProductStore on top of a CSV file. Every mutation
// rewrites the whole collection; a mutex serializes read-modify-write
// cycles so the store can be shared by multiple goroutines.
type CSVStore struct {
	mu     sync.Mutex
	table  *csvfile.Table
	logger *slog.Logger
}

// NewCSVStore creates a ProductStore backed by the CSV file at path.
func NewCSVStore(path string, logger *slog.Logger) *CSVStore {
	return &CSVStore{
		table:  csvfile.NewTable(path, productColumns, logger),
		logger: logger.With("component", "catalog_store"),
	}
}

// FindAll loads every product, dropping rows that fail type conversion.
func (s *CSVStore) FindAll(ctx context.Context) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// FindByID retrieves a product by its identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *CSVStore) FindByID(ctx context.Context, id int64) (*Product, error) {
	products, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, cerrors.ErrProductNotFound
}

// Create assigns the next identifier and rewrites the collection including
// the new record.
func (s *CSVStore) Create(ctx context.Context, draft Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	draft.ID = nextID(products)
	products = append(products, draft)
	if err := s.persist(products); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &draft, nil
}

// Update applies the patch to the matching product and rewrites the
// collection. A missing target is not exceptional: (false, nil).
func (s *CSVStore) Update(ctx context.Context, id int64, patch ProductPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	found := false
	for i := range products {
		if products[i].ID != id {
			continue
		}
		applyPatch(&products[i], patch)
		found = true
		break
	}
	if !found {
		return false, nil
	}
	if err := s.persist(products); err != nil {
		return false, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return true, nil
}

// UpdateStock replaces the stock quantity of a product. The catalog never
// persists a negative stock.
func (s *CSVStore) UpdateStock(ctx context.Context, id int64, stock int64) (bool, error) {
	if stock < 0 {
		return false, fmt.Errorf("stock must not be negative, got %d", stock)
	}
	return s.Update(ctx, id, ProductPatch{Stock: &stock})
}

// Delete removes the matching product and rewrites the collection.
// A missing target is not exceptional: (false, nil).
func (s *CSVStore) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	kept := products[:0]
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(products) {
		return false, nil
	}
	if err := s.persist(kept); err != nil {
		return false, fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return true, nil
}

// load reads and parses the whole catalog. Callers hold the mutex.
func (s *CSVStore) load(ctx context.Context) ([]Product, error) {
	records, err := s.table.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read product catalog: %w", err)
	}
	products := make([]Product, 0, len(records))
	for i, record := range records {
		p, err := parseProduct(record)
		if err != nil {
			s.logger.WarnContext(ctx, "dropping malformed product row", "row", i+1, "error", err)
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// persist rewrites the whole catalog. Callers hold the mutex.
func (s *CSVStore) persist(products []Product) error {
	records := make([][]string, len(products))
	for i, p := range products {
		records[i] = formatProduct(p)
	}
	return s.table.WriteAll(records)
}

func nextID(products []Product) int64 {
	var maxID int64
	for _, p := range products {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	return maxID + 1
}

func applyPatch(p *Product, patch ProductPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.UnitPrice != nil {
		p.UnitPrice = *patch.UnitPrice
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Unit != nil {
		p.Unit = *patch.Unit
	}
}

func parseProduct(record []string) (Product, error) {
	if len(record) != len(productColumns) {
		return Product{}, fmt.Errorf("expected %d columns, got %d", len(productColumns), len(record))
	}
	id, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return Product{}, fmt.Errorf("invalid id %q: %w", record[0], err)
	}
	price, err := csvfile.DecimalField(record[3])
	if err != nil {
		return Product{}, fmt.Errorf("invalid unitPrice %q: %w", record[3], err)
	}
	stock, err := csvfile.IntField(record[4])
	if err != nil {
		return Product{}, fmt.Errorf("invalid stock %q: %w", record[4], err)
	}
	return Product{
		ID:        id,
		Name:      record[1],
		Category:  record[2],
		UnitPrice: price,
		Stock:     stock,
		Unit:      record[5],
	}, nil
}

func formatProduct(p Product) []string {
	return []string{
		strconv.FormatInt(p.ID, 10),
		p.Name,
		p.Category,
		p.UnitPrice.String(),
		strconv.FormatInt(p.Stock, 10),
		p.Unit,
	}
}
