package store

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/velmoro/tienda/internal/storage/csvfile"
)

// saleColumns is the ordered column layout of the sales resource.
var saleColumns = []string{"saleId", "date", "productId", "quantity", "unitPriceAtSale", "paymentMethod"}

// CSVStore implements SaleStore on top of a CSV file. Appending rewrites
// the full ledger; a mutex serializes the read-modify-write cycle.
type CSVStore struct {
	mu     sync.Mutex
	table  *csvfile.Table
	logger *slog.Logger
}

// NewCSVStore creates a SaleStore backed by the CSV file at path.
func NewCSVStore(path string, logger *slog.Logger) *CSVStore {
	return &CSVStore{
		table:  csvfile.NewTable(path, saleColumns, logger),
		logger: logger.With("component", "sales_store"),
	}
}

// FindAll loads every sale, dropping rows that fail type conversion.
func (s *CSVStore) FindAll(ctx context.Context) ([]Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Append assigns the next sale identifier and persists the full ledger
// including the new record.
func (s *CSVStore) Append(ctx context.Context, sale Sale) (*Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sales, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	sale.ID = nextID(sales)
	sales = append(sales, sale)
	if err := s.persist(sales); err != nil {
		return nil, fmt.Errorf("failed to append sale: %w", err)
	}
	return &sale, nil
}

// load reads and parses the whole ledger. Callers hold the mutex.
func (s *CSVStore) load(ctx context.Context) ([]Sale, error) {
	records, err := s.table.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read sales ledger: %w", err)
	}
	sales := make([]Sale, 0, len(records))
	for i, record := range records {
		sale, err := parseSale(record)
		if err != nil {
			s.logger.WarnContext(ctx, "dropping malformed sale row", "row", i+1, "error", err)
			continue
		}
		sales = append(sales, sale)
	}
	return sales, nil
}

// persist rewrites the whole ledger. Callers hold the mutex.
func (s *CSVStore) persist(sales []Sale) error {
	records := make([][]string, len(sales))
	for i, sale := range sales {
		records[i] = formatSale(sale)
	}
	return s.table.WriteAll(records)
}

func nextID(sales []Sale) int64 {
	var maxID int64
	for _, sale := range sales {
		if sale.ID > maxID {
			maxID = sale.ID
		}
	}
	return maxID + 1
}

func parseSale(record []string) (Sale, error) {
	if len(record) != len(saleColumns) {
		return Sale{}, fmt.Errorf("expected %d columns, got %d", len(saleColumns), len(record))
	}
	id, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return Sale{}, fmt.Errorf("invalid saleId %q: %w", record[0], err)
	}
	productID, err := strconv.ParseInt(record[2], 10, 64)
	if err != nil {
		return Sale{}, fmt.Errorf("invalid productId %q: %w", record[2], err)
	}
	quantity, err := strconv.ParseInt(record[3], 10, 64)
	if err != nil {
		return Sale{}, fmt.Errorf("invalid quantity %q: %w", record[3], err)
	}
	price, err := csvfile.DecimalField(record[4])
	if err != nil {
		return Sale{}, fmt.Errorf("invalid unitPriceAtSale %q: %w", record[4], err)
	}
	return Sale{
		ID:            id,
		Date:          record[1],
		ProductID:     productID,
		Quantity:      quantity,
		UnitPrice:     price,
		PaymentMethod: record[5],
	}, nil
}

func formatSale(sale Sale) []string {
	return []string{
		strconv.FormatInt(sale.ID, 10),
		sale.Date,
		strconv.FormatInt(sale.ProductID, 10),
		strconv.FormatInt(sale.Quantity, 10),
		sale.UnitPrice.String(),
		sale.PaymentMethod,
	}
}
