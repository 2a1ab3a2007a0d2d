// Package service provides the implementation of sales business logic: the
// only place where sale-to-product consistency is enforced.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	cstore "github.com/velmoro/tienda/internal/catalog/store"
	serrors "github.com/velmoro/tienda/internal/sales/errors"
	"github.com/velmoro/tienda/internal/sales/store"
	"github.com/shopspring/decimal"
)

// dateLayout is how sale dates are persisted: ISO-8601 with seconds
// precision and no zone.
const dateLayout = "2006-01-02T15:04:05"

// defaultTopLimit bounds TopSellers when the caller passes no limit.
const defaultTopLimit = 10

// SalesService defines the methods for recording sales and reporting on
// the ledger.
type SalesService interface {
	// FindAll returns every sale in the ledger in insertion order.
	FindAll(ctx context.Context) ([]SaleDto, error)

	// RecordSale validates the request against the current catalog, appends
	// the sale to the ledger and decrements the product's stock.
	// Returns ErrProductNotFound, ErrInvalidQuantity or an
	// InsufficientStockError for user-correctable conditions.
	RecordSale(ctx context.Context, req SaleRequest) (*SaleDto, error)

	// TotalFor computes sum(quantity * unitPrice) over the items, rounded
	// to 2 decimal places. A malformed item makes the whole total zero.
	TotalFor(items []SaleItem) decimal.Decimal

	// TopSellers aggregates sold quantity per product across the whole
	// ledger and returns the top entries, best seller first.
	TopSellers(ctx context.Context, limit int) ([]ProductSales, error)

	// Summary reports total revenue and per-product quantity, optionally
	// restricted to the inclusive [from, to] date range.
	Summary(ctx context.Context, from, to string) (*SalesSummary, error)
}

// Service implements SalesService. It depends on the catalog's ProductStore
// to validate referenced products and to persist stock decrements.
type Service struct {
	ledger  store.SaleStore
	catalog cstore.ProductStore
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a new instance of SalesService with the provided stores.
func NewService(ledger store.SaleStore, catalog cstore.ProductStore, logger *slog.Logger) *Service {
	return &Service{
		ledger:  ledger,
		catalog: catalog,
		logger:  logger.With("component", "sales_service"),
		now:     time.Now,
	}
}

// SaleRequest carries caller input for a new sale. Date defaults to the
// current time and UnitPrice to the product's current price when absent.
type SaleRequest struct {
	ProductID     int64            `json:"product_id" validate:"required,min=1"`
	Quantity      int64            `json:"quantity" validate:"required"`
	Date          string           `json:"date,omitempty"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	PaymentMethod string           `json:"payment_method,omitempty"`
}

// SaleDto represents a ledger record as exposed to callers.
type SaleDto struct {
	ID            int64           `json:"id"`
	Date          string          `json:"date"`
	ProductID     int64           `json:"product_id"`
	Quantity      int64           `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	PaymentMethod string          `json:"payment_method"`
}

// SaleItem is one line of a draft sale used by TotalFor.
type SaleItem struct {
	ProductID int64           `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// ProductSales is one TopSellers entry.
type ProductSales struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// SalesSummary aggregates the ledger: total revenue and quantity sold per
// product.
type SalesSummary struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	QuantityByProduct map[int64]int64 `json:"quantity_by_product"`
}

// FindAll retrieves every sale and returns them as SaleDtos.
func (s *Service) FindAll(ctx context.Context) ([]SaleDto, error) {
	sales, err := s.ledger.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales: %w", err)
	}
	saleDtos := make([]SaleDto, len(sales))
	for i, item := range sales {
		saleDtos[i] = *toDto(&item)
	}
	return saleDtos, nil
}

// RecordSale appends a validated sale to the ledger, then decrements the
// product's stock. The stock write is best-effort: a failure after the
// ledger write leaves the sale recorded against stale stock and is logged,
// not rolled back.
func (s *Service) RecordSale(ctx context.Context, req SaleRequest) (*SaleDto, error) {
	product, err := s.catalog.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity %d: %w", req.Quantity, serrors.ErrInvalidQuantity)
	}
	if req.Quantity > product.Stock {
		stockErr := &serrors.InsufficientStockError{Available: product.Stock, Requested: req.Quantity}
		s.logger.WarnContext(ctx, "insufficient stock for sale",
			"product_id", product.ID, "available", product.Stock, "requested", req.Quantity)
		return nil, stockErr
	}

	date := req.Date
	if date == "" {
		date = s.now().Format(dateLayout)
	}
	price := product.UnitPrice
	if req.UnitPrice != nil {
		price = *req.UnitPrice
	}

	created, err := s.ledger.Append(ctx, store.Sale{
		Date:          date,
		ProductID:     product.ID,
		Quantity:      req.Quantity,
		UnitPrice:     price,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}

	// The sale is durable at this point. If the stock write fails the
	// ledger is not compensated; the gap is logged for reconciliation.
	updated, err := s.catalog.UpdateStock(ctx, product.ID, product.Stock-req.Quantity)
	if err != nil || !updated {
		s.logger.ErrorContext(ctx, "sale recorded but stock update failed",
			"sale_id", created.ID, "product_id", product.ID, "error", err)
	}

	s.logger.InfoContext(ctx, "sale recorded",
		"sale_id", created.ID, "product_id", product.ID, "quantity", created.Quantity)
	return toDto(created), nil
}

// TotalFor computes sum(quantity * unitPrice) rounded to 2 decimal places.
// A negative quantity or price marks the batch malformed: the total is zero.
func (s *Service) TotalFor(items []SaleItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Quantity < 0 || item.UnitPrice.IsNegative() {
			return decimal.Zero
		}
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity)))
	}
	return total.Round(2)
}

// TopSellers aggregates sold quantity per product, sorted descending by
// quantity. Ties keep the order in which the product first appears in the
// ledger, so the result is deterministic for a given ledger. A limit of
// zero or less falls back to the default of 10.
func (s *Service) TopSellers(ctx context.Context, limit int) ([]ProductSales, error) {
	if limit <= 0 {
		limit = defaultTopLimit
	}
	sales, err := s.ledger.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales: %w", err)
	}

	totals := make(map[int64]int64)
	order := make([]int64, 0)
	for _, sale := range sales {
		if _, seen := totals[sale.ProductID]; !seen {
			order = append(order, sale.ProductID)
		}
		totals[sale.ProductID] += sale.Quantity
	}

	ranking := make([]ProductSales, len(order))
	for i, productID := range order {
		ranking[i] = ProductSales{ProductID: productID, Quantity: totals[productID]}
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Quantity > ranking[j].Quantity
	})
	if len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking, nil
}

// Summary sums revenue (quantity * price at sale) and tallies quantity per
// product. When a date bound is given, only sales whose date parses and
// falls inside the inclusive range count; sales with unparsable dates are
// skipped. With no bounds every sale counts regardless of its date field.
func (s *Service) Summary(ctx context.Context, from, to string) (*SalesSummary, error) {
	fromTime, toTime, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}
	filtered := fromTime != nil || toTime != nil

	sales, err := s.ledger.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales: %w", err)
	}

	total := decimal.Zero
	byProduct := make(map[int64]int64)
	for _, sale := range sales {
		if filtered {
			saleTime, err := parseDate(sale.Date)
			if err != nil {
				continue
			}
			if fromTime != nil && saleTime.Before(*fromTime) {
				continue
			}
			if toTime != nil && saleTime.After(*toTime) {
				continue
			}
		}
		total = total.Add(sale.UnitPrice.Mul(decimal.NewFromInt(sale.Quantity)))
		byProduct[sale.ProductID] += sale.Quantity
	}
	return &SalesSummary{
		TotalRevenue:      total.Round(2),
		QuantityByProduct: byProduct,
	}, nil
}

// toDto converts a store.Sale to a SaleDto.
func toDto(sale *store.Sale) *SaleDto {
	return &SaleDto{
		ID:            sale.ID,
		Date:          sale.Date,
		ProductID:     sale.ProductID,
		Quantity:      sale.Quantity,
		UnitPrice:     sale.UnitPrice,
		PaymentMethod: sale.PaymentMethod,
	}
}

// dateLayouts are the accepted ISO-8601 shapes, tried in order.
var dateLayouts = []string{dateLayout, time.RFC3339, "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseRange parses the optional bounds. A date-only upper bound is pushed
// to the end of that day so the range stays inclusive.
func parseRange(from, to string) (*time.Time, *time.Time, error) {
	var fromTime, toTime *time.Time
	if from != "" {
		t, err := parseDate(from)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid from date %q: %w", from, err)
		}
		fromTime = &t
	}
	if to != "" {
		t, err := parseDate(to)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid to date %q: %w", to, err)
		}
		if isDateOnly(to) {
			t = t.Add(24*time.Hour - time.Second)
		}
		toTime = &t
	}
	if fromTime != nil && toTime != nil && fromTime.After(*toTime) {
		return nil, nil, errors.New("from date is after to date")
	}
	return fromTime, toTime, nil
}

func isDateOnly(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
