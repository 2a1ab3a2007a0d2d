// Package cli provides the terminal front end: flag parsing, input
// validation and rendering. It is pure glue over the catalog and sales
// services and holds no invariants of its own.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	cerrors "github.com/velmoro/tienda/internal/catalog/errors"
	cservice "github.com/velmoro/tienda/internal/catalog/service"
	serrors "github.com/velmoro/tienda/internal/sales/errors"
	sservice "github.com/velmoro/tienda/internal/sales/service"
	"github.com/shopspring/decimal"
)

const usage = `Usage:
  tienda product list
  tienda product add    -name NAME [-category C] [-price P] [-stock N] [-unit U]
  tienda product update -id ID [-name NAME] [-category C] [-price P] [-stock N] [-unit U]
  tienda product delete -id ID
  tienda sale record    -product ID -quantity N [-price P] [-date ISO8601] [-payment M]
  tienda sale list
  tienda sale total     ITEM...        (each ITEM is productId:quantity:unitPrice)
  tienda report top     [-limit N]
  tienda report summary [-from ISO8601] [-to ISO8601]
`

type Handler struct {
	catalog  cservice.CatalogService
	sales    sservice.SalesService
	validate *validator.Validate
	logger   *slog.Logger
	out      io.Writer
	topLimit int
}

// NewHandler creates a CLI handler writing human-readable output to out.
func NewHandler(catalog cservice.CatalogService, sales sservice.SalesService, logger *slog.Logger, out io.Writer, topLimit int) *Handler {
	return &Handler{
		catalog:  catalog,
		sales:    sales,
		validate: validator.New(),
		logger:   logger.With("component", "cli"),
		out:      out,
		topLimit: topLimit,
	}
}

// Run dispatches one invocation. User-correctable conditions are rendered
// as messages and returned as errors so the process exits non-zero.
func (h *Handler) Run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		fmt.Fprint(h.out, usage)
		return errors.New("missing command")
	}
	group, command := args[0], args[1]
	rest := args[2:]

	switch group + " " + command {
	case "product list":
		return h.productList(ctx)
	case "product add":
		return h.productAdd(ctx, rest)
	case "product update":
		return h.productUpdate(ctx, rest)
	case "product delete":
		return h.productDelete(ctx, rest)
	case "sale record":
		return h.saleRecord(ctx, rest)
	case "sale list":
		return h.saleList(ctx)
	case "sale total":
		return h.saleTotal(rest)
	case "report top":
		return h.reportTop(ctx, rest)
	case "report summary":
		return h.reportSummary(ctx, rest)
	default:
		fmt.Fprint(h.out, usage)
		return fmt.Errorf("unknown command %q", group+" "+command)
	}
}

func (h *Handler) productList(ctx context.Context) error {
	products, err := h.catalog.FindAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list products", "error", err)
		return err
	}
	w := tabwriter.NewWriter(h.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tUNIT")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n", p.ID, p.Name, p.Category, p.UnitPrice.StringFixed(2), p.Stock, p.Unit)
	}
	return w.Flush()
}

func (h *Handler) productAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("product add", flag.ContinueOnError)
	fs.SetOutput(h.out)
	draft := cservice.ProductCreateDto{}
	fs.StringVar(&draft.Name, "name", "", "product name")
	fs.StringVar(&draft.Category, "category", "", "product category")
	fs.StringVar(&draft.UnitPrice, "price", "", "unit price")
	fs.StringVar(&draft.Stock, "stock", "", "initial stock")
	fs.StringVar(&draft.Unit, "unit", "", "unit of measure")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := h.validateStruct(ctx, draft); err != nil {
		return err
	}
	created, err := h.catalog.Create(ctx, draft)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create product", "error", err)
		return err
	}
	fmt.Fprintf(h.out, "Product %d created: %s\n", created.ID, created.Name)
	return nil
}

func (h *Handler) productUpdate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("product update", flag.ContinueOnError)
	fs.SetOutput(h.out)
	id := fs.Int64("id", 0, "product id")
	name := fs.String("name", "", "product name")
	category := fs.String("category", "", "product category")
	price := fs.String("price", "", "unit price")
	stock := fs.String("stock", "", "stock")
	unit := fs.String("unit", "", "unit of measure")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return errors.New("a positive -id is required")
	}

	// Only flags the caller actually set become part of the patch.
	patch := cservice.ProductUpdateDto{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			patch.Name = name
		case "category":
			patch.Category = category
		case "price":
			patch.UnitPrice = price
		case "stock":
			patch.Stock = stock
		case "unit":
			patch.Unit = unit
		}
	})

	updated, err := h.catalog.Update(ctx, *id, patch)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to update product", "id", *id, "error", err)
		return err
	}
	if !updated {
		fmt.Fprintf(h.out, "Product %d not found.\n", *id)
		return cerrors.ErrProductNotFound
	}
	fmt.Fprintf(h.out, "Product %d updated.\n", *id)
	return nil
}

func (h *Handler) productDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("product delete", flag.ContinueOnError)
	fs.SetOutput(h.out)
	id := fs.Int64("id", 0, "product id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return errors.New("a positive -id is required")
	}
	deleted, err := h.catalog.Delete(ctx, *id)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to delete product", "id", *id, "error", err)
		return err
	}
	if !deleted {
		fmt.Fprintf(h.out, "Product %d not found.\n", *id)
		return cerrors.ErrProductNotFound
	}
	fmt.Fprintf(h.out, "Product %d deleted.\n", *id)
	return nil
}

func (h *Handler) saleRecord(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sale record", flag.ContinueOnError)
	fs.SetOutput(h.out)
	productID := fs.Int64("product", 0, "product id")
	quantity := fs.Int64("quantity", 0, "quantity sold")
	price := fs.String("price", "", "unit price at sale (defaults to the product's price)")
	date := fs.String("date", "", "sale date, ISO-8601 (defaults to now)")
	payment := fs.String("payment", "", "payment method")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := sservice.SaleRequest{
		ProductID:     *productID,
		Quantity:      *quantity,
		Date:          *date,
		PaymentMethod: *payment,
	}
	if *price != "" {
		p, err := decimal.NewFromString(*price)
		if err != nil {
			return fmt.Errorf("invalid -price %q: %w", *price, err)
		}
		req.UnitPrice = &p
	}
	if err := h.validateStruct(ctx, req); err != nil {
		return err
	}

	sale, err := h.sales.RecordSale(ctx, req)
	if err != nil {
		return h.renderSaleError(ctx, err, req)
	}
	fmt.Fprintf(h.out, "Sale %d recorded: product %d x%d at %s.\n",
		sale.ID, sale.ProductID, sale.Quantity, sale.UnitPrice.StringFixed(2))
	return nil
}

// renderSaleError translates domain results into user-facing messages.
func (h *Handler) renderSaleError(ctx context.Context, err error, req sservice.SaleRequest) error {
	var stockErr *serrors.InsufficientStockError
	switch {
	case errors.Is(err, cerrors.ErrProductNotFound):
		fmt.Fprintf(h.out, "Product %d not found.\n", req.ProductID)
	case errors.Is(err, serrors.ErrInvalidQuantity):
		fmt.Fprintf(h.out, "Invalid quantity %d.\n", req.Quantity)
	case errors.As(err, &stockErr):
		fmt.Fprintf(h.out, "Insufficient stock. Available: %d\n", stockErr.Available)
	default:
		h.logger.ErrorContext(ctx, "failed to record sale", "error", err)
		fmt.Fprintln(h.out, "Failed to save the sale.")
	}
	return err
}

func (h *Handler) saleList(ctx context.Context) error {
	sales, err := h.sales.FindAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list sales", "error", err)
		return err
	}
	w := tabwriter.NewWriter(h.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tPRODUCT\tQTY\tPRICE\tPAYMENT")
	for _, s := range sales {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\t%s\n", s.ID, s.Date, s.ProductID, s.Quantity, s.UnitPrice.StringFixed(2), s.PaymentMethod)
	}
	return w.Flush()
}

// saleTotal computes the total for a draft sale given as
// productId:quantity:unitPrice arguments.
func (h *Handler) saleTotal(args []string) error {
	if len(args) == 0 {
		return errors.New("at least one productId:quantity:unitPrice item is required")
	}
	items := make([]sservice.SaleItem, 0, len(args))
	for _, arg := range args {
		item, err := parseSaleItem(arg)
		if err != nil {
			return err
		}
		items = append(items, item)
	}
	total := h.sales.TotalFor(items)
	fmt.Fprintf(h.out, "Total: %s\n", total.StringFixed(2))
	return nil
}

func (h *Handler) reportTop(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report top", flag.ContinueOnError)
	fs.SetOutput(h.out)
	limit := fs.Int("limit", h.topLimit, "number of entries")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ranking, err := h.sales.TopSellers(ctx, *limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build top sellers report", "error", err)
		return err
	}
	w := tabwriter.NewWriter(h.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tQUANTITY SOLD")
	for _, entry := range ranking {
		fmt.Fprintf(w, "%d\t%d\n", entry.ProductID, entry.Quantity)
	}
	return w.Flush()
}

func (h *Handler) reportSummary(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report summary", flag.ContinueOnError)
	fs.SetOutput(h.out)
	from := fs.String("from", "", "start date, inclusive")
	to := fs.String("to", "", "end date, inclusive")
	if err := fs.Parse(args); err != nil {
		return err
	}
	summary, err := h.sales.Summary(ctx, *from, *to)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build sales summary", "error", err)
		return err
	}
	fmt.Fprintf(h.out, "Total revenue: %s\n", summary.TotalRevenue.StringFixed(2))
	w := tabwriter.NewWriter(h.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tQUANTITY SOLD")
	for productID, qty := range summary.QuantityByProduct {
		fmt.Fprintf(w, "%d\t%d\n", productID, qty)
	}
	return w.Flush()
}

// validateStruct runs the DTO through the validator and renders
// field-specific messages, same division of labor as an HTTP handler:
// transport checks shape, the service owns domain rules.
func (h *Handler) validateStruct(ctx context.Context, v any) error {
	err := h.validate.Struct(v)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldErr := range validationErrors {
			fmt.Fprintf(h.out, "Invalid %s: failed on rule %q\n", fieldErr.Field(), fieldErr.Tag())
		}
		h.logger.WarnContext(ctx, "input validation failed", "error", err)
		return errors.New("invalid input")
	}
	return err
}

func parseSaleItem(arg string) (sservice.SaleItem, error) {
	parts := strings.Split(arg, ":")
	if len(parts) != 3 {
		return sservice.SaleItem{}, fmt.Errorf("invalid item %q, want productId:quantity:unitPrice", arg)
	}
	productID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return sservice.SaleItem{}, fmt.Errorf("invalid product id in %q: %w", arg, err)
	}
	quantity, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return sservice.SaleItem{}, fmt.Errorf("invalid quantity in %q: %w", arg, err)
	}
	price, err := decimal.NewFromString(parts[2])
	if err != nil {
		return sservice.SaleItem{}, fmt.Errorf("invalid price in %q: %w", arg, err)
	}
	return sservice.SaleItem{ProductID: productID, Quantity: quantity, UnitPrice: price}, nil
}
