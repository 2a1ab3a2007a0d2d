package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cservice "github.com/velmoro/tienda/internal/catalog/service"
	cstore "github.com/velmoro/tienda/internal/catalog/store"
	sservice "github.com/velmoro/tienda/internal/sales/service"
	sstore "github.com/velmoro/tienda/internal/sales/store"
)

// newTestHandler wires real services over CSV stores in a temp dir, so these
// tests cover the whole stack below the flag parsing.
func newTestHandler(t *testing.T) (*Handler, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	productStore := cstore.NewCSVStore(filepath.Join(dir, "products.csv"), logger)
	saleStore := sstore.NewCSVStore(filepath.Join(dir, "sales.csv"), logger)
	out := &bytes.Buffer{}
	h := NewHandler(
		cservice.NewService(productStore),
		sservice.NewService(saleStore, productStore, logger),
		logger,
		out,
		10,
	)
	return h, out
}

func Test_Handler_ProductLifecycle(t *testing.T) {
	// given
	h, out := newTestHandler(t)
	ctx := context.Background()

	// when: add, update, list, delete
	require.NoError(t, h.Run(ctx, []string{"product", "add", "-name", "Hammer", "-price", "9.5", "-stock", "10", "-unit", "piece"}))
	assert.Contains(t, out.String(), "Product 1 created: Hammer")

	out.Reset()
	require.NoError(t, h.Run(ctx, []string{"product", "update", "-id", "1", "-name", "Sledgehammer"}))
	assert.Contains(t, out.String(), "Product 1 updated.")

	out.Reset()
	require.NoError(t, h.Run(ctx, []string{"product", "list"}))
	assert.Contains(t, out.String(), "Sledgehammer")
	assert.Contains(t, out.String(), "9.50")

	out.Reset()
	require.NoError(t, h.Run(ctx, []string{"product", "delete", "-id", "1"}))
	assert.Contains(t, out.String(), "Product 1 deleted.")

	// then: deleting again reports the miss and fails the command
	out.Reset()
	err := h.Run(ctx, []string{"product", "delete", "-id", "1"})
	assert.Error(t, err)
	assert.Contains(t, out.String(), "Product 1 not found.")
}

func Test_Handler_SaleRecordAndReports(t *testing.T) {
	// given: a product with stock 5
	h, out := newTestHandler(t)
	ctx := context.Background()
	require.NoError(t, h.Run(ctx, []string{"product", "add", "-name", "Hammer", "-price", "9.5", "-stock", "5"}))

	// when: a valid sale
	out.Reset()
	require.NoError(t, h.Run(ctx, []string{"sale", "record", "-product", "1", "-quantity", "3", "-payment", "cash"}))
	assert.Contains(t, out.String(), "Sale 1 recorded")

	// then: stock is down to 2 and overselling is refused
	out.Reset()
	err := h.Run(ctx, []string{"sale", "record", "-product", "1", "-quantity", "3"})
	assert.Error(t, err)
	assert.Contains(t, out.String(), "Insufficient stock. Available: 2")

	out.Reset()
	err = h.Run(ctx, []string{"sale", "record", "-product", "99", "-quantity", "1"})
	assert.Error(t, err)
	assert.Contains(t, out.String(), "Product 99 not found.")

	out.Reset()
	require.NoError(t, h.Run(ctx, []string{"report", "top"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "3")

	out.Reset()
	require.NoError(t, h.Run(ctx, []string{"report", "summary"}))
	assert.Contains(t, out.String(), "Total revenue: 28.50")
}

func Test_Handler_SaleTotal(t *testing.T) {
	// given
	h, out := newTestHandler(t)
	// when
	require.NoError(t, h.Run(context.Background(), []string{"sale", "total", "1:3:9.5", "2:2:0.333"}))
	// then
	assert.Contains(t, out.String(), "Total: 29.17")
}

func Test_Handler_UnknownCommand(t *testing.T) {
	h, out := newTestHandler(t)
	err := h.Run(context.Background(), []string{"warehouse", "burn"})
	assert.Error(t, err)
	assert.Contains(t, out.String(), "Usage:")
}
