package store

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *CSVStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	return NewCSVStore(path, slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func Test_CSVStore_Append_AssignsMonotonicIDs(t *testing.T) {
	// given
	s := newTestStore(t)
	ctx := context.Background()
	// when
	first, err := s.Append(ctx, Sale{Date: "2026-01-10T09:00:00", ProductID: 1, Quantity: 3, UnitPrice: decimal.RequireFromString("9.5")})
	require.NoError(t, err)
	second, err := s.Append(ctx, Sale{Date: "2026-01-10T10:00:00", ProductID: 2, Quantity: 1, UnitPrice: decimal.RequireFromString("3")})
	require.NoError(t, err)
	// then
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
}

func Test_CSVStore_RoundTrip(t *testing.T) {
	// given
	s := newTestStore(t)
	ctx := context.Background()
	created, err := s.Append(ctx, Sale{
		Date:          "2026-01-10T09:00:00",
		ProductID:     7,
		Quantity:      2,
		UnitPrice:     decimal.RequireFromString("19.99"),
		PaymentMethod: "tarjeta de crédito",
	})
	require.NoError(t, err)

	// when
	reloaded := NewCSVStore(s.table.Path(), slog.New(slog.NewTextHandler(os.Stderr, nil)))
	sales, err := reloaded.FindAll(ctx)

	// then
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, created.ID, sales[0].ID)
	assert.Equal(t, "2026-01-10T09:00:00", sales[0].Date)
	assert.Equal(t, int64(7), sales[0].ProductID)
	assert.Equal(t, int64(2), sales[0].Quantity)
	assert.True(t, decimal.RequireFromString("19.99").Equal(sales[0].UnitPrice))
	assert.Equal(t, "tarjeta de crédito", sales[0].PaymentMethod)
}

func Test_CSVStore_FindAll_DropsMalformedRows(t *testing.T) {
	// given: a ledger with one unparsable quantity among valid rows
	s := newTestStore(t)
	ctx := context.Background()
	content := "saleId,date,productId,quantity,unitPriceAtSale,paymentMethod\n" +
		"1,2026-01-10T09:00:00,1,3,9.5,cash\n" +
		"2,2026-01-10T10:00:00,1,lots,9.5,cash\n" +
		"3,2026-01-10T11:00:00,2,1,,card\n"
	require.NoError(t, os.WriteFile(s.table.Path(), []byte(content), 0o644))

	// when
	sales, err := s.FindAll(ctx)

	// then: the bad row is dropped, the empty price reads as zero
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, int64(1), sales[0].ID)
	assert.Equal(t, int64(3), sales[1].ID)
	assert.True(t, sales[1].UnitPrice.IsZero())
}

func Test_CSVStore_FindAll_MissingFileIsEmptyLedger(t *testing.T) {
	// given
	s := newTestStore(t)
	// when
	sales, err := s.FindAll(context.Background())
	// then
	require.NoError(t, err)
	assert.Empty(t, sales)
	assert.FileExists(t, s.table.Path())
}
