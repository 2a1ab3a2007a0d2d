package csvfile

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T) *Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "items.csv")
	return NewTable(path, []string{"id", "name"}, slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func Test_Table_EnsureExists(t *testing.T) {
	// given
	table := newTestTable(t)
	// when
	err := table.EnsureExists()
	// then
	require.NoError(t, err)
	content, err := os.ReadFile(table.Path())
	require.NoError(t, err)
	assert.Equal(t, "id,name\n", string(content))

	// creating again must not truncate existing data
	require.NoError(t, table.WriteAll([][]string{{"1", "a"}}))
	require.NoError(t, table.EnsureExists())
	records, err := table.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "a"}}, records)
}

func Test_Table_ReadAll_MissingFile(t *testing.T) {
	// given
	table := newTestTable(t)
	// when
	records, err := table.ReadAll()
	// then: lazily created, empty collection
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.FileExists(t, table.Path())
}

func Test_Table_RoundTrip(t *testing.T) {
	// given
	table := newTestTable(t)
	rows := [][]string{
		{"1", "Café, molido"},
		{"2", "Azúcar \"blanca\""},
		{"3", ""},
	}
	// when
	require.NoError(t, table.WriteAll(rows))
	read, err := table.ReadAll()
	// then: quoting and non-ASCII text round-trip without loss
	require.NoError(t, err)
	assert.Equal(t, rows, read)
}

func Test_Table_WriteAll_Rewrites(t *testing.T) {
	// given
	table := newTestTable(t)
	require.NoError(t, table.WriteAll([][]string{{"1", "a"}, {"2", "b"}}))
	// when
	require.NoError(t, table.WriteAll([][]string{{"2", "b"}}))
	// then: the whole collection is replaced
	read, err := table.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"2", "b"}}, read)
}

func Test_DecimalField(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expected  decimal.Decimal
		expectErr bool
	}{
		{name: "empty reads as zero", input: "", expected: decimal.Zero},
		{name: "plain decimal", input: "9.5", expected: decimal.RequireFromString("9.5")},
		{name: "garbage fails", input: "abc", expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecimalField(tc.input)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(got))
		})
	}
}

func Test_IntField(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expected  int64
		expectErr bool
	}{
		{name: "empty reads as zero", input: "", expected: 0},
		{name: "plain integer", input: "42", expected: 42},
		{name: "decimal fails", input: "3.5", expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := IntField(tc.input)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}
