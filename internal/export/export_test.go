package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/pankajredekar/stockroom/internal/database"
	"github.com/pankajredekar/stockroom/internal/inventory"
	"github.com/pankajredekar/stockroom/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var created = time.Date(2025, 10, 18, 8, 30, 0, 0, time.UTC)

func sampleProducts() []model.Product {
	return []model.Product{
		{ID: 1, Name: "USB-C Cable, 2m", Barcode: "4567890123456", Price: decimal.RequireFromString("8.9"), Stock: 30, Category: "Cable", CreatedAt: created, UpdatedAt: created},
		{ID: 2, Name: "O'Neill \"Pro\" case", Barcode: "3456789012345", Price: decimal.RequireFromString("12"), Stock: 0, Category: "Case", CreatedAt: created},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleProducts()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{"1", "USB-C Cable, 2m", "4567890123456", "8.90", "30", "Cable", "2025-10-18T08:30:00Z"}, rows[1])
	assert.Equal(t, `O'Neill "Pro" case`, rows[2][1])
	assert.Equal(t, "12.00", rows[2][3])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteCSV(&buf, nil), inventory.ErrNothingToExport)
	assert.Zero(t, buf.Len())
}

func TestWriteSQLDump(t *testing.T) {
	categories := []model.Category{{ID: 1, Name: "Cable", Emoji: "🔌", Description: "Cables and chargers", CreatedAt: created}}

	tests := []struct {
		dialect  string
		contains []string
		absent   []string
	}{
		{
			dialect: database.SQLite,
			contains: []string{
				`"id" INTEGER PRIMARY KEY AUTOINCREMENT`,
				`INSERT INTO "products" ("id", "name", "barcode", "price", "stock", "category", "created_at", "updated_at") VALUES (2, 'O''Neill "Pro" case', '3456789012345', 12.00, 0, 'Case', '2025-10-18 08:30:00', NULL);`,
				`INSERT INTO "categories"`,
			},
			absent: []string{"setval"},
		},
		{
			dialect: database.Postgres,
			contains: []string{
				`"id" BIGSERIAL PRIMARY KEY`,
				`'O''Neill "Pro" case'`,
				`SELECT setval(pg_get_serial_sequence('products', 'id')`,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			d, err := database.DialectFor(tt.dialect)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, WriteSQLDump(&buf, d, categories, sampleProducts(), created))
			out := buf.String()

			assert.Contains(t, out, "BEGIN;\n")
			assert.True(t, strings.HasSuffix(out, "COMMIT;\n"))
			assert.Equal(t, 2, strings.Count(out, "CREATE TABLE IF NOT EXISTS"))
			assert.Equal(t, 3, strings.Count(out, "INSERT INTO"))
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestWriteSQLDumpEmpty(t *testing.T) {
	d, err := database.DialectFor("sqlite")
	require.NoError(t, err)
	assert.ErrorIs(t, WriteSQLDump(&bytes.Buffer{}, d, nil, nil, created), inventory.ErrNothingToExport)
}
