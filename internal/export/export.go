// Package export writes the product catalogue as CSV or as a SQL script.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pankajredekar/stockroom/internal/database"
	"github.com/pankajredekar/stockroom/internal/inventory"
	"github.com/pankajredekar/stockroom/internal/model"
)

// CSVHeader is the first row written by WriteCSV.
var CSVHeader = []string{"ID", "Name", "Barcode", "Price", "Stock", "Category", "Created At"}

// WriteCSV writes products to w, one row each, after the header.
func WriteCSV(w io.Writer, products []model.Product) error {
	if len(products) == 0 {
		return inventory.ErrNothingToExport
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range products {
		row := []string{
			strconv.FormatUint(uint64(p.ID), 10),
			p.Name,
			p.Barcode,
			p.Price.StringFixed(2),
			strconv.Itoa(p.Stock),
			p.Category,
			p.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSQLDump writes a transaction that recreates categories and products in
// the given dialect. Tables are created only when missing.
func WriteSQLDump(w io.Writer, d database.Dialect, categories []model.Category, products []model.Product, now time.Time) error {
	if len(products) == 0 && len(categories) == 0 {
		return inventory.ErrNothingToExport
	}

	var b strings.Builder
	fmt.Fprintf(&b, "-- stockroom dump (%s) generated %s\n", d.Name(), now.UTC().Format(time.RFC3339))
	b.WriteString("BEGIN;\n\n")

	cat := d.QuoteIdent("categories")
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", cat)
	fmt.Fprintf(&b, "    %s %s,\n", d.QuoteIdent("id"), d.PrimaryKey())
	fmt.Fprintf(&b, "    %s VARCHAR(100) NOT NULL UNIQUE,\n", d.QuoteIdent("name"))
	fmt.Fprintf(&b, "    %s VARCHAR(16),\n", d.QuoteIdent("emoji"))
	fmt.Fprintf(&b, "    %s TEXT,\n", d.QuoteIdent("description"))
	fmt.Fprintf(&b, "    %s TIMESTAMP\n", d.QuoteIdent("created_at"))
	b.WriteString(");\n\n")

	prod := d.QuoteIdent("products")
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", prod)
	fmt.Fprintf(&b, "    %s %s,\n", d.QuoteIdent("id"), d.PrimaryKey())
	fmt.Fprintf(&b, "    %s VARCHAR(255) NOT NULL,\n", d.QuoteIdent("name"))
	fmt.Fprintf(&b, "    %s VARCHAR(64) NOT NULL UNIQUE,\n", d.QuoteIdent("barcode"))
	fmt.Fprintf(&b, "    %s DECIMAL(10,2) NOT NULL,\n", d.QuoteIdent("price"))
	fmt.Fprintf(&b, "    %s INTEGER NOT NULL DEFAULT 0,\n", d.QuoteIdent("stock"))
	fmt.Fprintf(&b, "    %s VARCHAR(100) DEFAULT 'Other',\n", d.QuoteIdent("category"))
	fmt.Fprintf(&b, "    %s TIMESTAMP,\n", d.QuoteIdent("created_at"))
	fmt.Fprintf(&b, "    %s TIMESTAMP\n", d.QuoteIdent("updated_at"))
	b.WriteString(");\n\n")

	catCols := columns(d, "id", "name", "emoji", "description", "created_at")
	for _, c := range categories {
		fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%d, %s, %s, %s, %s);\n",
			cat, catCols, c.ID,
			d.QuoteLiteral(c.Name), d.QuoteLiteral(c.Emoji), d.QuoteLiteral(c.Description),
			timestamp(d, c.CreatedAt))
	}
	if len(categories) > 0 {
		b.WriteString("\n")
	}

	prodCols := columns(d, "id", "name", "barcode", "price", "stock", "category", "created_at", "updated_at")
	for _, p := range products {
		fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%d, %s, %s, %s, %d, %s, %s, %s);\n",
			prod, prodCols, p.ID,
			d.QuoteLiteral(p.Name), d.QuoteLiteral(p.Barcode), p.Price.StringFixed(2), p.Stock,
			d.QuoteLiteral(p.Category), timestamp(d, p.CreatedAt), timestamp(d, p.UpdatedAt))
	}

	// explicit ids leave postgres sequences behind
	if d.Name() == database.Postgres {
		b.WriteString("\n")
		for _, table := range []string{"categories", "products"} {
			fmt.Fprintf(&b, "SELECT setval(pg_get_serial_sequence(%s, 'id'), COALESCE((SELECT MAX(id) FROM %s), 1));\n",
				d.QuoteLiteral(table), d.QuoteIdent(table))
		}
	}

	b.WriteString("\nCOMMIT;\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func columns(d database.Dialect, names ...string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = d.QuoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}

func timestamp(d database.Dialect, t time.Time) string {
	if t.IsZero() {
		return "NULL"
	}
	return d.QuoteLiteral(t.UTC().Format("2006-01-02 15:04:05"))
}
