package schema

import (
	"fmt"
	"sort"
	"strings"
)

// SchemaBuilder records what the registered migrations declare, without a database.
type SchemaBuilder struct {
	Schema *SchemaState
}

// SchemaState is the simulated schema.
type SchemaState struct {
	Tables map[string]*Table
}

// Table is a simulated table.
type Table struct {
	Name    string
	Columns map[string]*Column
	Order   []string // column declaration order
	Indexes []string
}

// Column is a simulated column.
type Column struct {
	Name   string
	Type   string
	Null   bool
	PK     bool
	Unique bool
}

// ColumnOption tweaks a column declaration.
type ColumnOption func(*Column)

// PrimaryKey marks the column as the table's key.
func PrimaryKey() ColumnOption { return func(c *Column) { c.PK = true } }

// Unique adds a uniqueness constraint.
func Unique() ColumnOption { return func(c *Column) { c.Unique = true } }

// Nullable allows NULL values.
func Nullable() ColumnOption { return func(c *Column) { c.Null = true } }

// TableBuilder provides a fluent API for declaring tables.
type TableBuilder struct {
	table *Table
}

// NewSchemaBuilder creates an empty simulation.
func NewSchemaBuilder() *SchemaBuilder {
	return &SchemaBuilder{
		Schema: &SchemaState{Tables: make(map[string]*Table)},
	}
}

// CreateTable declares a new table, replacing any previous declaration.
func (b *SchemaBuilder) CreateTable(name string) *TableBuilder {
	table := &Table{
		Name:    name,
		Columns: make(map[string]*Column),
	}
	b.Schema.Tables[name] = table
	return &TableBuilder{table: table}
}

// AlterTable returns a builder for an existing table, creating it if needed.
func (b *SchemaBuilder) AlterTable(name string) *TableBuilder {
	if table, ok := b.Schema.Tables[name]; ok {
		return &TableBuilder{table: table}
	}
	return b.CreateTable(name)
}

// DropTable removes a table.
func (b *SchemaBuilder) DropTable(name string) {
	delete(b.Schema.Tables, name)
}

// TableExists reports whether name has been declared.
func (b *SchemaBuilder) TableExists(name string) bool {
	_, ok := b.Schema.Tables[name]
	return ok
}

// GetTable returns a table by name.
func (b *SchemaBuilder) GetTable(name string) (*Table, bool) {
	table, ok := b.Schema.Tables[name]
	return table, ok
}

// Column declares a NOT NULL column unless Nullable is given.
func (t *TableBuilder) Column(name, colType string, opts ...ColumnOption) *TableBuilder {
	col := &Column{Name: name, Type: colType}
	for _, opt := range opts {
		opt(col)
	}
	if _, exists := t.table.Columns[name]; !exists {
		t.table.Order = append(t.table.Order, name)
	}
	t.table.Columns[name] = col
	return t
}

// DropColumn removes a column.
func (t *TableBuilder) DropColumn(name string) *TableBuilder {
	delete(t.table.Columns, name)
	for i, n := range t.table.Order {
		if n == name {
			t.table.Order = append(t.table.Order[:i], t.table.Order[i+1:]...)
			break
		}
	}
	return t
}

// Index declares a named index.
func (t *TableBuilder) Index(name string) *TableBuilder {
	t.table.Indexes = append(t.table.Indexes, name)
	return t
}

// ColumnNames returns the columns in declaration order.
func (t *Table) ColumnNames() []string {
	return append([]string(nil), t.Order...)
}

// TableNames returns the declared tables sorted by name.
func (s *SchemaState) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String renders the schema with tables sorted by name.
func (s *SchemaState) String() string {
	var sb strings.Builder
	for _, name := range s.TableNames() {
		table := s.Tables[name]
		sb.WriteString(fmt.Sprintf("Table: %s\n", name))
		for _, colName := range table.Order {
			col := table.Columns[colName]
			var attrs []string
			if col.PK {
				attrs = append(attrs, "PRIMARY KEY")
			}
			if col.Unique {
				attrs = append(attrs, "UNIQUE")
			}
			if col.Null {
				attrs = append(attrs, "NULL")
			} else {
				attrs = append(attrs, "NOT NULL")
			}
			sb.WriteString(fmt.Sprintf("  Column: %s %s [%s]\n", col.Name, col.Type, strings.Join(attrs, ", ")))
		}
		if len(table.Indexes) > 0 {
			sb.WriteString(fmt.Sprintf("  Indexes: %s\n", strings.Join(table.Indexes, ", ")))
		}
	}
	return sb.String()
}
