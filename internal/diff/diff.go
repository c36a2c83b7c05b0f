package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pankajredekar/stockroom/internal/schema"
	"gorm.io/gorm"
)

// Drift kinds.
const (
	MissingTable    = "missing_table"
	UnexpectedTable = "unexpected_table"
	MissingColumn   = "missing_column"
	ExtraColumn     = "extra_column"
)

// Diff represents a difference between the migrated schema and the live database
type Diff struct {
	Type      string
	TableName string
	Column    string
}

// String renders the diff for the show command.
func (d Diff) String() string {
	switch d.Type {
	case MissingTable:
		return fmt.Sprintf("table %s is declared by migrations but missing from the database", d.TableName)
	case UnexpectedTable:
		return fmt.Sprintf("table %s exists in the database but no migration declares it", d.TableName)
	case MissingColumn:
		return fmt.Sprintf("column %s.%s is declared but missing", d.TableName, d.Column)
	case ExtraColumn:
		return fmt.Sprintf("column %s.%s exists but is not declared", d.TableName, d.Column)
	}
	return d.Type + " " + d.TableName
}

// Inspector reads the live schema. gorm.Migrator satisfies it.
type Inspector interface {
	GetTables() ([]string, error)
	HasTable(table interface{}) bool
	ColumnTypes(table interface{}) ([]gorm.ColumnType, error)
}

// CompareDatabase compares the simulated schema with the live database behind
// db. Tables named in ignore (the migration ledger, engine internals) are skipped.
func CompareDatabase(simulated *schema.SchemaState, db *gorm.DB, ignore ...string) ([]Diff, error) {
	return Compare(simulated, db.Migrator(), ignore...)
}

// Compare compares the simulated schema with what inspector reports.
func Compare(simulated *schema.SchemaState, inspector Inspector, ignore ...string) ([]Diff, error) {
	skip := map[string]bool{"sqlite_sequence": true}
	for _, name := range ignore {
		skip[name] = true
	}

	var diffs []Diff
	for _, tableName := range simulated.TableNames() {
		if !inspector.HasTable(tableName) {
			diffs = append(diffs, Diff{Type: MissingTable, TableName: tableName})
			continue
		}
		columnTypes, err := inspector.ColumnTypes(tableName)
		if err != nil {
			return nil, fmt.Errorf("read columns of %s: %w", tableName, err)
		}
		live := make([]string, 0, len(columnTypes))
		for _, ct := range columnTypes {
			live = append(live, strings.ToLower(ct.Name()))
		}
		diffs = append(diffs, compareColumns(simulated.Tables[tableName], live)...)
	}

	tables, err := inspector.GetTables()
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	sort.Strings(tables)
	for _, tableName := range tables {
		if skip[tableName] {
			continue
		}
		if _, declared := simulated.Tables[tableName]; !declared {
			diffs = append(diffs, Diff{Type: UnexpectedTable, TableName: tableName})
		}
	}

	return diffs, nil
}

func compareColumns(simulatedTable *schema.Table, live []string) []Diff {
	var diffs []Diff

	liveCols := make(map[string]bool, len(live))
	for _, name := range live {
		liveCols[name] = true
	}
	for _, name := range simulatedTable.ColumnNames() {
		if !liveCols[name] {
			diffs = append(diffs, Diff{Type: MissingColumn, TableName: simulatedTable.Name, Column: name})
		}
	}

	sort.Strings(live)
	for _, name := range live {
		if _, declared := simulatedTable.Columns[name]; !declared {
			diffs = append(diffs, Diff{Type: ExtraColumn, TableName: simulatedTable.Name, Column: name})
		}
	}

	return diffs
}
