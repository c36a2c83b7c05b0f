package diff

import (
	"fmt"
	"sync"

	"github.com/pankajredekar/stockroom/internal/schema"
	gormschema "gorm.io/gorm/schema"
)

// CompareModels checks gorm models against the simulated schema, with the
// models in place of the live database: a model field without a migrated
// column is an ExtraColumn, a migrated column no field maps is a
// MissingColumn, and a model whose table no migration creates is an
// UnexpectedTable.
func CompareModels(simulated *schema.SchemaState, models ...interface{}) ([]Diff, error) {
	cache := &sync.Map{}
	namer := gormschema.NamingStrategy{}

	var diffs []Diff
	for _, m := range models {
		s, err := gormschema.Parse(m, cache, namer)
		if err != nil {
			return nil, fmt.Errorf("parse model %T: %w", m, err)
		}
		table, ok := simulated.Tables[s.Table]
		if !ok {
			diffs = append(diffs, Diff{Type: UnexpectedTable, TableName: s.Table})
			continue
		}

		columns := append([]string(nil), s.DBNames...)
		diffs = append(diffs, compareColumns(table, columns)...)
	}
	return diffs, nil
}
