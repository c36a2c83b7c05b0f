// Package migrations holds the schema history of the inventory database.
package migrations

import (
	"context"
	"sync"

	"github.com/pankajredekar/stockroom/internal/runner"
	"github.com/pankajredekar/stockroom/internal/schema"
	"github.com/pankajredekar/stockroom/internal/versioner"
	"gorm.io/gorm"
)

var (
	mu       sync.Mutex
	builtins []runner.Migration
)

func register(m runner.Migration) {
	mu.Lock()
	defer mu.Unlock()
	builtins = append(builtins, m)
}

// Registry returns a fresh registry holding every built-in migration.
func Registry() *runner.Registry {
	mu.Lock()
	defer mu.Unlock()
	registry := runner.NewRegistry()
	for _, m := range builtins {
		registry.RegisterMigration(m)
	}
	return registry
}

// migration adapts plain functions to runner.Migration.
type migration struct {
	version  string
	name     string
	up       func(ctx context.Context, db *gorm.DB) error
	down     func(ctx context.Context, db *gorm.DB) error
	describe func(b *schema.SchemaBuilder)
}

func (m migration) Version() string { return m.version }
func (m migration) Name() string    { return m.name }

func (m migration) Up(ctx context.Context, db *gorm.DB) error {
	return m.up(ctx, db.WithContext(ctx))
}

func (m migration) Down(ctx context.Context, db *gorm.DB) error {
	return m.down(ctx, db.WithContext(ctx))
}

func (m migration) Describe(b *schema.SchemaBuilder) { m.describe(b) }

func dropTable(name string) func(context.Context, *gorm.DB) error {
	return func(_ context.Context, db *gorm.DB) error {
		return db.Migrator().DropTable(name)
	}
}

// Apply initializes the ledger in table and runs every pending built-in migration.
func Apply(ctx context.Context, db *gorm.DB, table string) ([]runner.Migration, error) {
	ver := versioner.NewVersioner(db, table)
	if err := ver.Initialize(ctx); err != nil {
		return nil, err
	}
	return runner.NewRunner(db, Registry(), ver).Migrate(ctx)
}
