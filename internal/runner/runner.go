package runner

import (
	"context"
	"fmt"
	"sort"

	"github.com/pankajredekar/stockroom/internal/schema"
	"github.com/pankajredekar/stockroom/internal/versioner"
	"gorm.io/gorm"
)

// Migration is one versioned schema change.
type Migration interface {
	Version() string
	Name() string
	Up(ctx context.Context, db *gorm.DB) error
	Down(ctx context.Context, db *gorm.DB) error
	// Describe replays the change onto a simulated schema.
	Describe(b *schema.SchemaBuilder)
}

// Registry holds all registered migrations
type Registry struct {
	migrations map[string]Migration
}

// NewRegistry creates a new migration registry
func NewRegistry() *Registry {
	return &Registry{
		migrations: make(map[string]Migration),
	}
}

// RegisterMigration registers a migration. A second migration with the same
// version replaces the first.
func (r *Registry) RegisterMigration(m Migration) {
	r.migrations[m.Version()] = m
}

// GetMigration returns a migration by version
func (r *Registry) GetMigration(version string) (Migration, bool) {
	m, ok := r.migrations[version]
	return m, ok
}

// GetAllMigrations returns all migrations sorted by version
func (r *Registry) GetAllMigrations() []Migration {
	migrations := make([]Migration, 0, len(r.migrations))
	for _, m := range r.migrations {
		migrations = append(migrations, m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version() < migrations[j].Version()
	})
	return migrations
}

// Runner executes migrations
type Runner struct {
	db        *gorm.DB
	registry  *Registry
	versioner *versioner.Versioner
}

// NewRunner creates a new migration runner
func NewRunner(db *gorm.DB, registry *Registry, versioner *versioner.Versioner) *Runner {
	return &Runner{
		db:        db,
		registry:  registry,
		versioner: versioner,
	}
}

// Migrate applies all pending migrations in version order and returns the
// ones it applied. Each migration and its ledger row commit together.
func (r *Runner) Migrate(ctx context.Context) ([]Migration, error) {
	pending, err := r.GetPendingMigrations(ctx)
	if err != nil {
		return nil, err
	}

	var done []Migration
	for _, m := range pending {
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Up(ctx, tx); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", m.Version(), err)
			}
			return r.versioner.WithDB(tx).RecordApplied(ctx, m.Version(), m.Name())
		})
		if err != nil {
			return done, err
		}
		done = append(done, m)
	}
	return done, nil
}

// Rollback reverts the last n applied migrations, newest first.
func (r *Runner) Rollback(ctx context.Context, n int) ([]Migration, error) {
	applied, err := r.versioner.AppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	if len(applied) == 0 {
		return nil, fmt.Errorf("no migrations to rollback")
	}
	if n <= 0 {
		n = 1
	}
	if n > len(applied) {
		n = len(applied)
	}

	var done []Migration
	for i := len(applied) - 1; i >= len(applied)-n; i-- {
		version := applied[i]
		m, ok := r.registry.GetMigration(version)
		if !ok {
			return done, fmt.Errorf("migration %s not found in registry", version)
		}

		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Down(ctx, tx); err != nil {
				return fmt.Errorf("failed to rollback migration %s: %w", version, err)
			}
			return r.versioner.WithDB(tx).RemoveApplied(ctx, version)
		})
		if err != nil {
			return done, err
		}
		done = append(done, m)
	}
	return done, nil
}

// GetPendingMigrations returns migrations that haven't been applied
func (r *Runner) GetPendingMigrations(ctx context.Context) ([]Migration, error) {
	applied, err := r.versioner.AppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	appliedMap := make(map[string]bool, len(applied))
	for _, v := range applied {
		appliedMap[v] = true
	}

	var pending []Migration
	for _, m := range r.registry.GetAllMigrations() {
		if !appliedMap[m.Version()] {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// GetAppliedMigrations returns registered migrations that have been applied
func (r *Runner) GetAppliedMigrations(ctx context.Context) ([]Migration, error) {
	applied, err := r.versioner.AppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	var migrations []Migration
	for _, version := range applied {
		if m, ok := r.registry.GetMigration(version); ok {
			migrations = append(migrations, m)
		}
	}
	return migrations, nil
}

// SimulateSchema replays every registered migration onto an empty schema.
func (r *Runner) SimulateSchema() *schema.SchemaState {
	builder := schema.NewSchemaBuilder()
	for _, m := range r.registry.GetAllMigrations() {
		m.Describe(builder)
	}
	return builder.Schema
}
