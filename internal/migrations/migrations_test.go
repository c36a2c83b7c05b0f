package migrations

import (
	"context"
	"testing"

	"github.com/pankajredekar/stockroom/internal/diff"
	"github.com/pankajredekar/stockroom/internal/model"
	"github.com/pankajredekar/stockroom/internal/runner"
	"github.com/pankajredekar/stockroom/internal/versioner"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestRegistryIsOrdered(t *testing.T) {
	all := Registry().GetAllMigrations()
	expected := []string{"create_categories", "create_products", "create_stock_movements"}
	if len(all) != len(expected) {
		t.Fatalf("Expected %d built-in migrations, got %d", len(expected), len(all))
	}
	for i, m := range all {
		if m.Name() != expected[i] {
			t.Errorf("Expected migration '%s' at index %d, got '%s'", expected[i], i, m.Name())
		}
	}
}

func TestApplyCreatesTables(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	applied, err := Apply(ctx, db, "")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(applied) != 3 {
		t.Errorf("Expected 3 applied migrations, got %d", len(applied))
	}
	for _, table := range []string{"categories", "products", "stock_movements", versioner.DefaultTable} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("Expected table '%s' to exist", table)
		}
	}
	if !db.Migrator().HasIndex("products", "idx_products_barcode") {
		t.Error("Expected unique barcode index on products")
	}

	again, err := Apply(ctx, db, "")
	if err != nil {
		t.Fatalf("Second Apply failed: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("Expected no pending migrations, got %d", len(again))
	}
}

func TestRollbackDropsTables(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	if _, err := Apply(ctx, db, "_ledger"); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	r := runner.NewRunner(db, Registry(), versioner.NewVersioner(db, "_ledger"))
	if _, err := r.Rollback(ctx, 3); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}
	for _, table := range []string{"categories", "products", "stock_movements"} {
		if db.Migrator().HasTable(table) {
			t.Errorf("Table '%s' should have been dropped", table)
		}
	}
}

func TestSimulatedSchemaMatchesTables(t *testing.T) {
	db := setupTestDB(t)
	r := runner.NewRunner(db, Registry(), versioner.NewVersioner(db, ""))
	state := r.SimulateSchema()

	products, ok := state.Tables["products"]
	if !ok {
		t.Fatal("Expected products in simulated schema")
	}
	if !products.Columns["barcode"].Unique {
		t.Error("Expected barcode to be unique")
	}
	if len(state.Tables) != 3 {
		t.Errorf("Expected 3 simulated tables, got %d", len(state.Tables))
	}
}

func TestAppliedSchemaHasNoDrift(t *testing.T) {
	db := setupTestDB(t)
	if _, err := Apply(context.Background(), db, ""); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	r := runner.NewRunner(db, Registry(), versioner.NewVersioner(db, ""))
	diffs, err := diff.CompareDatabase(r.SimulateSchema(), db, versioner.DefaultTable)
	if err != nil {
		t.Fatalf("CompareDatabase failed: %v", err)
	}
	for _, d := range diffs {
		t.Errorf("Unexpected drift: %s", d)
	}
}

func TestModelsMatchMigrations(t *testing.T) {
	db := setupTestDB(t)
	r := runner.NewRunner(db, Registry(), versioner.NewVersioner(db, ""))
	diffs, err := diff.CompareModels(r.SimulateSchema(), &model.Product{}, &model.Category{}, &model.StockMovement{})
	if err != nil {
		t.Fatalf("CompareModels failed: %v", err)
	}
	for _, d := range diffs {
		t.Errorf("Model and migrations disagree: %s", d)
	}
}
