package versioner

import (
	"context"
	"testing"

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

func setupVersioner(t *testing.T) *Versioner {
	ver := NewVersioner(setupTestDB(t), "_test_migrations")
	if err := ver.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return ver
}

func TestNewVersionerDefaultsTable(t *testing.T) {
	ver := NewVersioner(setupTestDB(t), "")
	if ver.Table() != DefaultTable {
		t.Errorf("Expected table name '%s', got '%s'", DefaultTable, ver.Table())
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	ver := setupVersioner(t)
	if err := ver.Initialize(context.Background()); err != nil {
		t.Fatalf("Second Initialize failed: %v", err)
	}
}

func TestRecordAndRemove(t *testing.T) {
	ctx := context.Background()
	ver := setupVersioner(t)

	applied, err := ver.IsApplied(ctx, "202510180001")
	if err != nil {
		t.Fatalf("IsApplied failed: %v", err)
	}
	if applied {
		t.Error("Migration should not be applied initially")
	}

	if err := ver.RecordApplied(ctx, "202510180001", "create_categories"); err != nil {
		t.Fatalf("RecordApplied failed: %v", err)
	}
	if applied, _ = ver.IsApplied(ctx, "202510180001"); !applied {
		t.Error("Migration should be applied now")
	}

	if err := ver.RemoveApplied(ctx, "202510180001"); err != nil {
		t.Fatalf("RemoveApplied failed: %v", err)
	}
	if applied, _ = ver.IsApplied(ctx, "202510180001"); applied {
		t.Error("Migration should not be applied after removal")
	}
}

func TestAppliedVersionsAscending(t *testing.T) {
	ctx := context.Background()
	ver := setupVersioner(t)

	for _, v := range []string{"202510180003", "202510180001", "202510180002"} {
		if err := ver.RecordApplied(ctx, v, "m_"+v); err != nil {
			t.Fatalf("RecordApplied failed: %v", err)
		}
	}

	versions, err := ver.AppliedVersions(ctx)
	if err != nil {
		t.Fatalf("AppliedVersions failed: %v", err)
	}
	expected := []string{"202510180001", "202510180002", "202510180003"}
	if len(versions) != len(expected) {
		t.Fatalf("Expected %d versions, got %d", len(expected), len(versions))
	}
	for i, v := range versions {
		if v != expected[i] {
			t.Errorf("Expected version '%s' at index %d, got '%s'", expected[i], i, v)
		}
	}

	latest, err := ver.LatestVersion(ctx)
	if err != nil {
		t.Fatalf("LatestVersion failed: %v", err)
	}
	if latest != "202510180003" {
		t.Errorf("Expected latest '202510180003', got '%s'", latest)
	}

	count, err := ver.AppliedCount(ctx)
	if err != nil {
		t.Fatalf("AppliedCount failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected count 3, got %d", count)
	}
}

func TestLatestVersionEmpty(t *testing.T) {
	latest, err := setupVersioner(t).LatestVersion(context.Background())
	if err != nil {
		t.Fatalf("LatestVersion failed: %v", err)
	}
	if latest != "" {
		t.Errorf("Expected empty string, got '%s'", latest)
	}
}
