package versioner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DefaultTable holds the applied schema versions of the inventory database.
const DefaultTable = "_stockroom_migrations"

// Record is one applied migration.
type Record struct {
	Version   string    `gorm:"primaryKey;column:version"`
	Name      string    `gorm:"column:name"`
	AppliedAt time.Time `gorm:"column:applied_at"`
}

// Versioner tracks which migrations have been applied.
type Versioner struct {
	db    *gorm.DB
	table string
}

// NewVersioner creates a versioner over table. An empty name uses DefaultTable.
func NewVersioner(db *gorm.DB, table string) *Versioner {
	if table == "" {
		table = DefaultTable
	}
	return &Versioner{db: db, table: table}
}

// Table returns the tracking table name.
func (v *Versioner) Table() string {
	return v.table
}

// WithDB returns a versioner bound to another handle, typically a transaction.
func (v *Versioner) WithDB(db *gorm.DB) *Versioner {
	return &Versioner{db: db, table: v.table}
}

// Initialize creates the tracking table.
func (v *Versioner) Initialize(ctx context.Context) error {
	if err := v.db.WithContext(ctx).Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255),
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, v.table)).Error; err != nil {
		return fmt.Errorf("create migration table: %w", err)
	}
	return nil
}

// AppliedVersions returns applied versions in ascending order.
func (v *Versioner) AppliedVersions(ctx context.Context) ([]string, error) {
	var records []Record
	if err := v.db.WithContext(ctx).Table(v.table).Order("version ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	versions := make([]string, len(records))
	for i, r := range records {
		versions[i] = r.Version
	}
	return versions, nil
}

// IsApplied reports whether version is recorded.
func (v *Versioner) IsApplied(ctx context.Context, version string) (bool, error) {
	var count int64
	if err := v.db.WithContext(ctx).Table(v.table).Where("version = ?", version).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check migration status: %w", err)
	}
	return count > 0, nil
}

// RecordApplied marks version as applied.
func (v *Versioner) RecordApplied(ctx context.Context, version, name string) error {
	record := Record{Version: version, Name: name, AppliedAt: time.Now().UTC()}
	if err := v.db.WithContext(ctx).Table(v.table).Create(&record).Error; err != nil {
		return fmt.Errorf("record migration %s: %w", version, err)
	}
	return nil
}

// RemoveApplied deletes the record of version (rollback).
func (v *Versioner) RemoveApplied(ctx context.Context, version string) error {
	if err := v.db.WithContext(ctx).Table(v.table).Where("version = ?", version).Delete(&Record{}).Error; err != nil {
		return fmt.Errorf("remove migration record %s: %w", version, err)
	}
	return nil
}

// LatestVersion returns the highest applied version, or "" when none is applied.
func (v *Versioner) LatestVersion(ctx context.Context) (string, error) {
	var record Record
	err := v.db.WithContext(ctx).Table(v.table).Order("version DESC").First(&record).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("get latest version: %w", err)
	}
	return record.Version, nil
}

// AppliedCount returns the number of applied migrations.
func (v *Versioner) AppliedCount(ctx context.Context) (int64, error) {
	var count int64
	if err := v.db.WithContext(ctx).Table(v.table).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count applied migrations: %w", err)
	}
	return count, nil
}
