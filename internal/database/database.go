package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config selects and tunes the backing store. It is passed explicitly to Open.
type Config struct {
	URL             string        `yaml:"url"`
	MigrationTable  string        `yaml:"migration_table"`
	LogLevel        string        `yaml:"log_level"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DB bundles the gorm handle with the dialect it was opened with.
type DB struct {
	*gorm.DB
	Dialect Dialect
}

// Target describes a parsed database URL.
type Target struct {
	Dialect string
	DSN     string
}

// ParseURL maps a database URL to a driver DSN.
//
//	postgres://… and postgresql://…  -> PostgreSQL
//	sqlite://path, file:…, :memory:, bare paths -> SQLite
func ParseURL(raw string) (Target, error) {
	url := strings.TrimSpace(raw)
	switch {
	case url == "":
		return Target{}, fmt.Errorf("database url is empty")
	case strings.HasPrefix(url, "postgres://"):
		return Target{Dialect: Postgres, DSN: "postgresql://" + strings.TrimPrefix(url, "postgres://")}, nil
	case strings.HasPrefix(url, "postgresql://"):
		return Target{Dialect: Postgres, DSN: url}, nil
	case strings.HasPrefix(url, "sqlite://"):
		return Target{Dialect: SQLite, DSN: strings.TrimPrefix(url, "sqlite://")}, nil
	case strings.HasPrefix(url, "file:"), url == ":memory:":
		return Target{Dialect: SQLite, DSN: url}, nil
	case strings.Contains(url, "://"):
		return Target{}, fmt.Errorf("unsupported database URL: %s", url)
	}
	return Target{Dialect: SQLite, DSN: url}, nil
}

// Open connects to the database described by cfg.
func Open(cfg Config, logger gormlogger.Interface) (*DB, error) {
	target, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	dialect, err := DialectFor(target.Dialect)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}
	gormCfg := &gorm.Config{
		Logger:         logger,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var db *gorm.DB
	switch target.Dialect {
	case Postgres:
		db, err = gorm.Open(postgres.Open(target.DSN), gormCfg)
	default:
		if err := ensureDirForSQLite(target.DSN); err != nil {
			return nil, err
		}
		db, err = gorm.Open(sqlite.Open(sqliteDSN(target.DSN)), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", target.Dialect, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	if isMemorySQLite(target) {
		// every new connection to :memory: would see an empty database
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return &DB{DB: db, Dialect: dialect}, nil
}

// Close releases the underlying connection pool.
func (d *DB) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isMemorySQLite(t Target) bool {
	return t.Dialect == SQLite && (strings.Contains(t.DSN, ":memory:") || strings.Contains(t.DSN, "mode=memory"))
}

// sqliteDSN adds a busy timeout and makes transactions take the write lock
// when they begin, so a read followed by a write inside one transaction never
// fails on a lock upgrade.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, ":memory:") {
		return dsn
	}
	for _, param := range []string{"_busy_timeout=5000", "_txlock=immediate"} {
		name := param[:strings.IndexByte(param, '=')]
		if strings.Contains(dsn, name+"=") {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + param
	}
	return dsn
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
