package cli

import (
	"context"
	"os"

	"github.com/pankajredekar/stockroom/internal/cache"
	"github.com/pankajredekar/stockroom/internal/config"
	"github.com/pankajredekar/stockroom/internal/database"
	"github.com/pankajredekar/stockroom/internal/logging"
	"github.com/pankajredekar/stockroom/internal/migrations"
	"github.com/pankajredekar/stockroom/internal/repository"
	"github.com/pankajredekar/stockroom/internal/runner"
	"github.com/pankajredekar/stockroom/internal/service"
	"github.com/pankajredekar/stockroom/internal/utils"
	"github.com/pankajredekar/stockroom/internal/versioner"
)

// exit prints msg and terminates the process.
var exit = func(msg string, args ...interface{}) {
	utils.PrintError(msg, args...)
	os.Exit(1)
}

// loadConfig reads and validates the configuration, exiting on failure.
func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		exit("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		exit("Invalid config: %v", err)
	}
	return cfg
}

func newLogger() *logging.LineLogger {
	return logging.New(os.Stderr, logging.ParseLevel(logLevel))
}

// connectDB opens the configured database.
func connectDB(cfg *config.Config) *database.DB {
	db, err := database.Open(cfg.Database, logging.GormLogger(os.Stderr, logging.ParseLevel(cfg.Database.LogLevel)))
	if err != nil {
		exit("Failed to connect to database: %v", err)
	}
	return db
}

// newRunner prepares the migration runner over the built-in migrations.
func newRunner(ctx context.Context, cfg *config.Config, db *database.DB) (*runner.Runner, *versioner.Versioner) {
	ver := versioner.NewVersioner(db.DB, cfg.Database.MigrationTable)
	if err := ver.Initialize(ctx); err != nil {
		exit("Failed to initialize version table: %v", err)
	}
	return runner.NewRunner(db.DB, migrations.Registry(), ver), ver
}

// app wires the services used by the inventory commands.
type app struct {
	cfg        *config.Config
	db         *database.DB
	logger     *logging.LineLogger
	cache      cache.StatsCache
	stock      *service.StockService
	products   *service.ProductService
	categories *service.CategoryService
	stats      *service.StatsService
	seeder     *service.Seeder
}

// newApp connects to the database and builds the services. Pending
// migrations are applied first so every command sees the current schema.
func newApp(ctx context.Context) *app {
	cfg := loadConfig()
	logger := newLogger()
	db := connectDB(cfg)

	if applied, err := migrations.Apply(ctx, db.DB, cfg.Database.MigrationTable); err != nil {
		exit("Failed to apply migrations: %v", err)
	} else if len(applied) > 0 {
		logger.Info("migrations applied", map[string]interface{}{"count": len(applied)})
	}

	var statsCache cache.StatsCache = cache.Noop{}
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, cfg.Cache.TTL)
		if err != nil {
			logger.Warn("redis unavailable, statistics are not cached", map[string]interface{}{"error": err})
		} else {
			statsCache = rc
		}
	}

	products := repository.NewProductRepository(db)
	categories := repository.NewCategoryRepository(db)
	movements := repository.NewMovementRepository(db)
	threshold := cfg.Stock.LowThreshold

	return &app{
		cfg:        cfg,
		db:         db,
		logger:     logger,
		cache:      statsCache,
		stock:      service.NewStockService(products, statsCache, logger.With("stock")),
		products:   service.NewProductService(products, movements, nil, statsCache, logger.With("products"), threshold),
		categories: service.NewCategoryService(categories),
		stats:      service.NewStatsService(products, statsCache, logger.With("stats"), threshold),
		seeder:     service.NewSeeder(categories, products, statsCache, logger.With("seed")),
	}
}

func (a *app) Close() {
	a.cache.Close()
	a.db.Close()
}
