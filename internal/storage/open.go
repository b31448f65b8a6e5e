package storage

import (
	"context"
	"fmt"

	"github.com/at-ishikawa/sigmareview/internal/config"
	"github.com/at-ishikawa/sigmareview/internal/database"
)

// Open creates the Storage selected by cfg.Driver. SQL drivers are migrated
// before use.
func Open(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch Driver(cfg.Driver) {
	case DriverFile, "":
		return NewFileStorage(cfg.Directory)
	case DriverMemory:
		return NewMemoryStorage(), nil
	case DriverRedis:
		return NewRedisStorage(ctx, cfg.Redis)
	case DriverSQLite, DriverMySQL:
		dbConfig := cfg.Database
		dbConfig.Driver = cfg.Driver
		db, err := database.Open(dbConfig)
		if err != nil {
			return nil, fmt.Errorf("database.Open > %w", err)
		}
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("database.Migrate > %w", err)
		}
		s, err := NewSQLStorage(db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
