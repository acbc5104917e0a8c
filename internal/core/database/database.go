package database

import (
	"fmt"

	"github.com/frahmantamala/school-store/internal"
	"github.com/frahmantamala/school-store/internal/core/datamodel"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Handles bundles the ORM handle with a sqlx view of the same pool.
type Handles struct {
	Gorm *gorm.DB
	SQLX *sqlx.DB
}

func (h *Handles) Close() error {
	sqlDB, err := h.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Open connects with the configured driver. The sqlite driver migrates the
// schema itself since goose migrations target postgres.
func Open(cfg internal.DatabaseConfig) (*Handles, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DriverName() {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.GetDSN()), gormCfg)
	default:
		db, err = gorm.Open(postgres.Open(cfg.GetDSN()), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db: %w", err)
	}

	if cfg.DriverName() == "sqlite" {
		// sqlite serializes writers; a single connection also keeps :memory: databases shared
		sqlDB.SetMaxOpenConns(1)
		if err := datamodel.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Handles{Gorm: db, SQLX: sqlx.NewDb(sqlDB, sqlxDriverName(cfg.DriverName()))}, nil
}

// OpenInMemory returns a migrated, silent sqlite database for tests.
func OpenInMemory() (*Handles, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := datamodel.AutoMigrate(db); err != nil {
		return nil, err
	}
	return &Handles{Gorm: db, SQLX: sqlx.NewDb(sqlDB, "sqlite3")}, nil
}

func sqlxDriverName(driver string) string {
	if driver == "sqlite" {
		return "sqlite3"
	}
	return "pgx"
}
