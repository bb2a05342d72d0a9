package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"stocksy/config"
)

// Connect opens the Postgres connection described by cfg and applies
// the connection pool settings.
func Connect(cfg config.PostgresConfig) (*gorm.DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode,
		)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // hosted poolers in transaction mode reject prepared statements
	}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		PrepareStmt:    false,
		TranslateError: true, // surface unique violations as gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// productNameIndexDDL enforces case-insensitive name uniqueness per
// owner. GORM struct tags cannot express an expression index, so two
// concurrent creates of "Rice" and "rice" would both pass a
// raw-column index; LOWER(name) makes the database the final arbiter.
const productNameIndexDDL = `CREATE UNIQUE INDEX IF NOT EXISTS idx_products_owner_name ON products (user_id, LOWER(name))`

// EnsureIndexes creates the expression indexes AutoMigrate cannot.
func EnsureIndexes(db *gorm.DB) error {
	return db.Exec(productNameIndexDDL).Error
}
