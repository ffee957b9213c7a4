package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erp/realestate/internal/infrastructure/config"
	applogger "github.com/erp/realestate/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database owns the PostgreSQL pool shared by every repository
type Database struct {
	DB *gorm.DB
}

// NewDatabaseWithLogger connects to PostgreSQL, sizes the pool from cfg and
// sends SQL logs through zap
func NewDatabaseWithLogger(cfg *config.DatabaseConfig, zapLogger *zap.Logger, level gormlogger.LogLevel) (*Database, error) {
	gormLog := applogger.NewGormLogger(zapLogger, level,
		applogger.WithSlowThreshold(200*time.Millisecond),
		applogger.WithIgnoreRecordNotFoundError(true),
	)
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 gormLog,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	d := &Database{DB: db}
	pool, err := d.pool()
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	pool.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := pool.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return d, nil
}

func (d *Database) pool() (*sql.DB, error) {
	pool, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	return pool, nil
}

func (d *Database) Close() error {
	pool, err := d.pool()
	if err != nil {
		return err
	}
	return pool.Close()
}

// Ping checks the connection within ctx's deadline
func (d *Database) Ping(ctx context.Context) error {
	pool, err := d.pool()
	if err != nil {
		return err
	}
	return pool.PingContext(ctx)
}

// Stats reports the pool counters shown by the health endpoint
func (d *Database) Stats() (sql.DBStats, error) {
	pool, err := d.pool()
	if err != nil {
		return sql.DBStats{}, err
	}
	return pool.Stats(), nil
}

// ActiveTenantIDs lists every tenant that owns at least one safe or contract.
// It feeds the scheduler jobs and the periodic metrics collection.
func (d *Database) ActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := d.DB.WithContext(ctx).Raw(
		"SELECT tenant_id FROM safes UNION SELECT tenant_id FROM contracts",
	).Scan(&ids).Error
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return ids, nil
}
