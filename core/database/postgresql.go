package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"slotwise/core/config"
	"slotwise/core/constants"
	"slotwise/core/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type IDatabase interface {
	ExecContext(ctx context.Context, query string, args ...any) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	SQLx() *sqlx.DB
}

type Database struct {
	db   *sql.DB
	sqlx *sqlx.DB
}

// schema is applied idempotently on startup. Booking records are never
// hard-deleted (status flips to cancelled), so no ON DELETE cascade exists.
const schema = `
CREATE TABLE IF NOT EXISTS bookings (
	id                 UUID PRIMARY KEY,
	owner_id           UUID NOT NULL,
	calendar_id        TEXT NOT NULL,
	title              TEXT NOT NULL,
	description        TEXT,
	start_time         TIMESTAMPTZ NOT NULL,
	end_time           TIMESTAMPTZ NOT NULL,
	participants       JSONB NOT NULL DEFAULT '[]',
	timezone           TEXT NOT NULL,
	provider_event_id  TEXT,
	meeting_link       TEXT,
	status             TEXT NOT NULL DEFAULT 'scheduled',
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT check_booking_status CHECK (status IN ('scheduled', 'cancelled')),
	CONSTRAINT check_booking_range CHECK (start_time < end_time)
);
CREATE INDEX IF NOT EXISTS idx_bookings_owner ON bookings (owner_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_bookings_calendar_time ON bookings (calendar_id, start_time);

CREATE TABLE IF NOT EXISTS calendar_credentials (
	calendar_id       TEXT PRIMARY KEY,
	access_token      TEXT NOT NULL,
	refresh_token     TEXT NOT NULL,
	token_expires_at  TIMESTAMPTZ NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

func InitDB(cfg config.DatabaseConfig) (Database, error) {
	logger.Info("Database:Init:Start", "host", cfg.Host, "database", cfg.DBName)

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, constants.DatabaseSSLMode)

	sqlxDB, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logger.Error("Database:Init:Connect:Error", err)
		return Database{}, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB := sqlxDB.DB
	sqlDB.SetMaxOpenConns(constants.DatabaseMaxOpenConns)
	sqlDB.SetMaxIdleConns(constants.DatabaseMaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(constants.DatabaseConnMaxLifetime) * time.Minute)

	if err = sqlDB.Ping(); err != nil {
		logger.Error("Database:Init:Ping:Error", err)
		return Database{}, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err = sqlDB.Exec(schema); err != nil {
		logger.Error("Database:Init:Schema:Error", err)
		return Database{}, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info("Database:Init:Success",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.DBName,
		"maxOpenConns", constants.DatabaseMaxOpenConns,
		"maxIdleConns", constants.DatabaseMaxIdleConns,
	)

	return Database{db: sqlDB, sqlx: sqlxDB}, nil
}

func (d *Database) ExecContext(ctx context.Context, query string, args ...any) error {
	_, err := d.sqlx.ExecContext(ctx, query, args...)
	return err
}

func (d *Database) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return d.sqlx.GetContext(ctx, dest, query, args...)
}

func (d *Database) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return d.sqlx.SelectContext(ctx, dest, query, args...)
}

func (d *Database) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, query, args...)
}

func (d *Database) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, query, args...)
}

func (d *Database) NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error) {
	return d.sqlx.NamedExecContext(ctx, query, arg)
}

func (d *Database) SQLx() *sqlx.DB {
	return d.sqlx
}

func (d *Database) Close() error {
	return d.sqlx.Close()
}
