// Package repository is the persistence boundary. It speaks database/sql
// with $1 placeholders, which both supported drivers accept: pgx stdlib
// for Postgres and modernc sqlite for local single-file mode.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/aduanatech/docextract/internal/common"
)

// DB bundles the sql handle with the pgx pool backing it (nil under
// sqlite), so Close can tear both down.
type DB struct {
	SQL    *sql.DB
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open connects per the configured driver. Postgres goes through a pgx
// pool wrapped for database/sql; sqlite opens the DSN directly.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case "pgx", "postgres":
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse dsn: %w", err)
		}
		pc.MaxConns = cfg.MaxConns
		pc.MinConns = cfg.MinConns
		pc.MaxConnLifetime = cfg.MaxConnLifetime
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
		pc.ConnConfig.RuntimeParams["application_name"] = "docextract"
		if cfg.StatementTimeout > 0 {
			pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
		}

		dialCtx := ctx
		if cfg.DialTimeout > 0 {
			var cancel context.CancelFunc
			dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
			defer cancel()
		}
		pool, err := pgxpool.NewWithConfig(dialCtx, pc)
		if err != nil {
			logger.Error("database.connect.fail", "error", err)
			return nil, fmt.Errorf("connect postgres: %w: %w", common.ErrDatabase, err)
		}
		logger.Info("database.connect.ok", "driver", cfg.Driver)
		return &DB{SQL: stdlib.OpenDBFromPool(pool), pool: pool, logger: logger}, nil

	case "sqlite":
		db, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w: %w", common.ErrDatabase, err)
		}
		// modernc sqlite serializes writes; a single connection avoids
		// SQLITE_BUSY under concurrent ingestion.
		db.SetMaxOpenConns(1)
		logger.Info("database.connect.ok", "driver", cfg.Driver)
		return &DB{SQL: db, logger: logger}, nil

	default:
		return nil, common.NewAppError("CONFIG_ERROR",
			fmt.Sprintf("unsupported database driver %q", cfg.Driver), common.ErrInvalidInput)
	}
}

// Close tears down the sql handle and, when present, the pgx pool.
func (d *DB) Close() {
	d.logger.Info("database.close")
	if d.SQL != nil {
		if err := d.SQL.Close(); err != nil {
			d.logger.Error("database.close.fail", "error", err)
		}
	}
	if d.pool != nil {
		d.pool.Close()
	}
}

// Health pings the database to catch DSN and connectivity issues early.
func (d *DB) Health(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := d.SQL.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w: %w", common.ErrDatabase, err)
	}
	return nil
}

// DDL per driver. The schema is identical; only the identity column
// syntax differs.
const (
	ddlPostgres = `
CREATE TABLE IF NOT EXISTS carnets_aduaneros (
	id                BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	numero_carnet     TEXT NOT NULL UNIQUE,
	fecha_emision     TIMESTAMPTZ NOT NULL,
	fecha_vencimiento TIMESTAMPTZ,
	nombre_titular    TEXT NOT NULL DEFAULT '',
	rut_titular       TEXT NOT NULL DEFAULT '',
	aduana            TEXT NOT NULL DEFAULT '',
	patente_vehiculo  TEXT NOT NULL DEFAULT '',
	archivo_origen    TEXT NOT NULL DEFAULT '',
	source_hash       TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_carnets_source_hash ON carnets_aduaneros (source_hash);`

	ddlSQLite = `
CREATE TABLE IF NOT EXISTS carnets_aduaneros (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	numero_carnet     TEXT NOT NULL UNIQUE,
	fecha_emision     TIMESTAMP NOT NULL,
	fecha_vencimiento TIMESTAMP,
	nombre_titular    TEXT NOT NULL DEFAULT '',
	rut_titular       TEXT NOT NULL DEFAULT '',
	aduana            TEXT NOT NULL DEFAULT '',
	patente_vehiculo  TEXT NOT NULL DEFAULT '',
	archivo_origen    TEXT NOT NULL DEFAULT '',
	source_hash       TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_carnets_source_hash ON carnets_aduaneros (source_hash);`
)

// EnsureSchema creates the carnet table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB, driver string) error {
	ddl := ddlPostgres
	if driver == "sqlite" {
		ddl = ddlSQLite
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
