package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rshashank20/foodexpiry-tracker/internal/platform/logging"
)

var ErrMissingDSN = errors.New("DATABASE_URL not set")

// ConnectPostgres opens a pool, pings it and makes sure the schema exists.
func ConnectPostgres(ctx context.Context, dsn string, log logging.Logger) (*pgxpool.Pool, error) {
	config, err := poolConfig(dsn)
	if err != nil {
		return nil, err
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}
	log.Info("connected to postgres",
		logging.String("host", config.ConnConfig.Host),
		logging.String("database", config.ConnConfig.Database),
	)

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	log.Info("schema initialized")

	return db, nil
}

func poolConfig(dsn string) (*pgxpool.Config, error) {
	if dsn == "" {
		return nil, ErrMissingDSN
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	return config, nil
}

// initSchema creates or updates the database schema
func initSchema(ctx context.Context, db *pgxpool.Pool) error {
	// -------------------------------
	// INVENTORY ITEMS
	// -------------------------------
	inventorySQL := `
		CREATE TABLE IF NOT EXISTS inventory_items (
			id UUID PRIMARY KEY,
			user_id VARCHAR(128) NOT NULL,
			item_name VARCHAR(255) NOT NULL,
			quantity VARCHAR(100) NOT NULL DEFAULT '1',
			category VARCHAR(100) NOT NULL DEFAULT 'unknown',
			raw_expiry VARCHAR(100) NOT NULL DEFAULT '',
			expiry_date DATE NULL,
			added_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := db.Exec(ctx, inventorySQL); err != nil {
		return err
	}

	// -------------------------------
	// INDEXES (per-user listing, daily sweep)
	// -------------------------------
	indexSQL := `
		CREATE INDEX IF NOT EXISTS idx_inventory_items_user
			ON inventory_items (user_id, added_at);

		CREATE INDEX IF NOT EXISTS idx_inventory_items_expiry
			ON inventory_items (expiry_date)
			WHERE expiry_date IS NOT NULL;
	`
	if _, err := db.Exec(ctx, indexSQL); err != nil {
		return err
	}

	return nil
}
