package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitalmed/exam-bookings/pkg/config"
)

func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MaxConnLifetime = cfg.MaxLifetime
	poolCfg.HealthCheckPeriod = 30 * time.Second

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// EnsureSchema creates the appointments table when missing. The UNIQUE
// constraint on scheduled_at is the exclusion mechanism for two commits racing
// for the same exact instant.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS appointments (
		id BIGSERIAL PRIMARY KEY,
		client_name TEXT NOT NULL,
		region TEXT NOT NULL,
		exam_type TEXT NOT NULL,
		scheduled_at TIMESTAMP NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure appointments schema: %w", err)
	}
	return nil
}
