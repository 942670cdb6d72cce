// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"volunteer-engine/internal/common/config"
)

// NewPostgres opens the congregation database with the configured pool limits. The
// connection is not verified; call WaitReady before first use.
func NewPostgres(cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// PostgresPinger adapts *sql.DB to Pinger.
type PostgresPinger struct {
	DB *sql.DB
}

func (p PostgresPinger) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}
