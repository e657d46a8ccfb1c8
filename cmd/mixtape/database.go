package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	dbPingTimeout  = 5 * time.Second
	dbDialDeadline = 30 * time.Second
	dbConnLifetime = 30 * time.Minute
)

// openDatabase dials Postgres and waits until it accepts connections. The
// service regularly starts before its database container does, so the first
// pings are expected to fail.
func openDatabase(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(dbConnLifetime)

	deadline := time.Now().Add(dbDialDeadline)
	wait := 500 * time.Millisecond
	for {
		pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return db, nil
		}

		if ctx.Err() != nil || time.Now().After(deadline) {
			_ = db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}

		time.Sleep(wait)
		if wait < dbPingTimeout {
			wait *= 2
		}
	}
}
