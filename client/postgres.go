package client

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"
)

var (
	db    *sql.DB
	dbErr error
	once  sync.Once
)

// ConnectPostgres opens the shared connection pool once per process.
func ConnectPostgres(uri string) (*sql.DB, error) {
	once.Do(func() {
		conn, err := sql.Open("postgres", uri)
		if err != nil {
			dbErr = fmt.Errorf("open postgres: %w", err)
			return
		}

		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(15 * time.Minute)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := conn.PingContext(ctx); err != nil {
			conn.Close()
			dbErr = fmt.Errorf("postgres connection failed: %w", err)
			return
		}
		db = conn
	})

	return db, dbErr
}
