// Package database provides the PostgreSQL connection pool shared by the
// user-service. It is the only stateful dependency of the service; handlers
// stay stateless and go through this pool for every read and write.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service defines the database operations used by repositories
type Service interface {
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Health(ctx context.Context) map[string]string
	Close()
}

// service implements Service backed by a pgx connection pool
type service struct {
	pool *pgxpool.Pool
}

// New creates a connection pool for the given DSN and verifies connectivity
func New(ctx context.Context, dsn string) (Service, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &service{pool: pool}, nil
}

// NewFromPool wraps an existing pool. Used by tests that manage their own container.
func NewFromPool(pool *pgxpool.Pool) Service {
	return &service{pool: pool}
}

func (s *service) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return s.pool.Query(ctx, query, args...)
}

func (s *service) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return s.pool.QueryRow(ctx, query, args...)
}

func (s *service) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	return s.pool.Exec(ctx, query, args...)
}

// Health reports pool status for the health endpoint
func (s *service) Health(ctx context.Context) map[string]string {
	health := make(map[string]string)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.pool.Ping(pingCtx); err != nil {
		health["status"] = "down"
		health["error"] = err.Error()
		return health
	}

	stats := s.pool.Stat()
	health["status"] = "up"
	health["total_conns"] = fmt.Sprintf("%d", stats.TotalConns())
	health["idle_conns"] = fmt.Sprintf("%d", stats.IdleConns())

	return health
}

func (s *service) Close() {
	s.pool.Close()
}
