package waitlist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the waitlist in a single table keyed by email.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// OpenPostgres connects a pool and pings the server.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("waitlist: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("waitlist: ping: %w", err)
	}
	return NewPostgresStore(pool), nil
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS waitlist (
			email TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("waitlist: ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Submit(ctx context.Context, email string) (Outcome, error) {
	addr, err := NormalizeEmail(email)
	if err != nil {
		return 0, err
	}
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO waitlist (email, created_at) VALUES ($1, now())
		ON CONFLICT (email) DO NOTHING`, addr)
	if err != nil {
		return 0, fmt.Errorf("waitlist: insert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Duplicate, nil
	}
	return Created, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM waitlist`).Scan(&n); err != nil {
		return 0, fmt.Errorf("waitlist: count: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
