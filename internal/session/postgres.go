package session

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	Pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Pool: pool}
}

const createWebSessionsSQL = `
CREATE TABLE IF NOT EXISTS web_sessions (
  id text PRIMARY KEY,
  data jsonb NOT NULL,
  expires_at timestamptz NOT NULL,
  updated_at timestamptz NOT NULL DEFAULT now()
)`

const createWebSessionsExpiryIndexSQL = `
CREATE INDEX IF NOT EXISTS web_sessions_expires_at_idx ON web_sessions (expires_at)`

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.Pool.Exec(ctx, createWebSessionsSQL); err != nil {
		return err
	}
	if _, err := s.Pool.Exec(ctx, createWebSessionsExpiryIndexSQL); err != nil {
		return err
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, id string) (Record, error) {
	rec := Record{ID: id}
	err := s.Pool.QueryRow(ctx,
		`SELECT data, expires_at FROM web_sessions WHERE id = $1 AND expires_at > now()`,
		id,
	).Scan(&rec.Data, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func (s *PostgresStore) Save(ctx context.Context, rec Record) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO web_sessions (id, data, expires_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at, updated_at = now()`,
		rec.ID, rec.Data, rec.ExpiresAt,
	)
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM web_sessions WHERE id = $1`, id)
	return err
}

// DeleteExpired removes stale rows and reports how many were dropped.
func (s *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.Pool.Exec(ctx, `DELETE FROM web_sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}
