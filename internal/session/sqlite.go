package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps sessions in a local file for single-node deployments.
type SQLiteStore struct {
	DB  *sql.DB
	Now func() time.Time
}

// OpenSQLite opens (and creates if needed) the session database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one writer; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{DB: db, Now: time.Now}
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

const createSQLiteSessionsSQL = `
CREATE TABLE IF NOT EXISTS web_sessions (
  id TEXT PRIMARY KEY,
  data BLOB NOT NULL,
  expires_at INTEGER NOT NULL
)`

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, createSQLiteSessionsSQL); err != nil {
		return fmt.Errorf("create web_sessions: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (Record, error) {
	rec := Record{ID: id}
	var expiresAt int64
	err := s.DB.QueryRowContext(ctx,
		`SELECT data, expires_at FROM web_sessions WHERE id = ? AND expires_at > ?`,
		id, s.Now().UnixMilli(),
	).Scan(&rec.Data, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	rec.ExpiresAt = time.UnixMilli(expiresAt)
	return rec, nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec Record) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO web_sessions (id, data, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`,
		rec.ID, rec.Data, rec.ExpiresAt.UnixMilli(),
	)
	return err
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM web_sessions WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM web_sessions WHERE expires_at <= ?`, s.Now().UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}
