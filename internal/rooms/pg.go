package rooms

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const roomSchema = `
CREATE TABLE IF NOT EXISTS room (
	id bigserial PRIMARY KEY,
	code varchar(10) NOT NULL UNIQUE,
	created_at timestamptz NOT NULL DEFAULT now()
)`

// PGStore persists room codes in Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects to Postgres, verifies the connection and ensures the
// room table exists.
func NewPGStore(ctx context.Context, databaseURL string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, roomSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure room table: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

// CreateRoom inserts the code, mapping unique violations to ErrCodeTaken.
func (s *PGStore) CreateRoom(ctx context.Context, code string) error {
	_, err := s.pool.Exec(ctx, "INSERT INTO room (code) VALUES ($1)", code)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrCodeTaken
		}
		return fmt.Errorf("insert room %q: %w", code, err)
	}
	return nil
}

// RoomExists reports whether the code is stored.
func (s *PGStore) RoomExists(ctx context.Context, code string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx, "SELECT 1 FROM room WHERE code = $1 LIMIT 1", code).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check room %q: %w", code, err)
	}
	return true, nil
}

// Close releases the connection pool.
func (s *PGStore) Close(context.Context) error {
	s.pool.Close()
	return nil
}
