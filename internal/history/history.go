// Package history archives finished match results in Postgres. It is an
// outcome log only: nothing is ever read back into a running session.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"ludo-server/internal/ludo"
)

const schema = `
CREATE TABLE IF NOT EXISTS match_results (
	id          BIGSERIAL PRIMARY KEY,
	room_code   TEXT        NOT NULL,
	winner_id   TEXT        NOT NULL,
	winner_name TEXT        NOT NULL,
	players     JSONB       NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
)`

// Result is one finished match: the winner plus every player's final stats.
type Result struct {
	RoomCode   string
	WinnerID   string
	WinnerName string
	Players    []ludo.PlayerState
	FinishedAt time.Time
}

type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects, pings and ensures the schema.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Store) RecordResult(ctx context.Context, r Result) error {
	players, err := json.Marshal(r.Players)
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO match_results (room_code, winner_id, winner_name, players, finished_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		r.RoomCode, r.WinnerID, r.WinnerName, players, r.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// RecentResults returns the newest results first.
func (s *Store) RecentResults(ctx context.Context, limit int) ([]Result, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT room_code, winner_id, winner_name, players, finished_at
		 FROM match_results ORDER BY finished_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var players []byte
		if err := rows.Scan(&r.RoomCode, &r.WinnerID, &r.WinnerName, &players, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if err := json.Unmarshal(players, &r.Players); err != nil {
			return nil, fmt.Errorf("unmarshal players: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *Store) Close() {
	s.pool.Close()
}
