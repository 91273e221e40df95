package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// GameHistoryEntry is a client-reported single-player game result (mines and
// friends), kept separate from the server-driven round tables.
type GameHistoryEntry struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	GameType   string    `json:"game_type"`
	BetAmount  int64     `json:"bet_amount"`
	WinAmount  int64     `json:"win_amount"`
	Multiplier float64   `json:"multiplier"`
	CreatedAt  time.Time `json:"created_at"`
}

type GameHistoryStore struct {
	pool *pgxpool.Pool
}

func (s *GameHistoryStore) Record(ctx context.Context, userID int64, gameType string, betAmount, winAmount int64, multiplier float64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO game_history (user_id, game_type, bet_amount, win_amount, multiplier)
		 VALUES ($1, $2, $3, $4, $5)`,
		userID, gameType, betAmount, winAmount, multiplier)
	if err != nil {
		return fmt.Errorf("record game history for user %d: %w", userID, err)
	}
	return nil
}

func (s *GameHistoryStore) ListByUser(ctx context.Context, userID int64, limit int) ([]GameHistoryEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, game_type, bet_amount, win_amount, COALESCE(multiplier, 0), created_at
		 FROM game_history WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list game history for user %d: %w", userID, err)
	}
	defer rows.Close()

	var entries []GameHistoryEntry
	for rows.Next() {
		var e GameHistoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.GameType, &e.BetAmount,
			&e.WinAmount, &e.Multiplier, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan game history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
