package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Block is an FN-Live restriction placed on a user. While a block is active
// the user cannot place bets.
type Block struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Reason       string    `json:"reason"`
	BlockedUntil time.Time `json:"blocked_until"`
	CreatedAt    time.Time `json:"created_at"`
}

type BlockStore struct {
	pool *pgxpool.Pool
}

func (s *BlockStore) Create(ctx context.Context, userID int64, reason string, until time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO fn_live_blocks (user_id, reason, blocked_until) VALUES ($1, $2, $3)`,
		userID, reason, until)
	if err != nil {
		return fmt.Errorf("block user %d: %w", userID, err)
	}
	return nil
}

// ActiveBlock returns the user's newest unexpired block, or ErrNotFound.
func (s *BlockStore) ActiveBlock(ctx context.Context, userID int64) (*Block, error) {
	b := &Block{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, reason, blocked_until, created_at
		 FROM fn_live_blocks
		 WHERE user_id = $1 AND blocked_until > NOW()
		 ORDER BY created_at DESC LIMIT 1`, userID).
		Scan(&b.ID, &b.UserID, &b.Reason, &b.BlockedUntil, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("active block for user %d: %w", userID, err)
	}
	return b, nil
}

// Clear removes all blocks for the user, active or not.
func (s *BlockStore) Clear(ctx context.Context, userID int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM fn_live_blocks WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("unblock user %d: %w", userID, err)
	}
	return nil
}
