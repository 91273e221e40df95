package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BonusStore struct {
	pool *pgxpool.Pool
}

// LastClaimedAt returns the time of the user's most recent daily bonus claim,
// or ErrNotFound if they never claimed one.
func (s *BonusStore) LastClaimedAt(ctx context.Context, userID int64) (time.Time, error) {
	var claimedAt time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT claimed_at FROM daily_bonuses WHERE user_id = $1 ORDER BY claimed_at DESC LIMIT 1`,
		userID).Scan(&claimedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("last bonus for user %d: %w", userID, err)
	}
	return claimedAt, nil
}

func (s *BonusStore) RecordClaim(ctx context.Context, userID, amount int64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO daily_bonuses (user_id, amount) VALUES ($1, $2)`, userID, amount)
	if err != nil {
		return fmt.Errorf("record bonus for user %d: %w", userID, err)
	}
	return nil
}

// Claim credits the bonus if the user's cooldown has elapsed, in one
// transaction that locks the user row. Concurrent claims serialize on the
// lock, so only one of them passes the cooldown check. Returns the new
// balance, ErrBonusNotReady inside the cooldown, or ErrNotFound for an
// unknown user.
func (s *BonusStore) Claim(ctx context.Context, userID, amount int64, cooldown time.Duration) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("claim bonus for user %d: %w", userID, err)
	}
	defer tx.Rollback(ctx)

	var balance int64
	err = tx.QueryRow(ctx,
		`SELECT balance FROM users WHERE telegram_id = $1 FOR UPDATE`, userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("claim bonus for user %d: %w", userID, err)
	}

	var lastClaim time.Time
	err = tx.QueryRow(ctx,
		`SELECT claimed_at FROM daily_bonuses WHERE user_id = $1 ORDER BY claimed_at DESC LIMIT 1`,
		userID).Scan(&lastClaim)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("claim bonus for user %d: %w", userID, err)
	}
	if err == nil && time.Since(lastClaim) < cooldown {
		return 0, ErrBonusNotReady
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO daily_bonuses (user_id, amount) VALUES ($1, $2)`, userID, amount); err != nil {
		return 0, fmt.Errorf("claim bonus for user %d: %w", userID, err)
	}

	var newBalance int64
	err = tx.QueryRow(ctx,
		`UPDATE users SET balance = balance + $1 WHERE telegram_id = $2 RETURNING balance`,
		amount, userID).Scan(&newBalance)
	if err != nil {
		return 0, fmt.Errorf("claim bonus for user %d: %w", userID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("claim bonus for user %d: %w", userID, err)
	}
	return newBalance, nil
}
