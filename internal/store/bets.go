package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RocketBet struct {
	ID                int64     `json:"id"`
	GameID            int64     `json:"game_id"`
	UserID            int64     `json:"user_id"`
	BetAmount         int64     `json:"bet_amount"`
	CashoutMultiplier *float64  `json:"cashout_multiplier,omitempty"`
	WinAmount         int64     `json:"win_amount"`
	CreatedAt         time.Time `json:"created_at"`
}

type RouletteBet struct {
	ID        int64     `json:"id"`
	GameID    int64     `json:"game_id"`
	UserID    int64     `json:"user_id"`
	BetType   string    `json:"bet_type"`
	BetValue  *int      `json:"bet_value,omitempty"`
	BetAmount int64     `json:"bet_amount"`
	WinAmount int64     `json:"win_amount"`
	CreatedAt time.Time `json:"created_at"`
}

type BetStore struct {
	pool *pgxpool.Pool
}

// CreateRocketBet records a bet for the round. The unique index on
// (game_id, user_id) enforces the one-open-bet-per-user rule at the
// persistence layer as well.
func (s *BetStore) CreateRocketBet(ctx context.Context, gameID, userID, amount int64) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO rocket_bets (game_id, user_id, bet_amount) VALUES ($1, $2, $3) RETURNING id`,
		gameID, userID, amount).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateBet
		}
		return 0, fmt.Errorf("create rocket bet: %w", err)
	}
	return id, nil
}

// SettleRocketBet writes the cashout multiplier and win amount. The guard on a
// null cashout_multiplier makes settlement idempotent: a second settle of the
// same bet matches no row.
func (s *BetStore) SettleRocketBet(ctx context.Context, betID int64, multiplier float64, winAmount int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE rocket_bets SET cashout_multiplier = $1, win_amount = $2
		 WHERE id = $3 AND cashout_multiplier IS NULL`,
		multiplier, winAmount, betID)
	if err != nil {
		return fmt.Errorf("settle rocket bet %d: %w", betID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BetStore) RocketBetsForRound(ctx context.Context, gameID int64) ([]RocketBet, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, game_id, user_id, bet_amount, cashout_multiplier, win_amount, created_at
		 FROM rocket_bets WHERE game_id = $1 ORDER BY id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("rocket bets for round %d: %w", gameID, err)
	}
	defer rows.Close()

	var bets []RocketBet
	for rows.Next() {
		var b RocketBet
		if err := rows.Scan(&b.ID, &b.GameID, &b.UserID, &b.BetAmount,
			&b.CashoutMultiplier, &b.WinAmount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rocket bet: %w", err)
		}
		bets = append(bets, b)
	}
	return bets, rows.Err()
}

func (s *BetStore) CreateRouletteBet(ctx context.Context, gameID, userID int64, betType string, betValue *int, amount int64) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO roulette_bets (game_id, user_id, bet_type, bet_value, bet_amount)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		gameID, userID, betType, betValue, amount).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create roulette bet: %w", err)
	}
	return id, nil
}

func (s *BetStore) SetRouletteWin(ctx context.Context, betID, winAmount int64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE roulette_bets SET win_amount = $1 WHERE id = $2`, winAmount, betID)
	if err != nil {
		return fmt.Errorf("set roulette win %d: %w", betID, err)
	}
	return nil
}

func (s *BetStore) RouletteBetsForRound(ctx context.Context, gameID int64) ([]RouletteBet, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, game_id, user_id, bet_type, bet_value, bet_amount, win_amount, created_at
		 FROM roulette_bets WHERE game_id = $1 ORDER BY id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("roulette bets for round %d: %w", gameID, err)
	}
	defer rows.Close()

	var bets []RouletteBet
	for rows.Next() {
		var b RouletteBet
		if err := rows.Scan(&b.ID, &b.GameID, &b.UserID, &b.BetType,
			&b.BetValue, &b.BetAmount, &b.WinAmount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan roulette bet: %w", err)
		}
		bets = append(bets, b)
	}
	return bets, rows.Err()
}
