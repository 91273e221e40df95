package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Round statuses as persisted. The engines own the transitions; the store only
// records them.
const (
	RocketStatusBetting = "betting"
	RocketStatusFlying  = "flying"
	RocketStatusCrashed = "crashed"

	RouletteStatusBetting  = "betting"
	RouletteStatusSpinning = "spinning"
	RouletteStatusFinished = "finished"
)

type RoundStore struct {
	pool *pgxpool.Pool
}

// CreateRocketRound inserts a new betting-phase round with its pre-sampled
// crash point and returns the assigned round id.
func (s *RoundStore) CreateRocketRound(ctx context.Context, crashPoint float64) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO rocket_games (crash_point, status) VALUES ($1, $2) RETURNING id`,
		crashPoint, RocketStatusBetting).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create rocket round: %w", err)
	}
	return id, nil
}

func (s *RoundStore) StartRocketFlight(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE rocket_games SET status = $1, started_at = NOW() WHERE id = $2`,
		RocketStatusFlying, id)
	if err != nil {
		return fmt.Errorf("start rocket round %d: %w", id, err)
	}
	return nil
}

func (s *RoundStore) CrashRocketRound(ctx context.Context, id int64, finalMultiplier float64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE rocket_games SET status = $1, multiplier = $2, crashed_at = NOW() WHERE id = $3`,
		RocketStatusCrashed, finalMultiplier, id)
	if err != nil {
		return fmt.Errorf("crash rocket round %d: %w", id, err)
	}
	return nil
}

// CreateRouletteRound inserts a new betting-phase round with its pre-sampled
// result number and returns the assigned round id.
func (s *RoundStore) CreateRouletteRound(ctx context.Context, resultNumber int) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO roulette_games (result_number, status) VALUES ($1, $2) RETURNING id`,
		resultNumber, RouletteStatusBetting).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create roulette round: %w", err)
	}
	return id, nil
}

func (s *RoundStore) StartRouletteSpin(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE roulette_games SET status = $1, started_at = NOW() WHERE id = $2`,
		RouletteStatusSpinning, id)
	if err != nil {
		return fmt.Errorf("start roulette round %d: %w", id, err)
	}
	return nil
}

func (s *RoundStore) FinishRouletteRound(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE roulette_games SET status = $1, finished_at = NOW() WHERE id = $2`,
		RouletteStatusFinished, id)
	if err != nil {
		return fmt.Errorf("finish roulette round %d: %w", id, err)
	}
	return nil
}
