package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Promo struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Amount    int64     `json:"amount"`
	UsedBy    *int64    `json:"used_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type PromoStore struct {
	pool *pgxpool.Pool
}

func (s *PromoStore) Create(ctx context.Context, code string, amount int64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO promocodes (code, amount) VALUES ($1, $2)`,
		strings.ToUpper(code), amount)
	if err != nil {
		return fmt.Errorf("create promo %s: %w", code, err)
	}
	return nil
}

// Redeem claims a single-use code for the user. The used_by guard is part of
// the UPDATE so two concurrent redemptions cannot both succeed.
func (s *PromoStore) Redeem(ctx context.Context, code string, userID int64) (int64, error) {
	code = strings.ToUpper(code)

	var amount int64
	err := s.pool.QueryRow(ctx,
		`UPDATE promocodes SET used_by = $1 WHERE code = $2 AND used_by IS NULL RETURNING amount`,
		userID, code).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if checkErr := s.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM promocodes WHERE code = $1)`, code).Scan(&exists); checkErr != nil {
			return 0, fmt.Errorf("check promo %s: %w", code, checkErr)
		}
		if exists {
			return 0, ErrPromoUsed
		}
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("redeem promo %s: %w", code, err)
	}
	return amount, nil
}

func (s *PromoStore) List(ctx context.Context) ([]Promo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, code, amount, used_by, created_at FROM promocodes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list promos: %w", err)
	}
	defer rows.Close()

	var promos []Promo
	for rows.Next() {
		var p Promo
		if err := rows.Scan(&p.ID, &p.Code, &p.Amount, &p.UsedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan promo: %w", err)
		}
		promos = append(promos, p)
	}
	return promos, rows.Err()
}
