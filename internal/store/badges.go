package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type BadgeStore struct {
	pool *pgxpool.Pool
}

func (s *BadgeStore) Grant(ctx context.Context, userID int64, badgeType string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO badges (user_id, badge_type) VALUES ($1, $2)`, userID, badgeType)
	if err != nil {
		return fmt.Errorf("grant badge %s to user %d: %w", badgeType, userID, err)
	}
	return nil
}

func (s *BadgeStore) ListByUser(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT badge_type FROM badges WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list badges for user %d: %w", userID, err)
	}
	defer rows.Close()

	var badges []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}
