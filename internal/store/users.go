package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type User struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	PhotoURL   string    `json:"photo_url"`
	Balance    int64     `json:"balance"`
	Verified   bool      `json:"verified"`
	IsFounder  bool      `json:"is_founder"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

type UserStore struct {
	pool *pgxpool.Pool
}

func (s *UserStore) GetByTelegramID(ctx context.Context, telegramID int64) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, telegram_id, COALESCE(username,''), COALESCE(first_name,''), COALESCE(last_name,''),
		        COALESCE(photo_url,''), balance, verified, is_founder, created_at, last_active
		 FROM users WHERE telegram_id = $1`, telegramID).
		Scan(&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName,
			&u.PhotoURL, &u.Balance, &u.Verified, &u.IsFounder, &u.CreatedAt, &u.LastActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", telegramID, err)
	}
	return u, nil
}

func (s *UserStore) Create(ctx context.Context, telegramID int64, username, firstName, lastName, photoURL string) (*User, error) {
	u := &User{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		PhotoURL:   photoURL,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (telegram_id, username, first_name, last_name, photo_url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, balance, verified, is_founder, created_at, last_active`,
		telegramID, username, firstName, lastName, photoURL).
		Scan(&u.ID, &u.Balance, &u.Verified, &u.IsFounder, &u.CreatedAt, &u.LastActive)
	if err != nil {
		return nil, fmt.Errorf("create user %d: %w", telegramID, err)
	}
	return u, nil
}

// Debit atomically withdraws amount from the user's balance. The balance check
// and the decrement happen in one statement so concurrent debits cannot both
// observe the same pre-debit balance.
func (s *UserStore) Debit(ctx context.Context, telegramID, amount int64) (int64, error) {
	var balance int64
	err := s.pool.QueryRow(ctx,
		`UPDATE users SET balance = balance - $1
		 WHERE telegram_id = $2 AND balance >= $1
		 RETURNING balance`, amount, telegramID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the user is unknown or the balance is short.
		if _, getErr := s.GetByTelegramID(ctx, telegramID); getErr != nil {
			return 0, getErr
		}
		return 0, ErrInsufficientFunds
	}
	if err != nil {
		return 0, fmt.Errorf("debit user %d: %w", telegramID, err)
	}
	return balance, nil
}

// Credit atomically deposits amount into the user's balance.
func (s *UserStore) Credit(ctx context.Context, telegramID, amount int64) (int64, error) {
	var balance int64
	err := s.pool.QueryRow(ctx,
		`UPDATE users SET balance = balance + $1 WHERE telegram_id = $2 RETURNING balance`,
		amount, telegramID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("credit user %d: %w", telegramID, err)
	}
	return balance, nil
}

// AdjustBalance applies a signed admin delta. Unlike Debit it may drive the
// balance negative, matching the original admin behavior.
func (s *UserStore) AdjustBalance(ctx context.Context, telegramID, delta int64) (int64, error) {
	var balance int64
	err := s.pool.QueryRow(ctx,
		`UPDATE users SET balance = balance + $1 WHERE telegram_id = $2 RETURNING balance`,
		delta, telegramID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("adjust balance user %d: %w", telegramID, err)
	}
	return balance, nil
}

func (s *UserStore) TouchLastActive(ctx context.Context, telegramID int64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET last_active = NOW() WHERE telegram_id = $1`, telegramID)
	if err != nil {
		return fmt.Errorf("touch user %d: %w", telegramID, err)
	}
	return nil
}

func (s *UserStore) IsFounder(ctx context.Context, telegramID int64) (bool, error) {
	var founder bool
	err := s.pool.QueryRow(ctx,
		`SELECT is_founder FROM users WHERE telegram_id = $1`, telegramID).Scan(&founder)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("founder check %d: %w", telegramID, err)
	}
	return founder, nil
}

// List returns all users ordered by recency, for the admin panel.
func (s *UserStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, telegram_id, COALESCE(username,''), COALESCE(first_name,''), COALESCE(last_name,''),
		        COALESCE(photo_url,''), balance, verified, is_founder, created_at, last_active
		 FROM users ORDER BY last_active DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName,
			&u.PhotoURL, &u.Balance, &u.Verified, &u.IsFounder, &u.CreatedAt, &u.LastActive); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
