package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Transaction types recorded in the ledger.
const (
	TxTypeDeposit    = "deposit"
	TxTypeWithdrawal = "withdrawal"
	TxTypeBet        = "bet"
	TxTypeWin        = "win"
	TxTypeBonus      = "bonus"
	TxTypePromo      = "promo"
	TxTypeAdmin      = "admin"
)

type Transaction struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type TransactionStore struct {
	pool *pgxpool.Pool
}

// Record appends a completed ledger row. The ledger is append-only; balance
// changes themselves happen in UserStore.
func (s *TransactionStore) Record(ctx context.Context, userID int64, txType string, amount int64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO transactions (user_id, type, amount) VALUES ($1, $2, $3)`,
		userID, txType, amount)
	if err != nil {
		return fmt.Errorf("record %s transaction for user %d: %w", txType, userID, err)
	}
	return nil
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID int64, limit int) ([]Transaction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, type, amount, status, created_at
		 FROM transactions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions for user %d: %w", userID, err)
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var tx Transaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.Amount, &tx.Status, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
