package store

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store bundles the per-aggregate stores over one shared connection pool.
type Store struct {
	Users        *UserStore
	Rounds       *RoundStore
	Bets         *BetStore
	Transactions *TransactionStore
	Promos       *PromoStore
	Badges       *BadgeStore
	Bonuses      *BonusStore
	Blocks       *BlockStore
	Settings     *SettingsStore
	History      *GameHistoryStore
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{
		Users:        &UserStore{pool: pool},
		Rounds:       &RoundStore{pool: pool},
		Bets:         &BetStore{pool: pool},
		Transactions: &TransactionStore{pool: pool},
		Promos:       &PromoStore{pool: pool},
		Badges:       &BadgeStore{pool: pool},
		Bonuses:      &BonusStore{pool: pool},
		Blocks:       &BlockStore{pool: pool},
		Settings:     &SettingsStore{pool: pool},
		History:      &GameHistoryStore{pool: pool},
	}
}
