package game

import "context"

// The engines talk to persistence through these narrow interfaces; the
// concrete implementations live in internal/store and internal/cache.

type AccountStore interface {
	Debit(ctx context.Context, telegramID, amount int64) (int64, error)
	Credit(ctx context.Context, telegramID, amount int64) (int64, error)
}

type RocketRoundStore interface {
	CreateRocketRound(ctx context.Context, crashPoint float64) (int64, error)
	StartRocketFlight(ctx context.Context, id int64) error
	CrashRocketRound(ctx context.Context, id int64, finalMultiplier float64) error
}

type RocketBetStore interface {
	CreateRocketBet(ctx context.Context, gameID, userID, amount int64) (int64, error)
	SettleRocketBet(ctx context.Context, betID int64, multiplier float64, winAmount int64) error
}

type RouletteRoundStore interface {
	CreateRouletteRound(ctx context.Context, resultNumber int) (int64, error)
	StartRouletteSpin(ctx context.Context, id int64) error
	FinishRouletteRound(ctx context.Context, id int64) error
}

type RouletteBetStore interface {
	CreateRouletteBet(ctx context.Context, gameID, userID int64, betType string, betValue *int, amount int64) (int64, error)
	SetRouletteWin(ctx context.Context, betID, winAmount int64) error
}

type TransactionRecorder interface {
	Record(ctx context.Context, userID int64, txType string, amount int64) error
}

// PlayRecorder keeps the per-user game history; one entry per finished bet.
type PlayRecorder interface {
	Record(ctx context.Context, userID int64, gameType string, betAmount, winAmount int64, multiplier float64) error
}

type RoundHistory interface {
	PushRocketRound(ctx context.Context, gameID int64, crashPoint float64) error
	PushRouletteRound(ctx context.Context, gameID int64, resultNumber int) error
}

// Notifier delivers events to connected clients. SendToUser is best-effort
// and silently no-ops when the user is offline.
type Notifier interface {
	Broadcast(message interface{})
	SendToUser(userID int64, message interface{})
}
