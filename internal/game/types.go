package game

import (
	"time"
)

type GameType string

const (
	GameTypeRocket   GameType = "rocket"
	GameTypeRoulette GameType = "roulette"
)

// Rocket round phases.
const (
	RocketBetting = "betting"
	RocketFlying  = "flying"
	RocketCrashed = "crashed"
)

// Roulette round phases.
const (
	RouletteBetting  = "betting"
	RouletteSpinning = "spinning"
	RouletteFinished = "finished"
)

// Roulette bet types.
const (
	BetTypeRed    = "red"
	BetTypeBlack  = "black"
	BetTypeGreen  = "green"
	BetTypeNumber = "number"
)

const (
	MinBetAmount = 1
	MaxBetAmount = 1_000_000
)

// RocketRound is the live state of the active rocket round. The crash point
// is sampled once at creation and never serialized until the crash reveals it.
type RocketRound struct {
	ID         int64     `json:"game_id"`
	Status     string    `json:"status"`
	CrashPoint float64   `json:"-"`
	Multiplier float64   `json:"multiplier"`
	CreatedAt  time.Time `json:"created_at"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	CrashedAt  time.Time `json:"crashed_at,omitempty"`
}

// RouletteRound is the live state of the active roulette round. The result is
// sampled at creation and hidden until the spin finishes.
type RouletteRound struct {
	ID           int64     `json:"game_id"`
	Status       string    `json:"status"`
	ResultNumber int       `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	StartedAt    time.Time `json:"started_at,omitempty"`
	FinishedAt   time.Time `json:"finished_at,omitempty"`
}

type RocketBetRequest struct {
	UserID       int64                  `json:"telegram_id"`
	Amount       int64                  `json:"bet_amount"`
	ResponseChan chan RocketBetResponse `json:"-"`
}

type RocketBetResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	BetID      int64  `json:"bet_id,omitempty"`
	NewBalance int64  `json:"new_balance,omitempty"`
}

type RocketCashoutRequest struct {
	UserID       int64                      `json:"telegram_id"`
	ResponseChan chan RocketCashoutResponse `json:"-"`
}

type RocketCashoutResponse struct {
	Success    bool    `json:"success"`
	Message    string  `json:"message,omitempty"`
	WinAmount  int64   `json:"win_amount,omitempty"`
	Multiplier float64 `json:"multiplier,omitempty"`
	NewBalance int64   `json:"new_balance,omitempty"`
}

type RouletteBetRequest struct {
	UserID       int64                    `json:"telegram_id"`
	BetType      string                   `json:"bet_type"`
	BetValue     int                      `json:"bet_value"`
	Amount       int64                    `json:"bet_amount"`
	ResponseChan chan RouletteBetResponse `json:"-"`
}

type RouletteBetResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	BetID      int64  `json:"bet_id,omitempty"`
	NewBalance int64  `json:"new_balance,omitempty"`
}
