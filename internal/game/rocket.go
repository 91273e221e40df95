package game

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"frnmines/internal/store"
)

// Rocket timing defaults. The betting window and inter-round delay are
// wall-clock; the flight advances on a fixed tick.
const (
	RocketBettingWindow = 10 * time.Second
	RocketFlightTick    = 50 * time.Millisecond
	RocketRoundDelay    = 5 * time.Second

	rocketRequestTimeout = 5 * time.Second
)

// RocketConfig overrides the engine defaults, mainly for tests.
type RocketConfig struct {
	BettingWindow time.Duration
	FlightTick    time.Duration
	RoundDelay    time.Duration
	SampleOutcome func() float64
}

func (c *RocketConfig) applyDefaults() {
	if c.BettingWindow == 0 {
		c.BettingWindow = RocketBettingWindow
	}
	if c.FlightTick == 0 {
		c.FlightTick = RocketFlightTick
	}
	if c.RoundDelay == 0 {
		c.RoundDelay = RocketRoundDelay
	}
	if c.SampleOutcome == nil {
		c.SampleOutcome = SampleCrashPoint
	}
}

// RocketEngine owns the rocket round lifecycle. All round state is mutated
// from a single goroutine; bets and cashouts funnel in over channels so timer
// transitions and user requests are serialized in arrival order.
type RocketEngine struct {
	hub      Notifier
	accounts AccountStore
	rounds   RocketRoundStore
	bets     RocketBetStore
	tx       TransactionRecorder
	plays    PlayRecorder
	history  RoundHistory
	cfg      RocketConfig

	ctx       context.Context
	betCh     chan RocketBetRequest
	cashoutCh chan RocketCashoutRequest
	stopCh    chan struct{}
	doneCh    chan struct{}
	stopOnce  sync.Once
	started   atomic.Bool

	mu      sync.RWMutex
	current *RocketRound

	logger *log.Entry
}

func NewRocketEngine(hub Notifier, accounts AccountStore, rounds RocketRoundStore, bets RocketBetStore, tx TransactionRecorder, plays PlayRecorder, history RoundHistory, cfg RocketConfig) *RocketEngine {
	cfg.applyDefaults()
	return &RocketEngine{
		hub:       hub,
		accounts:  accounts,
		rounds:    rounds,
		bets:      bets,
		tx:        tx,
		plays:     plays,
		history:   history,
		cfg:       cfg,
		ctx:       context.Background(),
		betCh:     make(chan RocketBetRequest, 1024),
		cashoutCh: make(chan RocketCashoutRequest, 1024),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		logger:    log.WithField("component", "rocket"),
	}
}

func (e *RocketEngine) GetType() GameType {
	return GameTypeRocket
}

func (e *RocketEngine) Start(ctx context.Context) error {
	e.ctx = ctx
	e.started.Store(true)
	go e.run()
	return nil
}

// Stop signals the round loop and waits for it to exit, so an in-progress
// settlement is allowed to complete before the caller tears down its stores.
func (e *RocketEngine) Stop() error {
	e.stopOnce.Do(func() { close(e.stopCh) })
	if e.started.Load() {
		<-e.doneCh
	}
	return nil
}

// GetState returns a snapshot of the active round, or nil between rounds.
func (e *RocketEngine) GetState() interface{} {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.current == nil {
		return nil
	}
	snapshot := *e.current
	return &snapshot
}

// CurrentRound is GetState with its concrete type.
func (e *RocketEngine) CurrentRound() *RocketRound {
	state := e.GetState()
	if state == nil {
		return nil
	}
	return state.(*RocketRound)
}

// PlaceBet submits a bet to the round goroutine and waits for the outcome.
func (e *RocketEngine) PlaceBet(req RocketBetRequest) RocketBetResponse {
	respChan := make(chan RocketBetResponse, 1)
	req.ResponseChan = respChan

	select {
	case e.betCh <- req:
		select {
		case resp := <-respChan:
			return resp
		case <-time.After(rocketRequestTimeout):
			return RocketBetResponse{Success: false, Message: "bet timeout"}
		}
	default:
		return RocketBetResponse{Success: false, Message: "bet queue full"}
	}
}

// Cashout submits a cashout to the round goroutine and waits for the outcome.
func (e *RocketEngine) Cashout(req RocketCashoutRequest) RocketCashoutResponse {
	respChan := make(chan RocketCashoutResponse, 1)
	req.ResponseChan = respChan

	select {
	case e.cashoutCh <- req:
		select {
		case resp := <-respChan:
			return resp
		case <-time.After(rocketRequestTimeout):
			return RocketCashoutResponse{Success: false, Message: "cashout timeout"}
		}
	default:
		return RocketCashoutResponse{Success: false, Message: "cashout queue full"}
	}
}

func (e *RocketEngine) run() {
	defer close(e.doneCh)
	for {
		select {
		case <-e.stopCh:
			e.logger.Info("round loop stopped")
			return
		default:
			if !e.runRound() {
				return
			}
		}
	}
}

// runRound drives one full betting→flying→crashed cycle. It returns false
// when the engine is stopping.
func (e *RocketEngine) runRound() bool {
	crashPoint := e.cfg.SampleOutcome()

	id, err := e.rounds.CreateRocketRound(e.ctx, crashPoint)
	if err != nil {
		e.logger.Errorf("failed to create round: %v", err)
		return e.sleep(e.cfg.RoundDelay)
	}

	ledger := NewRocketLedger()

	e.mu.Lock()
	e.current = &RocketRound{
		ID:         id,
		Status:     RocketBetting,
		CrashPoint: crashPoint,
		Multiplier: 1.0,
		CreatedAt:  time.Now(),
	}
	e.mu.Unlock()

	e.logger.Infof("round %d open, crash at %.2fx (hidden)", id, crashPoint)

	e.hub.Broadcast(map[string]interface{}{
		"type":        "rocket_new_round",
		"gameId":      id,
		"bettingTime": e.cfg.BettingWindow.Milliseconds(),
	})

	bettingTimer := time.NewTimer(e.cfg.BettingWindow)
	defer bettingTimer.Stop()

	for betting := true; betting; {
		select {
		case <-bettingTimer.C:
			betting = false
		case req := <-e.betCh:
			e.processBet(req, id, ledger)
		case req := <-e.cashoutCh:
			e.reject(req, "cannot cash out now")
		case <-e.stopCh:
			return false
		}
	}

	e.mu.Lock()
	e.current.Status = RocketFlying
	e.current.StartedAt = time.Now()
	e.mu.Unlock()

	if err := e.rounds.StartRocketFlight(e.ctx, id); err != nil {
		e.logger.Errorf("round %d: failed to persist flight start: %v", id, err)
	}

	e.hub.Broadcast(map[string]interface{}{
		"type":   "rocket_started",
		"gameId": id,
	})

	ticker := time.NewTicker(e.cfg.FlightTick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.mu.Lock()
			next := e.current.Multiplier + multiplierStep(e.current.Multiplier)
			crashed := next >= crashPoint
			if crashed {
				next = crashPoint
				e.current.Status = RocketCrashed
				e.current.CrashedAt = time.Now()
			}
			e.current.Multiplier = next
			e.mu.Unlock()

			if crashed {
				e.finishRound(id, crashPoint, ledger)
				return e.sleep(e.cfg.RoundDelay)
			}

			e.hub.Broadcast(map[string]interface{}{
				"type":       "rocket_multiplier_update",
				"gameId":     id,
				"multiplier": next,
			})

		case req := <-e.cashoutCh:
			e.processCashout(req, ledger)

		case req := <-e.betCh:
			e.rejectBet(req, "bets closed")

		case <-e.stopCh:
			return false
		}
	}
}

func (e *RocketEngine) finishRound(id int64, crashPoint float64, ledger *RocketLedger) {
	e.hub.Broadcast(map[string]interface{}{
		"type":       "rocket_crashed",
		"gameId":     id,
		"crashPoint": crashPoint,
	})

	if err := e.rounds.CrashRocketRound(e.ctx, id, crashPoint); err != nil {
		e.logger.Errorf("round %d: failed to persist crash: %v", id, err)
	}

	if err := e.history.PushRocketRound(e.ctx, id, crashPoint); err != nil {
		e.logger.Errorf("round %d: failed to push history: %v", id, err)
	}

	// Winners were paid at cashout time; bets still open at the crash are
	// losses and keep their zero win amount.
	for _, entry := range ledger.All() {
		multiplier := entry.Multiplier
		if !entry.CashedOut {
			multiplier = crashPoint
		}
		if err := e.plays.Record(e.ctx, entry.UserID, string(GameTypeRocket),
			entry.Amount, entry.WinAmount, multiplier); err != nil {
			e.logger.Errorf("round %d: failed to record play for user %d: %v", id, entry.UserID, err)
		}
	}

	e.logger.Infof("round %d crashed at %.2fx: %d bets, %d lost",
		id, crashPoint, ledger.Size(), ledger.OpenCount())
}

func (e *RocketEngine) processBet(req RocketBetRequest, gameID int64, ledger *RocketLedger) {
	resp := RocketBetResponse{}
	defer func() {
		if req.ResponseChan != nil {
			req.ResponseChan <- resp
		}
	}()

	if req.Amount < MinBetAmount || req.Amount > MaxBetAmount {
		resp.Message = "invalid bet amount"
		return
	}

	if _, open := ledger.Open(req.UserID); open {
		resp.Message = "bet already placed"
		return
	}

	newBalance, err := e.accounts.Debit(e.ctx, req.UserID, req.Amount)
	if errors.Is(err, store.ErrInsufficientFunds) {
		resp.Message = "insufficient balance"
		return
	}
	if err != nil {
		e.logger.Errorf("round %d: debit failed for user %d: %v", gameID, req.UserID, err)
		resp.Message = "transaction failed"
		return
	}

	betID, err := e.bets.CreateRocketBet(e.ctx, gameID, req.UserID, req.Amount)
	if err != nil {
		// Give the stake back; the bet row never existed.
		if _, refundErr := e.accounts.Credit(e.ctx, req.UserID, req.Amount); refundErr != nil {
			e.logger.Errorf("round %d: refund failed for user %d: %v", gameID, req.UserID, refundErr)
		}
		if errors.Is(err, store.ErrDuplicateBet) {
			resp.Message = "bet already placed"
			return
		}
		e.logger.Errorf("round %d: failed to save bet for user %d: %v", gameID, req.UserID, err)
		resp.Message = "failed to save bet"
		return
	}

	ledger.Add(req.UserID, betID, req.Amount)

	if err := e.tx.Record(e.ctx, req.UserID, store.TxTypeBet, req.Amount); err != nil {
		e.logger.Errorf("round %d: failed to record bet transaction: %v", gameID, err)
	}

	e.hub.Broadcast(map[string]interface{}{
		"type":      "rocket_new_bet",
		"gameId":    gameID,
		"userId":    req.UserID,
		"betAmount": req.Amount,
	})

	resp.Success = true
	resp.BetID = betID
	resp.NewBalance = newBalance
}

func (e *RocketEngine) processCashout(req RocketCashoutRequest, ledger *RocketLedger) {
	resp := RocketCashoutResponse{}
	defer func() {
		if req.ResponseChan != nil {
			req.ResponseChan <- resp
		}
	}()

	entry, ok := ledger.Open(req.UserID)
	if !ok {
		resp.Message = "no active bet"
		return
	}

	e.mu.RLock()
	multiplier := e.current.Multiplier
	gameID := e.current.ID
	e.mu.RUnlock()

	winAmount := int64(math.Floor(float64(entry.Amount) * multiplier))

	if err := e.bets.SettleRocketBet(e.ctx, entry.BetID, multiplier, winAmount); err != nil {
		// Leave the bet open so a retry can still settle it.
		e.logger.Errorf("round %d: failed to settle bet %d: %v", gameID, entry.BetID, err)
		resp.Message = "failed to save cashout"
		return
	}

	ledger.MarkCashedOut(req.UserID, multiplier, winAmount)

	newBalance, err := e.accounts.Credit(e.ctx, req.UserID, winAmount)
	if err != nil {
		e.logger.Errorf("round %d: failed to credit win of %d to user %d: %v",
			gameID, winAmount, req.UserID, err)
		resp.Message = "failed to credit balance"
		return
	}

	if err := e.tx.Record(e.ctx, req.UserID, store.TxTypeWin, winAmount); err != nil {
		e.logger.Errorf("round %d: failed to record win transaction: %v", gameID, err)
	}

	e.hub.SendToUser(req.UserID, map[string]interface{}{
		"type":       "rocket_cashout_success",
		"amount":     winAmount,
		"multiplier": multiplier,
	})
	e.hub.Broadcast(map[string]interface{}{
		"type":       "rocket_player_cashout",
		"gameId":     gameID,
		"userId":     req.UserID,
		"multiplier": multiplier,
	})

	resp.Success = true
	resp.WinAmount = winAmount
	resp.Multiplier = multiplier
	resp.NewBalance = newBalance
}

func (e *RocketEngine) reject(req RocketCashoutRequest, message string) {
	if req.ResponseChan != nil {
		req.ResponseChan <- RocketCashoutResponse{Success: false, Message: message}
	}
}

func (e *RocketEngine) rejectBet(req RocketBetRequest, message string) {
	if req.ResponseChan != nil {
		req.ResponseChan <- RocketBetResponse{Success: false, Message: message}
	}
}

// sleep waits out the inter-round delay, returning false if the engine is
// stopping.
// sleep waits out the inter-round pause. Requests that arrive while no
// round is accepting them are rejected here rather than left queued for the
// next round's betting window.
func (e *RocketEngine) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		select {
		case <-timer.C:
			return true
		case req := <-e.betCh:
			e.rejectBet(req, "betting closed")
		case req := <-e.cashoutCh:
			e.reject(req, "cannot cash out now")
		case <-e.stopCh:
			return false
		}
	}
}
