package game

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"frnmines/internal/store"
)

const (
	RouletteBettingWindow = 30 * time.Second
	RouletteSpinDuration  = 10 * time.Second
	RouletteRoundDelay    = 10 * time.Second

	rouletteRequestTimeout = 5 * time.Second
)

// RouletteConfig overrides the engine defaults, mainly for tests.
type RouletteConfig struct {
	BettingWindow time.Duration
	SpinDuration  time.Duration
	RoundDelay    time.Duration
	SampleOutcome func() int
}

func (c *RouletteConfig) applyDefaults() {
	if c.BettingWindow == 0 {
		c.BettingWindow = RouletteBettingWindow
	}
	if c.SpinDuration == 0 {
		c.SpinDuration = RouletteSpinDuration
	}
	if c.RoundDelay == 0 {
		c.RoundDelay = RouletteRoundDelay
	}
	if c.SampleOutcome == nil {
		c.SampleOutcome = SampleRouletteNumber
	}
}

// RouletteEngine owns the roulette round lifecycle. Like the rocket engine it
// runs as a single goroutine fed by a bet channel, so there is no bet state
// to lock.
type RouletteEngine struct {
	hub      Notifier
	accounts AccountStore
	rounds   RouletteRoundStore
	bets     RouletteBetStore
	tx       TransactionRecorder
	plays    PlayRecorder
	history  RoundHistory
	cfg      RouletteConfig

	ctx      context.Context
	betCh    chan RouletteBetRequest
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	started  atomic.Bool

	mu      sync.RWMutex
	current *RouletteRound

	logger *log.Entry
}

func NewRouletteEngine(hub Notifier, accounts AccountStore, rounds RouletteRoundStore, bets RouletteBetStore, tx TransactionRecorder, plays PlayRecorder, history RoundHistory, cfg RouletteConfig) *RouletteEngine {
	cfg.applyDefaults()
	return &RouletteEngine{
		hub:      hub,
		accounts: accounts,
		rounds:   rounds,
		bets:     bets,
		tx:       tx,
		plays:    plays,
		history:  history,
		cfg:      cfg,
		ctx:      context.Background(),
		betCh:    make(chan RouletteBetRequest, 1024),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		logger:   log.WithField("component", "roulette"),
	}
}

func (e *RouletteEngine) GetType() GameType {
	return GameTypeRoulette
}

func (e *RouletteEngine) Start(ctx context.Context) error {
	e.ctx = ctx
	e.started.Store(true)
	go e.run()
	return nil
}

// Stop signals the round loop and waits for it to exit, so an in-progress
// settlement is allowed to complete before the caller tears down its stores.
func (e *RouletteEngine) Stop() error {
	e.stopOnce.Do(func() { close(e.stopCh) })
	if e.started.Load() {
		<-e.doneCh
	}
	return nil
}

// GetState returns a snapshot of the active round, or nil between rounds.
func (e *RouletteEngine) GetState() interface{} {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.current == nil {
		return nil
	}
	snapshot := *e.current
	return &snapshot
}

// CurrentRound is GetState with its concrete type.
func (e *RouletteEngine) CurrentRound() *RouletteRound {
	state := e.GetState()
	if state == nil {
		return nil
	}
	return state.(*RouletteRound)
}

// PlaceBet submits a bet to the round goroutine and waits for the outcome.
func (e *RouletteEngine) PlaceBet(req RouletteBetRequest) RouletteBetResponse {
	respChan := make(chan RouletteBetResponse, 1)
	req.ResponseChan = respChan

	select {
	case e.betCh <- req:
		select {
		case resp := <-respChan:
			return resp
		case <-time.After(rouletteRequestTimeout):
			return RouletteBetResponse{Success: false, Message: "bet timeout"}
		}
	default:
		return RouletteBetResponse{Success: false, Message: "bet queue full"}
	}
}

func (e *RouletteEngine) run() {
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

func (e *RouletteEngine) runRound() bool {
	result := e.cfg.SampleOutcome()

	id, err := e.rounds.CreateRouletteRound(e.ctx, result)
	if err != nil {
		e.logger.Errorf("failed to create round: %v", err)
		return e.sleep(e.cfg.RoundDelay)
	}

	ledger := NewRouletteLedger()

	e.mu.Lock()
	e.current = &RouletteRound{
		ID:           id,
		Status:       RouletteBetting,
		ResultNumber: result,
		CreatedAt:    time.Now(),
	}
	e.mu.Unlock()

	e.logger.Infof("round %d open, result %d (hidden)", id, result)

	e.hub.Broadcast(map[string]interface{}{
		"type":        "roulette_new_round",
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
		case <-e.stopCh:
			return false
		}
	}

	e.mu.Lock()
	e.current.Status = RouletteSpinning
	e.current.StartedAt = time.Now()
	e.mu.Unlock()

	if err := e.rounds.StartRouletteSpin(e.ctx, id); err != nil {
		e.logger.Errorf("round %d: failed to persist spin start: %v", id, err)
	}

	e.hub.Broadcast(map[string]interface{}{
		"type":   "roulette_started",
		"gameId": id,
	})

	spinTimer := time.NewTimer(e.cfg.SpinDuration)
	defer spinTimer.Stop()

	for spinning := true; spinning; {
		select {
		case <-spinTimer.C:
			spinning = false
		case req := <-e.betCh:
			e.rejectBet(req, "bets closed")
		case <-e.stopCh:
			return false
		}
	}

	e.finishRound(id, result, ledger)

	// Status flips only after settlement, so a finished round is fully paid.
	e.mu.Lock()
	e.current.Status = RouletteFinished
	e.current.FinishedAt = time.Now()
	e.mu.Unlock()

	return e.sleep(e.cfg.RoundDelay)
}

func (e *RouletteEngine) finishRound(id int64, result int, ledger *RouletteLedger) {
	e.hub.Broadcast(map[string]interface{}{
		"type":         "roulette_result",
		"gameId":       id,
		"resultNumber": result,
	})

	if err := e.rounds.FinishRouletteRound(e.ctx, id); err != nil {
		e.logger.Errorf("round %d: failed to persist finish: %v", id, err)
	}

	winners := 0
	for _, entry := range ledger.All() {
		mult := RouletteWinMultiplier(entry.BetType, entry.BetValue, result)
		winAmount := entry.Amount * mult

		if err := e.plays.Record(e.ctx, entry.UserID, string(GameTypeRoulette),
			entry.Amount, winAmount, float64(mult)); err != nil {
			e.logger.Errorf("round %d: failed to record play for user %d: %v", id, entry.UserID, err)
		}

		if mult == 0 {
			continue
		}

		if err := e.bets.SetRouletteWin(e.ctx, entry.BetID, winAmount); err != nil {
			e.logger.Errorf("round %d: failed to settle bet %d: %v", id, entry.BetID, err)
			continue
		}
		if _, err := e.accounts.Credit(e.ctx, entry.UserID, winAmount); err != nil {
			e.logger.Errorf("round %d: failed to credit win of %d to user %d: %v",
				id, winAmount, entry.UserID, err)
			continue
		}
		if err := e.tx.Record(e.ctx, entry.UserID, store.TxTypeWin, winAmount); err != nil {
			e.logger.Errorf("round %d: failed to record win transaction: %v", id, err)
		}

		e.hub.SendToUser(entry.UserID, map[string]interface{}{
			"type":         "roulette_win",
			"gameId":       id,
			"amount":       winAmount,
			"resultNumber": result,
		})
		winners++
	}

	if err := e.history.PushRouletteRound(e.ctx, id, result); err != nil {
		e.logger.Errorf("round %d: failed to push history: %v", id, err)
	}

	e.logger.Infof("round %d finished on %d: %d bets, %d winners",
		id, result, ledger.Size(), winners)
}

func (e *RouletteEngine) processBet(req RouletteBetRequest, gameID int64, ledger *RouletteLedger) {
	resp := RouletteBetResponse{}
	defer func() {
		if req.ResponseChan != nil {
			req.ResponseChan <- resp
		}
	}()

	if req.Amount < MinBetAmount || req.Amount > MaxBetAmount {
		resp.Message = "invalid bet amount"
		return
	}

	var betValue *int
	switch req.BetType {
	case BetTypeRed, BetTypeBlack, BetTypeGreen:
	case BetTypeNumber:
		if req.BetValue < 0 || req.BetValue > 36 {
			resp.Message = "invalid bet number"
			return
		}
		v := req.BetValue
		betValue = &v
	default:
		resp.Message = "invalid bet type"
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

	betID, err := e.bets.CreateRouletteBet(e.ctx, gameID, req.UserID, req.BetType, betValue, req.Amount)
	if err != nil {
		if _, refundErr := e.accounts.Credit(e.ctx, req.UserID, req.Amount); refundErr != nil {
			e.logger.Errorf("round %d: refund failed for user %d: %v", gameID, req.UserID, refundErr)
		}
		e.logger.Errorf("round %d: failed to save bet for user %d: %v", gameID, req.UserID, err)
		resp.Message = "failed to save bet"
		return
	}

	ledger.Add(RouletteLedgerEntry{
		BetID:    betID,
		UserID:   req.UserID,
		BetType:  req.BetType,
		BetValue: req.BetValue,
		Amount:   req.Amount,
	})

	if err := e.tx.Record(e.ctx, req.UserID, store.TxTypeBet, req.Amount); err != nil {
		e.logger.Errorf("round %d: failed to record bet transaction: %v", gameID, err)
	}

	e.hub.Broadcast(map[string]interface{}{
		"type":      "roulette_new_bet",
		"gameId":    gameID,
		"userId":    req.UserID,
		"betType":   req.BetType,
		"betAmount": req.Amount,
	})

	resp.Success = true
	resp.BetID = betID
	resp.NewBalance = newBalance
}

func (e *RouletteEngine) rejectBet(req RouletteBetRequest, message string) {
	if req.ResponseChan != nil {
		req.ResponseChan <- RouletteBetResponse{Success: false, Message: message}
	}
}

// sleep waits out the inter-round pause. Bets that arrive while no round is
// accepting them are rejected here rather than left queued for the next
// round's betting window.
func (e *RouletteEngine) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		select {
		case <-timer.C:
			return true
		case req := <-e.betCh:
			e.rejectBet(req, "betting closed")
		case <-e.stopCh:
			return false
		}
	}
}
