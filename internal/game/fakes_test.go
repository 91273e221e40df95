package game

import (
	"context"
	"sync"

	"frnmines/internal/store"
)

// In-memory doubles for the stores the engines depend on. All of them are
// locked because the engine goroutine and the test goroutine touch them
// concurrently.

type fakeBank struct {
	mu       sync.Mutex
	balances map[int64]int64
}

func newFakeBank() *fakeBank {
	return &fakeBank{balances: make(map[int64]int64)}
}

func (b *fakeBank) setBalance(userID, amount int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[userID] = amount
}

func (b *fakeBank) balance(userID int64) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[userID]
}

func (b *fakeBank) Debit(ctx context.Context, telegramID, amount int64) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bal, ok := b.balances[telegramID]
	if !ok {
		return 0, store.ErrNotFound
	}
	if bal < amount {
		return 0, store.ErrInsufficientFunds
	}
	b.balances[telegramID] = bal - amount
	return bal - amount, nil
}

func (b *fakeBank) Credit(ctx context.Context, telegramID, amount int64) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[telegramID] += amount
	return b.balances[telegramID], nil
}

type fakeRocketRounds struct {
	mu      sync.Mutex
	nextID  int64
	crashed map[int64]float64
}

func newFakeRocketRounds() *fakeRocketRounds {
	return &fakeRocketRounds{crashed: make(map[int64]float64)}
}

func (r *fakeRocketRounds) CreateRocketRound(ctx context.Context, crashPoint float64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	return r.nextID, nil
}

func (r *fakeRocketRounds) StartRocketFlight(ctx context.Context, id int64) error {
	return nil
}

func (r *fakeRocketRounds) CrashRocketRound(ctx context.Context, id int64, finalMultiplier float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.crashed[id] = finalMultiplier
	return nil
}

type settledBet struct {
	multiplier float64
	winAmount  int64
}

type fakeRocketBets struct {
	mu      sync.Mutex
	nextID  int64
	byUser  map[int64]int64 // rounds run one at a time, so userID alone keys the active bet
	settled map[int64]settledBet
}

func newFakeRocketBets() *fakeRocketBets {
	return &fakeRocketBets{
		byUser:  make(map[int64]int64),
		settled: make(map[int64]settledBet),
	}
}

func (b *fakeRocketBets) CreateRocketBet(ctx context.Context, gameID, userID, amount int64) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.byUser[userID]; exists {
		return 0, store.ErrDuplicateBet
	}
	b.nextID++
	b.byUser[userID] = b.nextID
	return b.nextID, nil
}

func (b *fakeRocketBets) SettleRocketBet(ctx context.Context, betID int64, multiplier float64, winAmount int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, done := b.settled[betID]; done {
		return store.ErrNotFound
	}
	b.settled[betID] = settledBet{multiplier: multiplier, winAmount: winAmount}
	return nil
}

func (b *fakeRocketBets) settledFor(betID int64) (settledBet, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.settled[betID]
	return s, ok
}

type fakeRouletteRounds struct {
	mu       sync.Mutex
	nextID   int64
	finished map[int64]bool
}

func newFakeRouletteRounds() *fakeRouletteRounds {
	return &fakeRouletteRounds{finished: make(map[int64]bool)}
}

func (r *fakeRouletteRounds) CreateRouletteRound(ctx context.Context, resultNumber int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	return r.nextID, nil
}

func (r *fakeRouletteRounds) StartRouletteSpin(ctx context.Context, id int64) error {
	return nil
}

func (r *fakeRouletteRounds) FinishRouletteRound(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished[id] = true
	return nil
}

type fakeRouletteBets struct {
	mu     sync.Mutex
	nextID int64
	wins   map[int64]int64
}

func newFakeRouletteBets() *fakeRouletteBets {
	return &fakeRouletteBets{wins: make(map[int64]int64)}
}

func (b *fakeRouletteBets) CreateRouletteBet(ctx context.Context, gameID, userID int64, betType string, betValue *int, amount int64) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	return b.nextID, nil
}

func (b *fakeRouletteBets) SetRouletteWin(ctx context.Context, betID, winAmount int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wins[betID] = winAmount
	return nil
}

func (b *fakeRouletteBets) winFor(betID int64) (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.wins[betID]
	return w, ok
}

type txRecord struct {
	userID int64
	txType string
	amount int64
}

type fakeTxLog struct {
	mu      sync.Mutex
	records []txRecord
}

func (t *fakeTxLog) Record(ctx context.Context, userID int64, txType string, amount int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, txRecord{userID: userID, txType: txType, amount: amount})
	return nil
}

func (t *fakeTxLog) countByType(txType string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, r := range t.records {
		if r.txType == txType {
			n++
		}
	}
	return n
}

type playRecord struct {
	userID     int64
	gameType   string
	betAmount  int64
	winAmount  int64
	multiplier float64
}

type fakePlayLog struct {
	mu      sync.Mutex
	records []playRecord
}

func (p *fakePlayLog) Record(ctx context.Context, userID int64, gameType string, betAmount, winAmount int64, multiplier float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, playRecord{
		userID:     userID,
		gameType:   gameType,
		betAmount:  betAmount,
		winAmount:  winAmount,
		multiplier: multiplier,
	})
	return nil
}

func (p *fakePlayLog) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records)
}

type fakeHistory struct {
	mu       sync.Mutex
	rocket   []float64
	roulette []int
}

func (h *fakeHistory) PushRocketRound(ctx context.Context, gameID int64, crashPoint float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rocket = append(h.rocket, crashPoint)
	return nil
}

func (h *fakeHistory) PushRouletteRound(ctx context.Context, gameID int64, resultNumber int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.roulette = append(h.roulette, resultNumber)
	return nil
}

func (h *fakeHistory) rocketCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rocket)
}

type fakeNotifier struct {
	mu         sync.Mutex
	broadcasts []map[string]interface{}
	direct     map[int64][]map[string]interface{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{direct: make(map[int64][]map[string]interface{})}
}

func (n *fakeNotifier) Broadcast(message interface{}) {
	m, ok := message.(map[string]interface{})
	if !ok {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.broadcasts = append(n.broadcasts, m)
}

func (n *fakeNotifier) SendToUser(userID int64, message interface{}) {
	m, ok := message.(map[string]interface{})
	if !ok {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.direct[userID] = append(n.direct[userID], m)
}

func (n *fakeNotifier) broadcastTypes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	types := make([]string, 0, len(n.broadcasts))
	for _, m := range n.broadcasts {
		if typ, ok := m["type"].(string); ok {
			types = append(types, typ)
		}
	}
	return types
}

func (n *fakeNotifier) sawBroadcast(msgType string) bool {
	for _, typ := range n.broadcastTypes() {
		if typ == msgType {
			return true
		}
	}
	return false
}

func (n *fakeNotifier) directTo(userID int64) []map[string]interface{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]map[string]interface{}(nil), n.direct[userID]...)
}
