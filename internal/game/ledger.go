package game

// The ledgers are the in-memory working set of bets for the currently active
// round. They are owned by the engine's round goroutine and accessed from it
// only, so they carry no locking. Persisted bet rows outlive them; the ledger
// itself is discarded when the next round starts.

// RocketLedgerEntry tracks one user's bet in the active rocket round.
type RocketLedgerEntry struct {
	BetID      int64
	UserID     int64
	Amount     int64
	CashedOut  bool
	Multiplier float64
	WinAmount  int64
}

// RocketLedger indexes the active round's bets by user, preserving the
// one-open-bet-per-user rule: Add rejects a second bet for the same user.
type RocketLedger struct {
	bets map[int64]*RocketLedgerEntry
}

func NewRocketLedger() *RocketLedger {
	return &RocketLedger{bets: make(map[int64]*RocketLedgerEntry)}
}

// Add records a bet for the user. It reports false if the user already has a
// bet in this round.
func (l *RocketLedger) Add(userID, betID, amount int64) bool {
	if _, exists := l.bets[userID]; exists {
		return false
	}
	l.bets[userID] = &RocketLedgerEntry{BetID: betID, UserID: userID, Amount: amount}
	return true
}

// Open returns the user's not-yet-cashed-out bet, if any.
func (l *RocketLedger) Open(userID int64) (*RocketLedgerEntry, bool) {
	entry, ok := l.bets[userID]
	if !ok || entry.CashedOut {
		return nil, false
	}
	return entry, true
}

// MarkCashedOut locks in the multiplier and win amount for the user's bet.
// It reports false if there is no open bet, so a second cashout cannot
// overwrite the first.
func (l *RocketLedger) MarkCashedOut(userID int64, multiplier float64, winAmount int64) bool {
	entry, ok := l.Open(userID)
	if !ok {
		return false
	}
	entry.CashedOut = true
	entry.Multiplier = multiplier
	entry.WinAmount = winAmount
	return true
}

func (l *RocketLedger) Size() int {
	return len(l.bets)
}

// All returns every bet of the round, cashed out or not.
func (l *RocketLedger) All() []*RocketLedgerEntry {
	entries := make([]*RocketLedgerEntry, 0, len(l.bets))
	for _, entry := range l.bets {
		entries = append(entries, entry)
	}
	return entries
}

// OpenCount returns the number of bets still riding, i.e. losses at crash
// time.
func (l *RocketLedger) OpenCount() int {
	n := 0
	for _, entry := range l.bets {
		if !entry.CashedOut {
			n++
		}
	}
	return n
}

// RouletteLedgerEntry tracks one bet in the active roulette round. A user may
// hold several entries (different bet types) in the same round.
type RouletteLedgerEntry struct {
	BetID    int64
	UserID   int64
	BetType  string
	BetValue int
	Amount   int64
}

type RouletteLedger struct {
	bets []RouletteLedgerEntry
}

func NewRouletteLedger() *RouletteLedger {
	return &RouletteLedger{}
}

func (l *RouletteLedger) Add(entry RouletteLedgerEntry) {
	l.bets = append(l.bets, entry)
}

func (l *RouletteLedger) All() []RouletteLedgerEntry {
	return l.bets
}

func (l *RouletteLedger) Size() int {
	return len(l.bets)
}
