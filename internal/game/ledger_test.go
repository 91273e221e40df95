package game

import "testing"

func TestRocketLedger_AddAndOpen(t *testing.T) {
	ledger := NewRocketLedger()

	if !ledger.Add(1, 100, 500) {
		t.Fatal("Add() should accept the first bet for a user")
	}

	if ledger.Add(1, 101, 300) {
		t.Error("Add() should reject a second bet from the same user")
	}

	entry, ok := ledger.Open(1)
	if !ok {
		t.Fatal("Open() should find the bet")
	}
	if entry.BetID != 100 || entry.Amount != 500 {
		t.Errorf("Open() = bet %d amount %d, want bet 100 amount 500", entry.BetID, entry.Amount)
	}

	if _, ok := ledger.Open(2); ok {
		t.Error("Open() should not find a bet for a user without one")
	}
}

func TestRocketLedger_MarkCashedOut(t *testing.T) {
	ledger := NewRocketLedger()
	ledger.Add(1, 100, 500)

	if !ledger.MarkCashedOut(1, 2.5, 1250) {
		t.Fatal("MarkCashedOut() should succeed for an open bet")
	}

	// Second cashout must be rejected
	if ledger.MarkCashedOut(1, 3.0, 1500) {
		t.Error("MarkCashedOut() should reject a bet already cashed out")
	}

	if _, ok := ledger.Open(1); ok {
		t.Error("Open() should not return a cashed-out bet")
	}

	if ledger.MarkCashedOut(99, 2.0, 100) {
		t.Error("MarkCashedOut() should reject an unknown user")
	}
}

func TestRocketLedger_Counts(t *testing.T) {
	ledger := NewRocketLedger()
	ledger.Add(1, 100, 500)
	ledger.Add(2, 101, 200)
	ledger.Add(3, 102, 700)

	if ledger.Size() != 3 {
		t.Errorf("Size() = %d, want 3", ledger.Size())
	}
	if ledger.OpenCount() != 3 {
		t.Errorf("OpenCount() = %d, want 3", ledger.OpenCount())
	}

	ledger.MarkCashedOut(2, 1.8, 360)

	if ledger.Size() != 3 {
		t.Errorf("Size() = %d after cashout, want 3", ledger.Size())
	}
	if ledger.OpenCount() != 2 {
		t.Errorf("OpenCount() = %d after cashout, want 2", ledger.OpenCount())
	}
}

func TestRouletteLedger_MultipleBetsPerUser(t *testing.T) {
	ledger := NewRouletteLedger()

	v := 17
	ledger.Add(RouletteLedgerEntry{BetID: 1, UserID: 1, BetType: BetTypeRed, Amount: 100})
	ledger.Add(RouletteLedgerEntry{BetID: 2, UserID: 1, BetType: BetTypeNumber, BetValue: v, Amount: 50})
	ledger.Add(RouletteLedgerEntry{BetID: 3, UserID: 2, BetType: BetTypeGreen, Amount: 25})

	if ledger.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", ledger.Size())
	}

	all := ledger.All()
	if len(all) != 3 {
		t.Fatalf("All() returned %d entries, want 3", len(all))
	}

	// Same user may hold several bets in one round
	userOne := 0
	for _, e := range all {
		if e.UserID == 1 {
			userOne++
		}
	}
	if userOne != 2 {
		t.Errorf("user 1 has %d bets, want 2", userOne)
	}
}
