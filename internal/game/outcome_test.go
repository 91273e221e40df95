package game

import (
	"testing"
)

func TestSampleCrashPoint_Range(t *testing.T) {
	for i := 0; i < 10000; i++ {
		cp := SampleCrashPoint()
		if cp < 1.0 || cp >= 50.0 {
			t.Fatalf("SampleCrashPoint() = %v, want [1, 50)", cp)
		}
	}
}

func TestSampleCrashPoint_Distribution(t *testing.T) {
	const samples = 100000
	buckets := map[string]int{}

	for i := 0; i < samples; i++ {
		cp := SampleCrashPoint()
		switch {
		case cp < 2.0:
			buckets["low"]++
		case cp < 4.0:
			buckets["mid"]++
		case cp < 10.0:
			buckets["high"]++
		default:
			buckets["extreme"]++
		}
	}

	// Expected weights: 50%, 30%, 15%, 5%. Allow generous slack since this
	// is a statistical test.
	checks := []struct {
		bucket string
		want   float64
	}{
		{"low", 0.50},
		{"mid", 0.30},
		{"high", 0.15},
		{"extreme", 0.05},
	}

	for _, c := range checks {
		got := float64(buckets[c.bucket]) / samples
		if got < c.want-0.03 || got > c.want+0.03 {
			t.Errorf("bucket %s frequency = %.3f, want ~%.2f", c.bucket, got, c.want)
		}
	}
}

func TestSampleRouletteNumber_Range(t *testing.T) {
	seen := make(map[int]bool)
	for i := 0; i < 100000; i++ {
		n := SampleRouletteNumber()
		if n < 0 || n > 36 {
			t.Fatalf("SampleRouletteNumber() = %v, want [0, 36]", n)
		}
		seen[n] = true
	}

	// With 100k draws every pocket should have come up.
	if len(seen) != 37 {
		t.Errorf("saw %d distinct numbers, want 37", len(seen))
	}
}

func TestIsRed_IsBlack(t *testing.T) {
	reds := []int{1, 3, 5, 7, 9, 12, 14, 16, 18, 19, 21, 23, 25, 27, 30, 32, 34, 36}
	redSet := make(map[int]bool, len(reds))
	for _, n := range reds {
		redSet[n] = true
	}

	if len(reds) != 18 {
		t.Fatalf("red set has %d numbers, want 18", len(reds))
	}

	for n := 0; n <= 36; n++ {
		if IsRed(n) != redSet[n] {
			t.Errorf("IsRed(%d) = %v, want %v", n, IsRed(n), redSet[n])
		}
		wantBlack := n != 0 && !redSet[n]
		if IsBlack(n) != wantBlack {
			t.Errorf("IsBlack(%d) = %v, want %v", n, IsBlack(n), wantBlack)
		}
	}

	if IsRed(0) || IsBlack(0) {
		t.Error("zero should be neither red nor black")
	}
}

func TestRouletteWinMultiplier(t *testing.T) {
	tests := []struct {
		name     string
		betType  string
		betValue int
		result   int
		want     int64
	}{
		{"red wins on red", BetTypeRed, 0, 32, 2},
		{"red loses on black", BetTypeRed, 0, 2, 0},
		{"red loses on zero", BetTypeRed, 0, 0, 0},
		{"black wins on black", BetTypeBlack, 0, 2, 2},
		{"black loses on red", BetTypeBlack, 0, 32, 0},
		{"black loses on zero", BetTypeBlack, 0, 0, 0},
		{"green wins on zero", BetTypeGreen, 0, 0, 14},
		{"green loses otherwise", BetTypeGreen, 0, 17, 0},
		{"number exact match", BetTypeNumber, 17, 17, 36},
		{"number miss", BetTypeNumber, 17, 18, 0},
		{"number zero match", BetTypeNumber, 0, 0, 36},
		{"unknown bet type", "corner", 0, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RouletteWinMultiplier(tt.betType, tt.betValue, tt.result)
			if got != tt.want {
				t.Errorf("RouletteWinMultiplier(%q, %d, %d) = %d, want %d",
					tt.betType, tt.betValue, tt.result, got, tt.want)
			}
		})
	}
}

func TestMultiplierStep(t *testing.T) {
	tests := []struct {
		current float64
		want    float64
	}{
		{1.0, 0.01},
		{1.99, 0.01},
		{2.0, 0.02},
		{4.99, 0.02},
		{5.0, 0.05},
		{9.99, 0.05},
		{10.0, 0.1},
		{40.0, 0.1},
	}

	for _, tt := range tests {
		if got := multiplierStep(tt.current); got != tt.want {
			t.Errorf("multiplierStep(%v) = %v, want %v", tt.current, got, tt.want)
		}
	}
}
