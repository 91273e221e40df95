package game

import (
	"math/rand"
)

// SampleCrashPoint draws a rocket crash multiplier from the weighted bucket
// distribution: 50% in [1,2), 30% in [2,4), 15% in [4,10), 5% in [10,50).
// Small multipliers dominate, which is where the house edge lives.
func SampleCrashPoint() float64 {
	r := rand.Float64()
	switch {
	case r < 0.50:
		return 1.0 + rand.Float64()
	case r < 0.80:
		return 2.0 + rand.Float64()*2.0
	case r < 0.95:
		return 4.0 + rand.Float64()*6.0
	default:
		return 10.0 + rand.Float64()*40.0
	}
}

// SampleRouletteNumber draws a result uniformly from 0..36.
func SampleRouletteNumber() int {
	return rand.Intn(37)
}

var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

func IsRed(n int) bool {
	return redNumbers[n]
}

// IsBlack reports whether n is a black pocket. Zero is neither red nor black.
func IsBlack(n int) bool {
	return n != 0 && !redNumbers[n]
}

// RouletteWinMultiplier returns the payout multiplier for a bet against the
// drawn result, or 0 for a losing bet. Red/black pay 2x, green (zero) 14x,
// an exact number 36x.
func RouletteWinMultiplier(betType string, betValue, result int) int64 {
	switch betType {
	case BetTypeRed:
		if IsRed(result) {
			return 2
		}
	case BetTypeBlack:
		if IsBlack(result) {
			return 2
		}
	case BetTypeGreen:
		if result == 0 {
			return 14
		}
	case BetTypeNumber:
		if betValue == result {
			return 36
		}
	}
	return 0
}

// multiplierStep returns the per-tick increment for the live multiplier.
// Steps grow with the multiplier so rare high rounds still resolve in bounded
// wall-clock time.
func multiplierStep(current float64) float64 {
	switch {
	case current < 2.0:
		return 0.01
	case current < 5.0:
		return 0.02
	case current < 10.0:
		return 0.05
	default:
		return 0.1
	}
}
