package store

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPromoUsed         = errors.New("promo code already used")
	ErrDuplicateBet      = errors.New("bet already placed")
	ErrBonusNotReady     = errors.New("bonus cooldown not elapsed")
)
