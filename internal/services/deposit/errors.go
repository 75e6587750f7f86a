package deposit

import "errors"

// Service errors
var (
	ErrInvalidAmount       = errors.New("invalid deposit amount")
	ErrInvalidCurrency     = errors.New("invalid currency")
	ErrUnknownProvider     = errors.New("unknown payment provider")
	ErrDepositNotFound     = errors.New("deposit not found")
	ErrNotDepositOwner     = errors.New("deposit belongs to another user")
	ErrProviderUnavailable = errors.New("payment provider unavailable")
)
