package repositories

import "errors"

// Sentinel errors shared across repository implementations.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrCardNotFound       = errors.New("card not found")
	ErrCardholderNotFound = errors.New("cardholder not found")
	ErrDepositNotFound    = errors.New("deposit not found")
	ErrWebhookNotFound    = errors.New("webhook subscription not found")
	ErrDuplicateTxRef     = errors.New("duplicate transaction reference")
)
