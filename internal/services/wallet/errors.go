package wallet

import "errors"

// Service errors
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidCurrency     = errors.New("invalid currency")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrWalletLocked        = errors.New("wallet is locked")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrCurrencyMismatch    = errors.New("currency does not match wallet")
	ErrSelfTransfer        = errors.New("cannot transfer to self")
	ErrTransactionFailed   = errors.New("transaction failed")
)
