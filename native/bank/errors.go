package bank

import "errors"

var (
	// ErrInvalidConfig reports a bank or rate configuration that fails
	// validation.
	ErrInvalidConfig = errors.New("bank: invalid configuration")
	// ErrNegativeInterestRate reports a computed rate below zero. This is a
	// programming-invariant violation, not a recoverable user condition.
	ErrNegativeInterestRate = errors.New("bank: negative interest rate")
	// ErrDepositCapacityExceeded reports a deposit that would push the pool
	// to or past its configured capacity.
	ErrDepositCapacityExceeded = errors.New("bank: deposit capacity exceeded")
	// ErrEmptyPool reports an interest accrual against a pool with no
	// deposits; utilization is undefined there.
	ErrEmptyPool = errors.New("bank: no deposits to accrue against")
	// ErrClockRegression reports an accrual timestamp earlier than the last
	// recorded accrual. Timestamps must be monotonic per bank.
	ErrClockRegression = errors.New("bank: accrual timestamp precedes last update")
	// ErrNoDepositors reports a loss socialization against a pool with zero
	// deposit shares.
	ErrNoDepositors = errors.New("bank: no depositors to socialize loss against")
	// ErrLossExceedsDeposits reports a socialized loss larger than the total
	// deposit value, which would drive the share value negative.
	ErrLossExceedsDeposits = errors.New("bank: loss exceeds total deposit value")
	// ErrInvalidAmount reports a negative quantity where a non-negative one
	// is required.
	ErrInvalidAmount = errors.New("bank: amount must not be negative")
	// ErrBankPaused reports an operation against a paused bank.
	ErrBankPaused = errors.New("bank: operational state is paused")
	// ErrBankReduceOnly reports a balance-increasing operation against a
	// reduce-only bank.
	ErrBankReduceOnly = errors.New("bank: operational state is reduce-only")
)
