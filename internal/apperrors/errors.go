package apperrors

import "errors"

// Domain entity errors represent missing entities in the system.
var (
	// ErrPortfolioNotFound indicates that the user has no portfolio yet.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrTradeNotFound indicates that a trade with the given ID does not exist for the user.
	ErrTradeNotFound = errors.New("transaction not found")

	// ErrUserNotFound indicates that no user projection exists for the given ID.
	ErrUserNotFound = errors.New("user not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInsufficientHolding indicates a sell for a symbol the portfolio does not hold.
	ErrInsufficientHolding = errors.New("insufficient holding: symbol not held")

	// ErrInsufficientBalance indicates a sell larger than the held amount.
	ErrInsufficientBalance = errors.New("insufficient balance for sale")

	// ErrAccountInactive indicates the user's account has been deleted.
	ErrAccountInactive = errors.New("account is inactive")

	// ErrInvalidStatusTransition indicates a settlement move the trade state machine forbids.
	ErrInvalidStatusTransition = errors.New("invalid trade status transition")

	// ErrInvalidTrade indicates a trade that violates journal invariants.
	ErrInvalidTrade = errors.New("invalid trade")

	ErrInvalidUserID = errors.New("user ID is required")
	ErrInvalidSymbol = errors.New("symbol is required")
)

// Infrastructure errors represent failures outside the caller's control.
var (
	// ErrPersistence wraps any storage failure that aborted a ledger operation.
	ErrPersistence = errors.New("persistence failure")

	// ErrOracleUnavailable indicates the price provider could not supply a quote.
	// The oracle absorbs it with a fallback price; it never reaches API callers.
	ErrOracleUnavailable = errors.New("price oracle unavailable")

	// ErrInvalidToken indicates a missing, malformed or expired bearer token.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Operation failure errors are the user-facing messages for failed requests.
var (
	ErrFailedToRetrievePortfolio    = errors.New("failed to retrieve portfolio")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveTransaction  = errors.New("failed to retrieve transaction")
	ErrFailedToRetrieveDashboard    = errors.New("failed to retrieve dashboard")
	ErrFailedToExecuteTrade         = errors.New("failed to execute trade")
	ErrFailedToUpdatePrices         = errors.New("failed to update prices")
	ErrFailedToDeleteAccount        = errors.New("failed to delete account")
	ErrFailedToGetVersionInfo       = errors.New("failed to get version information")
)
