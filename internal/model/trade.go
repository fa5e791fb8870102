package model

import (
	"fmt"
	"math"
	"time"

	"github.com/kuberx/portfolio-ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// TradeKind is the direction of a trade.
type TradeKind string

const (
	TradeBuy  TradeKind = "buy"
	TradeSell TradeKind = "sell"
)

// TradeStatus is the settlement state of a trade.
type TradeStatus string

const (
	StatusPending   TradeStatus = "pending"
	StatusCompleted TradeStatus = "completed"
	StatusFailed    TradeStatus = "failed"
	StatusCancelled TradeStatus = "cancelled"
)

// tradeTransitions lists the allowed settlement moves. Terminal states have none.
var tradeTransitions = map[TradeStatus][]TradeStatus{
	StatusPending: {StatusCompleted, StatusFailed, StatusCancelled},
}

// CanTransitionTo reports whether a trade in status s may move to next.
func (s TradeStatus) CanTransitionTo(next TradeStatus) bool {
	for _, allowed := range tradeTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s TradeStatus) Terminal() bool {
	return len(tradeTransitions[s]) == 0
}

// ValidTradeStatus contains the accepted status values.
var ValidTradeStatus = map[TradeStatus]bool{
	StatusPending: true, StatusCompleted: true, StatusFailed: true, StatusCancelled: true,
}

// Payment methods accepted on a trade.
const (
	PaymentWallet       = "wallet"
	PaymentUPI          = "upi"
	PaymentBankTransfer = "bank_transfer"
	PaymentCard         = "card"
)

// ValidPaymentMethod contains the accepted payment method values.
var ValidPaymentMethod = map[string]bool{
	PaymentWallet: true, PaymentUPI: true, PaymentBankTransfer: true, PaymentCard: true,
}

// Trade is a journal record of one buy or sell. Only Status and SettledAt
// change after creation, and only through Transition.
type Trade struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Kind          TradeKind       `json:"type"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	Price         decimal.Decimal `json:"price"`
	GrossValue    decimal.Decimal `json:"grossValue"`
	Fee           decimal.Decimal `json:"fee"`
	Status        TradeStatus     `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	SettledAt     *time.Time      `json:"settledAt,omitempty"`
}

// Transition moves the trade to next, stamping SettledAt.
func (t *Trade) Transition(next TradeStatus, at time.Time) error {
	if !t.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidStatusTransition, t.Status, next)
	}
	t.Status = next
	settled := at.UTC()
	t.SettledAt = &settled
	return nil
}

// TradeOrder is a validated request to buy or sell.
type TradeOrder struct {
	Kind          TradeKind
	Symbol        string
	Name          string
	Amount        decimal.Decimal
	Price         decimal.Decimal
	PaymentMethod string
	Notes         string
}

// TradeFilter narrows a trade history query. Zero values mean no filter.
type TradeFilter struct {
	Symbol string
	Kind   TradeKind
	Status TradeStatus
	From   time.Time
	To     time.Time
	Page   int
	Limit  int
}

// Offset returns the row offset for the filter's page. An offset that would
// overflow int saturates at math.MaxInt.
func (f TradeFilter) Offset() int {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.Limit {
		return math.MaxInt
	}
	return (f.Page - 1) * f.Limit
}

// Pagination describes a page of results.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// TradePage is one page of trade history.
type TradePage struct {
	Transactions []Trade    `json:"transactions"`
	Pagination   Pagination `json:"pagination"`
}
