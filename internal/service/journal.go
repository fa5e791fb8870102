package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kuberx/portfolio-ledger/internal/apperrors"
	"github.com/kuberx/portfolio-ledger/internal/model"
	"github.com/kuberx/portfolio-ledger/internal/repository"
)

// NewTrade builds a pending journal record for order. Amount must be
// positive, price non-negative and symbol non-empty. Gross value and fee are
// computed here and never change afterwards.
func NewTrade(userID string, order model.TradeOrder, now time.Time) (*model.Trade, error) {
	symbol := strings.ToUpper(strings.TrimSpace(order.Symbol))

	switch {
	case userID == "":
		return nil, apperrors.ErrInvalidUserID
	case symbol == "":
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidTrade, apperrors.ErrInvalidSymbol)
	case order.Kind != model.TradeBuy && order.Kind != model.TradeSell:
		return nil, fmt.Errorf("%w: unknown kind %q", apperrors.ErrInvalidTrade, order.Kind)
	case !order.Amount.IsPositive():
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrInvalidTrade)
	case order.Price.IsNegative():
		return nil, fmt.Errorf("%w: price must not be negative", apperrors.ErrInvalidTrade)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate trade id: %w", err)
	}

	paymentMethod := order.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = model.PaymentWallet
	}

	gross := order.Amount.Mul(order.Price)
	return &model.Trade{
		ID:            id.String(),
		UserID:        userID,
		Kind:          order.Kind,
		Symbol:        symbol,
		Name:          strings.TrimSpace(order.Name),
		Amount:        order.Amount,
		Price:         order.Price,
		GrossValue:    gross,
		Fee:           TradeFee(gross),
		Status:        model.StatusPending,
		PaymentMethod: paymentMethod,
		Notes:         order.Notes,
		CreatedAt:     now.UTC(),
	}, nil
}

// Journal is the append-only trade log. Records are written once and then
// only move through the settlement state machine.
type Journal struct {
	trades *repository.TradeRepository
}

// NewJournal creates a Journal backed by the trade repository.
func NewJournal(trades *repository.TradeRepository) *Journal {
	return &Journal{trades: trades}
}

// WithTx returns a Journal whose writes join tx.
func (j *Journal) WithTx(tx *sql.Tx) *Journal {
	return &Journal{trades: j.trades.WithTx(tx)}
}

// Record appends t to the journal.
func (j *Journal) Record(ctx context.Context, t *model.Trade) error {
	return j.trades.InsertTrade(ctx, t)
}

// Settle moves a recorded trade to status and persists the transition.
func (j *Journal) Settle(ctx context.Context, t *model.Trade, status model.TradeStatus, at time.Time) error {
	if err := t.Transition(status, at); err != nil {
		return err
	}
	return j.trades.UpdateTradeStatus(ctx, t)
}

// Get returns one of the user's trades.
func (j *Journal) Get(ctx context.Context, userID, tradeID string) (model.Trade, error) {
	return j.trades.GetTrade(ctx, userID, tradeID)
}

// Query returns a page of the user's trades, newest first.
func (j *Journal) Query(ctx context.Context, userID string, filter model.TradeFilter) (model.TradePage, error) {
	trades, total, err := j.trades.QueryTrades(ctx, userID, filter)
	if err != nil {
		return model.TradePage{}, err
	}

	pages := 0
	if filter.Limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(filter.Limit)))
	}

	return model.TradePage{
		Transactions: trades,
		Pagination: model.Pagination{
			Page:  filter.Page,
			Limit: filter.Limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

// Purge removes every trade of the user.
func (j *Journal) Purge(ctx context.Context, userID string) (int64, error) {
	return j.trades.DeleteTradesByUser(ctx, userID)
}
