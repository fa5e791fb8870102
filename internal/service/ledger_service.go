package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kuberx/portfolio-ledger/internal/apperrors"
	"github.com/kuberx/portfolio-ledger/internal/lock"
	"github.com/kuberx/portfolio-ledger/internal/metrics"
	"github.com/kuberx/portfolio-ledger/internal/model"
	"github.com/kuberx/portfolio-ledger/internal/oracle"
	"github.com/kuberx/portfolio-ledger/internal/repository"
	"github.com/shopspring/decimal"
)

// recentTradesLimit is the number of trades shown on the dashboard.
const recentTradesLimit = 5

// unreflectedNote marks a journaled trade whose portfolio update was rolled back.
const unreflectedNote = "not reflected in portfolio"

// PriceSource supplies spot quotes in the ledger currency.
// *oracle.Oracle implements it.
type PriceSource interface {
	GetPrice(ctx context.Context, symbol string) model.Quote
	GetPrices(ctx context.Context, symbols []string) map[string]model.Quote
	Refresh(ctx context.Context, symbols []string) map[string]model.Quote
}

// TradeResult is the outcome of a completed buy or sell.
type TradeResult struct {
	Trade     model.Trade
	Portfolio *model.Portfolio
	Realized  *model.RealizedGainLoss // set for sells only
}

// LedgerService is the entry point for every portfolio operation.
//
// Each mutating call runs under a per-user lock and inside one database
// transaction: the trade is journaled as pending, the portfolio is updated and
// revalued, the trade is settled, and everything commits together. If any step
// after journaling fails the transaction is rolled back and the trade is
// re-recorded as failed so the attempt stays auditable.
type LedgerService struct {
	db            *sql.DB
	userRepo      *repository.UserRepository
	portfolioRepo *repository.PortfolioRepository
	rglRepo       *repository.RealizedGainLossRepository
	journal       *Journal
	prices        PriceSource
	locker        lock.Locker
}

// NewLedgerService creates a new LedgerService with the provided dependencies.
func NewLedgerService(
	db *sql.DB,
	userRepo *repository.UserRepository,
	portfolioRepo *repository.PortfolioRepository,
	tradeRepo *repository.TradeRepository,
	rglRepo *repository.RealizedGainLossRepository,
	prices PriceSource,
	locker lock.Locker,
) *LedgerService {
	return &LedgerService{
		db:            db,
		userRepo:      userRepo,
		portfolioRepo: portfolioRepo,
		rglRepo:       rglRepo,
		journal:       NewJournal(tradeRepo),
		prices:        prices,
		locker:        locker,
	}
}

func lockKey(userID string) string {
	return "portfolio:" + userID
}

func persistenceError(err error) error {
	return fmt.Errorf("%w: %w", apperrors.ErrPersistence, err)
}

// Buy records and applies a buy order for the user.
func (s *LedgerService) Buy(ctx context.Context, userID string, order model.TradeOrder) (TradeResult, error) {
	order.Kind = model.TradeBuy
	return s.executeTrade(ctx, userID, order)
}

// Sell records and applies a sell order for the user. The balance check runs
// before anything is journaled.
func (s *LedgerService) Sell(ctx context.Context, userID string, order model.TradeOrder) (TradeResult, error) {
	order.Kind = model.TradeSell
	return s.executeTrade(ctx, userID, order)
}

func (s *LedgerService) executeTrade(ctx context.Context, userID string, order model.TradeOrder) (result TradeResult, err error) {
	start := time.Now()
	defer func() { metrics.ObserveOperation(string(order.Kind), start, err) }()

	trade, err := NewTrade(userID, order, time.Now())
	if err != nil {
		return TradeResult{}, err
	}

	release, err := s.locker.Lock(ctx, lockKey(userID))
	if err != nil {
		return TradeResult{}, fmt.Errorf("failed to acquire portfolio lock: %w", err)
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TradeResult{}, persistenceError(err)
	}
	defer func() { _ = tx.Rollback() }()

	p, err := s.loadActive(ctx, tx, userID)
	if err != nil {
		return TradeResult{}, err
	}

	switch trade.Kind {
	case model.TradeSell:
		if err := CheckSell(p, trade.Symbol, trade.Amount); err != nil {
			return TradeResult{}, err
		}
		trade.Name = p.Holdings[p.HoldingIndex(trade.Symbol)].Name
	case model.TradeBuy:
		if trade.Name == "" {
			info, _ := oracle.Lookup(trade.Symbol)
			trade.Name = info.Name
		}
	}

	if err := s.journal.WithTx(tx).Record(ctx, trade); err != nil {
		return TradeResult{}, persistenceError(err)
	}

	result, err = s.applyTrade(ctx, tx, p, trade)
	if err == nil {
		err = tx.Commit()
	}
	if err != nil {
		_ = tx.Rollback()
		s.recordUnreflected(ctx, *trade, err)
		return TradeResult{}, persistenceError(err)
	}

	metrics.RecordTrade(string(trade.Kind), string(model.StatusCompleted))
	log.Printf("ledger: %s %s %s for user %s completed (trade %s)", trade.Kind, trade.Amount, trade.Symbol, userID, trade.ID)
	return result, nil
}

// applyTrade runs the post-journal steps inside tx.
func (s *LedgerService) applyTrade(ctx context.Context, tx *sql.Tx, p *model.Portfolio, trade *model.Trade) (TradeResult, error) {
	now := time.Now()
	var realized *model.RealizedGainLoss

	switch trade.Kind {
	case model.TradeBuy:
		info, _ := oracle.Lookup(trade.Symbol)
		ApplyBuy(p, BuyLeg{
			Symbol:   trade.Symbol,
			Name:     trade.Name,
			ImageURL: info.ImageURL,
			Amount:   trade.Amount,
			Price:    trade.Price,
		})
	case model.TradeSell:
		sold, err := ApplySell(p, trade.Symbol, trade.Amount, trade.Price)
		if err != nil {
			return TradeResult{}, err
		}
		realized = &model.RealizedGainLoss{
			ID:               uuid.NewString(),
			UserID:           trade.UserID,
			TradeID:          trade.ID,
			Symbol:           trade.Symbol,
			AmountSold:       trade.Amount,
			CostBasis:        sold.SoldCostBasis,
			SaleProceeds:     sold.SaleProceeds,
			RealizedGainLoss: sold.SaleProceeds.Sub(sold.SoldCostBasis),
			CreatedAt:        now.UTC(),
		}
	}

	Revalue(p, now)

	if err := s.portfolioRepo.WithTx(tx).SavePortfolio(ctx, p); err != nil {
		return TradeResult{}, err
	}
	if err := s.journal.WithTx(tx).Settle(ctx, trade, model.StatusCompleted, now); err != nil {
		return TradeResult{}, err
	}
	if realized != nil {
		if err := s.rglRepo.WithTx(tx).InsertRealizedGainLoss(ctx, realized); err != nil {
			return TradeResult{}, err
		}
	}
	if err := s.userRepo.WithTx(tx).UpdatePortfolioValue(ctx, trade.UserID, p.TotalValue, now); err != nil {
		return TradeResult{}, err
	}

	return TradeResult{Trade: *trade, Portfolio: p, Realized: realized}, nil
}

// recordUnreflected writes the rolled-back trade as failed, annotated so it
// is never mistaken for a position change. Errors are logged only.
func (s *LedgerService) recordUnreflected(ctx context.Context, trade model.Trade, cause error) {
	trade.Status = model.StatusPending
	trade.SettledAt = nil
	trade.Notes = strings.TrimSpace(trade.Notes + "\n[" + unreflectedNote + ": " + cause.Error() + "]")

	ctx = context.WithoutCancel(ctx)
	if err := trade.Transition(model.StatusFailed, time.Now()); err == nil {
		err = s.journal.Record(ctx, &trade)
		if err != nil {
			log.Printf("ledger: failed to record unreflected trade %s for user %s: %v", trade.ID, trade.UserID, err)
		}
	}

	metrics.RecordTrade(string(trade.Kind), string(model.StatusFailed))
	log.Printf("ledger: %s %s for user %s not reflected in portfolio (trade %s): %v", trade.Kind, trade.Symbol, trade.UserID, trade.ID, cause)
}

// loadActive ensures the user exists and is active, then returns the user's
// portfolio, creating an empty one on first access. It must run inside tx.
func (s *LedgerService) loadActive(ctx context.Context, tx *sql.Tx, userID string) (*model.Portfolio, error) {
	now := time.Now()

	user, err := s.userRepo.WithTx(tx).EnsureUser(ctx, userID, now)
	if err != nil {
		return nil, persistenceError(err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountInactive
	}

	portfolios := s.portfolioRepo.WithTx(tx)
	p, err := portfolios.GetPortfolioByUser(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
		return nil, persistenceError(err)
	}

	p = &model.Portfolio{
		ID:          uuid.NewString(),
		UserID:      userID,
		Holdings:    []model.Holding{},
		LastUpdated: now.UTC(),
		CreatedAt:   now.UTC(),
	}
	if err := portfolios.InsertPortfolio(ctx, p); err != nil {
		return nil, persistenceError(err)
	}

	return p, nil
}

// UpdatePrices applies caller-supplied prices to the user's holdings and
// revalues the portfolio. Symbols are case-insensitive; held symbols missing
// from prices keep their last price. It returns the updated portfolio and the
// symbols whose price changed.
func (s *LedgerService) UpdatePrices(ctx context.Context, userID string, prices map[string]decimal.Decimal) (p *model.Portfolio, updated []string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveOperation("update_prices", start, err) }()

	release, err := s.locker.Lock(ctx, lockKey(userID))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to acquire portfolio lock: %w", err)
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, persistenceError(err)
	}
	defer func() { _ = tx.Rollback() }()

	p, err = s.loadActive(ctx, tx, userID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	updated = RefreshPrices(p, prices, now)

	if err := s.portfolioRepo.WithTx(tx).SavePortfolio(ctx, p); err != nil {
		return nil, nil, persistenceError(err)
	}
	if err := s.userRepo.WithTx(tx).UpdatePortfolioValue(ctx, userID, p.TotalValue, now); err != nil {
		return nil, nil, persistenceError(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, persistenceError(err)
	}

	return p, updated, nil
}

// RefreshFromOracle quotes every held symbol through the price source and
// applies the quotes with UpdatePrices. Quotes are fetched before the user
// lock is taken so a slow provider never blocks the user's trades.
func (s *LedgerService) RefreshFromOracle(ctx context.Context, userID string) (*model.Portfolio, map[string]model.Quote, error) {
	current, err := s.GetPortfolio(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	quotes := s.prices.GetPrices(ctx, current.Symbols())
	prices := make(map[string]decimal.Decimal, len(quotes))
	for symbol, q := range quotes {
		prices[symbol] = q.Price
	}

	p, _, err := s.UpdatePrices(ctx, userID, prices)
	if err != nil {
		return nil, nil, err
	}
	return p, quotes, nil
}

// GetPortfolio returns the user's portfolio, creating an empty one on first access.
func (s *LedgerService) GetPortfolio(ctx context.Context, userID string) (*model.Portfolio, error) {
	user, err := s.userRepo.GetUser(ctx, userID)
	switch {
	case err == nil && !user.IsActive:
		return nil, apperrors.ErrAccountInactive
	case err != nil && !errors.Is(err, apperrors.ErrUserNotFound):
		return nil, persistenceError(err)
	}

	p, err := s.portfolioRepo.GetPortfolioByUser(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
		return nil, persistenceError(err)
	}

	release, err := s.locker.Lock(ctx, lockKey(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to acquire portfolio lock: %w", err)
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistenceError(err)
	}
	defer func() { _ = tx.Rollback() }()

	p, err = s.loadActive(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, persistenceError(err)
	}

	return p, nil
}

// Dashboard summarizes the user's portfolio with the most recent trades and
// the cumulative realized profit/loss.
func (s *LedgerService) Dashboard(ctx context.Context, userID string) (model.Dashboard, error) {
	p, err := s.GetPortfolio(ctx, userID)
	if err != nil {
		return model.Dashboard{}, err
	}

	recent, err := s.journal.Query(ctx, userID, model.TradeFilter{Page: 1, Limit: recentTradesLimit})
	if err != nil {
		return model.Dashboard{}, persistenceError(err)
	}

	realized, err := s.rglRepo.TotalRealizedGainLoss(ctx, userID)
	if err != nil {
		return model.Dashboard{}, persistenceError(err)
	}

	return model.Dashboard{
		TotalValue:         p.TotalValue,
		TotalInvested:      p.TotalInvested,
		TotalProfitLoss:    p.TotalProfitLoss,
		TotalProfitLossPct: p.TotalProfitLossPct,
		RealizedProfitLoss: realized,
		TotalTransactions:  recent.Pagination.Total,
		HoldingsCount:      len(p.Holdings),
		RecentTransactions: recent.Transactions,
		LastUpdated:        p.LastUpdated,
	}, nil
}

// ListTrades returns a page of the user's trade history, newest first.
func (s *LedgerService) ListTrades(ctx context.Context, userID string, filter model.TradeFilter) (model.TradePage, error) {
	page, err := s.journal.Query(ctx, userID, filter)
	if err != nil {
		return model.TradePage{}, persistenceError(err)
	}
	return page, nil
}

// GetTrade returns one of the user's trades.
func (s *LedgerService) GetTrade(ctx context.Context, userID, tradeID string) (model.Trade, error) {
	trade, err := s.journal.Get(ctx, userID, tradeID)
	if errors.Is(err, apperrors.ErrTradeNotFound) {
		return model.Trade{}, err
	}
	if err != nil {
		return model.Trade{}, persistenceError(err)
	}
	return trade, nil
}

// RealizedGains returns the user's realized gain/loss records, oldest first.
func (s *LedgerService) RealizedGains(ctx context.Context, userID string) ([]model.RealizedGainLoss, error) {
	records, err := s.rglRepo.GetRealizedGainLossByUser(ctx, userID)
	if err != nil {
		return nil, persistenceError(err)
	}
	return records, nil
}

// DeleteAccount removes the user's portfolio, trades and realized records and
// marks the user inactive. Later ledger operations for the user fail with
// ErrAccountInactive.
func (s *LedgerService) DeleteAccount(ctx context.Context, userID string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveOperation("delete_account", start, err) }()

	release, err := s.locker.Lock(ctx, lockKey(userID))
	if err != nil {
		return fmt.Errorf("failed to acquire portfolio lock: %w", err)
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistenceError(err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	if _, err := s.userRepo.WithTx(tx).EnsureUser(ctx, userID, now); err != nil {
		return persistenceError(err)
	}
	if err := s.rglRepo.WithTx(tx).DeleteRealizedGainLossByUser(ctx, userID); err != nil {
		return persistenceError(err)
	}
	removed, err := s.journal.WithTx(tx).Purge(ctx, userID)
	if err != nil {
		return persistenceError(err)
	}
	if err := s.portfolioRepo.WithTx(tx).DeletePortfolioByUser(ctx, userID); err != nil {
		return persistenceError(err)
	}
	if err := s.userRepo.WithTx(tx).Deactivate(ctx, userID, now); err != nil {
		return persistenceError(err)
	}
	if err := tx.Commit(); err != nil {
		return persistenceError(err)
	}

	log.Printf("ledger: account %s deleted (%d trades removed)", userID, removed)
	return nil
}
