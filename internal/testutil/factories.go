package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/kuberx/portfolio-ledger/internal/model"
	"github.com/kuberx/portfolio-ledger/internal/repository"
	"github.com/shopspring/decimal"
)

// UserBuilder provides a fluent interface for creating test users.
//
// Example usage:
//
//	user := testutil.NewUser().Build(t, db)
//
//	// Deleted account
//	user := testutil.NewUser().Inactive().Build(t, db)
type UserBuilder struct {
	ID       string
	IsActive bool
}

// NewUser creates a UserBuilder with sensible defaults.
func NewUser() *UserBuilder {
	return &UserBuilder{
		ID:       MakeID(),
		IsActive: true,
	}
}

// WithID sets a custom ID.
func (b *UserBuilder) WithID(id string) *UserBuilder {
	b.ID = id
	return b
}

// Inactive marks the user as deleted.
func (b *UserBuilder) Inactive() *UserBuilder {
	b.IsActive = false
	return b
}

// Build creates the user in the database and returns it.
func (b *UserBuilder) Build(t *testing.T, db *sql.DB) model.User {
	t.Helper()

	ctx := context.Background()
	now := time.Now().UTC()
	repo := repository.NewUserRepository(db)

	user, err := repo.EnsureUser(ctx, b.ID, now)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	if !b.IsActive {
		if err := repo.Deactivate(ctx, b.ID, now); err != nil {
			t.Fatalf("Failed to deactivate test user: %v", err)
		}
		user.IsActive = false
	}

	return user
}

// PortfolioBuilder provides a fluent interface for creating test portfolios.
// Holdings are stored exactly as given; derived fields are computed from
// amount, average buy price and current price.
//
// Example usage:
//
//	portfolio := testutil.NewPortfolio(userID).
//	    WithHolding("BTC", "1", "2000000", "2500000").
//	    WithInvested("2000000").
//	    Build(t, db)
type PortfolioBuilder struct {
	ID            string
	UserID        string
	Holdings      []model.Holding
	TotalInvested decimal.Decimal
}

// NewPortfolio creates a PortfolioBuilder for the user with no holdings.
func NewPortfolio(userID string) *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:       MakeID(),
		UserID:   userID,
		Holdings: []model.Holding{},
	}
}

// WithHolding appends a holding. Amount and prices are decimal literals.
func (b *PortfolioBuilder) WithHolding(symbol, amount, avgPrice, currentPrice string) *PortfolioBuilder {
	h := model.Holding{
		Symbol:          symbol,
		Name:            symbol,
		Amount:          decimal.RequireFromString(amount),
		AverageBuyPrice: decimal.RequireFromString(avgPrice),
		CurrentPrice:    decimal.RequireFromString(currentPrice),
	}
	h.Value = h.Amount.Mul(h.CurrentPrice)
	h.ProfitLoss = h.Value.Sub(h.CostBasis())
	b.Holdings = append(b.Holdings, h)
	return b
}

// WithInvested sets TotalInvested. Defaults to the holdings' cost basis.
func (b *PortfolioBuilder) WithInvested(invested string) *PortfolioBuilder {
	b.TotalInvested = decimal.RequireFromString(invested)
	return b
}

// Build creates the user (if needed) and portfolio in the database and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) *model.Portfolio {
	t.Helper()

	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := repository.NewUserRepository(db).EnsureUser(ctx, b.UserID, now); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	p := &model.Portfolio{
		ID:            b.ID,
		UserID:        b.UserID,
		Holdings:      b.Holdings,
		TotalInvested: b.TotalInvested,
		LastUpdated:   now,
		CreatedAt:     now,
	}
	if p.TotalInvested.IsZero() {
		for _, h := range p.Holdings {
			p.TotalInvested = p.TotalInvested.Add(h.CostBasis())
		}
	}
	for _, h := range p.Holdings {
		p.TotalValue = p.TotalValue.Add(h.Value)
	}
	p.TotalProfitLoss = p.TotalValue.Sub(p.TotalInvested)

	repo := repository.NewPortfolioRepository(db)
	if err := repo.InsertPortfolio(ctx, p); err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}
	if err := repo.SavePortfolio(ctx, p); err != nil {
		t.Fatalf("Failed to save test holdings: %v", err)
	}

	return p
}

// TradeBuilder provides a fluent interface for creating journal records.
//
// Example usage:
//
//	trade := testutil.NewTrade(userID).
//	    WithSymbol("ETH").
//	    Sell().
//	    WithCreatedAt(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)).
//	    Build(t, db)
type TradeBuilder struct {
	trade model.Trade
}

// NewTrade creates a completed 1 BTC buy at 2,000,000 for the user.
func NewTrade(userID string) *TradeBuilder {
	now := time.Now().UTC()
	return &TradeBuilder{trade: model.Trade{
		ID:            MakeID(),
		UserID:        userID,
		Kind:          model.TradeBuy,
		Symbol:        "BTC",
		Name:          "Bitcoin",
		Amount:        decimal.NewFromInt(1),
		Price:         decimal.NewFromInt(2000000),
		Status:        model.StatusCompleted,
		PaymentMethod: model.PaymentWallet,
		CreatedAt:     now,
		SettledAt:     &now,
	}}
}

// WithSymbol sets the symbol.
func (b *TradeBuilder) WithSymbol(symbol string) *TradeBuilder {
	b.trade.Symbol = symbol
	b.trade.Name = symbol
	return b
}

// WithAmount sets the amount from a decimal literal.
func (b *TradeBuilder) WithAmount(amount string) *TradeBuilder {
	b.trade.Amount = decimal.RequireFromString(amount)
	return b
}

// WithPrice sets the price from a decimal literal.
func (b *TradeBuilder) WithPrice(price string) *TradeBuilder {
	b.trade.Price = decimal.RequireFromString(price)
	return b
}

// WithStatus sets the status.
func (b *TradeBuilder) WithStatus(status model.TradeStatus) *TradeBuilder {
	b.trade.Status = status
	if status == model.StatusPending {
		b.trade.SettledAt = nil
	}
	return b
}

// WithCreatedAt sets the creation time.
func (b *TradeBuilder) WithCreatedAt(at time.Time) *TradeBuilder {
	b.trade.CreatedAt = at.UTC()
	return b
}

// Sell makes the trade a sell.
func (b *TradeBuilder) Sell() *TradeBuilder {
	b.trade.Kind = model.TradeSell
	return b
}

// Build inserts the trade into the journal and returns it.
func (b *TradeBuilder) Build(t *testing.T, db *sql.DB) model.Trade {
	t.Helper()

	tr := b.trade
	tr.GrossValue = tr.Amount.Mul(tr.Price)
	tr.Fee = tr.GrossValue.Mul(decimal.RequireFromString("0.01"))

	if err := repository.NewTradeRepository(db).InsertTrade(context.Background(), &tr); err != nil {
		t.Fatalf("Failed to create test trade: %v", err)
	}

	return tr
}
