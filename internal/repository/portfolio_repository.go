package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kuberx/portfolio-ledger/internal/apperrors"
	"github.com/kuberx/portfolio-ledger/internal/model"
)

// PortfolioRepository provides data access methods for the portfolio and holding tables.
// A portfolio is always loaded and saved together with its holdings.
type PortfolioRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// WithTx returns a new PortfolioRepository scoped to the provided transaction.
func (r *PortfolioRepository) WithTx(tx *sql.Tx) *PortfolioRepository {
	return &PortfolioRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *PortfolioRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetPortfolioByUser loads the user's portfolio with holdings in insertion order.
// Returns ErrPortfolioNotFound if the user has no portfolio yet.
func (r *PortfolioRepository) GetPortfolioByUser(ctx context.Context, userID string) (*model.Portfolio, error) {
	query := `
		SELECT id, user_id, total_value, total_invested, total_profit_loss,
		total_profit_loss_pct, last_updated, created_at
		FROM portfolio
		WHERE user_id = ?
	`

	var p model.Portfolio
	var lastUpdatedStr, createdAtStr string
	err := r.getQuerier().QueryRowContext(ctx, query, userID).Scan(
		&p.ID,
		&p.UserID,
		&p.TotalValue,
		&p.TotalInvested,
		&p.TotalProfitLoss,
		&p.TotalProfitLossPct,
		&lastUpdatedStr,
		&createdAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio table: %w", err)
	}

	if p.LastUpdated, err = ParseTime(lastUpdatedStr); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return nil, err
	}

	p.Holdings, err = r.getHoldings(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *PortfolioRepository) getHoldings(ctx context.Context, portfolioID string) ([]model.Holding, error) {
	query := `
		SELECT symbol, name, amount, average_buy_price, current_price, value,
		profit_loss, profit_loss_pct, image_url
		FROM holding
		WHERE portfolio_id = ?
		ORDER BY position ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding table: %w", err)
	}
	defer rows.Close()

	holdings := []model.Holding{}

	for rows.Next() {
		var h model.Holding

		err := rows.Scan(
			&h.Symbol,
			&h.Name,
			&h.Amount,
			&h.AverageBuyPrice,
			&h.CurrentPrice,
			&h.Value,
			&h.ProfitLoss,
			&h.ProfitLossPct,
			&h.ImageURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding table results: %w", err)
		}

		holdings = append(holdings, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding table: %w", err)
	}

	return holdings, nil
}

// InsertPortfolio creates an empty portfolio row.
func (r *PortfolioRepository) InsertPortfolio(ctx context.Context, p *model.Portfolio) error {
	query := `
		INSERT INTO portfolio (id, user_id, total_value, total_invested, total_profit_loss,
		total_profit_loss_pct, last_updated, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		p.ID,
		p.UserID,
		p.TotalValue.String(),
		p.TotalInvested.String(),
		p.TotalProfitLoss.String(),
		p.TotalProfitLossPct.String(),
		FormatTime(p.LastUpdated),
		FormatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}

	return nil
}

// SavePortfolio writes the portfolio totals and replaces its holdings.
// Callers should run it inside a transaction so the replacement is atomic.
func (r *PortfolioRepository) SavePortfolio(ctx context.Context, p *model.Portfolio) error {
	query := `
		UPDATE portfolio
		SET total_value = ?, total_invested = ?, total_profit_loss = ?,
		total_profit_loss_pct = ?, last_updated = ?
		WHERE id = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		p.TotalValue.String(),
		p.TotalInvested.String(),
		p.TotalProfitLoss.String(),
		p.TotalProfitLossPct.String(),
		FormatTime(p.LastUpdated),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}
	if err := requireRow(result, apperrors.ErrPortfolioNotFound); err != nil {
		return err
	}

	if _, err := r.getQuerier().ExecContext(ctx, `DELETE FROM holding WHERE portfolio_id = ?`, p.ID); err != nil {
		return fmt.Errorf("failed to clear holdings: %w", err)
	}

	insert := `
		INSERT INTO holding (portfolio_id, symbol, position, name, amount, average_buy_price,
		current_price, value, profit_loss, profit_loss_pct, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for i, h := range p.Holdings {
		_, err := r.getQuerier().ExecContext(ctx, insert,
			p.ID,
			h.Symbol,
			i,
			h.Name,
			h.Amount.String(),
			h.AverageBuyPrice.String(),
			h.CurrentPrice.String(),
			h.Value.String(),
			h.ProfitLoss.String(),
			h.ProfitLossPct.String(),
			h.ImageURL,
		)
		if err != nil {
			return fmt.Errorf("failed to insert holding %s: %w", h.Symbol, err)
		}
	}

	return nil
}

// DeletePortfolioByUser removes the user's portfolio; holdings cascade.
func (r *PortfolioRepository) DeletePortfolioByUser(ctx context.Context, userID string) error {
	if _, err := r.getQuerier().ExecContext(ctx, `DELETE FROM portfolio WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	return nil
}

// GetHeldSymbols returns every symbol held by any portfolio, sorted.
func (r *PortfolioRepository) GetHeldSymbols(ctx context.Context) ([]string, error) {
	rows, err := r.getQuerier().QueryContext(ctx, `SELECT DISTINCT symbol FROM holding ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query held symbols: %w", err)
	}
	defer rows.Close()

	symbols := []string{}
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan held symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating held symbols: %w", err)
	}

	return symbols, nil
}
