package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kuberx/portfolio-ledger/internal/model"
	"github.com/shopspring/decimal"
)

// RealizedGainLossRepository provides data access methods for the realized_gain_loss table.
type RealizedGainLossRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewRealizedGainLossRepository creates a new RealizedGainLossRepository with the provided database connection.
func NewRealizedGainLossRepository(db *sql.DB) *RealizedGainLossRepository {
	return &RealizedGainLossRepository{db: db}
}

// WithTx returns a new RealizedGainLossRepository scoped to the provided transaction.
func (r *RealizedGainLossRepository) WithTx(tx *sql.Tx) *RealizedGainLossRepository {
	return &RealizedGainLossRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *RealizedGainLossRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// InsertRealizedGainLoss records the outcome of a completed sell.
func (r *RealizedGainLossRepository) InsertRealizedGainLoss(ctx context.Context, rgl *model.RealizedGainLoss) error {
	query := `
		INSERT INTO realized_gain_loss (id, user_id, trade_id, symbol, amount_sold, cost_basis,
		sale_proceeds, realized_gain_loss, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		rgl.ID,
		rgl.UserID,
		rgl.TradeID,
		rgl.Symbol,
		rgl.AmountSold.String(),
		rgl.CostBasis.String(),
		rgl.SaleProceeds.String(),
		rgl.RealizedGainLoss.String(),
		FormatTime(rgl.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert realized_gain_loss: %w", err)
	}

	return nil
}

// GetRealizedGainLossByUser retrieves the user's realized records, oldest first.
func (r *RealizedGainLossRepository) GetRealizedGainLossByUser(ctx context.Context, userID string) ([]model.RealizedGainLoss, error) {
	query := `
		SELECT id, user_id, trade_id, symbol, amount_sold, cost_basis,
		sale_proceeds, realized_gain_loss, created_at
		FROM realized_gain_loss
		WHERE user_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query realizedGainLoss table: %w", err)
	}
	defer rows.Close()

	records := []model.RealizedGainLoss{}

	for rows.Next() {
		var createdAtStr string
		var rgl model.RealizedGainLoss

		err := rows.Scan(
			&rgl.ID,
			&rgl.UserID,
			&rgl.TradeID,
			&rgl.Symbol,
			&rgl.AmountSold,
			&rgl.CostBasis,
			&rgl.SaleProceeds,
			&rgl.RealizedGainLoss,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan realizedGainLoss table results: %w", err)
		}

		rgl.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil || rgl.CreatedAt.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		records = append(records, rgl)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating realizedGainLoss table: %w", err)
	}

	return records, nil
}

// TotalRealizedGainLoss sums the user's realized gain/loss exactly.
func (r *RealizedGainLossRepository) TotalRealizedGainLoss(ctx context.Context, userID string) (decimal.Decimal, error) {
	records, err := r.GetRealizedGainLossByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, rgl := range records {
		total = total.Add(rgl.RealizedGainLoss)
	}
	return total, nil
}

// DeleteRealizedGainLossByUser removes all of the user's realized records.
func (r *RealizedGainLossRepository) DeleteRealizedGainLossByUser(ctx context.Context, userID string) error {
	if _, err := r.getQuerier().ExecContext(ctx, `DELETE FROM realized_gain_loss WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete realized_gain_loss: %w", err)
	}
	return nil
}
