package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/kuberx/portfolio-ledger/internal/apperrors"
	"github.com/kuberx/portfolio-ledger/internal/model"
)

// TradeRepository provides data access methods for the trade journal.
// Rows are append-only; only status, settled_at and notes are ever updated.
type TradeRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTradeRepository creates a new TradeRepository with the provided database connection.
func NewTradeRepository(db *sql.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// WithTx returns a new TradeRepository scoped to the provided transaction.
func (r *TradeRepository) WithTx(tx *sql.Tx) *TradeRepository {
	return &TradeRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *TradeRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const tradeColumns = `id, user_id, kind, symbol, name, amount, price, gross_value, fee,
		status, payment_method, notes, created_at, settled_at`

// InsertTrade appends a trade to the journal.
func (r *TradeRepository) InsertTrade(ctx context.Context, t *model.Trade) error {
	query := `INSERT INTO trade (` + tradeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var settledAt sql.NullString
	if t.SettledAt != nil {
		settledAt = sql.NullString{String: FormatTime(*t.SettledAt), Valid: true}
	}

	_, err := r.getQuerier().ExecContext(ctx, query,
		t.ID,
		t.UserID,
		string(t.Kind),
		t.Symbol,
		t.Name,
		t.Amount.String(),
		t.Price.String(),
		t.GrossValue.String(),
		t.Fee.String(),
		string(t.Status),
		t.PaymentMethod,
		t.Notes,
		FormatTime(t.CreatedAt),
		settledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}

	return nil
}

// UpdateTradeStatus persists a settlement transition made with model.Trade.Transition.
// Returns ErrTradeNotFound if no trade with the given ID exists.
func (r *TradeRepository) UpdateTradeStatus(ctx context.Context, t *model.Trade) error {
	query := `UPDATE trade SET status = ?, settled_at = ?, notes = ? WHERE id = ?`

	var settledAt sql.NullString
	if t.SettledAt != nil {
		settledAt = sql.NullString{String: FormatTime(*t.SettledAt), Valid: true}
	}

	result, err := r.getQuerier().ExecContext(ctx, query, string(t.Status), settledAt, t.Notes, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update trade status: %w", err)
	}

	return requireRow(result, apperrors.ErrTradeNotFound)
}

// GetTrade retrieves one of the user's trades by ID.
// Returns ErrTradeNotFound if it does not exist or belongs to another user.
func (r *TradeRepository) GetTrade(ctx context.Context, userID, tradeID string) (model.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trade WHERE id = ? AND user_id = ?`

	rows, err := r.getQuerier().QueryContext(ctx, query, tradeID, userID)
	if err != nil {
		return model.Trade{}, fmt.Errorf("failed to query trade table: %w", err)
	}
	trades, err := scanTrades(rows)
	if err != nil {
		return model.Trade{}, err
	}
	if len(trades) == 0 {
		return model.Trade{}, apperrors.ErrTradeNotFound
	}

	return trades[0], nil
}

// QueryTrades returns one page of the user's trades, newest first, plus the
// total number of trades matching the filter.
func (r *TradeRepository) QueryTrades(ctx context.Context, userID string, filter model.TradeFilter) ([]model.Trade, int, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}

	if filter.Symbol != "" {
		where = append(where, "symbol = ?")
		args = append(args, filter.Symbol)
	}
	if filter.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if !filter.From.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, FormatTime(filter.From))
	}
	if !filter.To.IsZero() {
		where = append(where, "created_at < ?")
		args = append(args, FormatTime(filter.To))
	}

	clause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM trade WHERE ` + clause
	if err := r.getQuerier().QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count trade table: %w", err)
	}

	query := `SELECT ` + tradeColumns + ` FROM trade WHERE ` + clause + `
		ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset())
	}

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query trade table: %w", err)
	}
	trades, err := scanTrades(rows)
	if err != nil {
		return nil, 0, err
	}

	return trades, total, nil
}

// DeleteTradesByUser removes every trade of the user and returns the count.
func (r *TradeRepository) DeleteTradesByUser(ctx context.Context, userID string) (int64, error) {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM trade WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete trades: %w", err)
	}
	return result.RowsAffected()
}

func scanTrades(rows *sql.Rows) ([]model.Trade, error) {
	defer rows.Close()

	trades := []model.Trade{}

	for rows.Next() {
		var t model.Trade
		var kind, status, createdAtStr string
		var settledAtStr sql.NullString

		err := rows.Scan(
			&t.ID,
			&t.UserID,
			&kind,
			&t.Symbol,
			&t.Name,
			&t.Amount,
			&t.Price,
			&t.GrossValue,
			&t.Fee,
			&status,
			&t.PaymentMethod,
			&t.Notes,
			&createdAtStr,
			&settledAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade table results: %w", err)
		}
		t.Kind = model.TradeKind(kind)
		t.Status = model.TradeStatus(status)

		t.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil || t.CreatedAt.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		if settledAtStr.Valid {
			var settledAt time.Time
			settledAt, err = ParseTime(settledAtStr.String)
			if err != nil {
				return nil, err
			}
			t.SettledAt = &settledAt
		}

		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade table: %w", err)
	}

	return trades, nil
}
