package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kuberx/portfolio-ledger/internal/apperrors"
	"github.com/kuberx/portfolio-ledger/internal/model"
	"github.com/shopspring/decimal"
)

// UserRepository provides data access methods for the app_user table,
// the ledger's projection of externally authenticated identities.
type UserRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewUserRepository creates a new UserRepository with the provided database connection.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a new UserRepository scoped to the provided transaction.
func (r *UserRepository) WithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *UserRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetUser retrieves a user by ID.
// Returns ErrUserNotFound if no user with the given ID exists.
func (r *UserRepository) GetUser(ctx context.Context, userID string) (model.User, error) {
	query := `
		SELECT id, total_portfolio_value, is_active, created_at, updated_at
		FROM app_user
		WHERE id = ?
	`

	var u model.User
	var createdAtStr, updatedAtStr string
	err := r.getQuerier().QueryRowContext(ctx, query, userID).Scan(
		&u.ID,
		&u.TotalPortfolioValue,
		&u.IsActive,
		&createdAtStr,
		&updatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, apperrors.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to query app_user table: %w", err)
	}

	if u.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.User{}, err
	}
	if u.UpdatedAt, err = ParseTime(updatedAtStr); err != nil {
		return model.User{}, err
	}

	return u, nil
}

// EnsureUser returns the user, creating an active projection on first sight.
func (r *UserRepository) EnsureUser(ctx context.Context, userID string, now time.Time) (model.User, error) {
	query := `
		INSERT INTO app_user (id, total_portfolio_value, is_active, created_at, updated_at)
		VALUES (?, '0', TRUE, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`

	if _, err := r.getQuerier().ExecContext(ctx, query, userID, FormatTime(now), FormatTime(now)); err != nil {
		return model.User{}, fmt.Errorf("failed to insert app_user: %w", err)
	}

	return r.GetUser(ctx, userID)
}

// UpdatePortfolioValue refreshes the denormalized total portfolio value.
func (r *UserRepository) UpdatePortfolioValue(ctx context.Context, userID string, value decimal.Decimal, now time.Time) error {
	query := `UPDATE app_user SET total_portfolio_value = ?, updated_at = ? WHERE id = ?`

	result, err := r.getQuerier().ExecContext(ctx, query, value.String(), FormatTime(now), userID)
	if err != nil {
		return fmt.Errorf("failed to update app_user portfolio value: %w", err)
	}

	return requireRow(result, apperrors.ErrUserNotFound)
}

// Deactivate marks the user inactive and zeroes the cached value.
func (r *UserRepository) Deactivate(ctx context.Context, userID string, now time.Time) error {
	query := `UPDATE app_user SET is_active = FALSE, total_portfolio_value = '0', updated_at = ? WHERE id = ?`

	result, err := r.getQuerier().ExecContext(ctx, query, FormatTime(now), userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate app_user: %w", err)
	}

	return requireRow(result, apperrors.ErrUserNotFound)
}

// requireRow returns notFound when the statement touched no rows.
func requireRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return notFound
	}

	return nil
}
