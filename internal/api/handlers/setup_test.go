package handlers

import (
	"database/sql"
	"testing"

	"github.com/kuberx/portfolio-ledger/internal/testutil"
)

func setupPortfolioHandler(t *testing.T) (*PortfolioHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewPortfolioHandler(testutil.NewTestLedgerService(t, db)), db
}

func setupUserHandler(t *testing.T) (*UserHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewUserHandler(testutil.NewTestLedgerService(t, db)), db
}
