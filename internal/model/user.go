package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the ledger's projection of an authenticated identity.
// TotalPortfolioValue mirrors Portfolio.TotalValue after every mutation.
type User struct {
	ID                  string          `json:"id"`
	TotalPortfolioValue decimal.Decimal `json:"totalPortfolioValue"`
	IsActive            bool            `json:"isActive"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// Dashboard summarizes a user's portfolio and recent activity.
type Dashboard struct {
	TotalValue         decimal.Decimal `json:"totalValue"`
	TotalInvested      decimal.Decimal `json:"totalInvested"`
	TotalProfitLoss    decimal.Decimal `json:"totalProfitLoss"`
	TotalProfitLossPct decimal.Decimal `json:"totalProfitLossPct"`
	RealizedProfitLoss decimal.Decimal `json:"realizedProfitLoss"`
	TotalTransactions  int             `json:"totalTransactions"`
	HoldingsCount      int             `json:"holdingsCount"`
	RecentTransactions []Trade         `json:"recentTransactions"`
	LastUpdated        time.Time       `json:"lastUpdated"`
}
