package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kuberx/portfolio-ledger/internal/model"
	"github.com/shopspring/decimal"
)

func TestFormatINR(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2650000", "₹2,650,000.00"},
		{"0.425", "₹0.43"},
		{"-1250.5", "-₹1,250.50"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := formatINR(decimal.RequireFromString(tt.in)); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestPrintPortfolio(t *testing.T) {
	p := &model.Portfolio{
		Holdings: []model.Holding{{
			Symbol:          "BTC",
			Amount:          decimal.RequireFromString("0.5"),
			AverageBuyPrice: decimal.NewFromInt(2000000),
			CurrentPrice:    decimal.NewFromInt(2650000),
			Value:           decimal.NewFromInt(1325000),
			ProfitLoss:      decimal.NewFromInt(325000),
			ProfitLossPct:   decimal.RequireFromString("32.5"),
		}},
		TotalInvested:      decimal.NewFromInt(1000000),
		TotalValue:         decimal.NewFromInt(1325000),
		TotalProfitLoss:    decimal.NewFromInt(325000),
		TotalProfitLossPct: decimal.RequireFromString("32.5"),
	}

	var buf bytes.Buffer
	printPortfolio(&buf, p)
	out := buf.String()

	for _, want := range []string{"BTC", "₹1,325,000.00", "32.50", "Invested ₹1,000,000.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}
