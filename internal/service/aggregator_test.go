package service

import (
	"errors"
	"testing"
	"time"

	"github.com/kuberx/portfolio-ledger/internal/apperrors"
	"github.com/kuberx/portfolio-ledger/internal/model"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func buy(p *model.Portfolio, symbol, amount, price string) model.Holding {
	return ApplyBuy(p, BuyLeg{Symbol: symbol, Name: symbol, Amount: d(amount), Price: d(price)})
}

func snapshot(p *model.Portfolio) model.Portfolio {
	c := *p
	c.Holdings = append([]model.Holding(nil), p.Holdings...)
	return c
}

// TestApplyBuy tests folding buys into holdings.
//
// WHY: The weighted-average cost basis drives every profit/loss figure. It
// must equal the quantity-weighted mean of all buy prices regardless of the
// order the buys arrive in.
func TestApplyBuy(t *testing.T) {
	t.Run("creates holding at trade price", func(t *testing.T) {
		p := &model.Portfolio{}

		h := buy(p, "BTC", "1", "2000000")

		if len(p.Holdings) != 1 {
			t.Fatalf("Expected 1 holding, got %d", len(p.Holdings))
		}
		if !h.AverageBuyPrice.Equal(d("2000000")) || !h.CurrentPrice.Equal(d("2000000")) {
			t.Errorf("Expected avg and current price 2000000, got %s / %s", h.AverageBuyPrice, h.CurrentPrice)
		}
		if !h.Value.Equal(d("2000000")) || !h.ProfitLoss.IsZero() {
			t.Errorf("Expected value 2000000 and zero P&L, got %s / %s", h.Value, h.ProfitLoss)
		}
		if !p.TotalInvested.Equal(d("2000000")) {
			t.Errorf("Expected invested 2000000, got %s", p.TotalInvested)
		}
	})

	t.Run("re-averages existing holding", func(t *testing.T) {
		p := &model.Portfolio{}
		buy(p, "BTC", "1", "2000000")

		h := buy(p, "BTC", "1", "3000000")

		if !h.Amount.Equal(d("2")) {
			t.Errorf("Expected amount 2, got %s", h.Amount)
		}
		if !h.AverageBuyPrice.Equal(d("2500000")) {
			t.Errorf("Expected avg 2500000, got %s", h.AverageBuyPrice)
		}
		if !h.CurrentPrice.Equal(d("3000000")) {
			t.Errorf("Expected current price to follow last trade, got %s", h.CurrentPrice)
		}
		if !h.ProfitLossPct.Equal(d("20")) {
			t.Errorf("Expected P&L 20%%, got %s", h.ProfitLossPct)
		}
	})

	t.Run("average is order independent", func(t *testing.T) {
		legs := [][2]string{{"2", "100"}, {"3", "200"}, {"5", "50"}}

		forward := &model.Portfolio{}
		for _, leg := range legs {
			buy(forward, "ETH", leg[0], leg[1])
		}
		backward := &model.Portfolio{}
		for i := len(legs) - 1; i >= 0; i-- {
			buy(backward, "ETH", legs[i][0], legs[i][1])
		}

		want := d("105")
		if got := forward.Holdings[0].AverageBuyPrice; !got.Equal(want) {
			t.Errorf("Expected forward avg %s, got %s", want, got)
		}
		if got := backward.Holdings[0].AverageBuyPrice; !got.Equal(want) {
			t.Errorf("Expected backward avg %s, got %s", want, got)
		}
	})

	t.Run("zero price buy keeps zero percent", func(t *testing.T) {
		p := &model.Portfolio{}

		h := buy(p, "AIR", "10", "0")

		if !h.ProfitLossPct.IsZero() {
			t.Errorf("Expected 0%% for zero cost basis, got %s", h.ProfitLossPct)
		}
	})
}

// TestApplySell tests removing units from holdings.
//
// WHY: Sells must never alter the cost basis of the remaining units, must
// drop exhausted holdings, and must leave the portfolio untouched when they
// are rejected.
func TestApplySell(t *testing.T) {
	t.Run("btc scenario", func(t *testing.T) {
		p := &model.Portfolio{}
		buy(p, "BTC", "1", "2000000")
		buy(p, "BTC", "1", "3000000")
		investedBefore := p.TotalInvested

		result, err := ApplySell(p, "BTC", d("1"), d("4000000"))
		if err != nil {
			t.Fatalf("ApplySell() returned unexpected error: %v", err)
		}

		h := p.Holdings[0]
		if !h.Amount.Equal(d("1")) {
			t.Errorf("Expected amount 1, got %s", h.Amount)
		}
		if !h.AverageBuyPrice.Equal(d("2500000")) {
			t.Errorf("Expected avg unchanged at 2500000, got %s", h.AverageBuyPrice)
		}
		if got := investedBefore.Sub(p.TotalInvested); !got.Equal(d("2500000")) {
			t.Errorf("Expected invested to drop by 2500000, dropped by %s", got)
		}
		if !result.SoldCostBasis.Equal(d("2500000")) {
			t.Errorf("Expected sold cost basis 2500000, got %s", result.SoldCostBasis)
		}
		if !result.SaleProceeds.Equal(d("3960000")) {
			t.Errorf("Expected proceeds 3960000 after fee, got %s", result.SaleProceeds)
		}
		if result.Removed {
			t.Error("Expected holding to remain")
		}
	})

	t.Run("full sell removes holding and keeps order", func(t *testing.T) {
		p := &model.Portfolio{}
		buy(p, "ETH", "2", "100")
		buy(p, "BTC", "1", "1000")
		buy(p, "SOL", "5", "10")

		result, err := ApplySell(p, "BTC", d("1"), d("1200"))
		if err != nil {
			t.Fatalf("ApplySell() returned unexpected error: %v", err)
		}

		if !result.Removed {
			t.Error("Expected holding to be removed")
		}
		if got := p.Symbols(); len(got) != 2 || got[0] != "ETH" || got[1] != "SOL" {
			t.Errorf("Expected [ETH SOL], got %v", got)
		}
		if !p.TotalInvested.Equal(d("250")) {
			t.Errorf("Expected invested 250, got %s", p.TotalInvested)
		}
	})

	t.Run("full exit after truncated average leaves nothing invested", func(t *testing.T) {
		cases := []struct {
			legs [][2]string
			sell string
		}{
			{[][2]string{{"1", "1"}, {"2", "2"}}, "3"},
			{[][2]string{{"0.1", "3"}, {"0.2", "7"}}, "0.3"},
		}
		for _, c := range cases {
			p := &model.Portfolio{}
			for _, leg := range c.legs {
				buy(p, "BTC", leg[0], leg[1])
			}
			invested := p.TotalInvested

			result, err := ApplySell(p, "BTC", d(c.sell), d("2"))
			if err != nil {
				t.Fatalf("ApplySell() returned unexpected error: %v", err)
			}

			if !p.TotalInvested.IsZero() {
				t.Errorf("Expected zero invested after buying %v and selling %s, got %s", c.legs, c.sell, p.TotalInvested)
			}
			if !result.SoldCostBasis.Equal(invested) {
				t.Errorf("Expected sold cost basis %s, got %s", invested, result.SoldCostBasis)
			}
			Revalue(p, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
			if !p.TotalProfitLoss.IsZero() || !p.TotalValue.IsZero() {
				t.Errorf("Expected zero value and P&L, got %s / %s", p.TotalValue, p.TotalProfitLoss)
			}
		}
	})

	t.Run("full exit keeps other holdings' cost", func(t *testing.T) {
		p := &model.Portfolio{}
		buy(p, "ETH", "2", "100")
		buy(p, "BTC", "1", "1")
		buy(p, "BTC", "2", "2")

		if _, err := ApplySell(p, "BTC", d("3"), d("2")); err != nil {
			t.Fatalf("ApplySell() returned unexpected error: %v", err)
		}

		if !p.TotalInvested.Equal(d("200")) {
			t.Errorf("Expected invested 200 for remaining ETH, got %s", p.TotalInvested)
		}
	})

	t.Run("insufficient balance leaves portfolio unchanged", func(t *testing.T) {
		p := &model.Portfolio{}
		buy(p, "BTC", "1", "2000000")
		before := snapshot(p)

		_, err := ApplySell(p, "BTC", d("1.5"), d("2000000"))

		if !errors.Is(err, apperrors.ErrInsufficientBalance) {
			t.Fatalf("Expected ErrInsufficientBalance, got %v", err)
		}
		if !p.Holdings[0].Amount.Equal(before.Holdings[0].Amount) || !p.TotalInvested.Equal(before.TotalInvested) {
			t.Errorf("Expected portfolio unchanged, got %+v", p)
		}
	})

	t.Run("unknown symbol fails with insufficient holding", func(t *testing.T) {
		p := &model.Portfolio{}
		buy(p, "BTC", "1", "2000000")

		_, err := ApplySell(p, "ETH", d("1"), d("100"))

		if !errors.Is(err, apperrors.ErrInsufficientHolding) {
			t.Errorf("Expected ErrInsufficientHolding, got %v", err)
		}
	})
}

func TestTradeFee(t *testing.T) {
	if got := TradeFee(d("2500000")); !got.Equal(d("25000")) {
		t.Errorf("Expected fee 25000, got %s", got)
	}
}

// TestRevalue tests portfolio totals.
//
// WHY: Totals are what users see first; they must always add up and never
// divide by zero.
func TestRevalue(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("total value is sum of holding values", func(t *testing.T) {
		p := &model.Portfolio{}
		buy(p, "BTC", "1", "2000000")
		buy(p, "ETH", "2", "150000")

		Revalue(p, now)

		if !p.TotalValue.Equal(d("2300000")) {
			t.Errorf("Expected total 2300000, got %s", p.TotalValue)
		}
		if !p.TotalProfitLoss.IsZero() {
			t.Errorf("Expected zero P&L, got %s", p.TotalProfitLoss)
		}
		if !p.LastUpdated.Equal(now) {
			t.Errorf("Expected lastUpdated %s, got %s", now, p.LastUpdated)
		}
	})

	t.Run("percent is zero when nothing invested", func(t *testing.T) {
		for _, invested := range []string{"0", "-10"} {
			p := &model.Portfolio{TotalInvested: d(invested)}
			p.Holdings = []model.Holding{{Symbol: "X", Value: d("50")}}

			Revalue(p, now)

			if !p.TotalProfitLossPct.IsZero() {
				t.Errorf("Expected 0%% for invested %s, got %s", invested, p.TotalProfitLossPct)
			}
		}
	})
}

// TestRefreshPrices tests bulk price updates.
//
// WHY: Missing prices are acceptable and must leave the holding at its last
// known price, while the portfolio is still revalued.
func TestRefreshPrices(t *testing.T) {
	earlier := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	now := earlier.Add(time.Hour)

	p := &model.Portfolio{}
	buy(p, "BTC", "1", "2000000")
	buy(p, "ETH", "2", "150000")
	Revalue(p, earlier)

	updated := RefreshPrices(p, map[string]decimal.Decimal{"btc": d("2200000")}, now)

	if len(updated) != 1 || updated[0] != "BTC" {
		t.Errorf("Expected [BTC] updated, got %v", updated)
	}
	if !p.Holdings[0].Value.Equal(d("2200000")) || !p.Holdings[0].ProfitLossPct.Equal(d("10")) {
		t.Errorf("Unexpected BTC holding: %+v", p.Holdings[0])
	}
	if !p.Holdings[1].CurrentPrice.Equal(d("150000")) || !p.Holdings[1].Value.Equal(d("300000")) {
		t.Errorf("Expected stale ETH holding unchanged, got %+v", p.Holdings[1])
	}
	if !p.TotalValue.Equal(d("2500000")) {
		t.Errorf("Expected total 2500000, got %s", p.TotalValue)
	}
	if !p.LastUpdated.Equal(now) {
		t.Errorf("Expected lastUpdated to advance to %s, got %s", now, p.LastUpdated)
	}
}

// TestRefreshPrices_CaseDuplicates tests price maps naming one symbol twice.
//
// WHY: Map iteration order is random; the applied price must not be.
func TestRefreshPrices_CaseDuplicates(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 20; i++ {
		p := &model.Portfolio{}
		buy(p, "BTC", "1", "100")

		RefreshPrices(p, map[string]decimal.Decimal{
			"btc": d("300"),
			"BTC": d("200"),
			"Btc": d("400"),
		}, now)

		if got := p.Holdings[0].CurrentPrice; !got.Equal(d("200")) {
			t.Fatalf("Expected exact BTC key price 200, got %s", got)
		}
	}

	p := &model.Portfolio{}
	buy(p, "BTC", "1", "100")
	RefreshPrices(p, map[string]decimal.Decimal{"btc": d("300"), "Btc": d("400")}, now)
	if got := p.Holdings[0].CurrentPrice; !got.Equal(d("400")) {
		t.Errorf("Expected first key in byte order (Btc) to win, got %s", got)
	}
}

// TestNewTrade tests journal record construction.
//
// WHY: Invalid trades must be rejected before anything is journaled.
func TestNewTrade(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("builds pending record", func(t *testing.T) {
		trade, err := NewTrade("user-1", model.TradeOrder{
			Kind:   model.TradeBuy,
			Symbol: " eth ",
			Amount: d("2"),
			Price:  d("150000"),
		}, now)
		if err != nil {
			t.Fatalf("NewTrade() returned unexpected error: %v", err)
		}

		if trade.Symbol != "ETH" {
			t.Errorf("Expected symbol ETH, got %s", trade.Symbol)
		}
		if trade.Status != model.StatusPending || trade.SettledAt != nil {
			t.Errorf("Expected unsettled pending trade, got %s", trade.Status)
		}
		if !trade.GrossValue.Equal(d("300000")) || !trade.Fee.Equal(d("3000")) {
			t.Errorf("Expected gross 300000 and fee 3000, got %s / %s", trade.GrossValue, trade.Fee)
		}
		if trade.PaymentMethod != model.PaymentWallet {
			t.Errorf("Expected default payment method wallet, got %s", trade.PaymentMethod)
		}
		if trade.ID == "" {
			t.Error("Expected trade ID to be set")
		}
	})

	tests := []struct {
		name  string
		order model.TradeOrder
	}{
		{"empty symbol", model.TradeOrder{Kind: model.TradeBuy, Amount: d("1"), Price: d("1")}},
		{"zero amount", model.TradeOrder{Kind: model.TradeBuy, Symbol: "BTC", Amount: d("0"), Price: d("1")}},
		{"negative price", model.TradeOrder{Kind: model.TradeSell, Symbol: "BTC", Amount: d("1"), Price: d("-1")}},
		{"unknown kind", model.TradeOrder{Kind: "swap", Symbol: "BTC", Amount: d("1"), Price: d("1")}},
	}

	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			if _, err := NewTrade("user-1", tt.order, now); !errors.Is(err, apperrors.ErrInvalidTrade) {
				t.Errorf("Expected ErrInvalidTrade, got %v", err)
			}
		})
	}
}
