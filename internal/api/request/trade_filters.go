package request

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kuberx/portfolio-ledger/internal/model"
)

// Pagination defaults for trade history.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	MaxPage      = 100000
)

// ParseTradeFilters extracts and validates trade history filters from query parameters.
// All parameters are optional.
//
// Validation rules:
//   - symbol: normalized to uppercase
//   - type: buy or sell
//   - status: pending, completed, failed or cancelled
//   - from/to: YYYY-MM-DD or RFC3339; a date-only "to" includes that whole day
//   - page: between 1 and 100000 (defaults to 1)
//   - limit: between 1 and 100 (defaults to 20)
//
// Returns an error if any parameter fails validation.
//
//nolint:gocyclo // Sequential parameter checks
func ParseTradeFilters(symbolParam, typeParam, statusParam, fromParam, toParam, pageParam, limitParam string) (model.TradeFilter, error) {
	filter := model.TradeFilter{
		Symbol: strings.ToUpper(strings.TrimSpace(symbolParam)),
		Page:   DefaultPage,
		Limit:  DefaultLimit,
	}

	if typeParam != "" {
		kind := model.TradeKind(strings.ToLower(typeParam))
		if kind != model.TradeBuy && kind != model.TradeSell {
			return model.TradeFilter{}, fmt.Errorf("invalid type: must be 'buy' or 'sell'")
		}
		filter.Kind = kind
	}

	if statusParam != "" {
		status := model.TradeStatus(strings.ToLower(statusParam))
		if !model.ValidTradeStatus[status] {
			return model.TradeFilter{}, fmt.Errorf("invalid status: %s", statusParam)
		}
		filter.Status = status
	}

	if fromParam != "" {
		from, _, err := parseFilterTime(fromParam)
		if err != nil {
			return model.TradeFilter{}, fmt.Errorf("invalid from format: %w", err)
		}
		filter.From = from
	}

	if toParam != "" {
		to, dateOnly, err := parseFilterTime(toParam)
		if err != nil {
			return model.TradeFilter{}, fmt.Errorf("invalid to format: %w", err)
		}
		if dateOnly {
			to = to.Add(24 * time.Hour)
		}
		filter.To = to
	}

	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		return model.TradeFilter{}, fmt.Errorf("invalid date range: from must be before to")
	}

	if pageParam != "" {
		page, err := strconv.Atoi(pageParam)
		if err != nil {
			return model.TradeFilter{}, fmt.Errorf("invalid page: must be a number")
		}
		if page < 1 || page > MaxPage {
			return model.TradeFilter{}, fmt.Errorf("invalid page: must be between 1 and %d", MaxPage)
		}
		filter.Page = page
	}

	if limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil {
			return model.TradeFilter{}, fmt.Errorf("invalid limit: must be a number")
		}
		if limit < 1 || limit > MaxLimit {
			return model.TradeFilter{}, fmt.Errorf("invalid limit: must be between 1 and %d", MaxLimit)
		}
		filter.Limit = limit
	}

	return filter, nil
}

// parseFilterTime parses YYYY-MM-DD or RFC3339 and reports whether the value was date-only.
func parseFilterTime(str string) (time.Time, bool, error) {
	if t, err := time.Parse("2006-01-02", str); err == nil {
		return t.UTC(), true, nil
	}
	if t, err := time.Parse(time.RFC3339, str); err == nil {
		return t.UTC(), false, nil
	}
	return time.Time{}, false, fmt.Errorf("cannot parse %q as a date or datetime", str)
}
