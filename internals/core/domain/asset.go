package domain

import (
	"fmt"
	"time"
)

// SymbolID identifies a tradeable asset or currency (e.g. "USD", "BTC", a
// stock ticker's internal id). Opaque; equality is exact string match.
type SymbolID string

// DateFormat is the calendar-date layout used everywhere in the service.
// Dates carry no time-of-day component, so lexicographic order on the
// formatted string matches chronological order.
const DateFormat = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// FormatDate renders t as a YYYY-MM-DD calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// RateSample is one observed exchange rate: 1 unit of the series' from-symbol
// equals Rate units of its to-symbol on Date exactly.
type RateSample struct {
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

// RateHistory maps YYYY-MM-DD dates to rates. A completed history is dense
// over its declared range: every calendar day has an entry.
type RateHistory map[string]float64

// ConversionMap is the nested lookup fromSymbol -> toSymbol -> date -> rate.
// It is directional: presence of map[A][B] does not imply map[B][A]; the
// reverse rate is computed as 1/rate on demand and never stored.
type ConversionMap map[SymbolID]map[SymbolID]RateHistory

// RateSeries is the sparse rate history fetched for one exchange
// relationship. Samples are chronological as delivered by the provider and
// may cover only part of the requested range, or be empty.
type RateSeries struct {
	FromSymbolID SymbolID     `json:"fromSymbolId"`
	ToSymbolID   SymbolID     `json:"toSymbolId"`
	Rates        []RateSample `json:"rates"`
}

// ExchangeRelationship declares that a provider is configured to quote
// FromSymbolID in units of ToSymbolID.
type ExchangeRelationship struct {
	ID           string   `json:"id"`
	FromSymbolID SymbolID `json:"fromSymbolId"`
	ToSymbolID   SymbolID `json:"toSymbolId"`
}

type ConversionRequest struct {
	FromSymbolID SymbolID `json:"from"`
	ToSymbolID   SymbolID `json:"to"`
	Amount       float64  `json:"amount"`
	Date         string   `json:"date"`
}

type ConversionResult struct {
	FromSymbolID    SymbolID   `json:"from"`
	ToSymbolID      SymbolID   `json:"to"`
	OriginalAmount  float64    `json:"amount"`
	ConvertedAmount float64    `json:"convertedAmount"`
	Rate            float64    `json:"rate"`
	Date            string     `json:"onDate"`
	Path            []SymbolID `json:"path,omitempty"`
}

// TimeSeriesResponse is the shape of a frankfurter-style timeseries endpoint:
// an outer date index over per-symbol rate maps.
type TimeSeriesResponse struct {
	Amount    float64                       `json:"amount"`
	Base      string                        `json:"base"`
	StartDate string                        `json:"start_date"`
	EndDate   string                        `json:"end_date"`
	Rates     map[string]map[string]float64 `json:"rates"`
}
