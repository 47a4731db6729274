package convert

import (
	"time"

	"asset-exchange/internals/core/domain"
)

// completeHistory turns a sparse sample list into a dense day-by-day history
// over [start, end] inclusive, carrying the last observed rate forward across
// gaps. The walk must go strictly forward in date order for the carry-forward
// to be correct.
//
// Returns nil when samples is empty: "no rate data at all" is distinct from a
// dense-but-identity history, and callers use the nil to drop the exchange
// relationship entirely.
func completeHistory(start, end time.Time, samples []domain.RateSample) domain.RateHistory {
	if len(samples) == 0 {
		return nil
	}

	byDate := make(map[string]float64, len(samples))
	for _, s := range samples {
		byDate[s.Date] = s.Rate
	}

	// The first sample seeds the carry-forward even when it is dated before
	// start, so the head of the range gets real data instead of a default.
	lastRate := samples[0].Rate

	history := make(domain.RateHistory)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := domain.FormatDate(d)
		if rate, ok := byDate[day]; ok {
			lastRate = rate
		}
		history[day] = lastRate
	}
	return history
}

// completeHistoryLenient is the relaxed sibling of completeHistory: with no
// samples at all it fills every day with the identity rate 1 instead of
// returning nil, so the relationship degrades to 1:1 rather than disappearing.
func completeHistoryLenient(start, end time.Time, samples []domain.RateSample) domain.RateHistory {
	if history := completeHistory(start, end, samples); history != nil {
		return history
	}

	history := make(domain.RateHistory)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		history[domain.FormatDate(d)] = 1
	}
	return history
}
