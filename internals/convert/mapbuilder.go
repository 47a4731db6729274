package convert

import (
	"fmt"

	"asset-exchange/internals/core/domain"
)

// BuildConversionMap assembles the nested from -> to -> date -> rate lookup
// from the fetched series, using the strict gap-fill policy: a series with no
// samples at all is omitted from the map (and therefore contributes no graph
// edge) rather than inserted as an identity history.
//
// If two series target the same (from, to) pair the first one wins. That is a
// defensive guard, duplicate series are not an expected input shape.
func BuildConversionMap(startDate, endDate string, series []domain.RateSeries) (domain.ConversionMap, error) {
	start, err := domain.ParseDate(startDate)
	if err != nil {
		return nil, fmt.Errorf("conversion map start date: %w", err)
	}
	end, err := domain.ParseDate(endDate)
	if err != nil {
		return nil, fmt.Errorf("conversion map end date: %w", err)
	}

	conversionMap := make(domain.ConversionMap)
	for _, s := range series {
		history := completeHistory(start, end, s.Rates)
		if history == nil {
			continue
		}
		insertHistory(conversionMap, s.FromSymbolID, s.ToSymbolID, history)
	}
	return conversionMap, nil
}

// BuildLenientConversionMap is the relaxed strategy used by the single-hop
// converter: a series with no samples still gets an entry, identity-filled
// over the whole range, so lookups degrade to 1:1 instead of missing.
func BuildLenientConversionMap(startDate, endDate string, series []domain.RateSeries) (domain.ConversionMap, error) {
	start, err := domain.ParseDate(startDate)
	if err != nil {
		return nil, fmt.Errorf("conversion map start date: %w", err)
	}
	end, err := domain.ParseDate(endDate)
	if err != nil {
		return nil, fmt.Errorf("conversion map end date: %w", err)
	}

	conversionMap := make(domain.ConversionMap)
	for _, s := range series {
		insertHistory(conversionMap, s.FromSymbolID, s.ToSymbolID, completeHistoryLenient(start, end, s.Rates))
	}
	return conversionMap, nil
}

func insertHistory(m domain.ConversionMap, from, to domain.SymbolID, history domain.RateHistory) {
	if m[from] == nil {
		m[from] = make(map[domain.SymbolID]domain.RateHistory)
	}
	if _, exists := m[from][to]; exists {
		return
	}
	m[from][to] = history
}
