package convert

import (
	"sync"
	"testing"

	"asset-exchange/internals/core/domain"

	"github.com/stretchr/testify/assert"
)

func singleSampleSeries(from, to domain.SymbolID, date string, rate float64) domain.RateSeries {
	return domain.RateSeries{
		FromSymbolID: from,
		ToSymbolID:   to,
		Rates:        []domain.RateSample{{Date: date, Rate: rate}},
	}
}

func newTestConverter(t *testing.T, startDate, endDate string, series ...domain.RateSeries) *Converter {
	conversionMap, err := BuildConversionMap(startDate, endDate, series)
	assert.NoError(t, err)
	return NewConverter(conversionMap)
}

func TestConvertAmount_SameSymbolIsIdentity(t *testing.T) {
	c := newTestConverter(t, "2024-03-01", "2024-03-01",
		singleSampleSeries("EUR", "USD", "2024-03-01", 1.08))

	got, err := c.ConvertAmount(domain.ConversionRequest{
		FromSymbolID: "EUR", ToSymbolID: "EUR", Amount: 123.45, Date: "2024-03-01",
	})
	assert.NoError(t, err)
	assert.Equal(t, 123.45, got)

	// Identity holds even for a symbol the graph has never heard of.
	got, err = c.ConvertAmount(domain.ConversionRequest{
		FromSymbolID: "XAU", ToSymbolID: "XAU", Amount: 7, Date: "2024-03-01",
	})
	assert.NoError(t, err)
	assert.Equal(t, 7.0, got)
}

func TestConvertAmount_DirectRate(t *testing.T) {
	c := newTestConverter(t, "2024-03-01", "2024-03-01",
		singleSampleSeries("EUR", "USD", "2024-03-01", 1.08))

	got, err := c.ConvertAmount(domain.ConversionRequest{
		FromSymbolID: "EUR", ToSymbolID: "USD", Amount: 100, Date: "2024-03-01",
	})
	assert.NoError(t, err)
	assert.InDelta(t, 108.0, got, 1e-9)
}

func TestConvertAmount_InverseRate(t *testing.T) {
	c := newTestConverter(t, "2024-03-01", "2024-03-01",
		singleSampleSeries("EUR", "USD", "2024-03-01", 1.08))

	got, err := c.ConvertAmount(domain.ConversionRequest{
		FromSymbolID: "USD", ToSymbolID: "EUR", Amount: 108, Date: "2024-03-01",
	})
	assert.NoError(t, err)
	assert.InDelta(t, 100.0, got, 1e-9)
}

func TestConvertAmount_MultiHopChainsRates(t *testing.T) {
	// CUR20 -> CUR21 -> CUR22 <- CUR23 -> CUR24: the CUR23 edge is walked
	// against its recorded direction, so its rate applies as a reciprocal.
	c := newTestConverter(t, "2024-03-01", "2024-03-01",
		singleSampleSeries("CUR20", "CUR21", "2024-03-01", 1.5),
		singleSampleSeries("CUR21", "CUR22", "2024-03-01", 1.6),
		singleSampleSeries("CUR23", "CUR22", "2024-03-01", 1.7),
		singleSampleSeries("CUR23", "CUR24", "2024-03-01", 1.8),
	)

	got, err := c.ConvertAmount(domain.ConversionRequest{
		FromSymbolID: "CUR20", ToSymbolID: "CUR24", Amount: 100, Date: "2024-03-01",
	})
	assert.NoError(t, err)
	assert.InDelta(t, 100*1.5*1.6*(1/1.7)*1.8, got, 1e-9)
	assert.InDelta(t, 254.117647, got, 1e-5)
}

func TestConvertAmount_UnreachablePair(t *testing.T) {
	c := newTestConverter(t, "2024-03-01", "2024-03-01",
		singleSampleSeries("CUR1", "CUR2", "2024-03-01", 1.1),
		singleSampleSeries("CUR10", "CUR11", "2024-03-01", 2.2),
	)

	_, err := c.ConvertAmount(domain.ConversionRequest{
		FromSymbolID: "CUR1", ToSymbolID: "CUR10", Amount: 100, Date: "2024-03-01",
	})
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestConvertAmount_UnknownSymbol(t *testing.T) {
	c := newTestConverter(t, "2024-03-01", "2024-03-01",
		singleSampleSeries("EUR", "USD", "2024-03-01", 1.08))

	_, err := c.ConvertAmount(domain.ConversionRequest{
		FromSymbolID: "EUR", ToSymbolID: "ZZZ", Amount: 100, Date: "2024-03-01",
	})
	assert.ErrorIs(t, err, ErrUnknownSymbol)

	_, err = c.ConvertAmount(domain.ConversionRequest{
		FromSymbolID: "ZZZ", ToSymbolID: "USD", Amount: 100, Date: "2024-03-01",
	})
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestConvertAmount_RateMissingForDate(t *testing.T) {
	c := newTestConverter(t, "2024-03-01", "2024-03-05",
		singleSampleSeries("EUR", "USD", "2024-03-01", 1.08))

	// A date outside the declared range has no entry in the dense history.
	_, err := c.ConvertAmount(domain.ConversionRequest{
		FromSymbolID: "EUR", ToSymbolID: "USD", Amount: 100, Date: "2024-04-15",
	})
	assert.ErrorIs(t, err, ErrRateUnavailable)
}

func TestConvertAmount_PathCacheReusedAcrossDates(t *testing.T) {
	c := newTestConverter(t, "2024-03-01", "2024-03-02", domain.RateSeries{
		FromSymbolID: "EUR",
		ToSymbolID:   "USD",
		Rates: []domain.RateSample{
			{Date: "2024-03-01", Rate: 1.0},
			{Date: "2024-03-02", Rate: 2.0},
		},
	})

	first, err := c.ConvertAmount(domain.ConversionRequest{
		FromSymbolID: "EUR", ToSymbolID: "USD", Amount: 10, Date: "2024-03-01",
	})
	assert.NoError(t, err)
	assert.InDelta(t, 10.0, first, 1e-9)
	assert.Contains(t, c.pathCache, "EUR|USD")

	// The cache stores the path, not the rate: a second call on another
	// date must redo the rate lookup and see the new value.
	second, err := c.ConvertAmount(domain.ConversionRequest{
		FromSymbolID: "EUR", ToSymbolID: "USD", Amount: 10, Date: "2024-03-02",
	})
	assert.NoError(t, err)
	assert.InDelta(t, 20.0, second, 1e-9)
}

func TestConvertAmount_NoPathCachedAsEmpty(t *testing.T) {
	c := newTestConverter(t, "2024-03-01", "2024-03-01",
		singleSampleSeries("CUR1", "CUR2", "2024-03-01", 1.1),
		singleSampleSeries("CUR10", "CUR11", "2024-03-01", 2.2),
	)

	req := domain.ConversionRequest{FromSymbolID: "CUR1", ToSymbolID: "CUR10", Amount: 1, Date: "2024-03-01"}
	_, err := c.ConvertAmount(req)
	assert.ErrorIs(t, err, ErrUnreachable)

	cached, ok := c.pathCache["CUR1|CUR10"]
	assert.True(t, ok)
	assert.Empty(t, cached)

	_, err = c.ConvertAmount(req)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestRoute_ReturnsHopSequence(t *testing.T) {
	c := newTestConverter(t, "2024-03-01", "2024-03-01",
		singleSampleSeries("EUR", "USD", "2024-03-01", 1.08),
		singleSampleSeries("USD", "JPY", "2024-03-01", 150.0),
	)

	assert.Equal(t, []domain.SymbolID{"EUR", "USD", "JPY"}, c.Route("EUR", "JPY"))
	assert.Nil(t, c.Route("EUR", "EUR"))
	assert.Nil(t, c.Route("EUR", "ZZZ"))
}

func TestConvertAmount_ConcurrentUse(t *testing.T) {
	// One Converter instance is shared across request goroutines, so path
	// resolution and route lookups must be safe to run in parallel while
	// the cache is being populated.
	symbols := []domain.SymbolID{"CUR0", "CUR1", "CUR2", "CUR3", "CUR4", "CUR5", "CUR6", "CUR7"}
	series := make([]domain.RateSeries, 0, len(symbols)-1)
	for i := 0; i < len(symbols)-1; i++ {
		series = append(series, singleSampleSeries(symbols[i], symbols[i+1], "2024-03-01", 2.0))
	}
	c := newTestConverter(t, "2024-03-01", "2024-03-01", series...)

	var wg sync.WaitGroup
	for g := 0; g < 64; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < len(symbols); i++ {
				j := (g + i) % (len(symbols) - 1)
				from, to := symbols[j], symbols[j+1]
				got, err := c.ConvertAmount(domain.ConversionRequest{
					FromSymbolID: from, ToSymbolID: to, Amount: 1, Date: "2024-03-01",
				})
				assert.NoError(t, err)
				assert.InDelta(t, 2.0, got, 1e-9)
				assert.Equal(t, []domain.SymbolID{from, to}, c.Route(from, to))
			}
		}(g)
	}
	wg.Wait()
}

func TestKnows(t *testing.T) {
	c := newTestConverter(t, "2024-03-01", "2024-03-01",
		singleSampleSeries("EUR", "USD", "2024-03-01", 1.08))

	assert.True(t, c.Knows("EUR"))
	assert.True(t, c.Knows("USD"))
	assert.False(t, c.Knows("GBP"))
}
