package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"asset-exchange/internals/core/domain"

	"github.com/stretchr/testify/assert"
)

// --- Mock Cache ---

type mockCache struct {
	mu      sync.Mutex
	entries map[string][]domain.RateSample
	sets    int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string][]domain.RateSample)}
}

func cacheKey(from, to domain.SymbolID, start, end string) string {
	return string(from) + ":" + string(to) + ":" + start + ":" + end
}

func (m *mockCache) SetRateSeries(from, to domain.SymbolID, start, end string, samples []domain.RateSample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[cacheKey(from, to, start, end)] = samples
	m.sets++
}

func (m *mockCache) GetRateSeries(from, to domain.SymbolID, start, end string) ([]domain.RateSample, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	samples, ok := m.entries[cacheKey(from, to, start, end)]
	return samples, ok
}

// --- Mock Feed Client ---

type mockFeedClient struct {
	mu      sync.Mutex
	fetches int
	samples map[string][]domain.RateSample
	errors  map[string]error
}

func (m *mockFeedClient) FetchRateSeries(ctx context.Context, from, to domain.SymbolID, start, end string) ([]domain.RateSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches++
	key := string(from) + ":" + string(to)
	if err, ok := m.errors[key]; ok {
		return nil, err
	}
	return m.samples[key], nil
}

func rel(from, to domain.SymbolID) domain.ExchangeRelationship {
	return domain.ExchangeRelationship{ID: "id-" + string(from) + string(to), FromSymbolID: from, ToSymbolID: to}
}

// --- Tests ---

func TestGetRateSeries_CacheMissFetchesAndCaches(t *testing.T) {
	cache := newMockCache()
	feed := &mockFeedClient{samples: map[string][]domain.RateSample{
		"EUR:USD": {{Date: "2024-03-01", Rate: 1.08}},
	}}
	repo := NewCachedSeriesRepository(feed, cache)

	samples, err := repo.GetRateSeries(context.Background(), rel("EUR", "USD"), "2024-03-01", "2024-03-05")
	assert.NoError(t, err)
	assert.Len(t, samples, 1)
	assert.Equal(t, 1, feed.fetches)
	assert.Equal(t, 1, cache.sets)

	// Second call hits the cache, no new fetch.
	samples, err = repo.GetRateSeries(context.Background(), rel("EUR", "USD"), "2024-03-01", "2024-03-05")
	assert.NoError(t, err)
	assert.Len(t, samples, 1)
	assert.Equal(t, 1, feed.fetches)
}

func TestGetRateSeries_FeedError(t *testing.T) {
	cache := newMockCache()
	feed := &mockFeedClient{errors: map[string]error{"EUR:USD": errors.New("provider down")}}
	repo := NewCachedSeriesRepository(feed, cache)

	_, err := repo.GetRateSeries(context.Background(), rel("EUR", "USD"), "2024-03-01", "2024-03-05")
	assert.Error(t, err)
	assert.Equal(t, 0, cache.sets)
}

func TestGetAllRateSeries_CollectsAllRelationships(t *testing.T) {
	cache := newMockCache()
	feed := &mockFeedClient{samples: map[string][]domain.RateSample{
		"EUR:USD": {{Date: "2024-03-01", Rate: 1.08}},
		"USD:JPY": {{Date: "2024-03-01", Rate: 150.0}},
	}}
	repo := NewCachedSeriesRepository(feed, cache)

	series := repo.GetAllRateSeries(context.Background(),
		[]domain.ExchangeRelationship{rel("EUR", "USD"), rel("USD", "JPY")},
		"2024-03-01", "2024-03-05")

	assert.Len(t, series, 2)
	got := make(map[string]int)
	for _, s := range series {
		got[string(s.FromSymbolID)+":"+string(s.ToSymbolID)] = len(s.Rates)
	}
	assert.Equal(t, map[string]int{"EUR:USD": 1, "USD:JPY": 1}, got)
}

func TestGetAllRateSeries_OmitsFailedRelationships(t *testing.T) {
	cache := newMockCache()
	feed := &mockFeedClient{
		samples: map[string][]domain.RateSample{"EUR:USD": {{Date: "2024-03-01", Rate: 1.08}}},
		errors:  map[string]error{"USD:JPY": errors.New("provider down")},
	}
	repo := NewCachedSeriesRepository(feed, cache)

	series := repo.GetAllRateSeries(context.Background(),
		[]domain.ExchangeRelationship{rel("EUR", "USD"), rel("USD", "JPY")},
		"2024-03-01", "2024-03-05")

	assert.Len(t, series, 1)
	assert.Equal(t, domain.SymbolID("EUR"), series[0].FromSymbolID)
}

func TestGetAllRateSeries_EmptyRelationshipList(t *testing.T) {
	repo := NewCachedSeriesRepository(&mockFeedClient{}, newMockCache())

	series := repo.GetAllRateSeries(context.Background(), nil, "2024-03-01", "2024-03-05")
	assert.Empty(t, series)
}

func TestGetAllRateSeries_KeepsEmptySeries(t *testing.T) {
	// An empty series must still be returned: the lenient map builder gives
	// it an identity history, only the strict builder drops it.
	cache := newMockCache()
	feed := &mockFeedClient{samples: map[string][]domain.RateSample{"EUR:GBP": {}}}
	repo := NewCachedSeriesRepository(feed, cache)

	series := repo.GetAllRateSeries(context.Background(),
		[]domain.ExchangeRelationship{rel("EUR", "GBP")},
		"2024-03-01", "2024-03-05")

	assert.Len(t, series, 1)
	assert.Empty(t, series[0].Rates)
}
