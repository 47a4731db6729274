package repository

import (
	"context"
	"fmt"
	"log"
	"sync"

	"asset-exchange/internals/adapter/cache"
	"asset-exchange/internals/adapter/ratefeed"
	"asset-exchange/internals/core/domain"
)

// SeriesRepository supplies the sparse rate series a converter rebuild needs,
// one per declared exchange relationship.
type SeriesRepository interface {
	GetRateSeries(ctx context.Context, rel domain.ExchangeRelationship, startDate, endDate string) ([]domain.RateSample, error)
	GetAllRateSeries(ctx context.Context, rels []domain.ExchangeRelationship, startDate, endDate string) []domain.RateSeries
}

type cachedSeriesRepository struct {
	feed  ratefeed.SeriesAPIClient
	cache cache.Cache
}

func NewCachedSeriesRepository(feed ratefeed.SeriesAPIClient, cache cache.Cache) SeriesRepository {
	return &cachedSeriesRepository{
		feed:  feed,
		cache: cache,
	}
}

// GetRateSeries returns the sparse samples for one relationship over the
// range, cache-first.
func (r *cachedSeriesRepository) GetRateSeries(ctx context.Context, rel domain.ExchangeRelationship, startDate, endDate string) ([]domain.RateSample, error) {
	if samples, found := r.cache.GetRateSeries(rel.FromSymbolID, rel.ToSymbolID, startDate, endDate); found {
		return samples, nil
	}

	samples, err := r.feed.FetchRateSeries(ctx, rel.FromSymbolID, rel.ToSymbolID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rate series for %s -> %s: %w", rel.FromSymbolID, rel.ToSymbolID, err)
	}

	r.cache.SetRateSeries(rel.FromSymbolID, rel.ToSymbolID, startDate, endDate, samples)
	return samples, nil
}

// GetAllRateSeries fetches every relationship's series, one concurrent fetch
// per relationship; the series are independent so there is no ordering
// between them. A relationship whose fetch fails is logged and omitted, which
// simply leaves its edge out of the rebuilt conversion graph.
func (r *cachedSeriesRepository) GetAllRateSeries(ctx context.Context, rels []domain.ExchangeRelationship, startDate, endDate string) []domain.RateSeries {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		series = make([]domain.RateSeries, 0, len(rels))
	)

	for _, rel := range rels {
		wg.Add(1)
		go func(rel domain.ExchangeRelationship) {
			defer wg.Done()

			samples, err := r.GetRateSeries(ctx, rel, startDate, endDate)
			if err != nil {
				log.Printf("Skipping relationship %s -> %s in rebuild: %v", rel.FromSymbolID, rel.ToSymbolID, err)
				return
			}

			mu.Lock()
			series = append(series, domain.RateSeries{
				FromSymbolID: rel.FromSymbolID,
				ToSymbolID:   rel.ToSymbolID,
				Rates:        samples,
			})
			mu.Unlock()
		}(rel)
	}
	wg.Wait()

	return series
}
