package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"asset-exchange/internals/core/domain"

	"github.com/redis/go-redis/v9"
)

// Cache stores fetched sparse rate series per (relationship, range) so a
// converter rebuild does not refetch every relationship from the provider.
type Cache interface {
	SetRateSeries(from, to domain.SymbolID, startDate, endDate string, samples []domain.RateSample)
	GetRateSeries(from, to domain.SymbolID, startDate, endDate string) ([]domain.RateSample, bool)
}

type redisCache struct {
	client    *redis.Client
	seriesTTL time.Duration
}

func NewRedisCache(client *redis.Client, seriesTTL time.Duration) Cache {
	return &redisCache{
		client:    client,
		seriesTTL: seriesTTL,
	}
}

func rateSeriesKey(from, to domain.SymbolID, startDate, endDate string) string {
	return fmt.Sprintf("series:%s:%s:%s:%s", from, to, startDate, endDate)
}

func (rc *redisCache) SetRateSeries(from, to domain.SymbolID, startDate, endDate string, samples []domain.RateSample) {
	lock := NewRedisLock(rc.client, "cache_write_lock", 30*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second) // max wait 10s to acquire lock
	defer cancel()

	acquired, err := lock.Acquire(ctx, 10*time.Second)
	if err != nil {
		log.Printf("Error acquiring lock for SetRateSeries: %v", err)
		return
	}
	if !acquired {
		log.Println("Could not acquire lock for SetRateSeries after waiting")
		return
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			log.Printf("Error releasing lock for SetRateSeries: %v", err)
		}
	}()

	key := rateSeriesKey(from, to, startDate, endDate)

	// An empty series is still worth caching: it records that the provider
	// has no data for the pair, which is a valid answer.
	if samples == nil {
		samples = []domain.RateSample{}
	}

	jsonData, err := json.Marshal(samples)
	if err != nil {
		log.Printf("Error marshaling rate series: %v", err)
		return
	}

	err = rc.client.Set(ctx, key, jsonData, rc.seriesTTL).Err()
	if err != nil {
		log.Printf("Error setting rate series in Redis: %v", err)
	} else {
		log.Printf("Cached rate series %s -> %s (%s..%s) in Redis with TTL %s", from, to, startDate, endDate, rc.seriesTTL)
	}
}

func (rc *redisCache) GetRateSeries(from, to domain.SymbolID, startDate, endDate string) ([]domain.RateSample, bool) {
	key := rateSeriesKey(from, to, startDate, endDate)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	jsonData, err := rc.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			log.Printf("Cache miss for key %s", key)
			return nil, false
		}
		log.Printf("Error getting rate series from Redis: %v", err)
		return nil, false
	}

	var samples []domain.RateSample
	err = json.Unmarshal([]byte(jsonData), &samples)
	if err != nil {
		log.Printf("Error unmarshaling rate series JSON: %v", err)
		return nil, false
	}

	log.Printf("Cache hit for key %s", key)
	return samples, true
}
