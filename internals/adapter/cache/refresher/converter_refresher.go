package refresher

import (
	"context"
	"log"
	"time"

	"asset-exchange/internals/adapter/cache"
	"asset-exchange/internals/service"

	"github.com/redis/go-redis/v9"
)

// StartBackgroundRebuildWithLock periodically rebuilds the conversion service
// so converters track fresh rates and today's date stays inside the covered
// range. A distributed lock ensures only one instance refetches series from
// the provider per cycle. Blocks until ctx is cancelled.
func StartBackgroundRebuildWithLock(ctx context.Context, interval time.Duration, redisClient *redis.Client, conversionService service.ConversionService) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Background rebuild worker started. Rebuild interval: %s", interval)

	rebuildWithLockRetry(ctx, redisClient, conversionService)

	for {
		select {
		case <-ticker.C:
			log.Println("Background rebuild triggered.")
			rebuildWithLockRetry(ctx, redisClient, conversionService)
		case <-ctx.Done():
			log.Println("Background rebuild worker stopping.")
			return
		}
	}
}

func rebuildWithLockRetry(ctx context.Context, redisClient *redis.Client, conversionService service.ConversionService) {
	const lockKey = "converter_rebuild_lock"
	lockTTL := 2 * time.Minute
	maxWait := 15 * time.Second

	lock := cache.NewRedisLock(redisClient, lockKey, lockTTL)
	acquired, err := lock.Acquire(ctx, maxWait)
	if err != nil {
		log.Printf("Error acquiring distributed lock for converter rebuild: %v", err)
		return
	}
	if !acquired {
		log.Println("Could not acquire lock for converter rebuild after waiting, skipping this cycle")
		return
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			log.Printf("Error releasing distributed lock: %v", err)
		}
	}()

	rebuild(ctx, conversionService)
}

func rebuild(ctx context.Context, conversionService service.ConversionService) {
	if err := conversionService.Rebuild(ctx); err != nil {
		log.Printf("ERROR rebuilding converter: %v", err)
		return
	}
	log.Println("Converter rebuilt successfully")
}
