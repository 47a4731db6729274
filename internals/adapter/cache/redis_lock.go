package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockWaitTimeout is returned when the lock could not be acquired within
// the caller's wait budget.
var ErrLockWaitTimeout = errors.New("timeout acquiring redis lock")

// releaseScript deletes the lock key only when it still holds our token, so
// an instance never releases a lock that expired and was taken by another.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

// RedisLock is a best-effort distributed lock: SetNX with a per-instance
// uuid token and a TTL guarding against holders that die without releasing.
type RedisLock struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration
}

func NewRedisLock(client *redis.Client, key string, ttl time.Duration) *RedisLock {
	return &RedisLock{
		client: client,
		key:    key,
		token:  uuid.NewString(),
		ttl:    ttl,
	}
}

// Acquire polls for the lock until it is obtained, maxWait elapses, or ctx is
// cancelled.
func (l *RedisLock) Acquire(ctx context.Context, maxWait time.Duration) (bool, error) {
	deadline := time.Now().Add(maxWait)
	for {
		ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}

		if time.Now().After(deadline) {
			return false, ErrLockWaitTimeout
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// Release drops the lock if this instance still owns it.
func (l *RedisLock) Release(ctx context.Context) error {
	res, err := l.client.Eval(ctx, releaseScript, []string{l.key}, l.token).Result()
	if err != nil {
		return err
	}
	if res.(int64) == 0 {
		log.Println("Lock not released: it was owned by someone else or expired")
	}
	return nil
}
