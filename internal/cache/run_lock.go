package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/inventory-analytics/backend-go/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	runLockKeyPrefix  = "inventory:run-lock:"
	defaultRunLockTTL = 15 * time.Minute
)

// releaseScript deletes the lock only while it still carries our token, so a
// run that outlived its TTL never frees a lock taken by the next run.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLocker serialises analytics runs per calculation date across processes.
type RunLocker interface {
	// Acquire returns domain.ErrRunInProgress when the date is already locked.
	Acquire(ctx context.Context, date time.Time) (release func(), err error)
}

type redisRunLocker struct {
	client *redis.Client
	ttl    time.Duration
}

type noopRunLocker struct{}

func NewRunLocker(client *redis.Client, ttl time.Duration) RunLocker {
	if client == nil {
		return NewNoopRunLocker()
	}
	if ttl <= 0 {
		ttl = defaultRunLockTTL
	}
	return &redisRunLocker{client: client, ttl: ttl}
}

// NewNoopRunLocker leaves serialisation to the advisory lock of the write
// transaction.
func NewNoopRunLocker() RunLocker {
	return noopRunLocker{}
}

func RunLockKey(date time.Time) string {
	return runLockKeyPrefix + date.Format(domain.DateLayout)
}

func (l *redisRunLocker) Acquire(ctx context.Context, date time.Time) (func(), error) {
	key := RunLockKey(date)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lock %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", date.Format(domain.DateLayout), domain.ErrRunInProgress)
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		err := releaseScript.Run(ctx, l.client, []string{key}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("failed to release run lock")
		}
	}
	return release, nil
}

func (noopRunLocker) Acquire(ctx context.Context, date time.Time) (func(), error) {
	return func() {}, nil
}
