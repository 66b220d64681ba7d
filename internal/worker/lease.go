package worker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker grants a single sweeper at a time across replicas.
type Locker interface {
	// TryAcquire returns a release func when the lock was taken, nil otherwise.
	TryAcquire(ctx context.Context) (release func(), err error)
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLease is a SET NX PX lock with a random token.
type RedisLease struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewRedisLease(rdb *redis.Client, key string, ttl time.Duration) *RedisLease {
	return &RedisLease{rdb: rdb, key: key, ttl: ttl}
}

func (l *RedisLease) TryAcquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()

	err := l.rdb.SetArgs(ctx, l.key, token, redis.SetArgs{Mode: "NX", TTL: l.ttl}).Err()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return func() {
		// The sweep context may be cancelled by shutdown; release anyway.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Err()
	}, nil
}
