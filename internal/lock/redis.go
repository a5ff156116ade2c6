// Package lock provides a Redis lock that keeps two processes from working
// on the same key at the same time.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var (
	// ErrLocked is returned by Acquire when another holder owns the key
	ErrLocked = errors.New("lock is held by another process")
	// ErrNotHeld is returned by Release when the lock expired or was taken over
	ErrNotHeld = errors.New("lock is no longer held")
)

// releaseScript deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Config holds Redis connection settings
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Locker hands out locks backed by a Redis client
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLocker connects to Redis and checks the connection
func NewLocker(ctx context.Context, cfg Config) (*Locker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return NewLockerWithClient(client, cfg.TTL), nil
}

// NewLockerWithClient wraps an existing client. A zero ttl defaults to ten minutes.
func NewLockerWithClient(client *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Locker{client: client, ttl: ttl}
}

// Lock is a held lock. It expires on its own after the locker's TTL.
type Lock struct {
	client *redis.Client
	key    string
	token  string
}

// Acquire takes the lock for key or returns ErrLocked
func (l *Locker) Acquire(ctx context.Context, key string) (*Lock, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrLocked)
	}

	log.Debug().Str("key", key).Dur("ttl", l.ttl).Msg("Lock acquired")
	return &Lock{client: l.client, key: key, token: token}, nil
}

// Close closes the Redis client
func (l *Locker) Close() error {
	return l.client.Close()
}

// Key returns the locked key
func (lk *Lock) Key() string {
	return lk.key
}

// Release frees the lock if this holder still owns it
func (lk *Lock) Release(ctx context.Context) error {
	deleted, err := releaseScript.Run(ctx, lk.client, []string{lk.key}, lk.token).Int()
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", lk.key, err)
	}
	if deleted == 0 {
		return fmt.Errorf("%s: %w", lk.key, ErrNotHeld)
	}

	log.Debug().Str("key", lk.key).Msg("Lock released")
	return nil
}

// GameKey is the lock key for trophy processing of a game
func GameKey(gameID int64) string {
	return fmt.Sprintf("trophies:game:%d", gameID)
}
