package redis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fileflow/internal/config"
	"fileflow/internal/core/port"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// watchdogLease is the per-renewal TTL used when the caller asks for
// auto-renewal instead of a fixed lease
const watchdogLease = 30 * time.Second

const retryInterval = 50 * time.Millisecond

// unlockScript deletes the key only when this process still owns it, so a
// lock that expired and was re-acquired elsewhere is never released by us.
var unlockScript = goredis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

// renewScript extends the TTL only while we still own the key
var renewScript = goredis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("PEXPIRE", KEYS[1], ARGV[2])
	end
	return 0
`)

type held struct {
	token  string
	cancel context.CancelFunc
}

// Lock is a redis-backed distributed lock
type Lock struct {
	client *goredis.Client
	logger *slog.Logger

	mu    sync.Mutex
	holds map[string]*held
}

// NewLock creates a redis lock adapter
func NewLock(cfg config.RedisConfig, logger *slog.Logger) *Lock {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Lock{
		client: client,
		logger: logger,
		holds:  make(map[string]*held),
	}
}

var _ port.DistributedLock = (*Lock)(nil)

// TryLock attempts to take the key within wait. A lease of
// port.LeaseWatchdog keeps the lock alive with background renewal until
// Unlock; any other lease expires on its own.
func (l *Lock) TryLock(ctx context.Context, key string, wait, lease time.Duration) (bool, error) {
	token := uuid.NewString()

	ttl := lease
	if lease == port.LeaseWatchdog {
		ttl = watchdogLease
	}
	if ttl <= 0 {
		return false, fmt.Errorf("invalid lock lease %s", lease)
	}

	deadline := time.Now().Add(wait)
	for {
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return false, fmt.Errorf("failed to acquire lock: %w", err)
		}
		if ok {
			l.register(key, token, lease == port.LeaseWatchdog, ttl)
			return true, nil
		}

		if time.Now().After(deadline) {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

func (l *Lock) register(key, token string, watchdog bool, ttl time.Duration) {
	h := &held{token: token}

	if watchdog {
		renewCtx, cancel := context.WithCancel(context.Background())
		h.cancel = cancel
		go l.renewLoop(renewCtx, key, token, ttl)
	}

	l.mu.Lock()
	l.holds[key] = h
	l.mu.Unlock()
}

// renewLoop extends the lease until Unlock cancels it. Losing the key mid-loop
// means the lease already expired; the loop just stops.
func (l *Lock) renewLoop(ctx context.Context, key, token string, ttl time.Duration) {
	ticker := time.NewTicker(ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			renewed, err := renewScript.Run(ctx, l.client, []string{key}, token, ttl.Milliseconds()).Int()
			if err != nil {
				l.logger.Error("failed to renew lock", "key", key, "error", err)
				continue
			}
			if renewed == 0 {
				l.logger.Warn("lock lost before renewal", "key", key)
				return
			}
		}
	}
}

// Unlock releases the key if this process still owns it
func (l *Lock) Unlock(ctx context.Context, key string) error {
	l.mu.Lock()
	h, ok := l.holds[key]
	if ok {
		delete(l.holds, key)
	}
	l.mu.Unlock()

	if !ok {
		return nil
	}
	if h.cancel != nil {
		h.cancel()
	}

	if _, err := unlockScript.Run(ctx, l.client, []string{key}, h.token).Result(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// IsHeld reports whether this process currently owns the key
func (l *Lock) IsHeld(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	h, ok := l.holds[key]
	l.mu.Unlock()

	if !ok {
		return false, nil
	}

	value, err := l.client.Get(ctx, key).Result()
	if err == goredis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return value == h.token, nil
}

// Close releases the redis connection
func (l *Lock) Close() error {
	return l.client.Close()
}
