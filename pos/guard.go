package pos

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"bitbucket.org/mmdatafocus/foodpos/config"
	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
)

// CheckoutGuard is a single-slot lock around checkout validation.
// TryAcquire never waits: a busy guard returns ok=false.
type CheckoutGuard interface {
	TryAcquire(ctx context.Context) (release func(), ok bool)
}

type localGuard struct {
	busy atomic.Bool
}

// NewLocalGuard guards checkouts inside this process.
func NewLocalGuard() CheckoutGuard {
	return &localGuard{}
}

func (g *localGuard) TryAcquire(context.Context) (func(), bool) {
	if !g.busy.CompareAndSwap(false, true) {
		return nil, false
	}
	return func() { g.busy.Store(false) }, true
}

type redisGuard struct {
	locker *redislock.Client
	key    string
	ttl    time.Duration
	logger *logrus.Logger
}

// NewRedisGuard guards checkouts across every process sharing the Redis store.
// ttl bounds how long a crashed holder can block the till.
func NewRedisGuard(locker *redislock.Client, key string, ttl time.Duration, logger *logrus.Logger) CheckoutGuard {
	if key == "" {
		key = "foodpos:checkout"
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = config.GetLogger()
	}
	return &redisGuard{locker: locker, key: key, ttl: ttl, logger: logger}
}

func (g *redisGuard) TryAcquire(ctx context.Context) (func(), bool) {
	lock, err := g.locker.Obtain(ctx, g.key, g.ttl, nil)
	if err != nil {
		if !errors.Is(err, redislock.ErrNotObtained) {
			config.LogError(g.logger, "pos", "redisGuard.TryAcquire", "obtain checkout lock", g.key, err)
		}
		return nil, false
	}
	return func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			config.LogError(g.logger, "pos", "redisGuard.release", "release checkout lock", g.key, err)
		}
	}, true
}
