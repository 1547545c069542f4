package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

var ErrNotAcquired = errors.New("lock not acquired")

const releaseTimeout = 5 * time.Second

type Locker interface {
	// Acquire grants key to the caller for ttl. ok is false when another
	// holder has it; err is reserved for backend failures.
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key string, token string) error
}

type Options struct {
	TTL         time.Duration
	MinWait     time.Duration
	Growth      float64
	MaxWait     time.Duration
	MaxAttempts int
}

type Coordinator struct {
	locker Locker
	log    logrus.FieldLogger

	sleep func(ctx context.Context, d time.Duration) error
}

func NewCoordinator(locker Locker, log logrus.FieldLogger) *Coordinator {
	return &Coordinator{
		locker: locker,
		log:    log.WithField("source", "lock"),
		sleep:  sleepCtx,
	}
}

// RunExclusive holds key while fn runs and releases it on every exit path,
// including a panic inside fn.
func (c *Coordinator) RunExclusive(ctx context.Context, key string, opts Options, fn func(ctx context.Context) error) (err error) {
	token, err := c.acquire(ctx, key, opts)
	if err != nil {
		return err
	}

	defer func() {
		// a cancelled caller context must not prevent the release
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if rerr := c.locker.Release(releaseCtx, key, token); rerr != nil {
			c.log.WithError(rerr).WithField("key", key).Warn("lock release failed")
		}
	}()

	return fn(ctx)
}

func (c *Coordinator) acquire(ctx context.Context, key string, opts Options) (string, error) {
	wait := opts.MinWait
	for attempt := 1; ; attempt++ {
		token, ok, err := c.locker.Acquire(ctx, key, opts.TTL)
		if err != nil {
			return "", fmt.Errorf("lock.Acquire %s: %w", key, err)
		}
		if ok {
			return token, nil
		}
		if opts.MaxAttempts > 0 && attempt >= opts.MaxAttempts {
			return "", fmt.Errorf("%s after %d attempts: %w", key, attempt, ErrNotAcquired)
		}
		if err := c.sleep(ctx, wait); err != nil {
			return "", fmt.Errorf("%s: %w: %v", key, ErrNotAcquired, err)
		}
		wait = nextWait(wait, opts)
	}
}

func nextWait(wait time.Duration, opts Options) time.Duration {
	next := time.Duration(float64(wait) * (1 + opts.Growth))
	if next > opts.MaxWait {
		return opts.MaxWait
	}
	return next
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
