package taskapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	errThrottled       = errors.New("too many login attempts")
	errThrottleBackend = errors.New("throttle backend unavailable")
)

const (
	defaultMaxAttempts = 5
	defaultLoginWindow = 15 * time.Minute
	throttleKeyPrefix  = "tl:"
)

// ThrottleOptions enables per-email failed-login limiting.
type ThrottleOptions struct {
	Redis       redis.UniversalClient
	MaxAttempts int
	Window      time.Duration
}

// loginThrottle counts failed logins per email in fixed windows: INCR, and
// EXPIRE on the first hit.
type loginThrottle struct {
	redis       redis.UniversalClient
	maxAttempts int
	window      time.Duration
}

func newLoginThrottle(opts *ThrottleOptions) *loginThrottle {
	if opts == nil || opts.Redis == nil {
		return nil
	}
	t := &loginThrottle{
		redis:       opts.Redis,
		maxAttempts: opts.MaxAttempts,
		window:      opts.Window,
	}
	if t.maxAttempts <= 0 {
		t.maxAttempts = defaultMaxAttempts
	}
	if t.window <= 0 {
		t.window = defaultLoginWindow
	}
	return t
}

// check returns errThrottled once email has used up its failures.
func (t *loginThrottle) check(ctx context.Context, email string) error {
	if t == nil {
		return nil
	}
	count, err := t.redis.Get(ctx, throttleKey(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", errThrottleBackend, err)
	}
	if count >= int64(t.maxAttempts) {
		return errThrottled
	}
	return nil
}

func (t *loginThrottle) fail(ctx context.Context, email string) error {
	if t == nil {
		return nil
	}
	key := throttleKey(email)
	count, err := t.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", errThrottleBackend, err)
	}
	if count == 1 {
		if err := t.redis.Expire(ctx, key, t.window).Err(); err != nil {
			return fmt.Errorf("%w: %v", errThrottleBackend, err)
		}
	}
	return nil
}

func (t *loginThrottle) reset(ctx context.Context, email string) error {
	if t == nil {
		return nil
	}
	if err := t.redis.Del(ctx, throttleKey(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", errThrottleBackend, err)
	}
	return nil
}

func throttleKey(email string) string {
	return throttleKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}
