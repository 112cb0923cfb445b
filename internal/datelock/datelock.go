package datelock

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/dockwise/scheduler/internal/httperr"
)

const (
	lockTTL    = 10 * time.Second
	retryDelay = 50 * time.Millisecond
)

// releaseScript deletes the lock only if this process still owns it, so
// an expired lock taken over by another booking is never released by us.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`

// Locker serializes mutations per calendar date. Two bookings for
// different dates never contend; two for the same date are ordered.
type Locker interface {
	WithLock(ctx context.Context, date string, fn func() error) error
}

// RedisLocker coordinates across processes with SET NX and a short TTL.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) WithLock(ctx context.Context, date string, fn func() error) error {
	key := "datelock:" + date
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			return err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return &httperr.TimeoutError{Op: "date lock " + date}
		case <-time.After(retryDelay):
		}
	}

	defer l.client.Eval(context.Background(), releaseScript, []string{key}, token)
	return fn()
}

// LocalLocker is the single-process fallback used when no Redis address
// is configured, and by tests.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*dateLock
}

type dateLock struct {
	mu   sync.Mutex
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: map[string]*dateLock{}}
}

func (l *LocalLocker) WithLock(ctx context.Context, date string, fn func() error) error {
	l.mu.Lock()
	dl, ok := l.locks[date]
	if !ok {
		dl = &dateLock{}
		l.locks[date] = dl
	}
	dl.refs++
	l.mu.Unlock()

	acquired := make(chan struct{})
	go func() {
		dl.mu.Lock()
		close(acquired)
	}()

	select {
	case <-ctx.Done():
		// The goroutine will still acquire eventually; release then.
		go func() {
			<-acquired
			dl.mu.Unlock()
			l.release(date, dl)
		}()
		return &httperr.TimeoutError{Op: "date lock " + date}
	case <-acquired:
	}

	defer func() {
		dl.mu.Unlock()
		l.release(date, dl)
	}()
	return fn()
}

func (l *LocalLocker) release(date string, dl *dateLock) {
	l.mu.Lock()
	dl.refs--
	if dl.refs == 0 {
		delete(l.locks, date)
	}
	l.mu.Unlock()
}

// New picks the Redis locker when an address is configured, otherwise
// the in-process one.
func New(redisURL string) (Locker, error) {
	if redisURL == "" {
		return NewLocalLocker(), nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return NewRedisLocker(redis.NewClient(opts)), nil
}
