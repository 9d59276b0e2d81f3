package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/amp/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

// Redis stores encoded messages as plain string values, so any process that
// speaks AMP can GET and decode them.
type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
	opTimeout   time.Duration
	maxValue    int
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this provider exclusively owns the client

	// OpTimeout bounds each command when the caller's context has no
	// earlier deadline. 0 leaves the caller's context alone.
	OpTimeout time.Duration
	// MaxValueSize makes Set refuse (ok=false) encoded messages larger than
	// this many bytes instead of shipping them. 0 means no limit.
	MaxValueSize int
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	if cfg.OpTimeout < 0 || cfg.MaxValueSize < 0 {
		return nil, fmt.Errorf("redis provider: negative OpTimeout %v or MaxValueSize %d", cfg.OpTimeout, cfg.MaxValueSize)
	}
	return &Redis{
		rdb:         cfg.Client,
		closeClient: cfg.CloseClient,
		opTimeout:   cfg.OpTimeout,
		maxValue:    cfg.MaxValueSize,
	}, nil
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := p.opContext(ctx)
	defer cancel()

	b, err := p.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis provider: get %q: %w", key, err)
	}
	return b, true, nil
}

// Set treats ttl <= 0 as no expiry. Values over MaxValueSize are refused
// with ok=false so the store reports them as rejected writes.
func (p *Redis) Set(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	if p.maxValue > 0 && len(value) > p.maxValue {
		return false, nil
	}
	if ttl < 0 {
		ttl = 0
	}
	ctx, cancel := p.opContext(ctx)
	defer cancel()

	if err := p.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return false, fmt.Errorf("redis provider: set %q: %w", key, err)
	}
	return true, nil
}

func (p *Redis) Del(ctx context.Context, key string) error {
	ctx, cancel := p.opContext(ctx)
	defer cancel()

	if err := p.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis provider: del %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying client only when this provider owns it.
// Safe to call multiple times.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

func (p *Redis) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.opTimeout <= 0 {
		return ctx, func() {}
	}
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) <= p.opTimeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.opTimeout)
}
