// Package store keeps AMP messages in a byte cache under namespaced keys.
//
// Values are stored exactly as amp encodes them, so any AMP peer reading the
// same Redis keys sees ordinary messages. A value that no longer decodes is
// deleted on read and reported as a miss.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/unkn0wn-root/amp"
	"github.com/unkn0wn-root/amp/codec"
	"github.com/unkn0wn-root/amp/internal/util"
	pr "github.com/unkn0wn-root/amp/provider"
)

const defaultTTL = 10 * time.Minute

var ErrMessageTooLarge = errors.New("store: message exceeds size limit")

// SetCostFunc weighs an encoded message for providers that evict by cost.
type SetCostFunc func(storageKey string, raw []byte, fields int) int64

// Options tune a Store. Only Namespace and Provider are required.
type Options struct {
	// Required
	Namespace string // e.g. "orders", "session"
	Provider  pr.Provider

	Logger         amp.Logger    // if nil, NopLogger is used
	Hooks          Hooks         // if nil, NopHooks is used
	DefaultTTL     time.Duration // 0 => 10m
	MaxMessageSize int           // encoded bytes, both directions; 0 => unlimited
	ComputeSetCost SetCostFunc   // default len(raw)
	Disabled       bool          // Get always misses, Put and Delete do nothing
}

type Store struct {
	ns             string
	provider       pr.Provider
	codec          codec.Codec[*amp.Message]
	log            amp.Logger
	hooks          Hooks
	enabled        bool
	defaultTTL     time.Duration
	maxSize        int
	computeSetCost SetCostFunc
}

func New(opts Options) (*Store, error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("store: provider is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("store: namespace is required")
	}
	if opts.MaxMessageSize < 0 {
		return nil, fmt.Errorf("store: negative MaxMessageSize %d", opts.MaxMessageSize)
	}

	s := &Store{
		ns:       opts.Namespace,
		provider: opts.Provider,
		enabled:  !opts.Disabled,
		maxSize:  opts.MaxMessageSize,
		codec:    codec.Limit[*amp.Message]{Inner: codec.Message{}, MaxDecode: opts.MaxMessageSize},
	}

	// defaults
	s.log = coalesce[amp.Logger](opts.Logger, amp.NopLogger{})
	s.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	s.defaultTTL = coalesce[time.Duration](opts.DefaultTTL, defaultTTL)

	if opts.ComputeSetCost != nil {
		s.computeSetCost = opts.ComputeSetCost
	} else {
		s.computeSetCost = func(_ string, raw []byte, _ int) int64 { return int64(len(raw)) }
	}
	return s, nil
}

func (s *Store) Enabled() bool     { return s.enabled }
func (s *Store) Namespace() string { return s.ns }

// Key returns the provider key for a caller key.
func (s *Store) Key(key string) string { return util.StorageKey(s.ns, key) }

// Put encodes m and writes it under key. ttl == 0 uses DefaultTTL.
// A provider that refuses the write (ok=false) is not an error: the message
// simply is not cached.
func (s *Store) Put(ctx context.Context, key string, m *amp.Message, ttl time.Duration) error {
	if !s.enabled {
		return nil
	}
	if m == nil {
		return fmt.Errorf("store: nil message for %q", key)
	}
	if ttl == 0 {
		ttl = s.defaultTTL
	}
	k := s.Key(key)
	raw, err := s.codec.Encode(m)
	if err != nil {
		s.hooks.PutRejected(k, "encode_error")
		return fmt.Errorf("store: encode %q: %w", key, err)
	}
	if s.maxSize > 0 && len(raw) > s.maxSize {
		s.hooks.PutRejected(k, "too_large")
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(raw), s.maxSize)
	}
	ok, err := s.provider.Set(ctx, k, raw, s.computeSetCost(k, raw, m.Count()), ttl)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Debug("Put rejected by provider (pressure)", amp.Fields{"key": key, "size": len(raw)})
		s.hooks.SetRejected(k)
	}
	return nil
}

// Get returns the message stored under key. Provider errors are returned;
// stored bytes that fail to decode are deleted and reported as a miss.
func (s *Store) Get(ctx context.Context, key string) (*amp.Message, bool, error) {
	if !s.enabled {
		return nil, false, nil
	}
	k := s.Key(key)
	raw, ok, err := s.provider.Get(ctx, k)
	if err != nil || !ok {
		return nil, false, err
	}
	m, err := s.codec.Decode(raw)
	if err != nil {
		reason := healReason(err)
		if derr := s.provider.Del(ctx, k); derr != nil {
			s.log.Warn("self-heal delete failed", amp.Fields{"key": key, "err": derr})
		}
		s.log.Warn("dropped undecodable message", amp.ErrFields(err).With(amp.Fields{"key": key, "reason": reason}))
		s.hooks.SelfHeal(k, reason)
		return nil, false, nil
	}
	return m, true, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if !s.enabled {
		return nil
	}
	return s.provider.Del(ctx, s.Key(key))
}

func (s *Store) Close(ctx context.Context) error {
	return s.provider.Close(ctx)
}

func healReason(err error) string {
	switch {
	case errors.Is(err, codec.ErrTooLarge):
		return "too_large"
	case errors.Is(err, codec.ErrTrailingBytes):
		return "trailing_bytes"
	default:
		return "decode_error"
	}
}
