package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/amp"
	"github.com/unkn0wn-root/amp/jsonval"
	pr "github.com/unkn0wn-root/amp/provider"
)

type memEntry struct {
	v    []byte
	cost int64
	ttl  time.Duration
}

type memProvider struct {
	m      map[string]memEntry
	reject bool
	getErr error
	dels   int
}

var _ pr.Provider = (*memProvider)(nil)

func newMemProvider() *memProvider { return &memProvider{m: make(map[string]memEntry)} }

func (p *memProvider) Get(_ context.Context, key string) ([]byte, bool, error) {
	if p.getErr != nil {
		return nil, false, p.getErr
	}
	e, ok := p.m[key]
	if !ok {
		return nil, false, nil
	}
	return e.v, true, nil
}

func (p *memProvider) Set(_ context.Context, key string, value []byte, cost int64, ttl time.Duration) (bool, error) {
	if p.reject {
		return false, nil
	}
	p.m[key] = memEntry{v: value, cost: cost, ttl: ttl}
	return true, nil
}

func (p *memProvider) Del(_ context.Context, key string) error {
	p.dels++
	delete(p.m, key)
	return nil
}
func (p *memProvider) Close(_ context.Context) error { return nil }

type event struct{ kind, key, reason string }

type recHooks struct {
	mu     sync.Mutex
	events []event
}

func (h *recHooks) add(e event) {
	h.mu.Lock()
	h.events = append(h.events, e)
	h.mu.Unlock()
}
func (h *recHooks) SelfHeal(k, r string)    { h.add(event{"self_heal", k, r}) }
func (h *recHooks) SetRejected(k string)    { h.add(event{"set_rejected", k, ""}) }
func (h *recHooks) PutRejected(k, r string) { h.add(event{"put_rejected", k, r}) }

func newTestStore(t *testing.T, mp pr.Provider, optsOpt func(*Options)) *Store {
	t.Helper()
	opts := Options{Namespace: "orders", Provider: mp}
	if optsOpt != nil {
		optsOpt(&opts)
	}
	s, err := New(opts)
	require.NoError(t, err)
	return s
}

func order(t *testing.T) *amp.Message {
	t.Helper()
	m := amp.New()
	require.NoError(t, m.PushString("order-42"))
	require.NoError(t, m.PushBigInt(1999))
	require.NoError(t, m.PushJSON(jsonval.MustParse(`{"sku":"A-1","qty":2}`)))
	return m
}

func TestNewValidates(t *testing.T) {
	_, err := New(Options{Namespace: "x"})
	require.Error(t, err)
	_, err = New(Options{Provider: newMemProvider()})
	require.Error(t, err)
	_, err = New(Options{Namespace: "x", Provider: newMemProvider(), MaxMessageSize: -1})
	require.Error(t, err)
}

func TestPutGet(t *testing.T) {
	mp := newMemProvider()
	s := newTestStore(t, mp, nil)
	ctx := context.Background()
	want := order(t)

	require.NoError(t, s.Put(ctx, "42", want, 0))

	e, ok := mp.m["amp:orders:42"]
	require.True(t, ok, "storage key")
	raw, err := want.Encode()
	require.NoError(t, err)
	assert.Equal(t, raw, e.v, "stored bytes are the plain encoding")
	assert.Equal(t, defaultTTL, e.ttl)
	assert.Equal(t, int64(len(raw)), e.cost)

	got, ok, err := s.Get(ctx, "42")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, amp.Equal(want, got))

	_, ok, err = s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Delete(ctx, "42"))
	_, ok, _ = s.Get(ctx, "42")
	assert.False(t, ok)
}

func TestPutExplicitTTLAndCost(t *testing.T) {
	mp := newMemProvider()
	s := newTestStore(t, mp, func(o *Options) {
		o.DefaultTTL = time.Hour
		o.ComputeSetCost = func(_ string, _ []byte, fields int) int64 { return int64(fields) }
	})
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a", order(t), 0))
	assert.Equal(t, time.Hour, mp.m["amp:orders:a"].ttl)
	assert.Equal(t, int64(3), mp.m["amp:orders:a"].cost)

	require.NoError(t, s.Put(ctx, "b", order(t), time.Second))
	assert.Equal(t, time.Second, mp.m["amp:orders:b"].ttl)
}

func TestGetSelfHeals(t *testing.T) {
	valid, err := order(t).Encode()
	require.NoError(t, err)

	cases := map[string]struct {
		raw    []byte
		max    int
		reason string
	}{
		"wrong version": {raw: []byte{0x21, 0, 0, 0, 0}, reason: "decode_error"},
		"truncated":     {raw: valid[:len(valid)-2], reason: "decode_error"},
		"trailing":      {raw: append(append([]byte(nil), valid...), 0x10), reason: "trailing_bytes"},
		"too large":     {raw: valid, max: len(valid) - 1, reason: "too_large"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			mp := newMemProvider()
			h := &recHooks{}
			s := newTestStore(t, mp, func(o *Options) {
				o.Hooks = h
				o.MaxMessageSize = tc.max
			})
			mp.m["amp:orders:k"] = memEntry{v: tc.raw}

			m, ok, err := s.Get(context.Background(), "k")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, m)

			_, still := mp.m["amp:orders:k"]
			assert.False(t, still, "corrupt entry must be deleted")
			require.Len(t, h.events, 1)
			assert.Equal(t, event{"self_heal", "amp:orders:k", tc.reason}, h.events[0])
		})
	}
}

func TestGetProviderError(t *testing.T) {
	mp := newMemProvider()
	boom := errors.New("boom")
	mp.getErr = boom
	s := newTestStore(t, mp, nil)

	_, ok, err := s.Get(context.Background(), "k")
	require.ErrorIs(t, err, boom)
	assert.False(t, ok)
	assert.Zero(t, mp.dels, "provider errors are not self-healed")
}

func TestPutTooLarge(t *testing.T) {
	mp := newMemProvider()
	h := &recHooks{}
	s := newTestStore(t, mp, func(o *Options) {
		o.Hooks = h
		o.MaxMessageSize = 8
	})
	err := s.Put(context.Background(), "k", order(t), 0)
	require.ErrorIs(t, err, ErrMessageTooLarge)
	assert.Empty(t, mp.m)
	assert.Equal(t, []event{{"put_rejected", "amp:orders:k", "too_large"}}, h.events)
}

func TestPutSetRejected(t *testing.T) {
	mp := newMemProvider()
	mp.reject = true
	h := &recHooks{}
	s := newTestStore(t, mp, func(o *Options) { o.Hooks = h })

	require.NoError(t, s.Put(context.Background(), "k", order(t), 0))
	assert.Equal(t, []event{{"set_rejected", "amp:orders:k", ""}}, h.events)
}

func TestDisabled(t *testing.T) {
	mp := newMemProvider()
	s := newTestStore(t, mp, func(o *Options) { o.Disabled = true })
	ctx := context.Background()
	assert.False(t, s.Enabled())

	require.NoError(t, s.Put(ctx, "k", order(t), 0))
	assert.Empty(t, mp.m)

	mp.m["amp:orders:k"] = memEntry{v: []byte{0x10}}
	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, s.Delete(ctx, "k"))
	assert.Zero(t, mp.dels)
}

func TestNamespaceIsolation(t *testing.T) {
	mp := newMemProvider()
	a := newTestStore(t, mp, func(o *Options) { o.Namespace = "a" })
	b := newTestStore(t, mp, func(o *Options) { o.Namespace = "b" })
	ctx := context.Background()

	require.NoError(t, a.Put(ctx, "k", order(t), 0))
	_, ok, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "amp:b:k", b.Key("k"))
}
