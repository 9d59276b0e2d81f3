// usage:
//
//	raw := sloghook.New(slog.Default(), sloghook.Options{
//	    SelfHealEvery: 10, // sample logs: ~every 10th self-heal
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	st, _ := store.New(store.Options{
//	    Namespace: "app:prod:orders",
//	    Provider:  provider,
//	    Hooks:     hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/amp/store"
)

// Hooks forwards events to inner on worker goroutines. When the queue is
// full the event is dropped and counted.
type Hooks struct {
	inner   store.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // guards closed against sends racing Close
	closed  bool
	dropped atomic.Uint64
}

var _ store.Hooks = (*Hooks)(nil)

func New(inner store.Hooks, workers, qlen int) *Hooks {
	if inner == nil {
		inner = store.NopHooks{}
	}
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events sent after Close
// are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) SelfHeal(k, r string)    { h.try(func() { h.inner.SelfHeal(k, r) }) }
func (h *Hooks) SetRejected(k string)    { h.try(func() { h.inner.SetRejected(k) }) }
func (h *Hooks) PutRejected(k, r string) { h.try(func() { h.inner.PutRejected(k, r) }) }
