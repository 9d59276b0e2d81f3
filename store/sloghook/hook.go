package sloghook

import (
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/amp/internal/util"
	"github.com/unkn0wn-root/amp/store"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery    uint64
	SetRejectedEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr    atomic.Uint64
	setRejectedCtr atomic.Uint64
}

var _ store.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	return util.ShortHash(k)
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Warn("amp.store.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) SetRejected(storageKey string) {
	if h.l == nil || !sample(h.opts.SetRejectedEvery, &h.setRejectedCtr) {
		return
	}
	h.l.Info("amp.store.set_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) PutRejected(storageKey, reason string) {
	if h.l == nil {
		return
	}
	h.l.Warn("amp.store.put_rejected",
		"key", h.redact(storageKey),
		"reason", reason)
}
