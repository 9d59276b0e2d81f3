package store

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The store calls them on the read and write paths.
type Hooks interface {
	// A stored message was deleted on read.
	// reason ∈ {"decode_error", "trailing_bytes", "too_large"}
	SelfHeal(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	SetRejected(storageKey string)

	// Put refused a message before it reached the provider.
	// reason ∈ {"encode_error", "too_large"}
	PutRejected(storageKey, reason string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) SelfHeal(string, string)    {}
func (NopHooks) SetRejected(string)         {}
func (NopHooks) PutRejected(string, string) {}
