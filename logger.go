package amp

import "errors"

// Fields is a minimal structured field map for logs.
type Fields map[string]any

// Logger is a tiny leveled logger used by the stream and store packages.
// The codec itself never logs. Adapters live under log/.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}

// With returns a copy of f extended by kv. Neither map is modified.
func (f Fields) With(kv Fields) Fields {
	out := make(Fields, len(f)+len(kv))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range kv {
		out[k] = v
	}
	return out
}

// ErrFields describes a decode failure for logs: the error under "err" and,
// when a FieldError is in the chain, the failing "field" index and its
// byte "offset".
func ErrFields(err error) Fields {
	f := Fields{"err": err}
	var fe *FieldError
	if errors.As(err, &fe) {
		f["field"] = fe.Index
		f["offset"] = fe.Offset
	}
	return f
}
