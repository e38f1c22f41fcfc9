package pool

import "errors"

var (
	ErrExhausted   = errors.New("pool exhausted")
	ErrStaleHandle = errors.New("stale pool handle")
	ErrDisposed    = errors.New("pool disposed")
	ErrNilInstance = errors.New("factory returned nil instance")
)
