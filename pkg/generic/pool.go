package generic

import "sync"

// Pool is a typed wrapper over sync.Pool for scratch values such as buffers.
// It is safe for concurrent use; values may be dropped by the runtime at any
// time, so it is not a substitute for a bounded object pool.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
}

// NewResetPool returns a pool that calls reset on every value handed back
// through Put, before it becomes visible to other callers.
func NewResetPool[T any](generate func() T, reset func(T)) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
		reset: reset,
	}
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	if p.reset != nil {
		p.reset(value)
	}
	p.pool.Put(value)
}
