package pool

import (
	"fmt"
	"reflect"

	"github.com/zeusync/provision/pkg/generic"
)

// Handle identifies one lease of a pooled instance. A handle goes stale as
// soon as the lease is released, even though the instance itself is reused.
type Handle = generic.Handle

// Hooks binds a pool to the host. New is required; the rest are optional.
type Hooks[T any] struct {
	// New performs a full instantiation.
	New func() (T, error)
	// Activate runs on every instance handed out by Get.
	Activate func(T)
	// Park deactivates an instance and moves it under the holding root.
	Park func(T)
	// Destroy tears down an idle instance on Dispose.
	Destroy func(T)
	// Close releases the holding root after the idle instances are gone.
	Close func()
}

type Stats struct {
	Name    string
	Created int
	Idle    int
	Active  int
	// Max is zero for unbounded pools.
	Max int
}

// Pool is a bounded pool of host instances. Every created instance lives in
// items for the lifetime of the pool; leases are tracked in an arena so a
// double release is detected instead of pushing the same instance twice.
// Pool is not safe for concurrent use.
type Pool[T any] struct {
	name     string
	hooks    Hooks[T]
	max      int
	items    []T
	idle     []int
	leases   *generic.Arena[int]
	disposed bool
}

// New creates a pool and prewarms it with initial instances. A maxSize of zero
// or less means unbounded.
func New[T any](name string, hooks Hooks[T], initial, maxSize int) (*Pool[T], error) {
	if hooks.New == nil {
		return nil, fmt.Errorf("pool %q: nil factory", name)
	}
	if maxSize < 0 {
		maxSize = 0
	}
	if initial < 0 {
		initial = 0
	}
	p := &Pool[T]{
		name:   name,
		hooks:  hooks,
		max:    maxSize,
		items:  make([]T, 0, initial),
		idle:   make([]int, 0, initial),
		leases: generic.NewArena[int](initial),
	}
	p.Prewarm(initial)
	return p, nil
}

func (p *Pool[T]) Name() string { return p.name }

// Prewarm creates up to count idle instances within the remaining capacity
// and returns how many were created. A factory failure stops the run.
func (p *Pool[T]) Prewarm(count int) int {
	if p.disposed {
		return 0
	}
	created := 0
	for i := 0; i < count; i++ {
		if p.atCapacity() {
			break
		}
		idx, err := p.create()
		if err != nil {
			break
		}
		p.park(idx)
		created++
	}
	return created
}

// Get hands out the most recently parked instance, or creates a new one while
// below capacity.
func (p *Pool[T]) Get() (Handle, T, error) {
	var zero T
	if p.disposed {
		return 0, zero, ErrDisposed
	}

	var idx int
	if n := len(p.idle); n > 0 {
		idx = p.idle[n-1]
		p.idle = p.idle[:n-1]
	} else {
		if p.atCapacity() {
			return 0, zero, ErrExhausted
		}
		var err error
		if idx, err = p.create(); err != nil {
			return 0, zero, err
		}
	}

	item := p.items[idx]
	if p.hooks.Activate != nil {
		p.hooks.Activate(item)
	}
	return p.leases.Insert(idx), item, nil
}

// Release parks the instance leased under h.
func (p *Pool[T]) Release(h Handle) error {
	if p.disposed {
		return ErrDisposed
	}
	idx, ok := p.leases.Remove(h)
	if !ok {
		return ErrStaleHandle
	}
	p.park(idx)
	return nil
}

// Lookup returns the instance behind a live lease.
func (p *Pool[T]) Lookup(h Handle) (T, bool) {
	idx, ok := p.leases.Get(h)
	if !ok {
		var zero T
		return zero, false
	}
	return p.items[idx], true
}

// Dispose destroys every idle instance and then the holding root. Leased
// instances are left to their holders.
func (p *Pool[T]) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	for i := len(p.idle) - 1; i >= 0; i-- {
		if p.hooks.Destroy != nil {
			p.hooks.Destroy(p.items[p.idle[i]])
		}
	}
	p.idle = nil
	if p.hooks.Close != nil {
		p.hooks.Close()
	}
}

func (p *Pool[T]) Disposed() bool { return p.disposed }

func (p *Pool[T]) Stats() Stats {
	return Stats{
		Name:    p.name,
		Created: len(p.items),
		Idle:    len(p.idle),
		Active:  p.leases.Len(),
		Max:     p.max,
	}
}

func (p *Pool[T]) atCapacity() bool {
	return p.max > 0 && len(p.items) >= p.max
}

func (p *Pool[T]) create() (int, error) {
	item, err := p.hooks.New()
	if err != nil {
		return 0, fmt.Errorf("pool %q: create: %w", p.name, err)
	}
	if isNil(item) {
		return 0, fmt.Errorf("pool %q: %w", p.name, ErrNilInstance)
	}
	p.items = append(p.items, item)
	return len(p.items) - 1, nil
}

func (p *Pool[T]) park(idx int) {
	if p.hooks.Park != nil {
		p.hooks.Park(p.items[idx])
	}
	p.idle = append(p.idle, idx)
}

func isNil[T any](v T) bool {
	rv := reflect.ValueOf(any(v))
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
