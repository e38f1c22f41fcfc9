package generic

// Handle encodes a 32-bit slot index in the lower bits and a 32-bit generation
// in the upper bits. Generations start at 1, so the zero Handle never refers to
// a live slot.
type Handle uint64

func NewHandle(index, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) Index() uint32      { return uint32(h) }
func (h Handle) Generation() uint32 { return uint32(h >> 32) }

type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Arena stores values in reusable slots addressed by generational handles.
// Removing a value bumps its slot generation, so every handle issued for the
// previous occupant goes stale. Arena is not safe for concurrent use.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

func NewArena[T any](capacity int) *Arena[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Arena[T]{slots: make([]slot[T], 0, capacity)}
}

// Insert stores value in a free slot, reusing released slots LIFO.
func (a *Arena[T]) Insert(value T) Handle {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot[T]{generation: 1})
	}
	s := &a.slots[idx]
	s.value = value
	s.occupied = true
	a.live++
	return NewHandle(idx, s.generation)
}

func (a *Arena[T]) Get(h Handle) (T, bool) {
	s := a.lookup(h)
	if s == nil {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Remove frees the slot behind h and returns its value. Stale or foreign
// handles report false and leave the arena untouched.
func (a *Arena[T]) Remove(h Handle) (T, bool) {
	var zero T
	s := a.lookup(h)
	if s == nil {
		return zero, false
	}
	value := s.value
	s.value = zero
	s.occupied = false
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	a.free = append(a.free, h.Index())
	a.live--
	return value, true
}

func (a *Arena[T]) Len() int { return a.live }

func (a *Arena[T]) lookup(h Handle) *slot[T] {
	idx := h.Index()
	if int(idx) >= len(a.slots) {
		return nil
	}
	s := &a.slots[idx]
	if !s.occupied || s.generation != h.Generation() {
		return nil
	}
	return s
}
