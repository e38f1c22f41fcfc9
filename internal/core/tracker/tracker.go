package tracker

import "slices"

// Tracker records the live instances of every entity id. Instances of one id
// form an insertion-ordered set; an id is dropped as soon as its set empties.
// Tracker is not safe for concurrent use.
type Tracker[T comparable] struct {
	live  map[string][]T
	order []string
	total int
}

func New[T comparable]() *Tracker[T] {
	return &Tracker[T]{live: make(map[string][]T)}
}

// TrackSpawned adds instance to the set of entityID. It reports false for a
// blank id or an instance that is already tracked.
func (t *Tracker[T]) TrackSpawned(entityID string, instance T) bool {
	if entityID == "" {
		return false
	}
	set, ok := t.live[entityID]
	if !ok {
		t.order = append(t.order, entityID)
	} else if slices.Contains(set, instance) {
		return false
	}
	t.live[entityID] = append(set, instance)
	t.total++
	return true
}

// TrackReleased removes instance from the set of entityID. It reports whether
// the instance was tracked.
func (t *Tracker[T]) TrackReleased(entityID string, instance T) bool {
	set, ok := t.live[entityID]
	if !ok {
		return false
	}
	i := slices.Index(set, instance)
	if i < 0 {
		return false
	}
	set = slices.Delete(set, i, i+1)
	t.total--
	if len(set) == 0 {
		delete(t.live, entityID)
		if j := slices.Index(t.order, entityID); j >= 0 {
			t.order = slices.Delete(t.order, j, j+1)
		}
		return true
	}
	t.live[entityID] = set
	return true
}

func (t *Tracker[T]) Contains(entityID string, instance T) bool {
	return slices.Contains(t.live[entityID], instance)
}

// ForEach visits instances grouped by entity id, ids in first-spawn order.
// Returning false stops the walk.
func (t *Tracker[T]) ForEach(visit func(entityID string, instance T) bool) {
	for _, id := range slices.Clone(t.order) {
		for _, inst := range slices.Clone(t.live[id]) {
			if !visit(id, inst) {
				return
			}
		}
	}
}

// Instances returns a copy of the live set of entityID.
func (t *Tracker[T]) Instances(entityID string) []T {
	return slices.Clone(t.live[entityID])
}

// Count is the number of live instances of entityID.
func (t *Tracker[T]) Count(entityID string) int {
	return len(t.live[entityID])
}

// Len is the number of tracked entity ids.
func (t *Tracker[T]) Len() int { return len(t.order) }

// Total is the number of tracked instances across all ids.
func (t *Tracker[T]) Total() int { return t.total }

func (t *Tracker[T]) Clear() {
	clear(t.live)
	t.order = t.order[:0]
	t.total = 0
}
