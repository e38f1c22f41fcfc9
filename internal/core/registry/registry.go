// Package registry materialises entity definitions into host scene nodes. It
// owns one record per registered definition, the pools of pooled entities,
// the tag index and the tracker of live instances.
//
// A Registry is a context object owned by the host. It is not safe for
// concurrent use; every call is expected on the host's main thread.
package registry

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/zeusync/provision/internal/core/component"
	"github.com/zeusync/provision/internal/core/entity"
	"github.com/zeusync/provision/internal/core/events/bus"
	"github.com/zeusync/provision/internal/core/observability/log"
	"github.com/zeusync/provision/internal/core/pool"
	"github.com/zeusync/provision/internal/core/scene"
	"github.com/zeusync/provision/internal/core/tags"
	"github.com/zeusync/provision/internal/core/tracker"
	"github.com/zeusync/provision/pkg/sequence"
)

const eventSource = "registry"

// Catalog is the part of the component catalog the registry reads.
type Catalog interface {
	Get(id string) (component.Component, bool)
	TagOf(id string) (string, bool)
}

var _ Catalog = (*component.Catalog)(nil)

// Instance is one spawned host node. Pooled instances carry the handle of
// their lease; singletons carry a zero handle.
type Instance struct {
	EntityID string
	Node     scene.Node
	Handle   pool.Handle
}

// Valid reports whether the instance refers to a node.
func (i Instance) Valid() bool { return i.Node != nil }

type managed struct {
	id        string
	def       entity.Definition
	pooled    bool
	ui        bool
	uiOrder   int
	placement scene.Placement // UI also for UI components without RenderLayer(ui)
	attrs     scene.Attributes
	single    Instance
	pool      *pool.Pool[scene.Node]
	holding   scene.Node
}

type Registry struct {
	log     log.Log
	catalog Catalog
	host    scene.Host
	applier scene.Applier
	events  bus.EventBus
	newID   func() string

	entities map[string]*managed
	order    []string
	tags     *tags.Index
	spawned  *tracker.Tracker[Instance]
}

type Option func(*Registry)

func WithLogger(l log.Log) Option {
	return func(r *Registry) { r.log = l }
}

// WithApplier sets the adapter that realises attributes on new nodes.
func WithApplier(a scene.Applier) Option {
	return func(r *Registry) { r.applier = a }
}

// WithEventBus publishes lifecycle events on b.
func WithEventBus(b bus.EventBus) Option {
	return func(r *Registry) { r.events = b }
}

// WithIDGenerator replaces the uuid based entity id source.
func WithIDGenerator(gen func() string) Option {
	return func(r *Registry) { r.newID = gen }
}

func New(catalog Catalog, host scene.Host, opts ...Option) *Registry {
	r := &Registry{
		log:      log.NewNop(),
		catalog:  catalog,
		host:     host,
		applier:  scene.NopApplier,
		newID:    newEntityID,
		entities: make(map[string]*managed),
		tags:     tags.New(),
		spawned:  tracker.New[Instance](),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With(log.Component("registry"))
	return r
}

func newEntityID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Register stores a copy of def under a fresh id. Pooled definitions get
// their pool here, prewarmed with pool_initial_size instances.
func (r *Registry) Register(def entity.Definition) (string, error) {
	id := r.newID()
	if _, exists := r.entities[id]; exists {
		r.log.Warn("entity id already registered", log.String("entity_id", id))
		return "", fmt.Errorf("%w: %s", ErrDuplicateRegistration, id)
	}

	m := &managed{
		id:     id,
		def:    def.Clone(),
		pooled: def.ObjectPooling,
	}
	m.ui, m.uiOrder = classify(m.def, r.catalog)
	m.attrs = resolve(m.def, id, r.catalog, r.log)
	m.placement = scene.PlaceWorld
	if m.ui {
		m.placement = scene.PlaceUI
	} else if m.attrs.UITransform != nil || m.attrs.Text != nil {
		r.log.Warn("entity has UI components but no RenderLayer(ui), treating it as UI",
			log.String("entity_id", id),
			log.String("name", m.def.Name))
		m.placement = scene.PlaceUI
	}

	if m.pooled {
		if err := r.createPool(m); err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, m.def.DisplayName(id), err)
		}
	}

	r.entities[id] = m
	r.order = append(r.order, id)
	r.tags.Index(id, m.def.Components, r.catalog.TagOf)

	r.log.Debug("entity registered",
		log.String("entity_id", id),
		log.String("name", m.def.Name),
		log.Bool("pooled", m.pooled),
		log.Bool("ui", m.ui))
	r.publish(bus.TypeEntityRegistered, r.entityEvent(m))
	return id, nil
}

func (r *Registry) createPool(m *managed) error {
	m.holding = r.host.NewHoldingRoot(m.def.DisplayName(m.id))
	hooks := pool.Hooks[scene.Node]{
		New: func() (scene.Node, error) {
			return r.instantiate(m), nil
		},
		Activate: func(n scene.Node) { n.SetActive(true) },
		Park: func(n scene.Node) {
			n.SetActive(false)
			n.SetParent(m.holding)
		},
		Destroy: r.host.Destroy,
		Close: func() {
			r.host.Destroy(m.holding)
			m.holding = nil
		},
	}
	p, err := pool.New(m.id, hooks, max(0, m.def.PoolInitialSize), m.def.PoolMaxSize)
	if err != nil {
		r.host.Destroy(m.holding)
		return err
	}
	m.pool = p
	return nil
}

// Spawn materialises an instance of the entity. Singletons are created once
// and returned unchanged afterwards; pooled entities lease from their pool
// and fail with ErrPoolExhausted at capacity.
func (r *Registry) Spawn(entityID string) (Instance, error) {
	m, ok := r.lookup(entityID)
	if !ok {
		r.log.Warn("unknown entity id", log.String("entity_id", entityID))
		return Instance{}, fmt.Errorf("%w: %q", ErrUnknownEntity, entityID)
	}

	if !m.pooled {
		if m.single.Valid() {
			return m.single, nil
		}
		node := r.instantiate(m)
		if node == nil {
			return Instance{}, fmt.Errorf("spawn %s: host returned no node", m.id)
		}
		m.single = Instance{EntityID: m.id, Node: node}
		r.track(m, m.single)
		return m.single, nil
	}

	h, node, err := m.pool.Get()
	switch {
	case errors.Is(err, pool.ErrExhausted):
		return Instance{}, fmt.Errorf("%w: %s", ErrPoolExhausted, m.id)
	case err != nil:
		return Instance{}, fmt.Errorf("spawn %s: %w", m.id, err)
	}
	r.place(m, node)
	inst := Instance{EntityID: m.id, Node: node, Handle: h}
	r.track(m, inst)
	return inst, nil
}

// SpawnByTag spawns the earliest registered entity declaring tag.
func (r *Registry) SpawnByTag(tag string) (Instance, error) {
	id, ok := r.ResolveByTag(tag)
	if !ok {
		r.log.Warn("unknown tag", log.String("tag", tag))
		return Instance{}, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
	return r.Spawn(id)
}

// ResolveByTag returns the earliest registered entity declaring tag.
func (r *Registry) ResolveByTag(tag string) (string, bool) {
	return r.tags.First(tag)
}

func (r *Registry) EntitiesByTag(tag string) []string {
	return r.tags.All(tag)
}

// Get returns the live instance of a singleton. Pooled entities have no
// single instance and always report false.
func (r *Registry) Get(entityID string) (Instance, bool) {
	m, ok := r.lookup(entityID)
	if !ok || m.pooled || !m.single.Valid() {
		return Instance{}, false
	}
	return m.single, true
}

func (r *Registry) GetByTag(tag string) (Instance, bool) {
	id, ok := r.ResolveByTag(tag)
	if !ok {
		return Instance{}, false
	}
	return r.Get(id)
}

// Release returns a pooled instance to its pool and reports whether anything
// happened. Releasing a singleton, an unknown id, an untracked instance or an
// already released lease is a no-op.
func (r *Registry) Release(entityID string, inst Instance) bool {
	if !inst.Valid() || inst.EntityID != entityID {
		return false
	}
	m, ok := r.lookup(entityID)
	if !ok || !m.pooled {
		return false
	}
	if !r.spawned.Contains(entityID, inst) {
		r.log.Debug("release of untracked instance ignored", log.String("entity_id", entityID))
		return false
	}
	// The handle must still lease the node it was issued with.
	if node, live := m.pool.Lookup(inst.Handle); !live || node != inst.Node {
		r.log.Debug("release with mismatched lease ignored", log.String("entity_id", entityID))
		return false
	}
	if err := m.pool.Release(inst.Handle); err != nil {
		r.log.Debug("release ignored",
			log.String("entity_id", entityID),
			log.Error(err))
		return false
	}
	r.spawned.TrackReleased(entityID, inst)
	r.publish(bus.TypeEntityReleased, r.entityEvent(m))
	return true
}

// Reset forgets every entity, disposes their pools and clears the tag index
// and the tracker. Live instances stay in the scene; the host owns them.
func (r *Registry) Reset() {
	for _, id := range r.order {
		if m := r.entities[id]; m.pool != nil {
			m.pool.Dispose()
		}
	}
	clear(r.entities)
	r.order = r.order[:0]
	r.tags.Clear()
	r.spawned.Clear()
	r.publish(bus.TypeRegistryReset, nil)
}

// Teardown destroys every tracked instance and then resets the registry.
func (r *Registry) Teardown() {
	r.spawned.ForEach(func(_ string, inst Instance) bool {
		r.host.Destroy(inst.Node)
		return true
	})
	r.Reset()
}

// ForEachSpawned visits every live instance, grouped by entity id in
// first-spawn order. Returning false stops the walk.
func (r *Registry) ForEachSpawned(visit func(entityID string, inst Instance) bool) {
	r.spawned.ForEach(visit)
}

// SpawnedEntry summarises the live instances of one entity.
type SpawnedEntry struct {
	EntityID  string `json:"entity_id"`
	Name      string `json:"name"`
	Instances int    `json:"instances"`
	Pooled    bool   `json:"pooled"`
	UI        bool   `json:"ui"`
}

// Snapshot lists every entity with live instances, sorted by entity id.
func (r *Registry) Snapshot() []SpawnedEntry {
	out := make([]SpawnedEntry, 0, r.spawned.Len())
	r.spawned.ForEach(func(id string, _ Instance) bool {
		if n := len(out); n > 0 && out[n-1].EntityID == id {
			out[n-1].Instances++
			return true
		}
		m := r.entities[id]
		entry := SpawnedEntry{EntityID: id, Instances: 1}
		if m != nil {
			entry.Name = m.def.DisplayName(id)
			entry.Pooled = m.pooled
			entry.UI = m.ui
		}
		out = append(out, entry)
		return true
	})
	return sequence.From(out).Sort(func(a, b SpawnedEntry) int {
		return strings.Compare(a.EntityID, b.EntityID)
	}).Collect()
}

// EntityView is a read-only copy of a registry record.
type EntityView struct {
	ID         string
	Type       string
	Name       string
	Pooled     bool
	UI         bool
	UIOrder    int
	Spawned    int
	Definition entity.Definition
	Pool       pool.Stats
}

func (r *Registry) Entity(entityID string) (EntityView, bool) {
	m, ok := r.lookup(entityID)
	if !ok {
		return EntityView{}, false
	}
	v := EntityView{
		ID:         m.id,
		Type:       m.def.Type,
		Name:       m.def.DisplayName(m.id),
		Pooled:     m.pooled,
		UI:         m.ui,
		UIOrder:    m.uiOrder,
		Spawned:    r.spawned.Count(m.id),
		Definition: m.def.Clone(),
	}
	if m.pool != nil {
		v.Pool = m.pool.Stats()
	}
	return v, true
}

// PoolStats reports the pool of a pooled entity.
func (r *Registry) PoolStats(entityID string) (pool.Stats, error) {
	m, ok := r.lookup(entityID)
	if !ok {
		return pool.Stats{}, fmt.Errorf("%w: %q", ErrUnknownEntity, entityID)
	}
	if !m.pooled {
		return pool.Stats{}, fmt.Errorf("%w: %s", ErrNotPooled, entityID)
	}
	return m.pool.Stats(), nil
}

// EntityIDs returns the registered ids in registration order.
func (r *Registry) EntityIDs() []string { return slices.Clone(r.order) }

// AnyUI reports whether any registered entity lives on the UI layer.
func (r *Registry) AnyUI() bool {
	return sequence.From(r.order).Any(func(id string) bool { return r.entities[id].ui })
}

func (r *Registry) Len() int { return len(r.order) }

// Spawned is the number of live instances across all entities.
func (r *Registry) Spawned() int { return r.spawned.Total() }

func (r *Registry) lookup(entityID string) (*managed, bool) {
	if strings.TrimSpace(entityID) == "" {
		return nil, false
	}
	m, ok := r.entities[entityID]
	return m, ok
}

func (r *Registry) track(m *managed, inst Instance) {
	r.spawned.TrackSpawned(m.id, inst)
	r.publish(bus.TypeEntitySpawned, r.entityEvent(m))
}

func (r *Registry) entityEvent(m *managed) bus.EntityEvent {
	return bus.EntityEvent{
		EntityID: m.id,
		Name:     m.def.DisplayName(m.id),
		Pooled:   m.pooled,
		UI:       m.ui,
		Live:     r.spawned.Count(m.id),
	}
}

func (r *Registry) publish(eventType string, data any) {
	if r.events == nil {
		return
	}
	if err := r.events.Publish(bus.NewEvent(eventType, eventSource, data)); err != nil {
		r.log.Warn("event handler failed",
			log.String("event", eventType),
			log.Error(err))
	}
}
