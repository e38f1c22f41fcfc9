package bus

// Event types published by the provisioning engine.
const (
	TypeEntityRegistered = "entity.registered"
	TypeEntitySpawned    = "entity.spawned"
	TypeEntityReleased   = "entity.released"
	TypeRegistryReset    = "registry.reset"
	TypeCatalogLoaded    = "catalog.loaded"
)

// EntityEvent is the payload of the entity.* events.
type EntityEvent struct {
	EntityID string
	Name     string
	Pooled   bool
	UI       bool
	// Live is the number of tracked instances after the change.
	Live int
}

// LoadEvent is the payload of catalog.loaded.
type LoadEvent struct {
	Scene       string
	Components  int
	Entities    int
	Spawned     int
	Fingerprint uint64
}

// SubscribeMany subscribes one handler to several event types. On error the
// subscriptions made so far are cancelled.
func SubscribeMany(b EventBus, handler EventHandler, eventTypes ...string) ([]Subscription, error) {
	subs := make([]Subscription, 0, len(eventTypes))
	for _, et := range eventTypes {
		s, err := b.Subscribe(et, handler)
		if err != nil {
			for _, done := range subs {
				_ = done.Cancel()
			}
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, nil
}
