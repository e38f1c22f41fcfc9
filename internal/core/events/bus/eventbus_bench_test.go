package bus

import (
	"sync/atomic"
	"testing"
	"time"
)

func makeHandler(c *int64) EventHandler {
	return func(Event) error {
		atomic.AddInt64(c, 1)
		return nil
	}
}

type nopObserver struct{}

func (nopObserver) OnDelivered(string, int, error, time.Duration) {}

func BenchmarkPublishSingleSubscriber(b *testing.B) {
	bus := New()
	var c int64
	_, _ = bus.Subscribe(TypeEntitySpawned, makeHandler(&c))
	e := NewEvent(TypeEntitySpawned, "bench", EntityEvent{EntityID: "x"})
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bus.Publish(e)
	}
}

func BenchmarkPublishWithObserver(b *testing.B) {
	bus := New()
	var c int64
	for i := 0; i < 8; i++ {
		_, _ = bus.Subscribe(TypeEntitySpawned, makeHandler(&c))
	}
	bus.AddObserver(nopObserver{})
	e := NewEvent(TypeEntitySpawned, "bench", nil)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bus.Publish(e)
	}
}
