package provision

import (
	"time"

	"github.com/zeusync/provision/internal/core/events/bus"
	"github.com/zeusync/provision/internal/core/observability/log"
)

var _ bus.EventBusObserver = (*LogObserver)(nil)

// LogObserver writes one debug line per delivered event and a warning when a
// handler failed.
type LogObserver struct {
	log log.Log
}

func NewLogObserver(logger log.Log) *LogObserver {
	return &LogObserver{log: logger.With(log.Component("events"))}
}

func (o *LogObserver) OnDelivered(eventType string, handlers int, err error, elapsed time.Duration) {
	if err != nil {
		o.log.Warn("event delivery failed",
			log.String("event", eventType),
			log.Int("handlers", handlers),
			log.Error(err))
		return
	}
	o.log.Debug("event delivered",
		log.String("event", eventType),
		log.Int("handlers", handlers),
		log.Duration("elapsed", elapsed))
}
