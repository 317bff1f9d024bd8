package host

import (
	"context"
	"sync"
	"time"

	"github.com/wagoodman/go-partybus"

	"github.com/anchore/spawnguard/event"
	"github.com/anchore/spawnguard/internal/log"
	"github.com/anchore/spawnguard/spawnguard"
)

// DefaultTickInterval approximates a 30Hz server frame
const DefaultTickInterval = 33 * time.Millisecond

type LoopConfig struct {
	// TickInterval is the time between scheduling passes
	TickInterval time.Duration
	// DrainOnUnload keeps running passes after the unload event until the filter has no pending
	// work (sweeps, deferred destroys); otherwise unload cancels everything immediately.
	DrainOnUnload bool
}

func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		TickInterval: DefaultTickInterval,
	}
}

// Loop is the host's main update path: a single goroutine draining host events into the filter
// and driving its scheduler, one pass per tick.
type Loop struct {
	filter *spawnguard.Filter
	events <-chan partybus.Event
	config LoopConfig

	ready     chan struct{}
	readyOnce sync.Once
}

func NewLoop(filter *spawnguard.Filter, events <-chan partybus.Event, cfg LoopConfig) *Loop {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	return &Loop{
		filter: filter,
		events: events,
		config: cfg,
		ready:  make(chan struct{}),
	}
}

// Ready is closed once the host ready event has been handled (and any startup sweep has taken its snapshot)
func (l *Loop) Ready() <-chan struct{} {
	return l.ready
}

// Run processes events and passes until the host unloads the filter, the event stream closes,
// or the context is cancelled. The filter is always unloaded on return.
func (l *Loop) Run(ctx context.Context) error {
	defer l.markReady()
	defer l.filter.OnUnload()

	ticker := time.NewTicker(l.config.TickInterval)
	defer ticker.Stop()

	events := l.events
	draining := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case e, ok := <-events:
			if !ok {
				log.Debug("host event stream closed")
				return nil
			}
			if l.dispatch(e) {
				if !l.config.DrainOnUnload || l.filter.Idle() {
					return nil
				}
				log.Debug("unload requested, draining pending work")
				draining = true
				// a nil channel is never ready, so no further events are taken
				events = nil
			}

		case <-ticker.C:
			l.filter.Tick()
			if draining && l.filter.Idle() {
				return nil
			}
		}
	}
}

// dispatch hands one host event to the filter and reports whether it was the unload event
func (l *Loop) dispatch(e partybus.Event) bool {
	switch e.Type {
	case event.ObjectReadyEvent:
		obj, err := ParseObjectReady(e)
		if err != nil {
			log.Warnf("ignoring host event: %+v", err)
			return false
		}
		l.filter.OnObjectReady(obj)
	case event.HostReadyEvent:
		if job := l.filter.OnHostReady(); job != nil {
			log.WithFields("sweep", job.Name, "objects", job.Size()).Info("startup sweep scheduled")
		}
		l.markReady()
	case event.UnloadEvent:
		return true
	default:
		log.Tracef("unhandled host event: %s", e.Type)
	}
	return false
}

func (l *Loop) markReady() {
	l.readyOnce.Do(func() { close(l.ready) })
}

// ParseObjectReady extracts the created object from an ObjectReadyEvent
func ParseObjectReady(e partybus.Event) (spawnguard.Object, error) {
	if err := event.CheckEventType(e.Type, event.ObjectReadyEvent); err != nil {
		return nil, err
	}

	obj, ok := e.Value.(spawnguard.Object)
	if !ok || obj == nil {
		return nil, event.NewPayloadErr(e.Type, "Value", e.Value)
	}
	return obj, nil
}
