package spawnguard

import (
	"github.com/anchore/spawnguard/event"
	"github.com/anchore/spawnguard/internal/bus"
	"github.com/anchore/spawnguard/internal/log"
)

// StartupSweepName is the registry name of the sweep started when the host becomes ready
const StartupSweepName = "startup-sweep"

// Config is the policy the filter enforces
type Config struct {
	Rules RuleSet
	// SweepOnStartup removes already existing objects matching the rules once the host is ready
	SweepOnStartup bool
}

// Filter decides which objects may exist in the host world. It holds the current rule set and
// the scheduler carrying its sweeps and deferred destroys. Like the Scheduler it is driven from
// the host's single update path.
type Filter struct {
	config    Config
	host      Host
	scheduler *Scheduler
	loaded    bool
}

func NewFilter(cfg Config, host Host) *Filter {
	return &Filter{
		config:    cfg,
		host:      host,
		scheduler: NewScheduler(),
		loaded:    true,
	}
}

// Scheduler exposes the filter's scheduler so the host loop can drive passes
func (f *Filter) Scheduler() *Scheduler {
	return f.scheduler
}

// Rules returns the rule set currently enforced
func (f *Filter) Rules() RuleSet {
	return f.config.Rules
}

// Loaded returns false after OnUnload
func (f *Filter) Loaded() bool {
	return f.loaded
}

// OnObjectReady evaluates a newly created object. A rejected object is destroyed on the next
// scheduling pass, never while the host is still inside its own creation path.
func (f *Filter) OnObjectReady(obj Object) bool {
	if !f.loaded || obj == nil {
		return false
	}

	id := obj.Identity()
	d := Evaluate(id, f.config.Rules)
	if !d.Reject {
		return false
	}

	log.WithFields("object", id.String(), "keyword", d.Keyword, "reason", d.Reason).Debug("rejecting spawned object")
	f.scheduler.NextTick(func() {
		f.host.Destroy(obj)
		bus.ObjectRejected(rejection(obj, id, d, event.OriginSpawn))
	})
	return true
}

// OnHostReady starts the startup sweep when it is enabled and the policy is non-empty.
func (f *Filter) OnHostReady() *SweepJob {
	if !f.loaded || !f.config.SweepOnStartup {
		return nil
	}
	if f.config.Rules.IsEmpty() {
		log.Debug("startup sweep enabled but the policy is empty")
		return nil
	}
	return f.scheduler.StartSweep(StartupSweepName, f.config.Rules, f.host.LiveObjects, f.host.Destroy)
}

// Tick runs one host scheduling pass
func (f *Filter) Tick() {
	f.scheduler.Tick()
}

// Idle returns true when the filter has no pending work
func (f *Filter) Idle() bool {
	return f.scheduler.Idle()
}

// OnUnload cancels every sweep and stops reacting to events. Spawned objects already rejected
// are destroyed before returning, since no further pass is guaranteed to run.
func (f *Filter) OnUnload() {
	if !f.loaded {
		return
	}
	f.scheduler.CancelAll()
	f.scheduler.Flush()
	f.config = Config{}
	f.loaded = false
	log.Debug("filter unloaded")
}
