package internal

import (
	"sync"

	"github.com/wagoodman/go-partybus"

	"github.com/anchore/spawnguard/event"
	"github.com/anchore/spawnguard/host"
	"github.com/anchore/spawnguard/internal/log"
	"github.com/anchore/spawnguard/spawnguard"
)

const (
	decisionReject = "reject"
	decisionKeep   = "keep"
)

// CheckResult is the decision for one identity given on the command line
type CheckResult struct {
	ShortName string `json:"shortName" yaml:"short-name"`
	TypeName  string `json:"typeName" yaml:"type"`
	Decision  string `json:"decision" yaml:"decision"`
	Reason    string `json:"reason" yaml:"reason"`
	Keyword   string `json:"keyword,omitempty" yaml:"keyword,omitempty"`
}

func NewCheckResult(id spawnguard.Identity, d spawnguard.Decision) CheckResult {
	decision := decisionKeep
	if d.Reject {
		decision = decisionReject
	}
	return CheckResult{
		ShortName: id.ShortName,
		TypeName:  id.TypeName,
		Decision:  decision,
		Reason:    string(d.Reason),
		Keyword:   d.Keyword,
	}
}

func (r CheckResult) Rejected() bool {
	return r.Decision == decisionReject
}

// Entity is an entity as it appears in a simulation report. Destroyed entities carry the
// decision that removed them.
type Entity struct {
	Handle    uint64 `json:"handle" yaml:"handle"`
	ShortName string `json:"shortName" yaml:"short-name"`
	TypeName  string `json:"typeName" yaml:"type"`
	Reason    string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Keyword   string `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	Origin    string `json:"origin,omitempty" yaml:"origin,omitempty"`
}

// SimulationReport summarizes a simulated host run
type SimulationReport struct {
	Rules     string   `json:"rules" yaml:"rules"`
	Sweep     bool     `json:"sweep" yaml:"sweep"`
	Destroyed []Entity `json:"destroyed" yaml:"destroyed"`
	Kept      []Entity `json:"kept" yaml:"kept"`
}

func NewSimulationReport(cfg spawnguard.Config, w *host.World, rejections *RejectionRecorder) SimulationReport {
	destroyed := convertEntities(w.Destroyed())
	for i := range destroyed {
		r, ok := rejections.Get(destroyed[i].Handle)
		if !ok {
			continue
		}
		destroyed[i].Reason = r.Reason
		destroyed[i].Keyword = r.Keyword
		destroyed[i].Origin = string(r.Origin)
	}

	return SimulationReport{
		Rules:     cfg.Rules.String(),
		Sweep:     cfg.SweepOnStartup,
		Destroyed: destroyed,
		Kept:      convertEntities(w.Live()),
	}
}

func convertEntities(in []host.Entity) []Entity {
	out := make([]Entity, 0, len(in))
	for _, e := range in {
		out = append(out, Entity{Handle: e.Handle, ShortName: e.ShortName, TypeName: e.TypeName})
	}
	return out
}

// RejectionRecorder collects ObjectRejectedEvents for world entities, keyed by entity handle.
// An entity can be rejected twice (spawned while a sweep is pending); the first rejection is the
// one that destroyed it.
type RejectionRecorder struct {
	lock     sync.Mutex
	byHandle map[uint64]event.Rejection
}

func NewRejectionRecorder() *RejectionRecorder {
	return &RejectionRecorder{
		byHandle: make(map[uint64]event.Rejection),
	}
}

// Publish implements partybus.Publisher so the recorder can be attached to the bus
func (r *RejectionRecorder) Publish(e partybus.Event) {
	if e.Type != event.ObjectRejectedEvent {
		return
	}
	rejection, err := event.ParseObjectRejected(e)
	if err != nil {
		log.Warnf("unable to record rejection: %+v", err)
		return
	}
	entity, ok := rejection.Object.(*host.Entity)
	if !ok || entity == nil {
		return
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	if _, seen := r.byHandle[entity.Handle]; !seen {
		r.byHandle[entity.Handle] = *rejection
	}
}

// Get returns the rejection recorded for the entity handle
func (r *RejectionRecorder) Get(handle uint64) (event.Rejection, bool) {
	if r == nil {
		return event.Rejection{}, false
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	rejection, ok := r.byHandle[handle]
	return rejection, ok
}
