package spawnguard

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/anchore/spawnguard/event"
	"github.com/anchore/spawnguard/internal/bus"
	"github.com/anchore/spawnguard/internal/log"
)

// SweepState is the lifecycle state of a sweep job
type SweepState string

const (
	SweepIdle      SweepState = "idle"
	SweepRunning   SweepState = "running"
	SweepCompleted SweepState = "completed"
	SweepCancelled SweepState = "cancelled"
)

// IsTerminal returns true once the job can no longer do any work
func (s SweepState) IsTerminal() bool {
	return s == SweepCompleted || s == SweepCancelled
}

// SnapshotFunc returns the ordered set of live objects a sweep walks over
type SnapshotFunc func() []Object

// DestroyFunc removes an object from the world; it must tolerate objects that are already gone
type DestroyFunc func(Object)

// ErrSweepCancelled is recorded on the progress of a sweep that was cancelled before finishing
var ErrSweepCancelled = fmt.Errorf("sweep cancelled")

// SweepJob is a single named pass over a snapshot of live objects.
// It is advanced one object at a time by the Scheduler.
type SweepJob struct {
	Name string
	// ID distinguishes runs that share a name
	ID string

	rules    RuleSet
	snapshot []Object
	destroy  DestroyFunc
	cursor   int
	state    SweepState

	visited   int
	destroyed int

	prog *event.ManualStagedProgress
}

func newSweepJob(name string, rules RuleSet, snapshot []Object, destroy DestroyFunc) *SweepJob {
	return &SweepJob{
		Name:     name,
		ID:       uuid.NewString(),
		rules:    rules,
		snapshot: snapshot,
		destroy:  destroy,
		state:    SweepIdle,
	}
}

func (j *SweepJob) start() {
	j.state = SweepRunning
	j.prog = bus.PublishTask(
		event.Title{
			Default:      "Sweep existing objects",
			WhileRunning: "Sweeping existing objects",
			OnSuccess:    "Swept existing objects",
			OnFail:       "Sweep cancelled",
		},
		j.Name,
		len(j.snapshot),
	)
	log.WithFields("sweep", j.Name, "id", j.ID, "objects", len(j.snapshot)).Debug("sweep started")
}

// advance processes at most one object. It returns false once the job is no longer running;
// the job notices it is exhausted on the call after its last object, so a snapshot of N objects
// yields N times before completing.
func (j *SweepJob) advance() bool {
	if j.state != SweepRunning {
		return false
	}

	if j.cursor >= len(j.snapshot) {
		j.complete()
		return false
	}

	obj := j.snapshot[j.cursor]
	j.cursor++
	j.visited++

	if obj != nil {
		id := obj.Identity()
		if d := Evaluate(id, j.rules); d.Reject {
			j.destroyed++
			if j.destroy != nil {
				j.destroy(obj)
			}
			log.WithFields("sweep", j.Name, "object", id.String(), "keyword", d.Keyword).Trace("sweep removed object")
			bus.ObjectRejected(rejection(obj, id, d, event.OriginSweep))
		}
	}

	j.prog.Increment()
	j.prog.AtomicStage.Set(fmt.Sprintf("%d/%d objects", j.cursor, len(j.snapshot)))
	return true
}

func (j *SweepJob) complete() {
	j.state = SweepCompleted
	j.prog.SetCompleted()
	log.WithFields("sweep", j.Name, "id", j.ID, "visited", j.visited, "destroyed", j.destroyed).Info("sweep completed")
}

func (j *SweepJob) cancel() {
	if j.state.IsTerminal() {
		return
	}
	j.state = SweepCancelled
	if j.prog != nil {
		j.prog.SetError(ErrSweepCancelled)
	}
	log.WithFields("sweep", j.Name, "id", j.ID, "visited", j.visited, "destroyed", j.destroyed).Debug("sweep cancelled")
}

// State returns the current lifecycle state
func (j *SweepJob) State() SweepState {
	return j.state
}

// Visited returns how many snapshot entries have been evaluated so far
func (j *SweepJob) Visited() int {
	return j.visited
}

// Destroyed returns how many objects this job has destroyed
func (j *SweepJob) Destroyed() int {
	return j.destroyed
}

// Size returns the number of objects in the snapshot
func (j *SweepJob) Size() int {
	return len(j.snapshot)
}

func rejection(obj Object, id Identity, d Decision, origin event.Origin) event.Rejection {
	return event.Rejection{
		ShortName: id.ShortName,
		TypeName:  id.TypeName,
		Keyword:   d.Keyword,
		Reason:    string(d.Reason),
		Origin:    origin,
		Object:    obj,
	}
}
