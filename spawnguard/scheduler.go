package spawnguard

import "github.com/anchore/spawnguard/internal/log"

// Scheduler owns the named sweep registry and the deferred call queue. It models the host's
// single-threaded update path: every Tick is one scheduling pass. It is not safe for concurrent
// use; the host drives it from one goroutine.
type Scheduler struct {
	jobs map[string]*SweepJob
	// order keeps ticks deterministic across multiple named sweeps
	order []string
	next  []func()
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		jobs: make(map[string]*SweepJob),
	}
}

// StartSweep starts a sweep under the given name, replacing (cancelling) any sweep already
// running under that name. The snapshot is taken once, here. Nothing is started and nil is
// returned when the rule set is empty.
func (s *Scheduler) StartSweep(name string, rules RuleSet, snapshot SnapshotFunc, destroy DestroyFunc) *SweepJob {
	if rules.IsEmpty() {
		log.WithFields("sweep", name).Debug("policy is empty, not starting sweep")
		return nil
	}

	s.Cancel(name)

	var objects []Object
	if snapshot != nil {
		objects = snapshot()
	}

	job := newSweepJob(name, rules, objects, destroy)
	job.start()

	s.jobs[name] = job
	s.order = append(s.order, name)
	return job
}

// Cancel stops the sweep running under the given name, if any. Objects it already destroyed stay destroyed.
func (s *Scheduler) Cancel(name string) {
	job, ok := s.jobs[name]
	if !ok {
		return
	}
	job.cancel()
	s.remove(name)
}

// CancelAll stops every sweep and clears the registry.
func (s *Scheduler) CancelAll() {
	for _, name := range s.order {
		if job, ok := s.jobs[name]; ok {
			job.cancel()
		}
	}
	s.jobs = make(map[string]*SweepJob)
	s.order = nil
}

// NextTick defers fn to the next scheduling pass.
func (s *Scheduler) NextTick(fn func()) {
	if fn == nil {
		return
	}
	s.next = append(s.next, fn)
}

// Tick runs one scheduling pass: deferred calls queued before this pass run first (calls they
// queue wait for the following pass), then every running sweep processes at most one object.
func (s *Scheduler) Tick() {
	deferred := s.next
	s.next = nil
	for _, fn := range deferred {
		fn()
	}

	for _, name := range append([]string(nil), s.order...) {
		job, ok := s.jobs[name]
		if !ok {
			continue
		}
		if !job.advance() {
			s.remove(name)
		}
	}
}

// Flush runs every deferred call now, including calls queued while flushing. It is used when no
// further pass will happen.
func (s *Scheduler) Flush() {
	for len(s.next) > 0 {
		deferred := s.next
		s.next = nil
		for _, fn := range deferred {
			fn()
		}
	}
}

// Running returns true if a sweep is active under the given name
func (s *Scheduler) Running(name string) bool {
	job, ok := s.jobs[name]
	return ok && job.State() == SweepRunning
}

// Get returns the active sweep registered under the name
func (s *Scheduler) Get(name string) (*SweepJob, bool) {
	job, ok := s.jobs[name]
	return job, ok
}

// Active returns the names of registered sweeps in start order
func (s *Scheduler) Active() []string {
	return append([]string(nil), s.order...)
}

// Pending returns the number of deferred calls waiting for the next pass
func (s *Scheduler) Pending() int {
	return len(s.next)
}

// Idle returns true when there is no sweep registered and nothing deferred
func (s *Scheduler) Idle() bool {
	return len(s.jobs) == 0 && len(s.next) == 0
}

func (s *Scheduler) remove(name string) {
	delete(s.jobs, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
