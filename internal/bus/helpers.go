package bus

import (
	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"

	"github.com/anchore/spawnguard/event"
)

// PublishTask announces a monitorable task and returns the progress handle the caller drives.
func PublishTask(titles event.Title, context string, total int) *event.ManualStagedProgress {
	prog := &event.ManualStagedProgress{
		Manual:      progress.NewManual(int64(total)),
		AtomicStage: progress.NewAtomicStage(""),
	}

	Publish(partybus.Event{
		Type: event.TaskStartedEvent,
		Source: event.Task{
			Title:   titles,
			Context: context,
		},
		Value: progress.StagedProgressable(prog),
	})

	return prog
}

// ObjectRejected announces that the filter destroyed (or scheduled the destruction of) an object.
func ObjectRejected(r event.Rejection) {
	Publish(partybus.Event{
		Type:   event.ObjectRejectedEvent,
		Source: r.Origin,
		Value:  r,
	})
}
