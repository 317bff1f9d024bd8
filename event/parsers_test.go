package event

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"
)

func Test_ParseTaskStarted(t *testing.T) {
	prog := &ManualStagedProgress{
		Manual:      progress.NewManual(3),
		AtomicStage: progress.NewAtomicStage(""),
	}

	tests := []struct {
		name    string
		event   partybus.Event
		wantErr require.ErrorAssertionFunc
	}{
		{
			name: "task by value",
			event: partybus.Event{
				Type:   TaskStartedEvent,
				Source: Task{Context: "startup"},
				Value:  progress.StagedProgressable(prog),
			},
		},
		{
			name: "task by reference",
			event: partybus.Event{
				Type:   TaskStartedEvent,
				Source: &Task{Context: "startup"},
				Value:  progress.StagedProgressable(prog),
			},
		},
		{
			name: "wrong event type",
			event: partybus.Event{
				Type:   ObjectRejectedEvent,
				Source: Task{Context: "startup"},
				Value:  progress.StagedProgressable(prog),
			},
			wantErr: require.Error,
		},
		{
			name: "missing progress",
			event: partybus.Event{
				Type:   TaskStartedEvent,
				Source: Task{Context: "startup"},
				Value:  "not progress",
			},
			wantErr: require.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantErr == nil {
				tt.wantErr = require.NoError
			}
			task, p, err := ParseTaskStarted(tt.event)
			tt.wantErr(t, err)
			if err != nil {
				return
			}
			assert.Equal(t, "startup", task.Context)
			assert.Equal(t, int64(3), p.Size())
		})
	}
}

func Test_ParseObjectRejected(t *testing.T) {
	want := Rejection{ShortName: "chicken.small", TypeName: "Chicken", Keyword: "chicken", Origin: OriginSweep}

	got, err := ParseObjectRejected(partybus.Event{Type: ObjectRejectedEvent, Value: want})
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	_, err = ParseObjectRejected(partybus.Event{Type: ObjectRejectedEvent, Value: &want})
	var payloadErr *ErrBadPayload
	require.True(t, errors.As(err, &payloadErr))
	assert.Equal(t, "Value", payloadErr.Field)
}
