package event

import (
	"fmt"

	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"
)

type ErrBadPayload struct {
	Type  partybus.EventType
	Field string
	Value interface{}
}

func (e *ErrBadPayload) Error() string {
	return fmt.Sprintf("event='%s' has bad event payload field='%v': '%+v'", string(e.Type), e.Field, e.Value)
}

// NewPayloadErr reports a malformed field of an event payload
func NewPayloadErr(t partybus.EventType, field string, value interface{}) error {
	return &ErrBadPayload{
		Type:  t,
		Field: field,
		Value: value,
	}
}

// CheckEventType returns an error if the event is not of the expected type
func CheckEventType(actual, expected partybus.EventType) error {
	if actual != expected {
		return NewPayloadErr(expected, "Type", actual)
	}
	return nil
}

func ParseTaskStarted(e partybus.Event) (*Task, progress.StagedProgressable, error) {
	if err := CheckEventType(e.Type, TaskStartedEvent); err != nil {
		return nil, nil, err
	}

	var task *Task
	switch source := e.Source.(type) {
	case Task:
		task = &source
	case *Task:
		task = source
	default:
		return nil, nil, NewPayloadErr(e.Type, "Source", e.Source)
	}

	prog, ok := e.Value.(progress.StagedProgressable)
	if !ok {
		return nil, nil, NewPayloadErr(e.Type, "Value", e.Value)
	}

	return task, prog, nil
}

func ParseObjectRejected(e partybus.Event) (*Rejection, error) {
	if err := CheckEventType(e.Type, ObjectRejectedEvent); err != nil {
		return nil, err
	}

	rejection, ok := e.Value.(Rejection)
	if !ok {
		return nil, NewPayloadErr(e.Type, "Value", e.Value)
	}

	return &rejection, nil
}
