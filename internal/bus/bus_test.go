package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagoodman/go-partybus"

	"github.com/anchore/spawnguard/event"
)

func Test_PublishWithoutBus(t *testing.T) {
	Set(nil)
	assert.NotPanics(t, func() {
		ObjectRejected(event.Rejection{ShortName: "wolf"})
		prog := PublishTask(event.Title{Default: "sweep"}, "startup", 2)
		prog.Increment()
		assert.Equal(t, int64(1), prog.Current())
	})
}

func Test_ObjectRejected(t *testing.T) {
	b := partybus.NewBus()
	Set(b)
	t.Cleanup(func() { Set(nil) })

	sub := b.Subscribe(event.ObjectRejectedEvent)
	t.Cleanup(func() { _ = sub.Unsubscribe() })

	want := event.Rejection{ShortName: "boat", TypeName: "MotorRowboat", Origin: event.OriginSpawn}
	ObjectRejected(want)

	select {
	case e := <-sub.Events():
		got, err := event.ParseObjectRejected(e)
		require.NoError(t, err)
		assert.Equal(t, want, *got)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

type recordingPublisher []partybus.Event

func (r *recordingPublisher) Publish(e partybus.Event) {
	*r = append(*r, e)
}

func Test_Attach(t *testing.T) {
	var installed, attached recordingPublisher
	Set(&installed)
	t.Cleanup(func() { Set(nil) })

	detach := Attach(&attached)
	Publish(partybus.Event{Type: event.ObjectRejectedEvent})
	detach()
	Publish(partybus.Event{Type: event.TaskStartedEvent})

	assert.Len(t, installed, 2)
	require.Len(t, attached, 1)
	assert.Equal(t, event.ObjectRejectedEvent, attached[0].Type)
	assert.Same(t, &installed, Get())
}

func Test_Attach_WithoutInstalledPublisher(t *testing.T) {
	Set(nil)
	var attached recordingPublisher

	detach := Attach(&attached)
	ObjectRejected(event.Rejection{ShortName: "wolf"})
	detach()

	assert.Len(t, attached, 1)
	assert.Nil(t, Get())
}
