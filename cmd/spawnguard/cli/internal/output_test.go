package internal

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagoodman/go-partybus"

	"github.com/anchore/spawnguard/event"
	"github.com/anchore/spawnguard/host"
	"github.com/anchore/spawnguard/spawnguard"
)

func Test_NewCheckResult(t *testing.T) {
	rules := spawnguard.NewRuleSet(spawnguard.DenyException, []string{"turret"}, nil, []string{"autoturret_friendly"})

	friendly := spawnguard.Identity{TypeName: "AutoTurret_Friendly"}
	r := NewCheckResult(friendly, spawnguard.Evaluate(friendly, rules))
	assert.False(t, r.Rejected())
	assert.Equal(t, "autoturret_friendly", r.Keyword)

	hostile := spawnguard.Identity{ShortName: "autoturret_deployed", TypeName: "AutoTurret"}
	r = NewCheckResult(hostile, spawnguard.Evaluate(hostile, rules))
	assert.True(t, r.Rejected())
	assert.Equal(t, "turret", r.Keyword)
}

func Test_WriteCheckTable(t *testing.T) {
	var buf bytes.Buffer
	WriteCheckTable(&buf, []CheckResult{
		{ShortName: "boat", TypeName: "MotorRowboat", Decision: decisionReject, Reason: "not on allow list"},
		{TypeName: "Helicopter", Decision: decisionKeep, Keyword: "heli", Reason: "matched allow keyword"},
	})

	out := buf.String()
	for _, want := range []string{"NAME", "DECISION", "boat", "MotorRowboat", "reject", noShortName, "keep", "heli"} {
		assert.Contains(t, out, want)
	}
}

func Test_SimulationReport(t *testing.T) {
	w := host.NewWorld(nil)
	chicken := w.Add("chicken.small", "Chicken")
	w.Add("wolf", "Wolf")
	w.Destroy(chicken)

	rec := NewRejectionRecorder()
	rec.Publish(rejectedEvent(chicken, "chicken", event.OriginSweep))

	cfg := spawnguard.Config{Rules: spawnguard.DenyRules("chicken"), SweepOnStartup: true}
	r := NewSimulationReport(cfg, w, rec)

	assert.Equal(t, []Entity{{
		Handle:    1,
		ShortName: "chicken.small",
		TypeName:  "Chicken",
		Reason:    "matched deny keyword",
		Keyword:   "chicken",
		Origin:    "sweep",
	}}, r.Destroyed)
	assert.Equal(t, []Entity{{Handle: 2, ShortName: "wolf", TypeName: "Wolf"}}, r.Kept)

	var buf bytes.Buffer
	WriteSimulationTable(&buf, r)
	out := buf.String()
	assert.Contains(t, out, "deny(deny=[chicken])")
	assert.Contains(t, out, "[1 entities]")
	assert.Contains(t, out, "destroyed")
	assert.Contains(t, out, "kept")
	assert.Contains(t, out, "ORIGIN")
	assert.Contains(t, out, "sweep")

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, r))
	var decoded SimulationReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, r, decoded)
}

func Test_WriteSimulationTable_EmptyWorld(t *testing.T) {
	var buf bytes.Buffer
	WriteSimulationTable(&buf, SimulationReport{Rules: "deny(deny=[])"})
	assert.Contains(t, buf.String(), "No entities in the world.")
}

func rejectedEvent(e *host.Entity, keyword string, origin event.Origin) partybus.Event {
	return partybus.Event{
		Type: event.ObjectRejectedEvent,
		Value: event.Rejection{
			ShortName: e.ShortName,
			TypeName:  e.TypeName,
			Keyword:   keyword,
			Reason:    "matched deny keyword",
			Origin:    origin,
			Object:    spawnguard.Object(e),
		},
	}
}

func Test_RejectionRecorder(t *testing.T) {
	w := host.NewWorld(nil)
	boat := w.Add("boat", "MotorRowboat")
	wolf := w.Add("wolf", "Wolf")

	rec := NewRejectionRecorder()
	rec.Publish(rejectedEvent(boat, "boat", event.OriginSweep))
	// the same object rejected again (spawned while the sweep was pending) keeps the first rejection
	rec.Publish(rejectedEvent(boat, "row", event.OriginSpawn))
	// unrelated events and objects that are not world entities are ignored
	rec.Publish(partybus.Event{Type: event.TaskStartedEvent})
	rec.Publish(partybus.Event{Type: event.ObjectRejectedEvent, Value: "not a rejection"})
	rec.Publish(partybus.Event{Type: event.ObjectRejectedEvent, Value: event.Rejection{Keyword: "x"}})

	got, ok := rec.Get(boat.Handle)
	require.True(t, ok)
	assert.Equal(t, event.OriginSweep, got.Origin)
	assert.Equal(t, "boat", got.Keyword)

	_, ok = rec.Get(wolf.Handle)
	assert.False(t, ok)

	var nilRecorder *RejectionRecorder
	_, ok = nilRecorder.Get(boat.Handle)
	assert.False(t, ok)
}

func Test_SimulationReport_WithoutRecordedRejection(t *testing.T) {
	w := host.NewWorld(nil)
	w.Destroy(w.Add("chicken", "Chicken"))

	r := NewSimulationReport(spawnguard.Config{Rules: spawnguard.DenyRules("chicken")}, w, nil)
	assert.Equal(t, []Entity{{Handle: 1, ShortName: "chicken", TypeName: "Chicken"}}, r.Destroyed)
}
