package event

import "github.com/wagoodman/go-partybus"

const (
	typePrefix     = "spawnguard"
	hostTypePrefix = typePrefix + "-host"

	// Events from the spawnguard library

	// TaskStartedEvent is a generic, monitorable partybus event that occurs when a task (e.g. a sweep) has begun
	TaskStartedEvent partybus.EventType = typePrefix + "-task"

	// ObjectRejectedEvent is a partybus event that occurs when the filter destroys an object it rejected
	ObjectRejectedEvent partybus.EventType = typePrefix + "-object-rejected"

	// Events delivered by the simulation host

	// ObjectReadyEvent occurs once per newly created world object; the Value is the spawnguard.Object
	ObjectReadyEvent partybus.EventType = hostTypePrefix + "-object-ready"

	// HostReadyEvent occurs once, after the host world is fully loaded
	HostReadyEvent partybus.EventType = hostTypePrefix + "-ready"

	// UnloadEvent occurs when the filter is being torn down
	UnloadEvent partybus.EventType = hostTypePrefix + "-unload"
)

// HostEvents are the event types a host loop subscribes to
var HostEvents = []partybus.EventType{ObjectReadyEvent, HostReadyEvent, UnloadEvent}
