package host

import (
	"sync"

	"github.com/wagoodman/go-partybus"

	"github.com/anchore/spawnguard/event"
	"github.com/anchore/spawnguard/spawnguard"
)

// Entity is an object living in a World
type Entity struct {
	// Handle is unique within the world that created the entity
	Handle    uint64
	ShortName string
	TypeName  string
}

func (e *Entity) Identity() spawnguard.Identity {
	return spawnguard.Identity{ShortName: e.ShortName, TypeName: e.TypeName}
}

// World is an in-memory simulation host. Entities are kept in creation order and lifecycle events
// are published on the world's bus, which is what a Loop consumes.
type World struct {
	lock      sync.RWMutex
	bus       partybus.Publisher
	nextID    uint64
	live      []*Entity
	destroyed []*Entity
}

func NewWorld(publisher partybus.Publisher) *World {
	return &World{
		bus: publisher,
	}
}

// Add places an entity in the world without announcing it (used to build the pre-existing world)
func (w *World) Add(shortName, typeName string) *Entity {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.nextID++
	e := &Entity{Handle: w.nextID, ShortName: shortName, TypeName: typeName}
	w.live = append(w.live, e)
	return e
}

// Spawn creates an entity and announces it with an ObjectReadyEvent
func (w *World) Spawn(shortName, typeName string) *Entity {
	e := w.Add(shortName, typeName)
	w.publish(partybus.Event{
		Type:  event.ObjectReadyEvent,
		Value: spawnguard.Object(e),
	})
	return e
}

// Ready announces that the world is fully loaded
func (w *World) Ready() {
	w.publish(partybus.Event{Type: event.HostReadyEvent})
}

// Unload announces that the filter is being torn down
func (w *World) Unload() {
	w.publish(partybus.Event{Type: event.UnloadEvent})
}

// LiveObjects returns the current entities in creation order
func (w *World) LiveObjects() []spawnguard.Object {
	w.lock.RLock()
	defer w.lock.RUnlock()

	objs := make([]spawnguard.Object, 0, len(w.live))
	for _, e := range w.live {
		objs = append(objs, e)
	}
	return objs
}

// Destroy removes the entity from the world; entities that are already gone are ignored.
func (w *World) Destroy(obj spawnguard.Object) {
	e, ok := obj.(*Entity)
	if !ok || e == nil {
		return
	}

	w.lock.Lock()
	defer w.lock.Unlock()

	for i, candidate := range w.live {
		if candidate.Handle == e.Handle {
			w.live = append(w.live[:i], w.live[i+1:]...)
			w.destroyed = append(w.destroyed, candidate)
			return
		}
	}
}

// Live returns a copy of the entities still in the world
func (w *World) Live() []Entity {
	w.lock.RLock()
	defer w.lock.RUnlock()
	return copyEntities(w.live)
}

// Destroyed returns a copy of the destroyed entities in destruction order
func (w *World) Destroyed() []Entity {
	w.lock.RLock()
	defer w.lock.RUnlock()
	return copyEntities(w.destroyed)
}

func (w *World) publish(e partybus.Event) {
	if w.bus != nil {
		w.bus.Publish(e)
	}
}

func copyEntities(in []*Entity) []Entity {
	out := make([]Entity, 0, len(in))
	for _, e := range in {
		out = append(out, *e)
	}
	return out
}
