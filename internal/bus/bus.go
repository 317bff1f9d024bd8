// Package bus holds the process-wide publisher that filter progress and rejection events are sent to.
package bus

import (
	"sync"

	"github.com/wagoodman/go-partybus"
)

var (
	lock      sync.RWMutex
	publisher partybus.Publisher
)

// Set installs the publisher; nil disables publishing. Filters work the same with or without one.
func Set(p partybus.Publisher) {
	lock.Lock()
	defer lock.Unlock()
	publisher = p
}

func Get() partybus.Publisher {
	lock.RLock()
	defer lock.RUnlock()
	return publisher
}

// Publish sends the event when a publisher is installed and drops it otherwise.
func Publish(e partybus.Event) {
	if p := Get(); p != nil {
		p.Publish(e)
	}
}

type multiPublisher []partybus.Publisher

func (m multiPublisher) Publish(e partybus.Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(e)
		}
	}
}

// Attach publishes every event to p as well as to the installed publisher until the returned
// function is called, which reinstates the previous publisher.
func Attach(p partybus.Publisher) (detach func()) {
	lock.Lock()
	defer lock.Unlock()

	previous := publisher
	publisher = multiPublisher{previous, p}
	return func() { Set(previous) }
}
