// Package sync coordinates the offline-first machinery: the reachability
// monitor, the queue-draining engine, the remote projection subscriber
// and the status publisher consumers observe.
package sync

import (
	stdsync "sync"

	"github.com/famvault/famvault/internal/archive/models"
)

type statusListener struct {
	id int
	fn func(models.SyncStatus)
}

// Publisher fans the current sync status out to registered listeners.
// Delivery is synchronous and in registration order, always with a copy
// of the status value.
type Publisher struct {
	mu        stdsync.Mutex
	status    models.SyncStatus
	listeners []statusListener
	nextID    int
}

func NewPublisher() *Publisher {
	return &Publisher{status: models.SyncStatus{State: models.SyncIdle}}
}

// Subscribe registers fn and returns its unsubscribe function. Calling
// the unsubscribe function more than once is a no-op.
func (p *Publisher) Subscribe(fn func(models.SyncStatus)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.listeners = append(p.listeners, statusListener{id: id, fn: fn})

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, l := range p.listeners {
			if l.id == id {
				p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
				return
			}
		}
	}
}

// Current returns a copy of the latest published status.
func (p *Publisher) Current() models.SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Update applies mutate to the status under the lock and delivers the
// result to every listener. Listeners must not call back into the
// publisher from the callback.
func (p *Publisher) Update(mutate func(*models.SyncStatus)) {
	p.mu.Lock()
	mutate(&p.status)
	status := p.status
	listeners := make([]statusListener, len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()

	for _, l := range listeners {
		l.fn(status)
	}
}
