// Package notifier broadcasts payload-change signals to SSE streams.
package notifier

import (
	"sync"

	"github.com/leapstack-labs/pdgview/internal/source"
)

// Notifier pings subscribers when the payload they watch changes.
// Listeners receive an empty struct and should re-fetch the payload.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan struct{}]source.Ref
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan struct{}]source.Ref),
	}
}

// Subscribe returns a channel that is pinged when ref changes.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe(ref source.Ref) chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.listeners[ch] = ref
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan struct{}) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Broadcast pings every listener watching ref. The zero Ref pings all
// listeners. Non-blocking: a listener with a pending ping is skipped.
func (n *Notifier) Broadcast(ref source.Ref) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch, watched := range n.listeners {
		if ref != (source.Ref{}) && ref != watched {
			continue
		}
		select {
		case ch <- struct{}{}:
		default:
			// Already pending; the listener re-fetches once for both.
		}
	}
}

// Len returns the number of subscribed listeners.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}
