package snapshot

import (
	"sync"
)

// notifier fans ETags of new tables out to subscribers.
type notifier struct {
	mu   sync.Mutex
	subs map[chan string]struct{}
}

// Subscribe registers a listener and returns its channel and an unsubscribe
// func. The unsubscribe func is safe to call more than once.
func (n *notifier) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 1)
	n.mu.Lock()
	if n.subs == nil {
		n.subs = make(map[chan string]struct{})
	}
	n.subs[ch] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, ch)
			close(ch)
			n.mu.Unlock()
		})
	}
	return ch, unsub
}

// Subscribers returns the number of registered listeners.
func (n *notifier) Subscribers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// publish notifies all listeners (non-blocking). A slow listener skips
// updates instead of blocking the swap.
func (n *notifier) publish(etag string) {
	n.mu.Lock()
	for ch := range n.subs {
		select {
		case ch <- etag:
		default:
		}
	}
	n.mu.Unlock()
}
