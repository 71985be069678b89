// Package notifier fans out change pings to SSE streams.
package notifier

import "sync"

// Notifier delivers pings to listeners grouped by topic. A topic is
// usually a browser session id. Listeners receive an empty struct and
// should re-render from current state.
type Notifier struct {
	mu     sync.RWMutex
	topics map[string]map[chan struct{}]struct{}
}

// New creates a Notifier.
func New() *Notifier {
	return &Notifier{
		topics: make(map[string]map[chan struct{}]struct{}),
	}
}

// Subscribe returns a channel that receives a ping whenever topic is
// published. The caller must Unsubscribe when done.
func (n *Notifier) Subscribe(topic string) chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	listeners, ok := n.topics[topic]
	if !ok {
		listeners = make(map[chan struct{}]struct{})
		n.topics[topic] = listeners
	}
	listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes ch from topic and closes it.
func (n *Notifier) Unsubscribe(topic string, ch chan struct{}) {
	n.mu.Lock()
	if listeners, ok := n.topics[topic]; ok {
		delete(listeners, ch)
		if len(listeners) == 0 {
			delete(n.topics, topic)
		}
	}
	n.mu.Unlock()
	close(ch)
}

// Publish pings every listener of topic. A listener that has not drained
// its previous ping is skipped; it re-renders once for both.
func (n *Notifier) Publish(topic string) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	send(n.topics[topic])
}

// Broadcast pings every listener of every topic.
func (n *Notifier) Broadcast() {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, listeners := range n.topics {
		send(listeners)
	}
}

// Listeners returns the number of listeners subscribed to topic.
func (n *Notifier) Listeners(topic string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.topics[topic])
}

func send(listeners map[chan struct{}]struct{}) {
	for ch := range listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
