// Package notifier broadcasts change events to in-process listeners.
package notifier

import "sync"

// Topic names what changed.
type Topic string

// Topics published by the directory.
const (
	TopicList    Topic = "list"
	TopicDetail  Topic = "detail"
	TopicDataset Topic = "dataset"
)

// Event is a change ping. Seq increases with every broadcast of a Notifier.
type Event struct {
	Topic Topic
	Seq   uint64
}

// Notifier fans events out to subscribers. Listeners that fall behind only
// see the latest event: each subscription buffers a single event and a newer
// broadcast replaces an unread one. Listeners re-read state on every event.
type Notifier struct {
	mu        sync.Mutex
	seq       uint64
	closed    bool
	listeners map[<-chan Event]chan Event
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[<-chan Event]chan Event),
	}
}

// Subscribe returns a channel that receives events.
// The caller must call Unsubscribe when done. Subscribing to a closed
// Notifier returns an already closed channel.
func (n *Notifier) Subscribe() <-chan Event {
	ch := make(chan Event, 1)
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		close(ch)
		return ch
	}
	n.listeners[ch] = ch
	return ch
}

// Unsubscribe removes a listener and closes its channel. Unknown or already
// removed channels are ignored.
func (n *Notifier) Unsubscribe(ch <-chan Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if c, ok := n.listeners[ch]; ok {
		delete(n.listeners, ch)
		close(c)
	}
}

// Broadcast publishes an event for topic and returns its sequence number.
// It never blocks.
func (n *Notifier) Broadcast(topic Topic) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.seq++
	ev := Event{Topic: topic, Seq: n.seq}
	for _, ch := range n.listeners {
		select {
		case ch <- ev:
			continue
		default:
		}
		// Full: drop the stale event. Sends only happen under mu, so the
		// second send always has room.
		select {
		case <-ch:
		default:
		}
		ch <- ev
	}
	return ev.Seq
}

// Len returns the number of active subscriptions.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}

// Close unsubscribes every listener. Later broadcasts reach nobody.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	for key, ch := range n.listeners {
		delete(n.listeners, key)
		close(ch)
	}
}
