package kvstore

import (
	"bytes"
	"sync"
)

// EventKind distinguishes a Set from a Delete.
type EventKind string

const (
	EventSet    EventKind = "set"
	EventDelete EventKind = "delete"
)

// Event describes a single key mutation, published once its transaction
// has committed.
type Event struct {
	Tree string
	Kind EventKind
	Key  []byte
}

// Subscription is a channel of Events matching a tree/prefix filter,
// optionally narrowed to specific EventKinds.
type Subscription struct {
	C      chan Event
	tree   string
	prefix []byte
	kinds  map[EventKind]bool
}

func (s *Subscription) matchesKind(k EventKind) bool {
	if len(s.kinds) == 0 {
		return true
	}
	return s.kinds[k]
}

// Broker fans committed Events out to subscribers filtered by tree and
// key prefix. It is the watch_prefix equivalent bbolt itself lacks,
// adapted from a plain cluster-event broadcast broker into one that
// filters per subscriber instead of broadcasting identically to all.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[*Subscription]bool
	eventCh     chan Event
	stopCh      chan struct{}
}

func newBroker() *Broker {
	return &Broker{
		subscribers: make(map[*Subscription]bool),
		eventCh:     make(chan Event, 256),
		stopCh:      make(chan struct{}),
	}
}

func (b *Broker) start() {
	go b.run()
}

func (b *Broker) stop() {
	close(b.stopCh)
}

func (b *Broker) subscribe(tree string, prefix []byte, kinds []EventKind) *Subscription {
	var kindSet map[EventKind]bool
	if len(kinds) > 0 {
		kindSet = make(map[EventKind]bool, len(kinds))
		for _, k := range kinds {
			kindSet[k] = true
		}
	}
	sub := &Subscription{
		C:      make(chan Event, 64),
		tree:   tree,
		prefix: append([]byte(nil), prefix...),
		kinds:  kindSet,
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[sub] = true
	return sub
}

func (b *Broker) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[sub]; !ok {
		return
	}
	delete(b.subscribers, sub)
	close(sub.C)
}

func (b *Broker) publishAll(events []Event) {
	for _, e := range events {
		select {
		case b.eventCh <- e:
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) run() {
	for {
		select {
		case e := <-b.eventCh:
			b.broadcast(e)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) broadcast(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subscribers {
		if sub.tree != e.Tree || !bytes.HasPrefix(e.Key, sub.prefix) || !sub.matchesKind(e.Kind) {
			continue
		}
		select {
		case sub.C <- e:
		default:
			// subscriber buffer full, drop; a blocking waiter re-checks
			// storage on every wake so a dropped event is never silently
			// mistaken for "nothing changed".
		}
	}
}
