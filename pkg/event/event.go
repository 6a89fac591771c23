// Package event provides a simple in-process event dispatcher.
//
// The storefront's domain events flow through here: "cart.changed",
// "order.placed", "order.status_changed". Handlers registered with Listen are
// permanent (wired once at boot); Subscribe returns a channel plus a cancel
// function for transient consumers such as an SSE stream that must detach
// when the client disconnects.
package event

import (
	"sync"
)

// Handler is a function that receives an event payload.
type Handler func(payload interface{})

type subscriber struct {
	ch chan interface{}
}

var (
	mu          sync.RWMutex
	handlers    = map[string][]Handler{}
	subscribers = map[string][]*subscriber{}
)

// Listen registers a permanent handler for the given event name.
func Listen(event string, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[event] = append(handlers[event], handler)
}

// Subscribe returns a buffered channel that receives every payload fired for
// event, and a cancel function that detaches and closes the channel.
// Sends to a full subscriber channel are dropped; a slow consumer must never
// stall Fire.
func Subscribe(event string) (<-chan interface{}, func()) {
	sub := &subscriber{ch: make(chan interface{}, 16)}

	mu.Lock()
	subscribers[event] = append(subscribers[event], sub)
	mu.Unlock()

	cancel := func() {
		mu.Lock()
		subs := subscribers[event]
		for i, s := range subs {
			if s == sub {
				subscribers[event] = append(subs[:i], subs[i+1:]...)
				close(sub.ch)
				break
			}
		}
		mu.Unlock()
	}

	return sub.ch, cancel
}

// Fire dispatches an event synchronously to all registered listeners and
// subscriber channels.
func Fire(event string, payload interface{}) {
	mu.RLock()
	hs := make([]Handler, len(handlers[event]))
	copy(hs, handlers[event])
	subs := make([]*subscriber, len(subscribers[event]))
	copy(subs, subscribers[event])
	mu.RUnlock()

	for _, h := range hs {
		h(payload)
	}
	for _, s := range subs {
		select {
		case s.ch <- payload:
		default:
		}
	}
}

// FireAsync dispatches the event to all listeners concurrently.
// It returns immediately without waiting for handlers to complete.
// Subscriber channels are still delivered to synchronously (non-blocking).
func FireAsync(event string, payload interface{}) {
	mu.RLock()
	hs := make([]Handler, len(handlers[event]))
	copy(hs, handlers[event])
	subs := make([]*subscriber, len(subscribers[event]))
	copy(subs, subscribers[event])
	mu.RUnlock()

	for _, h := range hs {
		go h(payload)
	}
	for _, s := range subs {
		select {
		case s.ch <- payload:
		default:
		}
	}
}

// Flush removes all listeners and subscribers (useful in tests).
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
	for _, subs := range subscribers {
		for _, s := range subs {
			close(s.ch)
		}
	}
	subscribers = map[string][]*subscriber{}
}
