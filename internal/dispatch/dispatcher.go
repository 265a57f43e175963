package dispatch

import (
	"log/slog"
	"sync"
)

// Handler receives one dispatched event. The payload is the raw frame bytes
// (or the synthetic event payload); handlers decode the fields they need.
type Handler func(msgType string, payload []byte)

// Dispatcher maps message types to subscriber sets. Its lifetime is the
// process lifetime; subscribers must cancel their own subscriptions on
// teardown, the registry never infers subscriber death.
type Dispatcher struct {
	logger *slog.Logger

	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]Handler
}

// Subscription identifies one registered handler.
type Subscription struct {
	d       *Dispatcher
	msgType string
	id      uint64
}

// NewDispatcher creates an empty registry.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		logger: logger,
		subs:   make(map[string]map[uint64]Handler),
	}
}

// Subscribe registers a handler for one message type. Multiple handlers per
// type are allowed.
func (d *Dispatcher) Subscribe(msgType string, h Handler) Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	id := d.nextID

	set, ok := d.subs[msgType]
	if !ok {
		set = make(map[uint64]Handler)
		d.subs[msgType] = set
	}
	set[id] = h

	return Subscription{d: d, msgType: msgType, id: id}
}

// Cancel removes the handler. Safe to call more than once.
func (s Subscription) Cancel() {
	if s.d == nil {
		return
	}
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	if set, ok := s.d.subs[s.msgType]; ok {
		delete(set, s.id)
		if len(set) == 0 {
			delete(s.d.subs, s.msgType)
		}
	}
}

// Clear removes every handler for the given message type.
func (d *Dispatcher) Clear(msgType string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.subs, msgType)
}

// SubscriberCount returns how many handlers are registered for a type.
func (d *Dispatcher) SubscriberCount(msgType string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs[msgType])
}

// Dispatch invokes every handler currently registered for msgType. The
// subscriber set is snapshotted up front, so handlers that subscribe or
// cancel mid-dispatch do not affect this delivery. Order across handlers is
// unspecified.
func (d *Dispatcher) Dispatch(msgType string, payload []byte) {
	d.mu.RLock()
	set := d.subs[msgType]
	handlers := make([]Handler, 0, len(set))
	for _, h := range set {
		handlers = append(handlers, h)
	}
	d.mu.RUnlock()

	for _, h := range handlers {
		d.invoke(msgType, h, payload)
	}
}

// invoke runs one handler, isolating panics so a failing subscriber never
// takes down its siblings or the read loop.
func (d *Dispatcher) invoke(msgType string, h Handler, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("subscriber panic", "event", msgType, "panic", r)
		}
	}()
	h(msgType, payload)
}
