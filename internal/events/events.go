// Package events provides the in-process broadcast bus for workflow signals.
//
// The workflow engine publishes every operation failure and terminal
// workflow event here. Cross-cutting observers (the error classifier, chat
// notifiers, the dashboard stream) subscribe once instead of hooking each
// call site.
package events

import (
	"sync"
	"time"
)

// Type identifies the kind of event on the bus.
type Type string

const (
	// TypeOperationFailure is emitted for every failed remote operation,
	// whether standalone or inside a full workflow run.
	TypeOperationFailure Type = "operation_failure"
	// TypeWorkflowDone is emitted when a full run reaches done.
	TypeWorkflowDone Type = "workflow_done"
	// TypeWorkflowFailed is emitted when a full run reaches failed.
	TypeWorkflowFailed Type = "workflow_failed"
	// TypeWorkflowCancelled is emitted when a run is cancelled.
	TypeWorkflowCancelled Type = "workflow_cancelled"
	// TypeProgress is emitted on each reconstruction progress change.
	TypeProgress Type = "progress"
)

// Event is a single bus message.
type Event struct {
	Type      Type
	Op        string // operation or phase that emitted the event
	SceneID   string
	Message   string
	Progress  int
	Timestamp time.Time
}

// Handler receives published events.
type Handler func(Event)

// Bus is a broadcast observer list. Publish dispatches synchronously in
// subscription order, so observers see events in emission order.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all subsequent events.
func (b *Bus) Subscribe(h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.handlers = append(b.handlers, h)
	b.mu.Unlock()
}

// Publish delivers the event to every subscribed handler. A zero Timestamp
// is filled in with the current time.
func (b *Bus) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
