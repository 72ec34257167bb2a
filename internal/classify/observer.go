package classify

import (
	"fmt"
	"io"
	"log"

	"github.com/vrtravel/reconcli/internal/events"
)

// Observer subscribes once to the event bus and classifies every operation
// failure, whatever its origin. An auth classification triggers the forced
// sign-out intent; network and server classifications are recorded only.
type Observer struct {
	logout func() error
	out    io.Writer
}

// ObserverOpts holds parameters for creating an Observer.
type ObserverOpts struct {
	Logout func() error // clears the persisted session
	Out    io.Writer    // user-facing notices; defaults to io.Discard
}

// NewObserver creates an Observer.
func NewObserver(opts ObserverOpts) (*Observer, error) {
	if opts.Logout == nil {
		return nil, fmt.Errorf("classify: logout func is required")
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	return &Observer{logout: opts.Logout, out: out}, nil
}

// Attach subscribes the observer to the bus.
func (o *Observer) Attach(bus *events.Bus) {
	bus.Subscribe(o.handle)
}

// handle reacts to operation failures only. Terminal workflow events carry
// the same message as the phase failure that caused them, so acting on both
// would double the side effects.
func (o *Observer) handle(e events.Event) {
	if e.Type != events.TypeOperationFailure {
		return
	}

	switch Classify(e.Message) {
	case KindAuth:
		fmt.Fprintf(o.out, "Authentication failure detected — signing out\n")
		if err := o.logout(); err != nil {
			log.Printf("classify: forced logout: %v", err)
		}
	case KindNetwork:
		log.Printf("classify: network failure in %s: %s", e.Op, e.Message)
	case KindServer:
		log.Printf("classify: server failure in %s: %s", e.Op, e.Message)
	}
}
