// Package notify posts terminal workflow outcomes to chat platforms
// (Slack, Discord). It is outbound-only: adapters never receive messages.
package notify

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/vrtravel/reconcli/internal/events"
)

// Severity levels for posted messages.
const (
	SeveritySuccess = "success"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Sidebar color hints per severity.
const (
	colorSuccess = "#36a64f"
	colorWarning = "#daa038"
	colorError   = "#a30200"
)

// Message is a formatted workflow outcome for display in chat.
type Message struct {
	Title    string
	Body     string
	Severity string
	Color    string
}

// Adapter is the interface platform-specific implementations satisfy.
type Adapter interface {
	// Post delivers a message to the platform's configured channel.
	Post(ctx context.Context, msg Message) error

	// Close shuts down the adapter connection.
	Close() error
}

// Notifier fans terminal workflow events out to all configured adapters.
type Notifier struct {
	adapters []Adapter
	timeout  time.Duration
	out      io.Writer
}

// Opts holds parameters for creating a Notifier.
type Opts struct {
	Adapters []Adapter
	Timeout  time.Duration // per-post deadline; defaults to 10s
	Out      io.Writer     // delivery warnings; defaults to io.Discard
}

// New creates a Notifier. An empty adapter list is allowed; the notifier
// is then a no-op.
func New(opts Opts) (*Notifier, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Notifier{
		adapters: opts.Adapters,
		timeout:  opts.Timeout,
		out:      opts.Out,
	}, nil
}

// Attach subscribes the notifier to the event bus. Only terminal
// workflow events produce posts; per-operation failures and progress
// ticks stay local.
func (n *Notifier) Attach(bus *events.Bus) {
	bus.Subscribe(n.handle)
}

// Close shuts down all adapters.
func (n *Notifier) Close() {
	for _, a := range n.adapters {
		if err := a.Close(); err != nil {
			fmt.Fprintf(n.out, "notify: close adapter: %v\n", err)
		}
	}
}

func (n *Notifier) handle(e events.Event) {
	msg, ok := Format(e)
	if !ok {
		return
	}
	for _, a := range n.adapters {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		if err := a.Post(ctx, msg); err != nil {
			fmt.Fprintf(n.out, "notify: post failed: %v\n", err)
		}
		cancel()
	}
}

// Format renders a bus event as a chat message. Returns false for event
// types that should not be posted.
func Format(e events.Event) (Message, bool) {
	switch e.Type {
	case events.TypeWorkflowDone:
		return Message{
			Title:    fmt.Sprintf("Reconstruction complete: %s", e.SceneID),
			Body:     "Scene reached 100% and the model is ready.",
			Severity: SeveritySuccess,
			Color:    colorSuccess,
		}, true
	case events.TypeWorkflowFailed:
		return Message{
			Title:    fmt.Sprintf("Workflow failed: %s", e.SceneID),
			Body:     e.Message,
			Severity: SeverityError,
			Color:    colorError,
		}, true
	case events.TypeWorkflowCancelled:
		return Message{
			Title:    fmt.Sprintf("Workflow cancelled: %s", e.SceneID),
			Body:     "The run was cancelled before completion.",
			Severity: SeverityWarning,
			Color:    colorWarning,
		}, true
	}
	return Message{}, false
}
