// Package workflow implements the orchestration engine that drives the
// create scene → upload images → run reconstruction pipeline against the
// remote job API.
//
// Phases run strictly in sequence. Each remote call is a suspension point;
// cancellation is cooperative and takes effect at the next suspension
// point, so an in-flight call resolves but its result is discarded. The
// first failure in any phase short-circuits the run. All failures and
// terminal outcomes are published on the event bus; the engine itself
// never classifies errors or touches the session.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vrtravel/reconcli/internal/api"
	"github.com/vrtravel/reconcli/internal/events"
	"github.com/vrtravel/reconcli/internal/store"
)

var (
	// ErrRunActive is returned when a full run or standalone
	// reconstruction is started while another is still active.
	ErrRunActive = errors.New("workflow: a run is already active")
	// ErrCancelled is returned when a run ends via Cancel.
	ErrCancelled = errors.New("workflow: run cancelled")
	// ErrNoImages is returned when a run is started with no images
	// selected. No remote call is made.
	ErrNoImages = errors.New("workflow: no images selected")
)

// Error tags a phase failure with the phase that produced it.
type Error struct {
	Phase store.Phase
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("workflow: %s: %v", e.Phase, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// API is the remote surface the engine drives. *api.Client satisfies it.
type API interface {
	CreateScene(ctx context.Context, name, description string) (*api.Scene, error)
	UserScenes(ctx context.Context) ([]api.Scene, error)
	GetSceneDetail(ctx context.Context, sceneID string) (*api.SceneDetail, error)
	CheckReadiness(ctx context.Context, sceneID string) (*api.Readiness, error)
	UploadImages(ctx context.Context, sceneID string, paths []string) (*api.Scene, error)
	DeleteImage(ctx context.Context, sceneID, filename string) (*api.Scene, error)
	RunPipeline(ctx context.Context, sceneID string) error
}

// Opts configures the workflow engine.
type Opts struct {
	API   API
	Store *store.Store
	Bus   *events.Bus
	// PollInterval is the delay between reconstruction status checks.
	// Defaults to 20 seconds.
	PollInterval time.Duration
	// MaxTransientErrors bounds consecutive failed status checks before
	// the poll loop gives up. Defaults to 5.
	MaxTransientErrors int
	// Out receives user-facing progress lines. Defaults to io.Discard.
	Out io.Writer
}

// Engine sequences workflow phases and owns the single-active-run latch.
type Engine struct {
	api          API
	store        *store.Store
	bus          *events.Bus
	interval     time.Duration
	maxTransient int
	out          io.Writer

	mu      sync.Mutex
	current *run
}

// run is the cancellation context for one active workflow or
// reconstruction. The wake channel is closed exactly once, by Cancel.
type run struct {
	cancelled atomic.Bool
	wake      chan struct{}
}

// New creates a workflow engine.
func New(opts Opts) (*Engine, error) {
	if opts.API == nil {
		return nil, fmt.Errorf("workflow: api client is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("workflow: store is required")
	}
	if opts.Bus == nil {
		return nil, fmt.Errorf("workflow: event bus is required")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 20 * time.Second
	}
	if opts.MaxTransientErrors <= 0 {
		opts.MaxTransientErrors = 5
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Engine{
		api:          opts.API,
		store:        opts.Store,
		bus:          opts.Bus,
		interval:     opts.PollInterval,
		maxTransient: opts.MaxTransientErrors,
		out:          opts.Out,
	}, nil
}

// Cancel requests cancellation of the active run. It returns true if a
// run was active. Calling it with no active run, or twice, is a no-op.
func (e *Engine) Cancel() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return false
	}
	if e.current.cancelled.CompareAndSwap(false, true) {
		close(e.current.wake)
	}
	return true
}

// Active reports whether a run is in flight.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != nil
}

// beginRun claims the single-run latch.
func (e *Engine) beginRun() (*run, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current != nil {
		return nil, ErrRunActive
	}
	r := &run{wake: make(chan struct{})}
	e.current = r
	return r, nil
}

func (e *Engine) endRun(r *run) {
	e.mu.Lock()
	if e.current == r {
		e.current = nil
	}
	e.mu.Unlock()
}

// interrupted reports whether the run should stop at this suspension
// point, via Cancel or context cancellation.
func (r *run) interrupted(ctx context.Context) bool {
	return r.cancelled.Load() || ctx.Err() != nil
}

// sleepRun waits out one poll delay, returning early on cancellation.
func (e *Engine) sleepRun(ctx context.Context, r *run) {
	select {
	case <-ctx.Done():
	case <-r.wake:
	case <-time.After(e.interval):
	}
}

// failPhase records a terminal phase failure in the store and publishes
// both the operation failure and the terminal workflow event. The
// classifier reacts to the former only, so the repeated message cannot
// trigger a second side effect.
func (e *Engine) failPhase(phase store.Phase, op, sceneID string, err error) error {
	e.store.ResetWorkflow()
	e.store.SetPhase(store.PhaseFailed)
	e.store.SetError(err.Error())

	e.bus.Publish(events.Event{
		Type:    events.TypeOperationFailure,
		Op:      op,
		SceneID: sceneID,
		Message: err.Error(),
	})
	e.bus.Publish(events.Event{
		Type:    events.TypeWorkflowFailed,
		Op:      op,
		SceneID: sceneID,
		Message: err.Error(),
	})
	return &Error{Phase: phase, Err: err}
}

// finishCancelled records the cancelled terminal state. The scene's
// last-known state in the store is left untouched.
func (e *Engine) finishCancelled(op, sceneID string) error {
	e.store.ResetWorkflow()
	e.store.SetPhase(store.PhaseCancelled)

	e.bus.Publish(events.Event{
		Type:    events.TypeWorkflowCancelled,
		Op:      op,
		SceneID: sceneID,
	})
	fmt.Fprintf(e.out, "Run cancelled\n")
	return ErrCancelled
}

// opFailure publishes a standalone operation failure and records it on
// the store without entering a terminal workflow phase.
func (e *Engine) opFailure(op, sceneID string, err error) {
	e.store.SetError(err.Error())
	e.bus.Publish(events.Event{
		Type:    events.TypeOperationFailure,
		Op:      op,
		SceneID: sceneID,
		Message: err.Error(),
	})
}
