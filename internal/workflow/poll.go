package workflow

import (
	"context"
	"fmt"

	"github.com/vrtravel/reconcli/internal/api"
	"github.com/vrtravel/reconcli/internal/events"
	"github.com/vrtravel/reconcli/internal/models"
	"github.com/vrtravel/reconcli/internal/store"
)

// reconstruct triggers the remote pipeline and polls the scene to a
// terminal status. The trigger is fire-and-forget: its success only
// licenses entry into the poll loop, it never means the job finished.
func (e *Engine) reconstruct(ctx context.Context, r *run, sceneID string) (*models.Scene, error) {
	e.store.SetPhase(store.PhaseReconstructing)
	e.store.SetReconstructing(true)
	fmt.Fprintf(e.out, "Starting reconstruction for scene %s...\n", sceneID)

	if err := e.api.RunPipeline(ctx, sceneID); err != nil {
		return nil, e.failPhase(store.PhaseReconstructing, OpRunReconstruction, sceneID, err)
	}
	if r.interrupted(ctx) {
		return nil, e.finishCancelled(OpRunReconstruction, sceneID)
	}

	return e.poll(ctx, r, sceneID)
}

// poll checks the scene status once per tick until the server reports a
// terminal status. Transient check failures are logged and retried up to
// maxTransient consecutive times; a terminal server failure or exhausted
// retries end the run as failed.
func (e *Engine) poll(ctx context.Context, r *run, sceneID string) (*models.Scene, error) {
	lastProgress := -1
	transient := 0

	for {
		e.sleepRun(ctx, r)
		if r.interrupted(ctx) {
			return nil, e.finishCancelled(OpRunReconstruction, sceneID)
		}

		detail, err := e.api.GetSceneDetail(ctx, sceneID)
		if r.interrupted(ctx) {
			return nil, e.finishCancelled(OpRunReconstruction, sceneID)
		}
		if err != nil {
			transient++
			fmt.Fprintf(e.out, "Status check failed (%d/%d), retrying: %v\n", transient, e.maxTransient, err)
			if transient >= e.maxTransient {
				err = fmt.Errorf("status check failed %d times in a row: %w", transient, err)
				return nil, e.failPhase(store.PhaseReconstructing, OpRunReconstruction, sceneID, err)
			}
			continue
		}
		transient = 0

		if detail.Progress != lastProgress {
			lastProgress = detail.Progress
			e.store.SetReconstructionProgress(detail.Progress, detail.ProgressMessage)
			e.bus.Publish(events.Event{
				Type:     events.TypeProgress,
				Op:       OpRunReconstruction,
				SceneID:  sceneID,
				Message:  detail.ProgressMessage,
				Progress: detail.Progress,
			})
			fmt.Fprintf(e.out, "  %3d%%  %s\n", detail.Progress, store.StepForProgress(detail.Progress))
		}

		switch detail.Status {
		case models.SceneStatusCompleted:
			return e.finishDone(detail)
		case models.SceneStatusFailed:
			msg := detail.ProgressMessage
			if msg == "" {
				msg = "reconstruction failed"
			}
			scene := toModel(&detail.Scene)
			if err := e.store.UpsertScene(scene); err != nil {
				fmt.Fprintf(e.out, "Warning: cache scene: %v\n", err)
			}
			return nil, e.failPhase(store.PhaseReconstructing, OpRunReconstruction, sceneID, fmt.Errorf("%s", msg))
		}
	}
}

// finishDone records the completed terminal state and caches the final
// scene. The progress snapshot is cleared; the scene row carries 100.
func (e *Engine) finishDone(detail *api.SceneDetail) (*models.Scene, error) {
	scene := toModel(&detail.Scene)
	scene.Status = models.SceneStatusCompleted
	scene.Progress = 100
	if err := e.store.UpsertScene(scene); err != nil {
		return nil, e.failPhase(store.PhaseReconstructing, OpRunReconstruction, scene.ID, err)
	}

	e.store.ResetWorkflow()
	e.store.SetPhase(store.PhaseDone)

	e.bus.Publish(events.Event{
		Type:     events.TypeWorkflowDone,
		Op:       OpRunReconstruction,
		SceneID:  scene.ID,
		Progress: 100,
	})
	fmt.Fprintf(e.out, "Reconstruction complete: %s\n", scene.ID)
	return scene, nil
}
