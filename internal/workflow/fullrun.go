package workflow

import (
	"context"
	"fmt"

	"github.com/vrtravel/reconcli/internal/models"
	"github.com/vrtravel/reconcli/internal/store"
)

// Phase operation names carried on bus events.
const (
	OpCreateScene       = "create_scene"
	OpUploadImages      = "upload_images"
	OpRunReconstruction = "run_reconstruction"
	OpFetchScenes       = "fetch_scenes"
	OpFetchScene        = "fetch_scene"
	OpDeleteImage       = "delete_image"
)

// StartFullWorkflow runs the full create → upload → reconstruct sequence.
// If paths is empty the store's pending files are uploaded and cleared on
// upload success. Only one run may be active at a time; a second start
// returns ErrRunActive without issuing any remote call.
//
// On success the completed scene is returned and cached. On the first
// phase failure the run stops, later phases are never invoked, and the
// error identifies the failing phase. ErrCancelled is returned when
// Cancel interrupts the run.
func (e *Engine) StartFullWorkflow(ctx context.Context, name, description string, paths []string) (*models.Scene, error) {
	if name == "" {
		return nil, fmt.Errorf("workflow: scene name is required")
	}

	fromPending := len(paths) == 0
	if fromPending {
		pending, err := e.store.PendingFiles()
		if err != nil {
			return nil, err
		}
		for _, f := range pending {
			paths = append(paths, f.Path)
		}
	}
	if len(paths) == 0 {
		return nil, ErrNoImages
	}

	r, err := e.beginRun()
	if err != nil {
		return nil, err
	}
	defer e.endRun(r)

	e.store.ResetWorkflow()
	e.store.ClearError()

	// Phase 1: create the scene. The server assigns the ID.
	e.store.SetPhase(store.PhaseCreatingScene)
	e.store.SetCreating(true)
	fmt.Fprintf(e.out, "Creating scene %q...\n", name)

	created, err := e.api.CreateScene(ctx, name, description)
	e.store.SetCreating(false)
	if err != nil {
		return nil, e.failPhase(store.PhaseCreatingScene, OpCreateScene, "", err)
	}
	if r.interrupted(ctx) {
		return nil, e.finishCancelled(OpCreateScene, created.ID)
	}

	scene := toModel(created)
	if err := e.store.UpsertScene(scene); err != nil {
		return nil, e.failPhase(store.PhaseCreatingScene, OpCreateScene, created.ID, err)
	}
	if err := e.store.SetCurrentScene(scene.ID); err != nil {
		return nil, e.failPhase(store.PhaseCreatingScene, OpCreateScene, created.ID, err)
	}

	// Phase 2: upload the image batch. A single suspension point; the
	// created scene stays cached even if the upload fails.
	e.store.SetPhase(store.PhaseUploadingImages)
	e.store.SetUploading(true)
	fmt.Fprintf(e.out, "Uploading %d images...\n", len(paths))

	uploaded, err := e.api.UploadImages(ctx, scene.ID, paths)
	e.store.SetUploading(false)
	if err != nil {
		return nil, e.failPhase(store.PhaseUploadingImages, OpUploadImages, scene.ID, err)
	}
	if r.interrupted(ctx) {
		return nil, e.finishCancelled(OpUploadImages, scene.ID)
	}

	e.store.SetUploadProgress(100)
	scene = toModel(uploaded)
	if err := e.store.UpsertScene(scene); err != nil {
		return nil, e.failPhase(store.PhaseUploadingImages, OpUploadImages, scene.ID, err)
	}
	if fromPending {
		if err := e.store.ClearPendingFiles(); err != nil {
			fmt.Fprintf(e.out, "Warning: clear pending files: %v\n", err)
		}
	}

	// Phase 3: trigger reconstruction and poll to a terminal status.
	final, err := e.reconstruct(ctx, r, scene.ID)
	if err != nil {
		return nil, err
	}
	return final, nil
}
