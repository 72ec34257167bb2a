package workflow

import (
	"context"
	"fmt"

	"github.com/vrtravel/reconcli/internal/models"
)

// CreateScene creates a scene without starting a full run. The created
// scene is cached and selected as current.
func (e *Engine) CreateScene(ctx context.Context, name, description string) (*models.Scene, error) {
	if name == "" {
		return nil, fmt.Errorf("workflow: scene name is required")
	}

	e.store.SetCreating(true)
	defer e.store.SetCreating(false)

	created, err := e.api.CreateScene(ctx, name, description)
	if err != nil {
		e.opFailure(OpCreateScene, "", err)
		return nil, err
	}

	scene := toModel(created)
	if err := e.store.UpsertScene(scene); err != nil {
		return nil, err
	}
	if err := e.store.SetCurrentScene(scene.ID); err != nil {
		return nil, err
	}
	e.store.ClearError()
	return scene, nil
}

// FetchScenes refreshes the local cache from the server's scene list.
// The cache is replaced wholesale; the server is authoritative.
func (e *Engine) FetchScenes(ctx context.Context) ([]models.Scene, error) {
	e.store.SetFetching(true)
	defer e.store.SetFetching(false)

	remote, err := e.api.UserScenes(ctx)
	if err != nil {
		e.opFailure(OpFetchScenes, "", err)
		return nil, err
	}

	scenes := make([]models.Scene, 0, len(remote))
	for i := range remote {
		scenes = append(scenes, *toModel(&remote[i]))
	}
	if err := e.store.ReplaceScenes(scenes); err != nil {
		return nil, err
	}
	e.store.ClearError()
	return scenes, nil
}

// FetchSceneByID refreshes a single scene from the detail endpoint. Safe
// to call while a reconstruction is polling the same scene.
func (e *Engine) FetchSceneByID(ctx context.Context, sceneID string) (*models.Scene, error) {
	if sceneID == "" {
		return nil, fmt.Errorf("workflow: scene ID is required")
	}

	detail, err := e.api.GetSceneDetail(ctx, sceneID)
	if err != nil {
		e.opFailure(OpFetchScene, sceneID, err)
		return nil, err
	}

	scene := toModel(&detail.Scene)
	if err := e.store.UpsertScene(scene); err != nil {
		return nil, err
	}
	return scene, nil
}

// UploadImages uploads an image batch to an existing scene outside a
// full run. If paths is empty the store's pending files are uploaded and
// cleared on success.
func (e *Engine) UploadImages(ctx context.Context, sceneID string, paths []string) (*models.Scene, error) {
	if sceneID == "" {
		return nil, fmt.Errorf("workflow: scene ID is required")
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

	e.store.SetUploading(true)
	defer e.store.SetUploading(false)

	uploaded, err := e.api.UploadImages(ctx, sceneID, paths)
	if err != nil {
		e.opFailure(OpUploadImages, sceneID, err)
		return nil, err
	}
	e.store.SetUploadProgress(100)

	scene := toModel(uploaded)
	if err := e.store.UpsertScene(scene); err != nil {
		return nil, err
	}
	if fromPending {
		if err := e.store.ClearPendingFiles(); err != nil {
			fmt.Fprintf(e.out, "Warning: clear pending files: %v\n", err)
		}
	}
	e.store.ClearError()
	return scene, nil
}

// DeleteImage removes one uploaded image from a scene and caches the
// server's updated scene.
func (e *Engine) DeleteImage(ctx context.Context, sceneID, filename string) (*models.Scene, error) {
	if sceneID == "" || filename == "" {
		return nil, fmt.Errorf("workflow: scene ID and filename are required")
	}

	updated, err := e.api.DeleteImage(ctx, sceneID, filename)
	if err != nil {
		e.opFailure(OpDeleteImage, sceneID, err)
		return nil, err
	}

	scene := toModel(updated)
	if err := e.store.UpsertScene(scene); err != nil {
		return nil, err
	}
	return scene, nil
}

// RunReconstruction triggers and polls a reconstruction for an existing
// scene, outside a full run. A readiness check short-circuits scenes the
// server cannot process before any job is started. It claims the same
// single-run latch as StartFullWorkflow.
func (e *Engine) RunReconstruction(ctx context.Context, sceneID string) (*models.Scene, error) {
	if sceneID == "" {
		return nil, fmt.Errorf("workflow: scene ID is required")
	}

	r, err := e.beginRun()
	if err != nil {
		return nil, err
	}
	defer e.endRun(r)

	e.store.ResetWorkflow()
	e.store.ClearError()

	ready, err := e.api.CheckReadiness(ctx, sceneID)
	if err != nil {
		e.opFailure(OpRunReconstruction, sceneID, err)
		return nil, err
	}
	if !ready.HasImages {
		return nil, fmt.Errorf("workflow: scene %s has no images to reconstruct", sceneID)
	}
	if !ready.CanRunColmap && !ready.CanRunReconstruction {
		msg := ready.NextStep
		if msg == "" {
			msg = "scene is not ready for reconstruction"
		}
		return nil, fmt.Errorf("workflow: %s", msg)
	}
	if r.interrupted(ctx) {
		return nil, e.finishCancelled(OpRunReconstruction, sceneID)
	}

	return e.reconstruct(ctx, r, sceneID)
}
