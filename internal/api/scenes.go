package api

import (
	"context"
	"fmt"
)

// createSceneRequest is the body for POST /scenes.
type createSceneRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CreateScene creates a new scene and returns it with its server-assigned ID.
func (c *Client) CreateScene(ctx context.Context, name, description string) (*Scene, error) {
	if name == "" {
		return nil, fmt.Errorf("api: scene name is required")
	}
	var scene Scene
	if err := c.post(ctx, "/scenes", createSceneRequest{Name: name, Description: description}, &scene); err != nil {
		return nil, err
	}
	return &scene, nil
}

// UserScenes returns all scenes visible to the authenticated user.
func (c *Client) UserScenes(ctx context.Context) ([]Scene, error) {
	var scenes []Scene
	if err := c.get(ctx, "/scenes/user", &scenes); err != nil {
		return nil, err
	}
	return scenes, nil
}

// GetSceneDetail returns the scene's current status, progress, and output
// paths. Read-only; safe to call repeatedly while a reconstruction runs.
func (c *Client) GetSceneDetail(ctx context.Context, sceneID string) (*SceneDetail, error) {
	if sceneID == "" {
		return nil, fmt.Errorf("api: scene ID is required")
	}
	var detail SceneDetail
	if err := c.get(ctx, "/scenes/detail/"+sceneID, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CheckReadiness reports whether a scene is ready for reconstruction.
func (c *Client) CheckReadiness(ctx context.Context, sceneID string) (*Readiness, error) {
	if sceneID == "" {
		return nil, fmt.Errorf("api: scene ID is required")
	}
	var r Readiness
	if err := c.get(ctx, "/scenes/"+sceneID+"/check", &r); err != nil {
		return nil, err
	}
	return &r, nil
}
