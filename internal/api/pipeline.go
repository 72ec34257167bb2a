package api

import (
	"context"
	"fmt"
)

// RunPipeline triggers the full reconstruction pipeline for a scene. The
// server starts a detached background job and acknowledges immediately;
// completion is only discoverable by polling GetSceneDetail, never from
// this call's return.
func (c *Client) RunPipeline(ctx context.Context, sceneID string) error {
	if sceneID == "" {
		return fmt.Errorf("api: scene ID is required")
	}
	return c.post(ctx, "/pipeline/run/"+sceneID, nil, nil)
}
