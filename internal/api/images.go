package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// UploadImages uploads a batch of image files to a scene via multipart POST.
// The whole batch is one request; it may take minutes for large sets. The
// updated scene from the server response reflects the new image count.
func (c *Client) UploadImages(ctx context.Context, sceneID string, paths []string) (*Scene, error) {
	if sceneID == "" {
		return nil, fmt.Errorf("api: scene ID is required")
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("api: at least one file is required")
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	// Stream the multipart body so large image sets are never buffered
	// whole in memory.
	go func() {
		pw.CloseWithError(writeUploadBody(mw, sceneID, paths))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/image/upload-multiple", pr)
	if err != nil {
		return nil, fmt.Errorf("api: build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var scene Scene
	if err := c.send(req, &scene); err != nil {
		return nil, err
	}
	return &scene, nil
}

// writeUploadBody writes the sceneId field and one files part per path,
// then closes the multipart writer.
func writeUploadBody(mw *multipart.Writer, sceneID string, paths []string) error {
	if err := mw.WriteField("sceneId", sceneID); err != nil {
		return fmt.Errorf("api: write sceneId field: %w", err)
	}

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("api: open %s: %w", path, err)
		}

		part, err := mw.CreateFormFile("files", filepath.Base(path))
		if err != nil {
			f.Close()
			return fmt.Errorf("api: create part for %s: %w", path, err)
		}
		if _, err := io.Copy(part, f); err != nil {
			f.Close()
			return fmt.Errorf("api: copy %s: %w", path, err)
		}
		f.Close()
	}

	return mw.Close()
}

// deleteImageRequest is the body for DELETE /image/delete.
type deleteImageRequest struct {
	SceneID  string `json:"sceneId"`
	Filename string `json:"filename"`
}

// DeleteImage removes a single image from a scene.
func (c *Client) DeleteImage(ctx context.Context, sceneID, filename string) (*Scene, error) {
	if sceneID == "" {
		return nil, fmt.Errorf("api: scene ID is required")
	}
	if filename == "" {
		return nil, fmt.Errorf("api: filename is required")
	}
	var scene Scene
	if err := c.del(ctx, "/image/delete", deleteImageRequest{SceneID: sceneID, Filename: filename}, &scene); err != nil {
		return nil, err
	}
	return &scene, nil
}
