package models

import (
	"encoding/json"
	"time"
)

// Scene statuses reported by the reconstruction API. The server is
// authoritative; the client never invents a status outside this set.
const (
	SceneStatusIdle             = "idle"
	SceneStatusUploading        = "uploading"
	SceneStatusUploaded         = "uploaded"
	SceneStatusColmapProcessing = "colmap_processing"
	SceneStatusColmapCompleted  = "colmap_completed"
	SceneStatusReconProcessing  = "reconstruction_processing"
	SceneStatusReconCompleted   = "reconstruction_completed"
	SceneStatusCompleted        = "completed"
	SceneStatusFailed           = "failed"
)

// Scene is the local cache row for a server-tracked reconstruction job.
// The ID is assigned by the server on creation; rows are full-replace
// upserts of the server response, never partially patched.
type Scene struct {
	ID              string `gorm:"primaryKey;size:64"`
	Name            string `gorm:"not null"`
	Description     string `gorm:"type:text"`
	OwnerID         string `gorm:"size:64;index"`
	ImageFilenames  string `gorm:"type:json"`
	ImageCount      int
	ColmapPath      string `gorm:"size:255"`
	PlyFilePath     string `gorm:"size:255"`
	Status          string `gorm:"size:32;default:idle;index"`
	Progress        int
	ProgressMessage string `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Terminal reports whether the scene's server status is terminal.
func (s *Scene) Terminal() bool {
	return s.Status == SceneStatusCompleted || s.Status == SceneStatusFailed
}

// Filenames decodes the ImageFilenames JSON column. Returns nil for an
// empty or malformed column.
func (s *Scene) Filenames() []string {
	if s.ImageFilenames == "" {
		return nil
	}
	var names []string
	if err := json.Unmarshal([]byte(s.ImageFilenames), &names); err != nil {
		return nil
	}
	return names
}

// SetFilenames encodes names into the ImageFilenames JSON column.
func (s *Scene) SetFilenames(names []string) error {
	if names == nil {
		s.ImageFilenames = ""
		return nil
	}
	data, err := json.Marshal(names)
	if err != nil {
		return err
	}
	s.ImageFilenames = string(data)
	return nil
}
