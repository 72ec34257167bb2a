package workflow

import (
	"github.com/vrtravel/reconcli/internal/api"
	"github.com/vrtravel/reconcli/internal/models"
)

// toModel converts a server scene payload into its cache row.
func toModel(s *api.Scene) *models.Scene {
	m := &models.Scene{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		OwnerID:         s.OwnerID,
		ImageCount:      s.ImageCount,
		ColmapPath:      s.ColmapPath,
		PlyFilePath:     s.PlyFilePath,
		Status:          s.Status,
		Progress:        s.Progress,
		ProgressMessage: s.ProgressMessage,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
	_ = m.SetFilenames(s.ImageFilenames)
	return m
}
