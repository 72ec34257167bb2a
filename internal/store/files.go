package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/vrtravel/reconcli/internal/models"
)

// GenerateFileID creates a unique pending-file ID in file-xxxxx format.
func GenerateFileID() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("store: generate file ID: %w", err)
	}
	return "file-" + hex.EncodeToString(b)[:5], nil
}

// AddPendingFiles registers local files for the next upload batch and
// returns the created rows with their generated IDs.
func (s *Store) AddPendingFiles(paths []string) ([]models.PendingFile, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("store: at least one path is required")
	}

	now := time.Now()
	files := make([]models.PendingFile, 0, len(paths))
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("store: stat %s: %w", path, err)
		}
		id, err := GenerateFileID()
		if err != nil {
			return nil, err
		}
		files = append(files, models.PendingFile{ID: id, Path: path, AddedAt: now})
	}

	if err := s.db.Create(&files).Error; err != nil {
		return nil, fmt.Errorf("store: add pending files: %w", err)
	}
	return files, nil
}

// PendingFiles returns the upload batch in selection order.
func (s *Store) PendingFiles() ([]models.PendingFile, error) {
	var files []models.PendingFile
	if err := s.db.Order("added_at ASC, id ASC").Find(&files).Error; err != nil {
		return nil, fmt.Errorf("store: list pending files: %w", err)
	}
	return files, nil
}

// RemovePendingFile drops a single file from the batch.
func (s *Store) RemovePendingFile(id string) error {
	if id == "" {
		return fmt.Errorf("store: file ID is required")
	}

	var file models.PendingFile
	if err := s.db.Where("id = ?", id).First(&file).Error; err != nil {
		return fmt.Errorf("store: pending file not found: %s", id)
	}

	releasePreview(&file)

	if err := s.db.Delete(&models.PendingFile{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("store: remove pending file %s: %w", id, err)
	}
	return nil
}

// ClearPendingFiles drops the whole batch, releasing any preview resources.
// Called after a successful upload or an explicit clear intent.
func (s *Store) ClearPendingFiles() error {
	files, err := s.PendingFiles()
	if err != nil {
		return err
	}
	for i := range files {
		releasePreview(&files[i])
	}

	if err := s.db.Where("1 = 1").Delete(&models.PendingFile{}).Error; err != nil {
		return fmt.Errorf("store: clear pending files: %w", err)
	}
	return nil
}

// releasePreview removes a generated preview file. Best-effort: the preview
// is derived data.
func releasePreview(f *models.PendingFile) {
	if f.Preview == "" {
		return
	}
	if err := os.Remove(f.Preview); err != nil && !os.IsNotExist(err) {
		log.Printf("store: remove preview %s: %v", f.Preview, err)
	}
}
