// Package store is the canonical local snapshot of scenes, pending files,
// and workflow progress. Scenes and pending files persist in the state
// database; the workflow projection is in-memory and guarded for readers.
//
// Only the workflow engine and direct file-selection intents mutate the
// store; the API client and the classifier never touch it.
package store

import (
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/vrtravel/reconcli/internal/models"
)

// ErrSceneNotFound is returned when a scene ID is not in the local cache.
var ErrSceneNotFound = errors.New("store: scene not found")

// Store holds all client-side state.
type Store struct {
	db *gorm.DB

	mu        sync.RWMutex
	wf        WorkflowState
	currentID string
}

// New creates a Store over an open, migrated state database.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("store: db is required")
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying database for session persistence.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// UpsertScene inserts or fully replaces a scene by ID. The server is
// authoritative, so no stale sub-fields survive a replace.
func (s *Store) UpsertScene(scene *models.Scene) error {
	if scene == nil || scene.ID == "" {
		return fmt.Errorf("store: scene with ID is required")
	}
	if err := s.db.Save(scene).Error; err != nil {
		return fmt.Errorf("store: upsert scene %s: %w", scene.ID, err)
	}
	return nil
}

// Scenes returns all cached scenes, newest first.
func (s *Store) Scenes() ([]models.Scene, error) {
	var scenes []models.Scene
	if err := s.db.Order("created_at DESC").Find(&scenes).Error; err != nil {
		return nil, fmt.Errorf("store: list scenes: %w", err)
	}
	return scenes, nil
}

// ReplaceScenes swaps the whole cache for a fresh server listing.
func (s *Store) ReplaceScenes(scenes []models.Scene) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Scene{}).Error; err != nil {
			return err
		}
		for i := range scenes {
			if err := tx.Save(&scenes[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: replace scenes: %w", err)
	}
	return nil
}

// Scene returns a cached scene by ID.
func (s *Store) Scene(id string) (*models.Scene, error) {
	if id == "" {
		return nil, fmt.Errorf("store: scene ID is required")
	}
	var scene models.Scene
	if err := s.db.Where("id = ?", id).First(&scene).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSceneNotFound
		}
		return nil, fmt.Errorf("store: read scene %s: %w", id, err)
	}
	return &scene, nil
}

// SetCurrentScene marks a cached scene as the active one.
func (s *Store) SetCurrentScene(id string) error {
	if _, err := s.Scene(id); err != nil {
		return err
	}
	s.mu.Lock()
	s.currentID = id
	s.mu.Unlock()
	return nil
}

// CurrentScene returns the active scene, or ErrSceneNotFound when none is
// selected.
func (s *Store) CurrentScene() (*models.Scene, error) {
	s.mu.RLock()
	id := s.currentID
	s.mu.RUnlock()
	if id == "" {
		return nil, ErrSceneNotFound
	}
	return s.Scene(id)
}
