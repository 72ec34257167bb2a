// Package session persists the auth token and user profile in the local
// state database. This is the only durable auth state the client keeps.
package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vrtravel/reconcli/internal/api"
	"github.com/vrtravel/reconcli/internal/models"
)

// Well-known setting keys for session state.
const (
	KeyToken = "session.token"
	KeyUser  = "session.user"
)

// ErrNoSession is returned by Load when no session is persisted.
var ErrNoSession = errors.New("session: not logged in")

// Session is a persisted login: the bearer token and the minimal profile
// that came with it.
type Session struct {
	Token string
	User  api.User
}

// Save upserts the session rows.
func Save(db *gorm.DB, token string, user api.User) error {
	if token == "" {
		return fmt.Errorf("session: token is required")
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: marshal user: %w", err)
	}

	rows := []models.Setting{
		{Key: KeyToken, Value: token},
		{Key: KeyUser, Value: string(userJSON)},
	}
	for _, row := range rows {
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).Create(&row)
		if result.Error != nil {
			return fmt.Errorf("session: save %s: %w", row.Key, result.Error)
		}
	}
	return nil
}

// Load reads the persisted session. Returns ErrNoSession when absent.
func Load(db *gorm.DB) (*Session, error) {
	var tokenRow models.Setting
	if err := db.Where("key = ?", KeyToken).First(&tokenRow).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("session: load token: %w", err)
	}

	sess := Session{Token: tokenRow.Value}

	var userRow models.Setting
	err := db.Where("key = ?", KeyUser).First(&userRow).Error
	switch {
	case err == nil:
		if uerr := json.Unmarshal([]byte(userRow.Value), &sess.User); uerr != nil {
			return nil, fmt.Errorf("session: decode user: %w", uerr)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Token without profile is still a usable session.
	default:
		return nil, fmt.Errorf("session: load user: %w", err)
	}

	return &sess, nil
}

// Token returns the persisted bearer token, or empty when not logged in.
func Token(db *gorm.DB) string {
	sess, err := Load(db)
	if err != nil {
		return ""
	}
	return sess.Token
}

// Clear removes all persisted session state. Idempotent.
func Clear(db *gorm.DB) error {
	if err := db.Where("key IN ?", []string{KeyToken, KeyUser}).
		Delete(&models.Setting{}).Error; err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}
