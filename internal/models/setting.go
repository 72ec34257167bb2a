package models

// Setting is a key/value row for durable client-local state. The session
// token and user profile live here under well-known keys.
type Setting struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value string `gorm:"type:text"`
}
