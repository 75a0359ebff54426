package models

import (
	"regexp"
	"strings"
	"time"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// User represents an account that publishes recipes and follows other authors.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"type:varchar(254);uniqueIndex;not null"`
	Username     string `gorm:"type:varchar(150);uniqueIndex;not null"`
	FirstName    string `gorm:"type:varchar(150);not null"`
	LastName     string `gorm:"type:varchar(150);not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidUsername reports whether the value is usable as a slug-safe login name.
func ValidUsername(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" || len(value) > 150 {
		return false
	}
	return usernamePattern.MatchString(value)
}
