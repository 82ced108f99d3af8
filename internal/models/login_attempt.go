package models

import "time"

// LoginAttempt is an append-only record of a login try, used for
// trailing-window rate limiting.
type LoginAttempt struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	Email         string    `gorm:"not null;index:idx_login_attempts_email_time"`
	SourceAddress string    `gorm:"not null"`
	AttemptedAt   time.Time `gorm:"not null;index:idx_login_attempts_email_time"`
	Succeeded     bool      `gorm:"not null"`
}

// TableName returns the database table name for the LoginAttempt model.
func (LoginAttempt) TableName() string {
	return "login_attempts"
}
