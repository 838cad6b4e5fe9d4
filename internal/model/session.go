package model

import "time"

// AdminSession is the durable form of a session. TokenHash is the SHA-256 hex
// digest of the session token; the raw token is never stored.
type AdminSession struct {
	TokenHash string    `gorm:"size:64;primaryKey"`
	UserID    uint      `gorm:"not null"`
	Username  string    `gorm:"size:255;not null"`
	Email     string    `gorm:"size:255"`
	Role      Role      `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName overrides the default table name.
func (AdminSession) TableName() string { return "admin_sessions" }

// User returns the identity carried by the session.
func (s *AdminSession) User() *User {
	return &User{ID: s.UserID, Username: s.Username, Email: s.Email, Role: s.Role}
}
