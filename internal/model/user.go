package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles a user can hold. Exactly one at a time.
const (
	RoleUser   = "user"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// User represents an authenticated user in the system.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Username     string     `json:"username" gorm:"uniqueIndex;size:100;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	FirstName    string     `json:"firstName" gorm:"size:100"`
	LastName     string     `json:"lastName" gorm:"size:100"`
	Role         string     `json:"role" gorm:"size:20;not null;default:'user'"`
	Bio          string     `json:"bio" gorm:"type:text"`
	Avatar       *string    `json:"avatar" gorm:"size:512"`
	AvatarKey    string     `json:"-" gorm:"size:512"`
	Active       bool       `json:"active" gorm:"not null;default:true"`
	LastLogin    *time.Time `json:"lastLogin"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserSummary is the public projection of a user embedded in articles and
// comments. It reads from the users table.
type UserSummary struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Avatar    *string   `json:"avatar"`
}

// TableName maps UserSummary onto the users table.
func (UserSummary) TableName() string {
	return "users"
}
