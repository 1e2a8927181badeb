package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Media describes an uploaded file. FileName is the storage key.
type Media struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name       string    `json:"name" gorm:"size:255;not null"`
	FileName   string    `json:"fileName" gorm:"size:512;not null"`
	FileType   string    `json:"fileType" gorm:"size:100;not null"`
	FileSize   int64     `json:"fileSize" gorm:"not null"`
	URL        string    `json:"url" gorm:"size:1024;not null"`
	UploadedBy uuid.UUID `json:"uploadedBy" gorm:"type:char(36);not null;index"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (m *Media) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
