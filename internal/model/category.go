package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups articles. Categories form a tree through ParentID.
type Category struct {
	ID          uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string     `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Slug        string     `json:"slug" gorm:"uniqueIndex;size:120;not null"`
	Description string     `json:"description" gorm:"type:text"`
	ParentID    *uuid.UUID `json:"parentCategoryId" gorm:"type:char(36);index"`
	Parent      *Category  `json:"parentCategory,omitempty" gorm:"foreignKey:ParentID;constraint:OnDelete:SET NULL"`
	Image       string     `json:"image" gorm:"size:512"`
	Active      bool       `json:"active" gorm:"not null;default:true;index"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
