package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment belongs to an article. ParentID is nil for top-level comments;
// replies always point at a top-level comment of the same article.
type Comment struct {
	ID        uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	ArticleID uuid.UUID    `json:"articleId" gorm:"type:char(36);not null;index"`
	AuthorID  uuid.UUID    `json:"authorId" gorm:"type:char(36);not null;index"`
	Author    *UserSummary `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Content   string       `json:"content" gorm:"type:text;not null"`
	ParentID  *uuid.UUID   `json:"parentComment" gorm:"type:char(36);index"`
	Approved  bool         `json:"approved" gorm:"not null;default:false;index"`
	Replies   []Comment    `json:"replies,omitempty" gorm:"-"`
	CreatedAt time.Time    `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsTopLevel reports whether the comment has no parent.
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil
}
