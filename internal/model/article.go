package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Article publication states.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// ValidStatus reports whether s is a known article status.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Article is a news item owned by its author.
type Article struct {
	ID             uuid.UUID                   `json:"id" gorm:"type:char(36);primaryKey"`
	Title          string                      `json:"title" gorm:"size:255;not null"`
	Slug           string                      `json:"slug" gorm:"uniqueIndex;size:255;not null"`
	Content        string                      `json:"content" gorm:"type:text;not null"`
	ContentHTML    string                      `json:"contentHtml" gorm:"type:text"`
	Summary        string                      `json:"summary" gorm:"type:text"`
	AuthorID       uuid.UUID                   `json:"authorId" gorm:"type:char(36);not null;index"`
	Author         *UserSummary                `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Categories     []Category                  `json:"categories" gorm:"many2many:article_categories"`
	Tags           []ArticleTag                `json:"-" gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE"`
	TagNames       []string                    `json:"tags" gorm:"-"`
	FeaturedImage  string                      `json:"featuredImage" gorm:"size:512"`
	Gallery        datatypes.JSONSlice[string] `json:"gallery"`
	Status         string                      `json:"status" gorm:"size:20;not null;default:'draft';index"`
	ViewCount      int64                       `json:"viewCount" gorm:"not null;default:0"`
	IsBreakingNews bool                        `json:"isBreakingNews" gorm:"not null;default:false"`
	IsFeatured     bool                        `json:"isFeatured" gorm:"not null;default:false"`
	PublishDate    time.Time                   `json:"publishDate" gorm:"index"`
	CreatedAt      time.Time                   `json:"createdAt" gorm:"index"`
	UpdatedAt      time.Time                   `json:"updatedAt"`
}

// ArticleTag stores one tag of an article.
type ArticleTag struct {
	ArticleID uuid.UUID `json:"-" gorm:"type:char(36);primaryKey"`
	Tag       string    `json:"tag" gorm:"size:100;primaryKey;index"`
}

// BeforeCreate sets UUID before creating the record.
func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AfterFind flattens the tag rows into TagNames.
func (a *Article) AfterFind(tx *gorm.DB) error {
	a.syncTagNames()
	return nil
}

// SetTags replaces both tag representations.
func (a *Article) SetTags(tags []string) {
	a.TagNames = tags
	a.Tags = make([]ArticleTag, 0, len(tags))
	for _, t := range tags {
		a.Tags = append(a.Tags, ArticleTag{ArticleID: a.ID, Tag: t})
	}
}

func (a *Article) syncTagNames() {
	a.TagNames = make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		a.TagNames = append(a.TagNames, t.Tag)
	}
}
