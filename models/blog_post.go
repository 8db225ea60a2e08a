package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	PostStatusAll       = "all"
	PostStatusPublished = "published"
	PostStatusDraft     = "draft"
)

// BlogPost represents a complete blog post with metadata
type BlogPost struct {
	ID              uint                        `json:"id" gorm:"primaryKey"`
	Title           string                      `json:"title" gorm:"type:varchar(255);not null"`
	Slug            string                      `json:"slug" gorm:"type:varchar(255);uniqueIndex;not null"`
	Excerpt         string                      `json:"excerpt" gorm:"type:text"`
	Content         string                      `json:"content,omitempty" gorm:"type:text;not null"`
	Image           string                      `json:"image" gorm:"type:text"`
	Category        string                      `json:"category" gorm:"type:varchar(100);index"`
	Tags            datatypes.JSONSlice[string] `json:"tags" gorm:"type:jsonb"`
	MetaTitle       string                      `json:"metaTitle" gorm:"type:varchar(255)"`
	MetaDescription string                      `json:"metaDescription" gorm:"type:text"`
	Published       bool                        `json:"published" gorm:"not null;default:false;index"`
	Featured        bool                        `json:"featured" gorm:"not null;default:false"`
	ReadTime        int                         `json:"readTime" gorm:"not null;default:1;check:read_time >= 1"`
	Views           int                         `json:"views" gorm:"not null;default:0"`
	AuthorID        *uint                       `json:"authorId" gorm:"index"`
	Author          *Admin                      `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL"`
	CreatedAt       time.Time                   `json:"createdAt" gorm:"not null;index"`
	UpdatedAt       time.Time                   `json:"updatedAt" gorm:"not null"`
}

// BlogPostPatch carries the optional fields of a partial update. Nil means
// "keep the stored value".
type BlogPostPatch struct {
	Title           *string                      `json:"title" col:"title" validate:"omitnil,min=1,max=255"`
	Slug            *string                      `json:"slug" col:"slug" validate:"omitnil,max=255"`
	Excerpt         *string                      `json:"excerpt" col:"excerpt"`
	Content         *string                      `json:"content" col:"content" validate:"omitnil,min=1"`
	Image           *string                      `json:"image" col:"image"`
	Category        *string                      `json:"category" col:"category" validate:"omitnil,max=100"`
	Tags            *datatypes.JSONSlice[string] `json:"tags" col:"tags"`
	MetaTitle       *string                      `json:"metaTitle" col:"meta_title" validate:"omitnil,max=255"`
	MetaDescription *string                      `json:"metaDescription" col:"meta_description"`
	Published       *bool                        `json:"published" col:"published"`
	Featured        *bool                        `json:"featured" col:"featured"`
	ReadTime        *int                         `json:"-" col:"read_time"`
}

// BlogPostFilter narrows blog listings. Nil pointers do not filter.
type BlogPostFilter struct {
	Published *bool
	Featured  *bool
	Category  string
	Search    string
}

// CategoryCount is one row of the public category listing.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// PublishedFilter maps a status query value to the published column filter.
func PublishedFilter(status string) (*bool, bool) {
	switch status {
	case "", PostStatusAll:
		return nil, true
	case PostStatusPublished:
		published := true
		return &published, true
	case PostStatusDraft:
		published := false
		return &published, true
	default:
		return nil, false
	}
}
