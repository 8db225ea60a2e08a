package models

import "time"

const (
	ReviewStatusAll      = "all"
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
)

// Review is a customer review. Approved only ever moves from false to true.
type Review struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Email     string    `json:"email,omitempty" gorm:"type:varchar(255);not null"`
	Rating    int       `json:"rating" gorm:"type:smallint;not null;check:rating >= 1 AND rating <= 5"`
	Comment   string    `json:"comment" gorm:"type:text;not null"`
	Approved  bool      `json:"approved" gorm:"not null;default:false;index"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;index"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null"`
}

// ReviewPatch lists the review columns a moderator may change.
type ReviewPatch struct {
	Approved *bool `col:"approved"`
}

// ReviewStats summarizes approved reviews.
type ReviewStats struct {
	Total        int64         `json:"total"`
	Average      float64       `json:"average"`
	Distribution map[int]int64 `json:"distribution"`
}

// ApprovedFilter maps a status query value to the approved column filter.
// A nil result means no filtering.
func ApprovedFilter(status string) (*bool, bool) {
	switch status {
	case "", ReviewStatusAll:
		return nil, true
	case ReviewStatusPending:
		approved := false
		return &approved, true
	case ReviewStatusApproved:
		approved := true
		return &approved, true
	default:
		return nil, false
	}
}
