package models

import "time"

// Contact is a contact-form submission. Rows are never updated.
type Contact struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"type:varchar(255);not null"`
	Phone      string    `json:"phone" gorm:"type:varchar(50);not null"`
	Email      string    `json:"email" gorm:"type:varchar(255);not null"`
	PostalCode string    `json:"postalCode" gorm:"type:char(5);not null"`
	CreatedAt  time.Time `json:"createdAt" gorm:"not null;index"`
}
