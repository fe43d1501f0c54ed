package models

import "time"

// Test is authored assessment content for one language skill. A test becomes
// eligible for auto-assignment once it is published and bound to a class.
type Test struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatorID   uint      `gorm:"not null;index" json:"creator_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Type        TestType  `gorm:"size:32;not null" json:"type"`
	IsPublished bool      `gorm:"not null;default:false" json:"is_published"`
	ClassID     *uint     `gorm:"index" json:"class_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CanBeAutoAssigned reports whether the test qualifies for automatic
// assignment fan-out.
func (t Test) CanBeAutoAssigned() bool {
	return t.IsPublished && t.ClassID != nil
}
