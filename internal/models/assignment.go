package models

import "time"

// Assignment represents a short-answer assignment authored by a teacher.
type Assignment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	CreatedBy   uint       `gorm:"not null" json:"created_by"`
	Deadline    time.Time  `gorm:"not null" json:"deadline"`
	TotalScore  int        `gorm:"not null" json:"total_score"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Questions   []Question `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.Deadline)
}

// Question is a single gradable item inside an assignment. Questions are
// treated as immutable once answers reference them.
type Question struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	AssignmentID    uint   `gorm:"not null;index" json:"assignment_id"`
	Text            string `gorm:"type:text;not null" json:"text"`
	ReferenceAnswer string `gorm:"type:text;not null" json:"reference_answer"`
	MaxScore        int    `gorm:"not null" json:"max_score"`
	Order           int    `gorm:"column:sort_order;not null;default:0" json:"order"`
}
