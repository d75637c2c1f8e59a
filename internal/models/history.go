package models

import "time"

// History is one immutable audit record of a defect field change: who
// changed what, from which value to which, and when. Rows are written
// exclusively by the defect lifecycle update and are never modified.
type History struct {
	ID        uint    `gorm:"primaryKey"`
	DefectID  uint    `gorm:"not null;index"`
	UserID    uint    `gorm:"not null"`
	Action    string  `gorm:"size:32;not null"`
	OldValue  *string `gorm:"type:text"`
	NewValue  *string `gorm:"type:text"`
	CreatedAt time.Time

	User User `gorm:"foreignKey:UserID"`
}

// TableName keeps the historical table name from the original schema.
func (History) TableName() string {
	return "history"
}
