package models

import "time"

// Defect is the central work item: a reported construction flaw moving
// through the New, In Progress, Under Review, Closed workflow. Status,
// assignee and due date are only ever mutated through the defect package,
// which also writes the audit history.
type Defect struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:200;not null"`
	Description string `gorm:"type:text"`
	ProjectID   uint   `gorm:"not null;index"`
	StageID     *uint  `gorm:"index"`
	CreatorID   uint   `gorm:"not null;index"`
	AssigneeID  *uint  `gorm:"index"`
	PriorityID  uint   `gorm:"not null"`
	StatusID    uint   `gorm:"not null;index"`
	DueDate     *time.Time
	Version     int `gorm:"not null;default:1"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Project     Project      `gorm:"foreignKey:ProjectID"`
	Stage       *Stage       `gorm:"foreignKey:StageID"`
	Creator     User         `gorm:"foreignKey:CreatorID"`
	Assignee    *User        `gorm:"foreignKey:AssigneeID"`
	Priority    Priority     `gorm:"foreignKey:PriorityID"`
	Status      Status       `gorm:"foreignKey:StatusID"`
	Attachments []Attachment `gorm:"foreignKey:DefectID"`
}

// Comment is one entry in a defect's discussion thread. Append-only; there
// is no edit or delete.
type Comment struct {
	ID        uint   `gorm:"primaryKey"`
	DefectID  uint   `gorm:"not null;index"`
	AuthorID  uint   `gorm:"not null"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time

	Author User `gorm:"foreignKey:AuthorID"`
}

// Attachment is a stored file linked to a defect. The bytes live on the
// attachment store; only the handle is kept here.
type Attachment struct {
	ID           uint   `gorm:"primaryKey"`
	DefectID     uint   `gorm:"not null;index"`
	FilePath     string `gorm:"size:255;not null"`
	FileName     string `gorm:"size:255;not null"`
	FileType     string `gorm:"size:64"`
	UploadedByID uint   `gorm:"not null"`
	CreatedAt    time.Time

	UploadedBy User `gorm:"foreignKey:UploadedByID"`
}
