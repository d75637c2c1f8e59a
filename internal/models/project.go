package models

import "time"

// Project is a construction site being tracked.
type Project struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:200;not null"`
	Description string `gorm:"type:text"`
	Status      string `gorm:"size:32"`
	StartDate   *time.Time
	EndDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Stages []Stage `gorm:"foreignKey:ProjectID"`
}

// Stage is a phase of a project (foundation, framing, finishing, ...).
// A stage belongs to exactly one project.
type Stage struct {
	ID        uint   `gorm:"primaryKey"`
	ProjectID uint   `gorm:"not null;index"`
	Name      string `gorm:"size:200;not null"`
	CreatedAt time.Time

	Project Project `gorm:"foreignKey:ProjectID"`
}

// ProjectUser grants or revokes a user's access to a project. At most one
// row exists per (user, project) pair; revoking flips HasAccess rather than
// deleting the row. No row means no access.
type ProjectUser struct {
	ID         uint `gorm:"primaryKey"`
	UserID     uint `gorm:"not null;uniqueIndex:idx_project_users_user_project"`
	ProjectID  uint `gorm:"not null;uniqueIndex:idx_project_users_user_project"`
	HasAccess  bool `gorm:"not null;default:true"`
	AssignedAt time.Time `gorm:"autoCreateTime"`

	User    User    `gorm:"foreignKey:UserID"`
	Project Project `gorm:"foreignKey:ProjectID"`
}

// TableName keeps the historical table name from the original schema.
func (ProjectUser) TableName() string {
	return "project_users"
}
