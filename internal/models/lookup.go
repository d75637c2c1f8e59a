package models

// Well-known status names. Defects reference Status rows by id, but the
// lifecycle rules are keyed on these names; the rows are seeded at db init
// and the workflow cannot run without them.
const (
	StatusNew         = "New"
	StatusInProgress  = "In Progress"
	StatusUnderReview = "Under Review"
	StatusClosed      = "Closed"
)

// StatusNames lists the fixed workflow statuses in lifecycle order.
var StatusNames = []string{StatusNew, StatusInProgress, StatusUnderReview, StatusClosed}

// Status is a workflow state lookup row.
type Status struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:32;uniqueIndex;not null"`
}

// PriorityNames lists the seeded priorities from least to most urgent.
var PriorityNames = []string{"Low", "Medium", "High", "Critical"}

// Priority is a defect priority lookup row.
type Priority struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:32;uniqueIndex;not null"`
}
