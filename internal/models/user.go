package models

import "time"

// Roles assigned to users. The role gates which lifecycle operations a
// principal may perform; there is no per-user permission model beyond it.
const (
	RoleEngineer = "engineer"
	RoleManager  = "manager"
	RoleLeader   = "leader"
)

// User is an authenticated actor. Credentials and token issuance live
// outside this service; only identity and role are consumed here.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	FullName  string `gorm:"size:128;not null"`
	Email     string `gorm:"size:128;uniqueIndex;not null"`
	Role      string `gorm:"size:16;not null;index"`
	CreatedAt time.Time
}
