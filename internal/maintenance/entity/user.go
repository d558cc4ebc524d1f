package entity

import (
	"time"
)

// Role constants. Roles are a flat tagged enum; what each role may do is
// decided by the capability table in the workflow package, not here.
const (
	RoleRequester     = "REQUESTER"
	RoleApproverProd  = "APPROVER_PROD"
	RoleApproverMaint = "APPROVER_MAINT"
	RoleManagerMaint  = "MANAGER_MAINT"
	RoleExecutor      = "EXECUTOR"
	RoleEngineerMech  = "ENGINEER_MECH"
	RoleEngineerElec  = "ENGINEER_ELEC"
)

// User is an operator account. HMC is the badge number used on the shop
// floor and must be unique.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Username     string     `json:"username" gorm:"size:64;not null;uniqueIndex"`
	Name         string     `json:"name" gorm:"size:100;not null"`
	Email        string     `json:"email" gorm:"size:128"`
	HMC          string     `json:"hmc" gorm:"size:20;not null;uniqueIndex"`
	Role         string     `json:"role" gorm:"size:20;not null;default:'REQUESTER'"`
	PasswordHash string     `json:"-" gorm:"size:128;not null"`
	Status       string     `json:"status" gorm:"size:16;not null;default:'active'"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// EngineerRole reports whether the role is one of the engineer variants.
func EngineerRole(role string) bool {
	return role == RoleEngineerMech || role == RoleEngineerElec
}
