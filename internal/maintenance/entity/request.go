package entity

import (
	"time"
)

// Request status constants. These are the wire contract shared with the
// frontend: never rename without a data migration.
const (
	StatusOpen           = "OPEN"
	StatusWaitingProd    = "WAITING_PROD"
	StatusWaitingMaint   = "WAITING_MAINT"
	StatusWaitingManager = "WAITING_MANAGER"
	StatusInExecution    = "IN_EXECUTION"
	StatusDone           = "DONE"
	StatusRejected       = "REJECTED"
)

// Demand type constants, decided once at maintenance approval.
const (
	TypeTechnical   = "TECHNICAL"
	TypeEngineering = "ENGINEERING"
)

// GUT score above this is highlighted as critical in listings.
const CriticalGUTThreshold = 60

// MaintenanceRequest is one maintenance/production demand and its workflow
// state. Descriptive fields and the GUT inputs are immutable after creation;
// workflow fields are mutated only through RequestService.ApplyTransition.
type MaintenanceRequest struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	Title              string     `json:"title" gorm:"size:200;not null"`
	ProblemDescription string     `json:"problem_description" gorm:"type:text;not null"`
	Process            string     `json:"process" gorm:"size:100;not null"`
	Equipment          string     `json:"equipment" gorm:"size:100;not null"`

	// GUT matrix inputs, each in [1,5], set at creation.
	GutGravity  int `json:"gut_gravity" gorm:"not null"`
	GutUrgency  int `json:"gut_urgency" gorm:"not null"`
	GutTendency int `json:"gut_tendency" gorm:"not null"`

	Photo string `json:"photo" gorm:"size:512"`

	Status string `json:"status" gorm:"size:20;not null;default:'OPEN';index"`
	Type   string `json:"type" gorm:"size:20"`

	AssignedToID *uint `json:"assigned_to" gorm:"index"`
	RequesterID  uint  `json:"requester" gorm:"not null;index"`

	// Execution closeout fields, set by finish_execution.
	ExecutionDescription string     `json:"execution_description" gorm:"type:text"`
	TechnicianName       string     `json:"technician_name" gorm:"size:100"`
	PM04Order            string     `json:"pm04_order" gorm:"size:50"`
	Observation          string     `json:"observation" gorm:"type:text"`
	FinishedAt           *time.Time `json:"finished_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Requester  *User            `json:"requester_user,omitempty" gorm:"foreignKey:RequesterID"`
	AssignedTo *User            `json:"assigned_to_user,omitempty" gorm:"foreignKey:AssignedToID"`
	History    []RequestHistory `json:"history,omitempty" gorm:"foreignKey:RequestID"`
}

func (MaintenanceRequest) TableName() string {
	return "maintenance_requests"
}

// GUTScore is derived on every read, never stored.
func (r *MaintenanceRequest) GUTScore() int {
	return r.GutGravity * r.GutUrgency * r.GutTendency
}

// Critical reports whether the request crosses the critical GUT threshold.
func (r *MaintenanceRequest) Critical() bool {
	return r.GUTScore() > CriticalGUTThreshold
}

// statusLabels maps wire statuses to the display labels shown in listings.
// Search matches against these case-insensitively.
var statusLabels = map[string]string{
	StatusOpen:           "Issued",
	StatusWaitingProd:    "Waiting Production Approval",
	StatusWaitingMaint:   "Waiting Maintenance Approval",
	StatusWaitingManager: "Waiting Engineering Manager",
	StatusInExecution:    "In Execution",
	StatusDone:           "Done",
	StatusRejected:       "Rejected",
}

// StatusLabel returns the display label for a status, or the raw status
// string if it is unknown.
func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

// AllStatuses returns the canonical status set in workflow order.
func AllStatuses() []string {
	return []string{
		StatusOpen,
		StatusWaitingProd,
		StatusWaitingMaint,
		StatusWaitingManager,
		StatusInExecution,
		StatusDone,
		StatusRejected,
	}
}
