package entity

import (
	"time"
)

// History action constants, one per recorded workflow event.
const (
	HistoryCreated           = "CREATED"
	HistoryApprovedProd      = "APPROVED_PROD"
	HistoryRejectedProd      = "REJECTED_PROD"
	HistoryScheduledMaint    = "SCHEDULED_MAINT"
	HistoryApprovedMaintTech = "APPROVED_MAINT_TECH"
	HistoryApprovedMaintEng  = "APPROVED_MAINT_ENG"
	HistoryRejectedMaint     = "REJECTED_MAINT"
	HistoryApprovedManager   = "APPROVED_MANAGER"
	HistoryFinished          = "FINISHED"
)

// RequestHistory is the audit trail: one row per creation or transition.
// FromStatus/ToStatus keep the two rejection paths distinguishable even
// though they share one action.
type RequestHistory struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	RequestID  uint      `json:"request_id" gorm:"not null;index"`
	Action     string    `json:"action" gorm:"size:50;not null"`
	ActorID    uint      `json:"actor_id" gorm:"not null"`
	FromStatus string    `json:"from_status" gorm:"size:20"`
	ToStatus   string    `json:"to_status" gorm:"size:20;not null"`
	Comment    string    `json:"comment" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`

	// Associations
	Actor *User `json:"actor,omitempty" gorm:"foreignKey:ActorID"`
}

func (RequestHistory) TableName() string {
	return "request_histories"
}

// EmailConfig maps a role key to the mailbox that should be notified when
// a request lands in that role's queue.
type EmailConfig struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Key         string    `json:"key" gorm:"size:50;not null;uniqueIndex"`
	Email       string    `json:"email" gorm:"size:128;not null"`
	Description string    `json:"description" gorm:"size:255"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (EmailConfig) TableName() string {
	return "email_configs"
}
