package models

import (
	"time"

	"github.com/google/uuid"
)

type ClaimStatus string

const (
	ClaimSubmitted   ClaimStatus = "submitted"
	ClaimUnderReview ClaimStatus = "under_review"
	ClaimApproved    ClaimStatus = "approved"
	ClaimRejected    ClaimStatus = "rejected"
	ClaimSettled     ClaimStatus = "settled"
)

// Terminal reports whether no further claim transition is allowed.
func (s ClaimStatus) Terminal() bool {
	return s == ClaimRejected || s == ClaimSettled
}

type ClaimAction string

const (
	ActionVerify          ClaimAction = "verify"
	ActionSendUnderReview ClaimAction = "send_under_review"
	ActionApprove         ClaimAction = "approve"
	ActionReject          ClaimAction = "reject"
	ActionSettle          ClaimAction = "settle"
)

type InsurerDecision string

const (
	DecisionApproved InsurerDecision = "approved"
	DecisionRejected InsurerDecision = "rejected"
)

// Claim is a patient's reimbursement request. Version is bumped on every
// mutation; updates carrying a stale version are rejected.
type Claim struct {
	ID               uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PatientID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"patient_id"`
	Diagnosis        string           `gorm:"not null;size:255;index" json:"diagnosis"`
	Amount           float64          `gorm:"not null" json:"amount"`
	Notes            string           `gorm:"size:2000" json:"notes,omitempty"`
	Status           ClaimStatus      `gorm:"size:20;not null;default:'submitted';index" json:"status"`
	HospitalVerified bool             `gorm:"not null;default:false" json:"hospital_verified"`
	InsurerDecision  *InsurerDecision `gorm:"size:20" json:"insurer_decision,omitempty"`
	Version          int64            `gorm:"not null;default:1" json:"version"`
	CreatedAt        time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`

	Documents []DocFile `gorm:"foreignKey:ClaimID" json:"-"`
}

// DocumentIDs returns attached document ids in upload order.
func (c *Claim) DocumentIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Documents))
	for _, d := range c.Documents {
		ids = append(ids, d.ID)
	}
	return ids
}
