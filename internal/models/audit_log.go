package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Audit action tags, one per state-changing operation.
const (
	AuditClaimSubmitted        = "CLAIM_SUBMITTED"
	AuditClaimVerified         = "CLAIM_VERIFIED"
	AuditClaimUnderReview      = "CLAIM_MARKED_UNDER_REVIEW"
	AuditClaimApproved         = "CLAIM_APPROVED"
	AuditClaimRejected         = "CLAIM_REJECTED"
	AuditClaimSettled          = "CLAIM_SETTLED"
	AuditContractDeployed      = "SC_DEPLOYED"
	AuditContractApproved      = "SC_APPROVED"
	AuditContractRejected      = "SC_REJECTED"
	AuditPaymentReleased       = "SC_PAYMENT_RELEASED"
	AuditSettlementRequested   = "SC_SETTLEMENT_REQUESTED"
)

// AuditLog is the append-only compliance trail. Rows are never updated
// or deleted.
type AuditLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ActorID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"actor_id"`
	Action    string         `gorm:"not null;size:100;index" json:"action"`
	ClaimID   *uuid.UUID     `gorm:"type:uuid;index" json:"claim_id,omitempty"`
	Metadata  datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}
