package models

import (
	"time"

	"github.com/google/uuid"
)

type ContractStatus string

const (
	ContractPending   ContractStatus = "pending"
	ContractActive    ContractStatus = "active"
	ContractCompleted ContractStatus = "completed"
	ContractRejected  ContractStatus = "rejected"
)

type ContractAction string

const (
	ContractApprove           ContractAction = "approve"
	ContractReject            ContractAction = "reject"
	ContractReleasePayment    ContractAction = "release_payment"
	ContractRequestSettlement ContractAction = "request_settlement"
)

// SmartContract is a simulated on-chain record mirroring a claim's
// settlement lifecycle. The linked Claim owns canonical status; contract
// actions reconcile the claim through the claim service. Never deleted.
type SmartContract struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClaimID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"claim_id"`
	PolicyID       string         `gorm:"not null;size:100" json:"policy_id"`
	InsurerID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"insurer_id"`
	HospitalID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"hospital_id"`
	CreatedBy      uuid.UUID      `gorm:"type:uuid;not null" json:"created_by"`
	InsurerWallet  string         `gorm:"not null;size:42" json:"insurer_wallet"`
	HospitalWallet string         `gorm:"not null;size:42" json:"hospital_wallet"`
	Amount         float64        `gorm:"not null" json:"amount"`
	Date           time.Time      `json:"date"`
	Address        string         `gorm:"not null;size:42;index" json:"address"`
	Status         ContractStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Hash           string         `gorm:"size:66" json:"hash,omitempty"`
	LastTxID       string         `gorm:"size:66" json:"last_tx_id,omitempty"`
	Version        int64          `gorm:"not null;default:1" json:"version"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
