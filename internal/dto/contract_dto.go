package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/bharatcare/claims-backend/internal/ledger"
	"github.com/bharatcare/claims-backend/internal/models"
)

type DeployContractRequest struct {
	ClaimID        uuid.UUID `json:"claim_id"`
	PolicyID       string    `json:"policy_id"`
	Amount         float64   `json:"amount"`
	InsurerWallet  string    `json:"insurer_wallet"`
	HospitalWallet string    `json:"hospital_wallet"`
	Date           time.Time `json:"date"`
}

type ContractActionRequest struct {
	Action models.ContractAction `json:"action"`
}

type DeployContractResponse struct {
	Contract   *models.SmartContract `json:"contract"`
	Deployment *ledger.DeployResult  `json:"deployment"`
}

type ContractActionResponse struct {
	Contract    *models.SmartContract   `json:"contract"`
	Transaction *ledger.ExecutionResult `json:"transaction"`
}

type ContractVerificationResponse struct {
	Contract *models.SmartContract      `json:"contract"`
	Result   *ledger.VerificationResult `json:"result"`
}

type ContractStateResponse struct {
	Contract *models.SmartContract `json:"contract"`
	State    *ledger.ContractState `json:"state"`
}

type ContractTrailResponse struct {
	Contract *models.SmartContract `json:"contract"`
	Trail    []ledger.TrailEntry   `json:"trail"`
}
