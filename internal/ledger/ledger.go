package ledger

import (
	"context"
	"time"
)

// DeployParams carries the claim-derived inputs for a deployment.
type DeployParams struct {
	ClaimID        string
	PolicyID       string
	Amount         float64
	InsurerWallet  string
	HospitalWallet string
	Date           time.Time
}

type DeployResult struct {
	Address     string `json:"address"`
	TxHash      string `json:"tx_hash"`
	BlockNumber int64  `json:"block_number"`
	GasUsed     int64  `json:"gas_used"`
	Timestamp   int64  `json:"timestamp"`
	Status      int    `json:"status"`
}

type VerificationResult struct {
	Verified           bool `json:"verified"`
	BlockConfirmations int  `json:"block_confirmations"`
	Status             int  `json:"status"`
}

type ExecutionResult struct {
	TxHash      string `json:"tx_hash"`
	BlockNumber int64  `json:"block_number"`
	GasUsed     int64  `json:"gas_used"`
	Status      int    `json:"status"`
}

type ContractState struct {
	Status     string  `json:"status"`
	Balance    float64 `json:"balance"`
	LastUpdate int64   `json:"last_update"`
	EventLogs  int     `json:"event_logs"`
}

type TrailEntry struct {
	BlockNumber int64  `json:"block_number"`
	TxHash      string `json:"tx_hash"`
	Action      string `json:"action"`
	Timestamp   int64  `json:"timestamp"`
	Actor       string `json:"actor"`
}

// Client is the chain-facing collaborator the contract registry depends
// on. The only shipped implementation is the Simulator; a real chain
// adapter would satisfy the same interface. Always injected, never
// reached through a global.
type Client interface {
	Deploy(ctx context.Context, params DeployParams) (*DeployResult, error)
	VerifyDeployment(ctx context.Context, address, txHash string) (*VerificationResult, error)
	ExecuteAction(ctx context.Context, address, action string) (*ExecutionResult, error)
	QueryState(ctx context.Context, address string) (*ContractState, error)
	AuditTrail(ctx context.Context, address string) ([]TrailEntry, error)
}
