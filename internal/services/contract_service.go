package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bharatcare/claims-backend/internal/apperr"
	"github.com/bharatcare/claims-backend/internal/ledger"
	"github.com/bharatcare/claims-backend/internal/models"
	"github.com/bharatcare/claims-backend/internal/store"
)

// DeployContractParams are the caller-supplied inputs for a deployment.
type DeployContractParams struct {
	ClaimID        uuid.UUID
	PolicyID       string
	Amount         float64
	InsurerWallet  string
	HospitalWallet string
	Date           time.Time
}

// ContractService owns the simulated on-chain contract lifecycle. Claim
// state stays canonical: every contract action that implies a claim
// change goes through the claim service's mirror methods.
type ContractService struct {
	store         store.Store
	chain         ledger.Client
	claims        *ClaimService
	notifications *NotificationService
	audit         *AuditService
	now           func() time.Time
}

func NewContractService(st store.Store, chain ledger.Client, claims *ClaimService, notes *NotificationService, audit *AuditService) *ContractService {
	return &ContractService{
		store:         st,
		chain:         chain,
		claims:        claims,
		notifications: notes,
		audit:         audit,
		now:           time.Now,
	}
}

// Deploy validates inputs, obtains a fabricated deployment from the
// ledger, and persists the contract in pending status.
func (s *ContractService) Deploy(ctx context.Context, createdBy *models.User, params DeployContractParams) (*models.SmartContract, *ledger.DeployResult, error) {
	if createdBy.Role != models.RoleAdmin && createdBy.Role != models.RoleInsurer {
		return nil, nil, apperr.Authorization("only admin or insurer can deploy contracts")
	}

	claim, err := s.store.GetClaim(params.ClaimID)
	if err != nil {
		return nil, nil, err
	}

	if !ledger.ValidAddress(params.InsurerWallet) {
		return nil, nil, apperr.Validation("invalid insurer wallet address")
	}
	if !ledger.ValidAddress(params.HospitalWallet) {
		return nil, nil, apperr.Validation("invalid hospital wallet address")
	}
	if params.Amount <= 0 {
		return nil, nil, apperr.Validation("amount must be greater than zero")
	}

	if _, err := s.store.GetContractByClaim(params.ClaimID); err == nil {
		return nil, nil, apperr.Duplicate("a contract already exists for this claim")
	}

	insurerID, err := s.firstUserID(models.RoleInsurer)
	if err != nil {
		return nil, nil, err
	}
	hospitalID, err := s.firstUserID(models.RoleHospital)
	if err != nil {
		return nil, nil, err
	}

	deployment, err := s.chain.Deploy(ctx, ledger.DeployParams{
		ClaimID:        params.ClaimID.String(),
		PolicyID:       params.PolicyID,
		Amount:         params.Amount,
		InsurerWallet:  params.InsurerWallet,
		HospitalWallet: params.HospitalWallet,
		Date:           params.Date,
	})
	if err != nil {
		if apperr.KindOf(err) != 0 {
			return nil, nil, err
		}
		return nil, nil, apperr.Wrap(apperr.KindValidation, err, "deployment failed")
	}

	now := s.now()
	contract := &models.SmartContract{
		ID:             uuid.New(),
		ClaimID:        claim.ID,
		PolicyID:       params.PolicyID,
		InsurerID:      insurerID,
		HospitalID:     hospitalID,
		CreatedBy:      createdBy.ID,
		InsurerWallet:  params.InsurerWallet,
		HospitalWallet: params.HospitalWallet,
		Amount:         params.Amount,
		Date:           params.Date,
		Address:        deployment.Address,
		Status:         models.ContractPending,
		Hash:           deployment.TxHash,
		LastTxID:       deployment.TxHash,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateContract(contract); err != nil {
		return nil, nil, err
	}

	s.audit.Record(createdBy.ID, models.AuditContractDeployed, &claim.ID, map[string]interface{}{
		"contract_id": contract.ID.String(),
		"address":     deployment.Address,
	})
	s.notifications.Notify(claim.PatientID, fmt.Sprintf("Smart contract deployed for claim %s.", shortRef(claim.ID)))
	return contract, deployment, nil
}

func (s *ContractService) firstUserID(role models.Role) (uuid.UUID, error) {
	users, err := s.store.ListUsersByRole(role)
	if err != nil {
		return uuid.Nil, err
	}
	if len(users) == 0 {
		return uuid.Nil, apperr.Validation("no %s account registered", role)
	}
	return users[0].ID, nil
}

// Act executes a role-gated contract action on the ledger and applies its
// effect to the contract and, where required, the linked claim. The claim
// write follows the contract write without a cross-entity transaction; a
// failure in between leaves the contract ahead of the claim.
func (s *ContractService) Act(ctx context.Context, contractID uuid.UUID, actor *models.User, action models.ContractAction) (*models.SmartContract, *ledger.ExecutionResult, error) {
	contract, err := s.store.GetContract(contractID)
	if err != nil {
		return nil, nil, err
	}

	staff := actor.Role == models.RoleAdmin || actor.Role == models.RoleInsurer
	switch action {
	case models.ContractApprove, models.ContractReject, models.ContractReleasePayment:
		if !staff {
			return nil, nil, apperr.Authorization("not allowed")
		}
	case models.ContractRequestSettlement:
		// open to any role; hospitals use it to nudge settlement
	default:
		return nil, nil, apperr.Validation("unknown action %q", action)
	}

	if action == models.ContractReleasePayment && contract.Status != models.ContractActive {
		return nil, nil, apperr.Precondition("contract must be active before payment release")
	}

	execution, err := s.chain.ExecuteAction(ctx, contract.Address, string(action))
	if err != nil {
		if apperr.KindOf(err) != 0 {
			return nil, nil, err
		}
		return nil, nil, apperr.Wrap(apperr.KindValidation, err, "action failed")
	}

	switch action {
	case models.ContractApprove:
		if err := s.applyStatus(contract, models.ContractActive, execution.TxHash); err != nil {
			return nil, nil, err
		}
		s.audit.Record(actor.ID, models.AuditContractApproved, &contract.ClaimID, s.actionMeta(contract))
		if err := s.claims.MirrorContractApproval(contract.ClaimID); err != nil {
			slog.Error("claim reconciliation failed after contract approval",
				"contract_id", contract.ID, "claim_id", contract.ClaimID, "error", err)
		}

	case models.ContractReject:
		if err := s.applyStatus(contract, models.ContractRejected, execution.TxHash); err != nil {
			return nil, nil, err
		}
		s.audit.Record(actor.ID, models.AuditContractRejected, &contract.ClaimID, s.actionMeta(contract))
		if err := s.claims.MirrorContractRejection(contract.ClaimID); err != nil {
			slog.Error("claim reconciliation failed after contract rejection",
				"contract_id", contract.ID, "claim_id", contract.ClaimID, "error", err)
		}

	case models.ContractReleasePayment:
		if err := s.applyStatus(contract, models.ContractCompleted, execution.TxHash); err != nil {
			return nil, nil, err
		}
		s.audit.Record(actor.ID, models.AuditPaymentReleased, &contract.ClaimID, s.actionMeta(contract))
		if err := s.claims.MirrorContractSettlement(contract.ClaimID); err != nil {
			slog.Error("claim reconciliation failed after payment release",
				"contract_id", contract.ID, "claim_id", contract.ClaimID, "error", err)
		}

	case models.ContractRequestSettlement:
		s.audit.Record(actor.ID, models.AuditSettlementRequested, &contract.ClaimID, s.actionMeta(contract))
		s.notifications.Broadcast(
			fmt.Sprintf("Settlement requested for contract %s", contract.ID),
			models.RoleAdmin, models.RoleInsurer,
		)
	}

	return contract, execution, nil
}

func (s *ContractService) actionMeta(contract *models.SmartContract) map[string]interface{} {
	return map[string]interface{}{"contract_id": contract.ID.String()}
}

func (s *ContractService) applyStatus(contract *models.SmartContract, status models.ContractStatus, txHash string) error {
	contract.Status = status
	contract.Hash = txHash
	contract.LastTxID = txHash
	contract.UpdatedAt = s.now()
	return s.store.UpdateContract(contract, contract.Version)
}

// Get returns a contract scoped like ListForRole.
func (s *ContractService) Get(id uuid.UUID, viewer *models.User) (*models.SmartContract, error) {
	contract, err := s.store.GetContract(id)
	if err != nil {
		return nil, err
	}
	ok, err := s.visible(contract, viewer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("contract not found")
	}
	return contract, nil
}

func (s *ContractService) visible(contract *models.SmartContract, viewer *models.User) (bool, error) {
	switch viewer.Role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleHospital:
		return contract.HospitalID == viewer.ID, nil
	case models.RoleInsurer:
		return contract.InsurerID == viewer.ID, nil
	case models.RolePatient:
		claim, err := s.store.GetClaim(contract.ClaimID)
		if err != nil {
			return false, nil
		}
		return claim.PatientID == viewer.ID, nil
	}
	return false, nil
}

// ListForRole scopes contracts: admin all, hospital/insurer by party id,
// patients by ownership of the linked claim.
func (s *ContractService) ListForRole(user *models.User) ([]models.SmartContract, error) {
	all, err := s.store.ListContracts()
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleAdmin {
		return all, nil
	}
	out := make([]models.SmartContract, 0, len(all))
	for _, sc := range all {
		ok, err := s.visible(&sc, user)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, sc)
		}
	}
	return out, nil
}

// VerifyDeployment asks the ledger to confirm a past deployment.
func (s *ContractService) VerifyDeployment(ctx context.Context, contractID uuid.UUID, viewer *models.User) (*ledger.VerificationResult, *models.SmartContract, error) {
	contract, err := s.Get(contractID, viewer)
	if err != nil {
		return nil, nil, err
	}
	result, err := s.chain.VerifyDeployment(ctx, contract.Address, contract.LastTxID)
	if err != nil {
		return nil, nil, err
	}
	return result, contract, nil
}

// QueryState reads the simulated on-chain state.
func (s *ContractService) QueryState(ctx context.Context, contractID uuid.UUID, viewer *models.User) (*ledger.ContractState, *models.SmartContract, error) {
	contract, err := s.Get(contractID, viewer)
	if err != nil {
		return nil, nil, err
	}
	state, err := s.chain.QueryState(ctx, contract.Address)
	if err != nil {
		return nil, nil, err
	}
	return state, contract, nil
}

// AuditTrail fetches the simulated on-chain event history.
func (s *ContractService) AuditTrail(ctx context.Context, contractID uuid.UUID, viewer *models.User) ([]ledger.TrailEntry, *models.SmartContract, error) {
	contract, err := s.Get(contractID, viewer)
	if err != nil {
		return nil, nil, err
	}
	trail, err := s.chain.AuditTrail(ctx, contract.Address)
	if err != nil {
		return nil, nil, err
	}
	return trail, contract, nil
}
