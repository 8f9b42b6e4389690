package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bharatcare/claims-backend/internal/apperr"
	"github.com/bharatcare/claims-backend/internal/ledger"
	"github.com/bharatcare/claims-backend/internal/models"
)

const (
	testInsurerWallet  = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	testHospitalWallet = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func (f *fixture) deployParams(claim *models.Claim) DeployContractParams {
	return DeployContractParams{
		ClaimID:        claim.ID,
		PolicyID:       "POL-2026-001",
		Amount:         claim.Amount,
		InsurerWallet:  testInsurerWallet,
		HospitalWallet: testHospitalWallet,
		Date:           time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) deploy(t *testing.T, claim *models.Claim) *models.SmartContract {
	t.Helper()
	contract, _, err := f.contracts.Deploy(context.Background(), f.insurer, f.deployParams(claim))
	if err != nil {
		t.Fatalf("deploy: %v", err)
	}
	return contract
}

func TestDeployContract(t *testing.T) {
	f := newFixture(t)
	claim := f.submit(t, "Dengue Fever", 45000)

	contract, deployment, err := f.contracts.Deploy(context.Background(), f.insurer, f.deployParams(claim))
	if err != nil {
		t.Fatalf("deploy: %v", err)
	}
	if contract.Status != models.ContractPending {
		t.Fatalf("status = %s, want pending", contract.Status)
	}
	if !ledger.ValidAddress(contract.Address) {
		t.Fatalf("invalid contract address %q", contract.Address)
	}
	if contract.Hash != deployment.TxHash {
		t.Fatalf("hash = %q, want deployment tx %q", contract.Hash, deployment.TxHash)
	}
	if contract.InsurerID != f.insurer.ID || contract.HospitalID != f.hospital.ID {
		t.Fatalf("parties = %s/%s, want insurer/hospital accounts", contract.InsurerID, contract.HospitalID)
	}

	trail, err := f.audit.ListByClaim(claim.ID)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if trail[len(trail)-1].Action != models.AuditContractDeployed {
		t.Fatalf("last audit action = %s, want %s", trail[len(trail)-1].Action, models.AuditContractDeployed)
	}
}

func TestDeployRejectsInvalidWallet(t *testing.T) {
	f := newFixture(t)
	claim := f.submit(t, "Dengue Fever", 45000)

	tests := []struct {
		name   string
		wallet string
	}{
		{"too short", "0x" + strings.Repeat("a", 39)},
		{"no prefix", strings.Repeat("a", 42)},
		{"non-hex", "0x" + strings.Repeat("g", 40)},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := f.deployParams(claim)
			params.InsurerWallet = tt.wallet
			_, _, err := f.contracts.Deploy(context.Background(), f.insurer, params)
			wantKind(t, err, apperr.KindValidation)
		})
	}

	// nothing was persisted for the claim
	if _, err := f.store.GetContractByClaim(claim.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected no contract for claim, got err=%v", err)
	}
}

func TestDeployRoleGate(t *testing.T) {
	f := newFixture(t)
	claim := f.submit(t, "Dengue Fever", 45000)
	for _, actor := range []*models.User{f.patient, f.hospital} {
		_, _, err := f.contracts.Deploy(context.Background(), actor, f.deployParams(claim))
		wantKind(t, err, apperr.KindAuthorization)
	}
}

func TestDeployOncePerClaim(t *testing.T) {
	f := newFixture(t)
	claim := f.submit(t, "Dengue Fever", 45000)
	f.deploy(t, claim)

	_, _, err := f.contracts.Deploy(context.Background(), f.admin, f.deployParams(claim))
	wantKind(t, err, apperr.KindDuplicate)
}

func TestDeployUnknownClaim(t *testing.T) {
	f := newFixture(t)
	params := DeployContractParams{
		ClaimID:        uuid.New(),
		PolicyID:       "POL-2026-001",
		Amount:         45000,
		InsurerWallet:  testInsurerWallet,
		HospitalWallet: testHospitalWallet,
	}
	_, _, err := f.contracts.Deploy(context.Background(), f.insurer, params)
	wantKind(t, err, apperr.KindNotFound)
}

func TestReleasePaymentRequiresActiveContract(t *testing.T) {
	f := newFixture(t)
	claim := f.submit(t, "Dengue Fever", 45000)
	contract := f.deploy(t, claim)

	_, _, err := f.contracts.Act(context.Background(), contract.ID, f.admin, models.ContractReleasePayment)
	wantKind(t, err, apperr.KindPrecondition)

	got, _ := f.store.GetContract(contract.ID)
	if got.Status != models.ContractPending {
		t.Fatalf("contract status = %s, want pending", got.Status)
	}
}

func TestContractApprovalActivatesAndMirrors(t *testing.T) {
	f := newFixture(t)
	claim := f.submit(t, "Dengue Fever", 45000)
	contract := f.deploy(t, claim)

	got, execution, err := f.contracts.Act(context.Background(), contract.ID, f.insurer, models.ContractApprove)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Status != models.ContractActive {
		t.Fatalf("contract status = %s, want active", got.Status)
	}
	if got.LastTxID != execution.TxHash {
		t.Fatalf("last tx = %q, want %q", got.LastTxID, execution.TxHash)
	}

	mirrored, _ := f.claims.Get(claim.ID, f.admin)
	if mirrored.Status != models.ClaimApproved {
		t.Fatalf("claim status = %s, want approved", mirrored.Status)
	}
	if mirrored.InsurerDecision == nil || *mirrored.InsurerDecision != models.DecisionApproved {
		t.Fatalf("insurer decision = %v, want approved", mirrored.InsurerDecision)
	}
}

func TestContractApprovalKeepsSettledClaim(t *testing.T) {
	f := newFixture(t)
	claim := f.submit(t, "Dengue Fever", 45000)
	contract := f.deploy(t, claim)

	f.mustTransition(t, claim.ID, f.hospital, models.ActionVerify)
	f.mustTransition(t, claim.ID, f.insurer, models.ActionApprove)
	f.mustTransition(t, claim.ID, f.admin, models.ActionSettle)

	if _, _, err := f.contracts.Act(context.Background(), contract.ID, f.insurer, models.ContractApprove); err != nil {
		t.Fatalf("approve: %v", err)
	}
	got, _ := f.claims.Get(claim.ID, f.admin)
	if got.Status != models.ClaimSettled {
		t.Fatalf("settled claim regressed to %s", got.Status)
	}
}

func TestContractRejectionMirrors(t *testing.T) {
	f := newFixture(t)
	claim := f.submit(t, "Dengue Fever", 45000)
	contract := f.deploy(t, claim)

	got, _, err := f.contracts.Act(context.Background(), contract.ID, f.admin, models.ContractReject)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if got.Status != models.ContractRejected {
		t.Fatalf("contract status = %s, want rejected", got.Status)
	}
	mirrored, _ := f.claims.Get(claim.ID, f.admin)
	if mirrored.Status != models.ClaimRejected {
		t.Fatalf("claim status = %s, want rejected", mirrored.Status)
	}
}

func TestReleasePaymentCompletesAndSettles(t *testing.T) {
	f := newFixture(t)
	claim := f.submit(t, "Dengue Fever", 45000)
	contract := f.deploy(t, claim)

	if _, _, err := f.contracts.Act(context.Background(), contract.ID, f.insurer, models.ContractApprove); err != nil {
		t.Fatalf("approve: %v", err)
	}
	got, _, err := f.contracts.Act(context.Background(), contract.ID, f.admin, models.ContractReleasePayment)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if got.Status != models.ContractCompleted {
		t.Fatalf("contract status = %s, want completed", got.Status)
	}
	mirrored, _ := f.claims.Get(claim.ID, f.admin)
	if mirrored.Status != models.ClaimSettled {
		t.Fatalf("claim status = %s, want settled", mirrored.Status)
	}

	trail, _ := f.audit.ListByClaim(claim.ID)
	var sawRelease bool
	for _, e := range trail {
		if e.Action == models.AuditPaymentReleased {
			sawRelease = true
		}
	}
	if !sawRelease {
		t.Fatalf("audit trail missing %s", models.AuditPaymentReleased)
	}
}

func TestContractActionRoleGates(t *testing.T) {
	f := newFixture(t)
	claim := f.submit(t, "Dengue Fever", 45000)
	contract := f.deploy(t, claim)

	for _, action := range []models.ContractAction{
		models.ContractApprove, models.ContractReject, models.ContractReleasePayment,
	} {
		for _, actor := range []*models.User{f.patient, f.hospital} {
			_, _, err := f.contracts.Act(context.Background(), contract.ID, actor, action)
			wantKind(t, err, apperr.KindAuthorization)
		}
	}
}

func TestRequestSettlementOpenToAllRoles(t *testing.T) {
	f := newFixture(t)
	claim := f.submit(t, "Dengue Fever", 45000)
	contract := f.deploy(t, claim)

	got, _, err := f.contracts.Act(context.Background(), contract.ID, f.hospital, models.ContractRequestSettlement)
	if err != nil {
		t.Fatalf("request_settlement by hospital: %v", err)
	}
	if got.Status != models.ContractPending {
		t.Fatalf("request_settlement changed status to %s", got.Status)
	}

	// admin and insurer are pinged
	for _, u := range []*models.User{f.admin, f.insurer} {
		notes, err := f.notes.ListForUser(u.ID)
		if err != nil {
			t.Fatalf("notifications: %v", err)
		}
		var saw bool
		for _, n := range notes {
			if strings.Contains(n.Message, "Settlement requested") {
				saw = true
			}
		}
		if !saw {
			t.Fatalf("%s missing settlement request notification", u.Role)
		}
	}
}

func TestUnknownContractAction(t *testing.T) {
	f := newFixture(t)
	claim := f.submit(t, "Dengue Fever", 45000)
	contract := f.deploy(t, claim)

	_, _, err := f.contracts.Act(context.Background(), contract.ID, f.admin, models.ContractAction("burn"))
	wantKind(t, err, apperr.KindValidation)
}

func TestContractVisibility(t *testing.T) {
	f := newFixture(t)
	claim := f.submit(t, "Dengue Fever", 45000)
	contract := f.deploy(t, claim)

	// the claim's patient sees the contract, a stranger does not
	if _, err := f.contracts.Get(contract.ID, f.patient); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	other := f.addUser(t, "other@test.in", models.RolePatient)
	_, err := f.contracts.Get(contract.ID, other)
	wantKind(t, err, apperr.KindNotFound)

	for _, u := range []*models.User{f.admin, f.insurer, f.hospital} {
		list, err := f.contracts.ListForRole(u)
		if err != nil {
			t.Fatalf("%s list: %v", u.Role, err)
		}
		if len(list) != 1 {
			t.Fatalf("%s sees %d contracts, want 1", u.Role, len(list))
		}
	}
	strangerList, err := f.contracts.ListForRole(other)
	if err != nil {
		t.Fatalf("stranger list: %v", err)
	}
	if len(strangerList) != 0 {
		t.Fatalf("stranger sees %d contracts, want 0", len(strangerList))
	}
}

func TestLedgerPassthroughs(t *testing.T) {
	f := newFixture(t)
	claim := f.submit(t, "Dengue Fever", 45000)
	contract := f.deploy(t, claim)

	verification, _, err := f.contracts.VerifyDeployment(context.Background(), contract.ID, f.admin)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !verification.Verified {
		t.Fatal("deployment not verified")
	}

	state, _, err := f.contracts.QueryState(context.Background(), contract.ID, f.admin)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Status != "active" && state.Status != "completed" {
		t.Fatalf("unexpected state %q", state.Status)
	}

	trail, _, err := f.contracts.AuditTrail(context.Background(), contract.ID, f.admin)
	if err != nil {
		t.Fatalf("trail: %v", err)
	}
	if len(trail) == 0 {
		t.Fatal("empty on-chain trail")
	}
}
