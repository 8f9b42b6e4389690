package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bharatcare/claims-backend/internal/apperr"
	"github.com/bharatcare/claims-backend/internal/models"
	"github.com/bharatcare/claims-backend/internal/store"
)

// shortRef abbreviates an id for user-facing messages.
func shortRef(id uuid.UUID) string {
	return id.String()[:6]
}

// CreateClaimParams are the inputs for a new claim submission.
type CreateClaimParams struct {
	Diagnosis string
	Amount    float64
	Notes     string
	Documents []DocumentUpload
}

// ClaimService owns the claim lifecycle: submission with duplicate
// detection, role-scoped listing, and the transition state machine. The
// Claim holds canonical status; smart-contract actions reconcile into it
// through the Mirror* methods.
type ClaimService struct {
	store         store.Store
	documents     *DocumentService
	notifications *NotificationService
	audit         *AuditService
	dupWindow     time.Duration
	now           func() time.Time
}

func NewClaimService(st store.Store, docs *DocumentService, notes *NotificationService, audit *AuditService, dupWindow time.Duration) *ClaimService {
	return &ClaimService{
		store:         st,
		documents:     docs,
		notifications: notes,
		audit:         audit,
		dupWindow:     dupWindow,
		now:           time.Now,
	}
}

// SetClock overrides the claim clock; tests use it to age claims past the
// duplicate window.
func (s *ClaimService) SetClock(now func() time.Time) {
	s.now = now
}

// Create submits a new claim for the acting patient.
func (s *ClaimService) Create(ctx context.Context, patient *models.User, params CreateClaimParams) (*models.Claim, error) {
	if patient.Role != models.RolePatient {
		return nil, apperr.Authorization("only patients can submit claims")
	}
	diagnosis := strings.TrimSpace(params.Diagnosis)
	if diagnosis == "" {
		return nil, apperr.Validation("diagnosis is required")
	}
	if params.Amount <= 0 {
		return nil, apperr.Validation("amount must be a positive number")
	}

	if err := s.checkDuplicate(patient.ID, diagnosis); err != nil {
		return nil, err
	}

	now := s.now()
	claim := &models.Claim{
		ID:               uuid.New(),
		PatientID:        patient.ID,
		Diagnosis:        diagnosis,
		Amount:           params.Amount,
		Notes:            params.Notes,
		Status:           models.ClaimSubmitted,
		HospitalVerified: false,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.CreateClaim(claim); err != nil {
		return nil, err
	}

	for _, up := range params.Documents {
		doc, err := s.documents.Attach(ctx, claim.ID, patient.ID, up)
		if err != nil {
			return nil, err
		}
		claim.Documents = append(claim.Documents, *doc)
	}

	s.notifications.Notify(patient.ID, fmt.Sprintf("Claim %s submitted.", shortRef(claim.ID)))
	s.notifications.Broadcast(
		fmt.Sprintf("New claim submitted: %s.", shortRef(claim.ID)),
		models.RoleHospital, models.RoleInsurer, models.RoleAdmin,
	)
	s.audit.Record(patient.ID, models.AuditClaimSubmitted, &claim.ID, map[string]interface{}{
		"diagnosis": diagnosis,
		"amount":    params.Amount,
	})
	return claim, nil
}

func (s *ClaimService) checkDuplicate(patientID uuid.UUID, diagnosis string) error {
	claims, err := s.store.ListClaimsByPatient(patientID)
	if err != nil {
		return err
	}
	needle := strings.ToLower(diagnosis)
	cutoff := s.now().Add(-s.dupWindow)
	for _, c := range claims {
		if strings.ToLower(strings.TrimSpace(c.Diagnosis)) == needle && c.CreatedAt.After(cutoff) {
			return apperr.Duplicate("possible duplicate claim detected within %d days for same diagnosis",
				int(s.dupWindow.Hours()/24))
		}
	}
	return nil
}

// Get returns a claim; patients can only read their own.
func (s *ClaimService) Get(id uuid.UUID, viewer *models.User) (*models.Claim, error) {
	claim, err := s.store.GetClaim(id)
	if err != nil {
		return nil, err
	}
	if viewer.Role == models.RolePatient && claim.PatientID != viewer.ID {
		return nil, apperr.NotFound("claim not found")
	}
	return claim, nil
}

// ListForRole returns claims scoped to what the role works on, newest
// first. Admin sees all; insurer sees the review pipeline; hospital sees
// claims still awaiting its verification; patients see their own.
func (s *ClaimService) ListForRole(user *models.User) ([]models.Claim, error) {
	if user.Role == models.RolePatient {
		return s.store.ListClaimsByPatient(user.ID)
	}
	all, err := s.store.ListClaims()
	if err != nil {
		return nil, err
	}
	switch user.Role {
	case models.RoleAdmin:
		return all, nil
	case models.RoleInsurer:
		out := make([]models.Claim, 0, len(all))
		for _, c := range all {
			if c.Status == models.ClaimSubmitted || c.Status == models.ClaimUnderReview {
				out = append(out, c)
			}
		}
		return out, nil
	case models.RoleHospital:
		out := make([]models.Claim, 0, len(all))
		for _, c := range all {
			if c.Status == models.ClaimSubmitted ||
				(c.Status == models.ClaimUnderReview && !c.HospitalVerified) {
				out = append(out, c)
			}
		}
		return out, nil
	}
	return nil, apperr.Authorization("unknown role %q", user.Role)
}

// Transition applies a role-gated lifecycle action. rejected and settled
// are terminal.
func (s *ClaimService) Transition(claimID uuid.UUID, actor *models.User, action models.ClaimAction) (*models.Claim, error) {
	claim, err := s.store.GetClaim(claimID)
	if err != nil {
		return nil, err
	}

	var auditTag, message string
	switch action {
	case models.ActionVerify:
		if actor.Role != models.RoleHospital {
			return nil, apperr.Authorization("only hospital can verify")
		}
		if claim.Status.Terminal() {
			return nil, apperr.Precondition("claim is %s and cannot change", claim.Status)
		}
		claim.HospitalVerified = true
		claim.Status = models.ClaimUnderReview
		auditTag = models.AuditClaimVerified
		message = fmt.Sprintf("Claim %s verified by hospital.", shortRef(claim.ID))

	case models.ActionSendUnderReview:
		if actor.Role != models.RoleInsurer {
			return nil, apperr.Authorization("only insurer can mark under review")
		}
		if claim.Status.Terminal() {
			return nil, apperr.Precondition("claim is %s and cannot change", claim.Status)
		}
		claim.Status = models.ClaimUnderReview
		auditTag = models.AuditClaimUnderReview
		message = fmt.Sprintf("Claim %s is under review.", shortRef(claim.ID))

	case models.ActionApprove:
		if actor.Role != models.RoleInsurer {
			return nil, apperr.Authorization("only insurer can approve")
		}
		if claim.Status.Terminal() {
			return nil, apperr.Precondition("claim is %s and cannot change", claim.Status)
		}
		if !claim.HospitalVerified {
			return nil, apperr.Precondition("hospital verification required before approval")
		}
		claim.Status = models.ClaimApproved
		decision := models.DecisionApproved
		claim.InsurerDecision = &decision
		auditTag = models.AuditClaimApproved
		message = fmt.Sprintf("Claim %s approved.", shortRef(claim.ID))

	case models.ActionReject:
		if actor.Role != models.RoleInsurer {
			return nil, apperr.Authorization("only insurer can reject")
		}
		if claim.Status.Terminal() {
			return nil, apperr.Precondition("claim is %s and cannot change", claim.Status)
		}
		claim.Status = models.ClaimRejected
		decision := models.DecisionRejected
		claim.InsurerDecision = &decision
		auditTag = models.AuditClaimRejected
		message = fmt.Sprintf("Claim %s rejected.", shortRef(claim.ID))

	case models.ActionSettle:
		if actor.Role != models.RoleAdmin {
			return nil, apperr.Authorization("only admin can settle")
		}
		if claim.Status != models.ClaimApproved {
			return nil, apperr.Precondition("only approved claims can be settled")
		}
		claim.Status = models.ClaimSettled
		auditTag = models.AuditClaimSettled
		message = fmt.Sprintf("Claim %s settled.", shortRef(claim.ID))

	default:
		return nil, apperr.Validation("unknown action %q", action)
	}

	claim.UpdatedAt = s.now()
	if err := s.store.UpdateClaim(claim, claim.Version); err != nil {
		return nil, err
	}
	s.audit.Record(actor.ID, auditTag, &claim.ID, nil)
	s.notifications.Notify(claim.PatientID, message)
	return claim, nil
}

// MirrorContractApproval marks the claim approved following a contract
// approval. Already approved or settled claims are left untouched so the
// contract path can never regress claim state.
func (s *ClaimService) MirrorContractApproval(claimID uuid.UUID) error {
	claim, err := s.store.GetClaim(claimID)
	if err != nil {
		return err
	}
	if claim.Status == models.ClaimApproved || claim.Status == models.ClaimSettled {
		return nil
	}
	claim.Status = models.ClaimApproved
	decision := models.DecisionApproved
	claim.InsurerDecision = &decision
	claim.UpdatedAt = s.now()
	if err := s.store.UpdateClaim(claim, claim.Version); err != nil {
		return err
	}
	s.notifications.Notify(claim.PatientID, fmt.Sprintf("Claim %s approved (contract).", shortRef(claim.ID)))
	return nil
}

// MirrorContractRejection forces the claim to rejected.
func (s *ClaimService) MirrorContractRejection(claimID uuid.UUID) error {
	claim, err := s.store.GetClaim(claimID)
	if err != nil {
		return err
	}
	claim.Status = models.ClaimRejected
	decision := models.DecisionRejected
	claim.InsurerDecision = &decision
	claim.UpdatedAt = s.now()
	if err := s.store.UpdateClaim(claim, claim.Version); err != nil {
		return err
	}
	s.notifications.Notify(claim.PatientID, fmt.Sprintf("Claim %s rejected (contract).", shortRef(claim.ID)))
	return nil
}

// MirrorContractSettlement marks the claim settled after a payment
// release; settled claims stay settled.
func (s *ClaimService) MirrorContractSettlement(claimID uuid.UUID) error {
	claim, err := s.store.GetClaim(claimID)
	if err != nil {
		return err
	}
	if claim.Status == models.ClaimSettled {
		return nil
	}
	claim.Status = models.ClaimSettled
	claim.UpdatedAt = s.now()
	if err := s.store.UpdateClaim(claim, claim.Version); err != nil {
		return err
	}
	s.notifications.Notify(claim.PatientID, fmt.Sprintf("Claim %s settled (payment released).", shortRef(claim.ID)))
	return nil
}
