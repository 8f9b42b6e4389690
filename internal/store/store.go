package store

import (
	"github.com/google/uuid"

	"github.com/bharatcare/claims-backend/internal/models"
)

// Store defines persistence for the claims platform. Implementations must
// reject Claim/SmartContract updates whose expected version is stale so
// concurrent writers cannot silently overwrite each other.
type Store interface {
	// users
	CreateUser(u *models.User) error
	GetUserByID(id uuid.UUID) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	ListUsersByRole(roles ...models.Role) ([]models.User, error)

	// claims (listings are newest-first)
	CreateClaim(c *models.Claim) error
	GetClaim(id uuid.UUID) (*models.Claim, error)
	UpdateClaim(c *models.Claim, expectedVersion int64) error
	ListClaims() ([]models.Claim, error)
	ListClaimsByPatient(patientID uuid.UUID) ([]models.Claim, error)

	// documents
	CreateDocument(d *models.DocFile) error
	GetDocument(id uuid.UUID) (*models.DocFile, error)

	// notifications
	CreateNotification(n *models.Notification) error
	ListNotifications(userID uuid.UUID) ([]models.Notification, error)
	MarkAllNotificationsRead(userID uuid.UUID) (int64, error)

	// audit (append-only)
	AppendAudit(a *models.AuditLog) error
	ListAudit(limit int) ([]models.AuditLog, error)
	ListAuditByClaim(claimID uuid.UUID) ([]models.AuditLog, error)

	// smart contracts (never deleted)
	CreateContract(sc *models.SmartContract) error
	GetContract(id uuid.UUID) (*models.SmartContract, error)
	GetContractByClaim(claimID uuid.UUID) (*models.SmartContract, error)
	UpdateContract(sc *models.SmartContract, expectedVersion int64) error
	ListContracts() ([]models.SmartContract, error)

	// refresh tokens
	CreateRefreshToken(t *models.RefreshToken) error
	GetRefreshTokenByHash(hash string) (*models.RefreshToken, error)
	RevokeRefreshToken(id uuid.UUID) error
	RevokeRefreshTokenByHash(hash string) error
}
