package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bharatcare/claims-backend/internal/apperr"
	"github.com/bharatcare/claims-backend/internal/models"
)

// GormStore is the Postgres-backed production store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s", msg)
	}
	return fmt.Errorf("store: %w", err)
}

// --- users ---

func (s *GormStore) CreateUser(u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	var existing models.User
	if err := s.db.Where("lower(email) = lower(?)", u.Email).First(&existing).Error; err == nil {
		return apperr.Duplicate("email already registered")
	}
	if err := s.db.Create(u).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *GormStore) GetUserByID(id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "user not found")
	}
	return &u, nil
}

func (s *GormStore) GetUserByEmail(email string) (*models.User, error) {
	var u models.User
	if err := s.db.Where("lower(email) = lower(?)", email).First(&u).Error; err != nil {
		return nil, notFoundOr(err, "user not found")
	}
	return &u, nil
}

func (s *GormStore) ListUsersByRole(roles ...models.Role) ([]models.User, error) {
	var users []models.User
	q := s.db.Order("created_at ASC")
	if len(roles) > 0 {
		q = q.Where("role IN ?", roles)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// --- claims ---

func (s *GormStore) CreateClaim(c *models.Claim) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Version == 0 {
		c.Version = 1
	}
	if err := s.db.Omit("Documents").Create(c).Error; err != nil {
		return fmt.Errorf("create claim: %w", err)
	}
	return nil
}

func (s *GormStore) GetClaim(id uuid.UUID) (*models.Claim, error) {
	var c models.Claim
	err := s.db.Preload("Documents", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "claim_id", "uploaded_by", "filename", "mime_type", "created_at").
			Order("created_at ASC")
	}).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, "claim not found")
	}
	return &c, nil
}

func (s *GormStore) UpdateClaim(c *models.Claim, expectedVersion int64) error {
	c.Version = expectedVersion + 1
	res := s.db.Model(&models.Claim{}).
		Where("id = ? AND version = ?", c.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":            c.Status,
			"hospital_verified": c.HospitalVerified,
			"insurer_decision":  c.InsurerDecision,
			"notes":             c.Notes,
			"version":           c.Version,
			"updated_at":        c.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update claim: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		s.db.Model(&models.Claim{}).Where("id = ?", c.ID).Count(&count)
		if count == 0 {
			return apperr.NotFound("claim not found")
		}
		return apperr.Conflict("claim was modified concurrently")
	}
	return nil
}

func (s *GormStore) ListClaims() ([]models.Claim, error) {
	var claims []models.Claim
	err := s.db.Preload("Documents", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "claim_id", "uploaded_by", "filename", "mime_type", "created_at").
			Order("created_at ASC")
	}).Order("created_at DESC").Find(&claims).Error
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	return claims, nil
}

func (s *GormStore) ListClaimsByPatient(patientID uuid.UUID) ([]models.Claim, error) {
	var claims []models.Claim
	err := s.db.Preload("Documents", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "claim_id", "uploaded_by", "filename", "mime_type", "created_at").
			Order("created_at ASC")
	}).Where("patient_id = ?", patientID).Order("created_at DESC").Find(&claims).Error
	if err != nil {
		return nil, fmt.Errorf("list claims by patient: %w", err)
	}
	return claims, nil
}

// --- documents ---

func (s *GormStore) CreateDocument(d *models.DocFile) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if err := s.db.Create(d).Error; err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (s *GormStore) GetDocument(id uuid.UUID) (*models.DocFile, error) {
	var d models.DocFile
	if err := s.db.First(&d, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "document not found")
	}
	return &d, nil
}

// --- notifications ---

func (s *GormStore) CreateNotification(n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if err := s.db.Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (s *GormStore) ListNotifications(userID uuid.UUID) ([]models.Notification, error) {
	var out []models.Notification
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (s *GormStore) MarkAllNotificationsRead(userID uuid.UUID) (int64, error) {
	res := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = false", userID).
		Update("read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark notifications read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// --- audit ---

func (s *GormStore) AppendAudit(a *models.AuditLog) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if err := s.db.Create(a).Error; err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

func (s *GormStore) ListAudit(limit int) ([]models.AuditLog, error) {
	var out []models.AuditLog
	q := s.db.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	return out, nil
}

func (s *GormStore) ListAuditByClaim(claimID uuid.UUID) ([]models.AuditLog, error) {
	var out []models.AuditLog
	err := s.db.Where("claim_id = ?", claimID).Order("created_at ASC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list audit by claim: %w", err)
	}
	return out, nil
}

// --- smart contracts ---

func (s *GormStore) CreateContract(sc *models.SmartContract) error {
	if sc.ID == uuid.Nil {
		sc.ID = uuid.New()
	}
	if sc.Version == 0 {
		sc.Version = 1
	}
	if err := s.db.Create(sc).Error; err != nil {
		return fmt.Errorf("create contract: %w", err)
	}
	return nil
}

func (s *GormStore) GetContract(id uuid.UUID) (*models.SmartContract, error) {
	var sc models.SmartContract
	if err := s.db.First(&sc, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "contract not found")
	}
	return &sc, nil
}

func (s *GormStore) GetContractByClaim(claimID uuid.UUID) (*models.SmartContract, error) {
	var sc models.SmartContract
	if err := s.db.First(&sc, "claim_id = ?", claimID).Error; err != nil {
		return nil, notFoundOr(err, "contract not found")
	}
	return &sc, nil
}

func (s *GormStore) UpdateContract(sc *models.SmartContract, expectedVersion int64) error {
	sc.Version = expectedVersion + 1
	res := s.db.Model(&models.SmartContract{}).
		Where("id = ? AND version = ?", sc.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":     sc.Status,
			"hash":       sc.Hash,
			"last_tx_id": sc.LastTxID,
			"version":    sc.Version,
			"updated_at": sc.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update contract: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		s.db.Model(&models.SmartContract{}).Where("id = ?", sc.ID).Count(&count)
		if count == 0 {
			return apperr.NotFound("contract not found")
		}
		return apperr.Conflict("contract was modified concurrently")
	}
	return nil
}

func (s *GormStore) ListContracts() ([]models.SmartContract, error) {
	var out []models.SmartContract
	if err := s.db.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	return out, nil
}

// --- refresh tokens ---

func (s *GormStore) CreateRefreshToken(t *models.RefreshToken) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if err := s.db.Create(t).Error; err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

func (s *GormStore) GetRefreshTokenByHash(hash string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	if err := s.db.First(&t, "token_hash = ?", hash).Error; err != nil {
		return nil, notFoundOr(err, "refresh token not found")
	}
	return &t, nil
}

func (s *GormStore) RevokeRefreshToken(id uuid.UUID) error {
	res := s.db.Model(&models.RefreshToken{}).Where("id = ?", id).Update("revoked", true)
	if res.Error != nil {
		return fmt.Errorf("revoke refresh token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("refresh token not found")
	}
	return nil
}

func (s *GormStore) RevokeRefreshTokenByHash(hash string) error {
	res := s.db.Model(&models.RefreshToken{}).Where("token_hash = ?", hash).Update("revoked", true)
	if res.Error != nil {
		return fmt.Errorf("revoke refresh token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("refresh token not found")
	}
	return nil
}

var _ Store = (*GormStore)(nil)
