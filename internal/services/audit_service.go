package services

import (
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/bharatcare/claims-backend/internal/models"
	"github.com/bharatcare/claims-backend/internal/store"
)

// AuditService writes the append-only compliance trail. Every mutating
// claim or contract operation records exactly one entry.
type AuditService struct {
	store store.Store
}

func NewAuditService(st store.Store) *AuditService {
	return &AuditService{store: st}
}

// Record appends an entry. Metadata marshal failures degrade to an empty
// payload rather than losing the entry.
func (s *AuditService) Record(actorID uuid.UUID, action string, claimID *uuid.UUID, metadata map[string]interface{}) {
	entry := &models.AuditLog{
		ActorID: actorID,
		Action:  action,
		ClaimID: claimID,
	}
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			entry.Metadata = datatypes.JSON(b)
		}
	}
	if err := s.store.AppendAudit(entry); err != nil {
		slog.Error("audit append failed", "action", action, "actor_id", actorID, "error", err)
	}
}

func (s *AuditService) List(limit int) ([]models.AuditLog, error) {
	return s.store.ListAudit(limit)
}

func (s *AuditService) ListByClaim(claimID uuid.UUID) ([]models.AuditLog, error) {
	return s.store.ListAuditByClaim(claimID)
}
