package services

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bharatcare/claims-backend/internal/apperr"
	"github.com/bharatcare/claims-backend/internal/models"
	"github.com/bharatcare/claims-backend/internal/objstore"
	"github.com/bharatcare/claims-backend/internal/store"
)

const objectUploadTimeout = 10 * time.Second

// DocumentUpload is a file attached to a claim at submission time.
type DocumentUpload struct {
	Filename string
	MimeType string
	Data     []byte
}

// DocumentService persists claim attachments and mirrors them to object
// storage. The mirror is best-effort: claim creation never fails because
// the object store is down.
type DocumentService struct {
	store   store.Store
	objects objstore.ObjectStore
}

func NewDocumentService(st store.Store, objects objstore.ObjectStore) *DocumentService {
	return &DocumentService{store: st, objects: objects}
}

// Attach stores a document for a claim and returns its id.
func (s *DocumentService) Attach(ctx context.Context, claimID, uploadedBy uuid.UUID, up DocumentUpload) (*models.DocFile, error) {
	if up.Filename == "" {
		return nil, apperr.Validation("document filename is required")
	}
	mime := up.MimeType
	if mime == "" {
		mime = "application/octet-stream"
	}

	doc := &models.DocFile{
		ID:         uuid.New(),
		ClaimID:    claimID,
		UploadedBy: uploadedBy,
		Filename:   up.Filename,
		MimeType:   mime,
		Data:       up.Data,
	}

	upCtx, cancel := context.WithTimeout(ctx, objectUploadTimeout)
	defer cancel()
	key := claimID.String() + "/" + doc.ID.String() + "/" + up.Filename
	url, err := s.objects.Put(upCtx, key, bytes.NewReader(up.Data), int64(len(up.Data)), mime)
	if err != nil {
		slog.Warn("document mirror upload failed", "claim_id", claimID, "filename", up.Filename, "error", err)
	} else {
		doc.StorageURL = url
	}

	if err := s.store.CreateDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Fetch returns a document for inline display. Access is limited to the
// claim's patient, the uploader, and staff roles.
func (s *DocumentService) Fetch(id uuid.UUID, viewer *models.User) (*models.DocFile, error) {
	doc, err := s.store.GetDocument(id)
	if err != nil {
		return nil, err
	}
	if !s.canView(doc, viewer) {
		return nil, apperr.Authorization("not allowed to view this document")
	}
	return doc, nil
}

func (s *DocumentService) canView(doc *models.DocFile, viewer *models.User) bool {
	if viewer == nil {
		return false
	}
	switch viewer.Role {
	case models.RoleHospital, models.RoleInsurer, models.RoleAdmin:
		return true
	}
	if doc.UploadedBy == viewer.ID {
		return true
	}
	claim, err := s.store.GetClaim(doc.ClaimID)
	if err != nil {
		return false
	}
	return claim.PatientID == viewer.ID
}
