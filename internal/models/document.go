package models

import (
	"time"

	"github.com/google/uuid"
)

// DocFile is a binary attachment owned by a claim. Bytes live in the
// primary store; a copy is mirrored to object storage best-effort.
type DocFile struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClaimID    uuid.UUID `gorm:"type:uuid;not null;index" json:"claim_id"`
	UploadedBy uuid.UUID `gorm:"type:uuid;not null" json:"uploaded_by"`
	Filename   string    `gorm:"not null;size:255" json:"filename"`
	MimeType   string    `gorm:"not null;size:100" json:"mime_type"`
	Data       []byte    `gorm:"type:bytea" json:"-"`
	StorageURL string    `gorm:"size:1000" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}
