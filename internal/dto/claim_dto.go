package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/bharatcare/claims-backend/internal/models"
)

type ClaimActionRequest struct {
	Action models.ClaimAction `json:"action"`
}

type DocumentMeta struct {
	ID        uuid.UUID `json:"id"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}

type ClaimResponse struct {
	ID               uuid.UUID               `json:"id"`
	PatientID        uuid.UUID               `json:"patient_id"`
	Diagnosis        string                  `json:"diagnosis"`
	Amount           float64                 `json:"amount"`
	Notes            string                  `json:"notes,omitempty"`
	Status           models.ClaimStatus      `json:"status"`
	HospitalVerified bool                    `json:"hospital_verified"`
	InsurerDecision  *models.InsurerDecision `json:"insurer_decision,omitempty"`
	Documents        []DocumentMeta          `json:"documents"`
	Version          int64                   `json:"version"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

func NewClaimResponse(c *models.Claim) ClaimResponse {
	docs := make([]DocumentMeta, 0, len(c.Documents))
	for _, d := range c.Documents {
		docs = append(docs, DocumentMeta{
			ID:        d.ID,
			Filename:  d.Filename,
			MimeType:  d.MimeType,
			CreatedAt: d.CreatedAt,
		})
	}
	return ClaimResponse{
		ID:               c.ID,
		PatientID:        c.PatientID,
		Diagnosis:        c.Diagnosis,
		Amount:           c.Amount,
		Notes:            c.Notes,
		Status:           c.Status,
		HospitalVerified: c.HospitalVerified,
		InsurerDecision:  c.InsurerDecision,
		Documents:        docs,
		Version:          c.Version,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func NewClaimListResponse(claims []models.Claim) []ClaimResponse {
	out := make([]ClaimResponse, 0, len(claims))
	for i := range claims {
		out = append(out, NewClaimResponse(&claims[i]))
	}
	return out
}
