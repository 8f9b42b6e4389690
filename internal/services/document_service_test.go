package services

import (
	"context"
	"testing"

	"github.com/bharatcare/claims-backend/internal/apperr"
	"github.com/bharatcare/claims-backend/internal/models"
)

func TestAttachAndFetchDocument(t *testing.T) {
	f := newFixture(t)
	claim, err := f.claims.Create(context.Background(), f.patient, CreateClaimParams{
		Diagnosis: "Dengue Fever",
		Amount:    45000,
		Documents: []DocumentUpload{{
			Filename: "discharge-summary.pdf",
			MimeType: "application/pdf",
			Data:     []byte("%PDF-1.4 test"),
		}},
	})
	if err != nil {
		t.Fatalf("submit with document: %v", err)
	}
	if len(claim.Documents) != 1 {
		t.Fatalf("attached %d documents, want 1", len(claim.Documents))
	}

	docID := claim.Documents[0].ID
	doc, err := f.claims.documents.Fetch(docID, f.patient)
	if err != nil {
		t.Fatalf("owner fetch: %v", err)
	}
	if string(doc.Data) != "%PDF-1.4 test" {
		t.Fatalf("data = %q", doc.Data)
	}
	if doc.MimeType != "application/pdf" {
		t.Fatalf("mime = %q", doc.MimeType)
	}

	// staff can always look at claim documents
	for _, u := range []*models.User{f.hospital, f.insurer, f.admin} {
		if _, err := f.claims.documents.Fetch(docID, u); err != nil {
			t.Fatalf("%s fetch: %v", u.Role, err)
		}
	}

	// an unrelated patient cannot
	other := f.addUser(t, "other@test.in", models.RolePatient)
	_, err = f.claims.documents.Fetch(docID, other)
	wantKind(t, err, apperr.KindAuthorization)
}

func TestAttachRequiresFilename(t *testing.T) {
	f := newFixture(t)
	_, err := f.claims.Create(context.Background(), f.patient, CreateClaimParams{
		Diagnosis: "Dengue Fever",
		Amount:    45000,
		Documents: []DocumentUpload{{MimeType: "application/pdf", Data: []byte("x")}},
	})
	wantKind(t, err, apperr.KindValidation)
}

func TestClaimListingsCarryDocumentMetadataOnly(t *testing.T) {
	f := newFixture(t)
	claim, err := f.claims.Create(context.Background(), f.patient, CreateClaimParams{
		Diagnosis: "Dengue Fever",
		Amount:    45000,
		Documents: []DocumentUpload{{Filename: "scan.png", MimeType: "image/png", Data: []byte("pngdata")}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	got, err := f.claims.Get(claim.ID, f.patient)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Documents) != 1 {
		t.Fatalf("documents = %d, want 1", len(got.Documents))
	}
	if got.Documents[0].Data != nil {
		t.Fatal("claim read returned document bytes, want metadata only")
	}
	if got.Documents[0].Filename != "scan.png" {
		t.Fatalf("filename = %q", got.Documents[0].Filename)
	}
}
