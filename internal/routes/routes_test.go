package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bharatcare/claims-backend/internal/config"
	"github.com/bharatcare/claims-backend/internal/database"
	"github.com/bharatcare/claims-backend/internal/dto"
	"github.com/bharatcare/claims-backend/internal/handlers"
	"github.com/bharatcare/claims-backend/internal/ledger"
	"github.com/bharatcare/claims-backend/internal/models"
	"github.com/bharatcare/claims-backend/internal/objstore"
	"github.com/bharatcare/claims-backend/internal/services"
	"github.com/bharatcare/claims-backend/internal/store"
)

const testWallet = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 24 * time.Hour,
		DuplicateWindow:  30 * 24 * time.Hour,
		CORSOrigins:      "*",
	}

	st := store.NewMemoryStore()
	if err := database.SeedDemoUsers(st); err != nil {
		t.Fatalf("seed: %v", err)
	}

	audit := services.NewAuditService(st)
	notes := services.NewNotificationService(st)
	docs := services.NewDocumentService(st, objstore.Disabled{})
	claims := services.NewClaimService(st, docs, notes, audit, cfg.DuplicateWindow)
	contracts := services.NewContractService(st, ledger.NewInstantSimulator(), claims, notes, audit)
	auth := services.NewAuthService(st, cfg)
	analytics := services.NewAnalyticsService(st)

	app := fiber.New()
	Setup(app, cfg, st, Handlers{
		Auth:          handlers.NewAuthHandler(auth),
		Health:        handlers.NewHealthHandler("memory", nil),
		Claims:        handlers.NewClaimHandler(claims),
		Documents:     handlers.NewDocumentHandler(docs),
		Contracts:     handlers.NewContractHandler(contracts),
		Notifications: handlers.NewNotificationHandler(notes),
		Audit:         handlers.NewAuditHandler(audit),
		Analytics:     handlers.NewAnalyticsHandler(analytics),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func login(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{
		Email:    email,
		Password: "password",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d", email, resp.StatusCode)
	}
	auth := decode[dto.AuthResponse](t, resp)
	if auth.AccessToken == "" {
		t.Fatalf("login %s: empty access token", email)
	}
	return auth.AccessToken
}

func submitClaim(t *testing.T, app *fiber.App, token, diagnosis string, amount float64) dto.ClaimResponse {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("diagnosis", diagnosis); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := w.WriteField("amount", fmt.Sprintf("%.2f", amount)); err != nil {
		t.Fatalf("write field: %v", err)
	}
	fw, err := w.CreateFormFile("files", "discharge-summary.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("%PDF-1.4 test")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/claims", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("submit claim: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("submit claim: status %d body %s", resp.StatusCode, body)
	}
	return decode[dto.ClaimResponse](t, resp)
}

func claimAction(t *testing.T, app *fiber.App, token string, claimID string, action models.ClaimAction) (*http.Response, dto.ClaimResponse) {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/claims/"+claimID+"/actions", token, dto.ClaimActionRequest{Action: action})
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("action %s: status %d body %s", action, resp.StatusCode, body)
	}
	return resp, decode[dto.ClaimResponse](t, resp)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	resp := doJSON(t, app, http.MethodGet, "/api/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health: status %d", resp.StatusCode)
	}
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	app := newTestApp(t)
	for _, path := range []string{"/api/claims", "/api/notifications", "/api/contracts"} {
		resp := doJSON(t, app, http.MethodGet, path, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("GET %s without token: status %d, want 401", path, resp.StatusCode)
		}
	}
}

func TestClaimLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)
	patient := login(t, app, "patient@example.com")
	hospital := login(t, app, "hospital@example.com")
	insurer := login(t, app, "insurer@example.com")
	admin := login(t, app, "admin@example.com")

	claim := submitClaim(t, app, patient, "Dengue Fever", 45000)
	if claim.Status != models.ClaimSubmitted {
		t.Fatalf("status = %s, want submitted", claim.Status)
	}
	if len(claim.Documents) != 1 {
		t.Fatalf("documents = %d, want 1", len(claim.Documents))
	}

	// staff cannot submit claims
	resp := doJSON(t, app, http.MethodPost, "/api/claims", hospital, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("hospital claim submit: status %d, want 403", resp.StatusCode)
	}

	id := claim.ID.String()
	_, got := claimAction(t, app, hospital, id, models.ActionVerify)
	if got.Status != models.ClaimUnderReview || !got.HospitalVerified {
		t.Fatalf("after verify: %+v", got)
	}
	_, got = claimAction(t, app, insurer, id, models.ActionApprove)
	if got.Status != models.ClaimApproved {
		t.Fatalf("after approve: status %s", got.Status)
	}
	_, got = claimAction(t, app, admin, id, models.ActionSettle)
	if got.Status != models.ClaimSettled {
		t.Fatalf("after settle: status %s", got.Status)
	}

	// settle by the insurer on a fresh claim is forbidden
	second := submitClaim(t, app, patient, "Fracture", 12000)
	resp = doJSON(t, app, http.MethodPost, "/api/claims/"+second.ID.String()+"/actions", insurer, dto.ClaimActionRequest{Action: models.ActionSettle})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("insurer settle: status %d, want 403", resp.StatusCode)
	}

	// approving an unverified claim surfaces as 422
	resp = doJSON(t, app, http.MethodPost, "/api/claims/"+second.ID.String()+"/actions", insurer, dto.ClaimActionRequest{Action: models.ActionApprove})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("approve unverified: status %d, want 422", resp.StatusCode)
	}

	// the patient sees the outcome and the notifications
	resp = doJSON(t, app, http.MethodGet, "/api/claims/"+id, patient, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get claim: status %d", resp.StatusCode)
	}
	final := decode[dto.ClaimResponse](t, resp)
	if final.Status != models.ClaimSettled {
		t.Fatalf("final status = %s, want settled", final.Status)
	}

	resp = doJSON(t, app, http.MethodGet, "/api/notifications", patient, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("notifications: status %d", resp.StatusCode)
	}
	notes := decode[[]models.Notification](t, resp)
	if len(notes) < 4 {
		t.Fatalf("patient has %d notifications, want at least 4", len(notes))
	}
}

func TestDuplicateClaimOverHTTP(t *testing.T) {
	app := newTestApp(t)
	patient := login(t, app, "patient@example.com")
	submitClaim(t, app, patient, "Dengue Fever", 45000)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("diagnosis", "dengue fever")
	w.WriteField("amount", "30000")
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/claims", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+patient)
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate submit: status %d, want 409", resp.StatusCode)
	}
}

func TestContractFlowOverHTTP(t *testing.T) {
	app := newTestApp(t)
	patient := login(t, app, "patient@example.com")
	insurer := login(t, app, "insurer@example.com")
	admin := login(t, app, "admin@example.com")

	claim := submitClaim(t, app, patient, "Dengue Fever", 45000)

	deployReq := dto.DeployContractRequest{
		ClaimID:        claim.ID,
		PolicyID:       "POL-2026-001",
		Amount:         45000,
		InsurerWallet:  testWallet,
		HospitalWallet: testWallet,
		Date:           time.Now(),
	}

	// patients cannot deploy
	resp := doJSON(t, app, http.MethodPost, "/api/contracts", patient, deployReq)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("patient deploy: status %d, want 403", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodPost, "/api/contracts", insurer, deployReq)
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("deploy: status %d body %s", resp.StatusCode, body)
	}
	deployed := decode[dto.DeployContractResponse](t, resp)
	if deployed.Contract.Status != models.ContractPending {
		t.Fatalf("contract status = %s, want pending", deployed.Contract.Status)
	}
	contractID := deployed.Contract.ID.String()

	// payment before activation is a 422
	resp = doJSON(t, app, http.MethodPost, "/api/contracts/"+contractID+"/actions", admin,
		dto.ContractActionRequest{Action: models.ContractReleasePayment})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("early release: status %d, want 422", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodPost, "/api/contracts/"+contractID+"/actions", insurer,
		dto.ContractActionRequest{Action: models.ContractApprove})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve: status %d", resp.StatusCode)
	}
	acted := decode[dto.ContractActionResponse](t, resp)
	if acted.Contract.Status != models.ContractActive {
		t.Fatalf("contract status = %s, want active", acted.Contract.Status)
	}

	resp = doJSON(t, app, http.MethodPost, "/api/contracts/"+contractID+"/actions", admin,
		dto.ContractActionRequest{Action: models.ContractReleasePayment})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("release: status %d", resp.StatusCode)
	}

	// the claim followed the contract to settled
	resp = doJSON(t, app, http.MethodGet, "/api/claims/"+claim.ID.String(), patient, nil)
	final := decode[dto.ClaimResponse](t, resp)
	if final.Status != models.ClaimSettled {
		t.Fatalf("claim status = %s, want settled", final.Status)
	}

	// a second contract for the same claim is rejected
	resp = doJSON(t, app, http.MethodPost, "/api/contracts", insurer, deployReq)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second deploy: status %d, want 409", resp.StatusCode)
	}
}

func TestAnalyticsAccessControl(t *testing.T) {
	app := newTestApp(t)
	patient := login(t, app, "patient@example.com")
	admin := login(t, app, "admin@example.com")

	resp := doJSON(t, app, http.MethodGet, "/api/analytics/kpis", patient, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("patient analytics: status %d, want 403", resp.StatusCode)
	}
	resp = doJSON(t, app, http.MethodGet, "/api/analytics/kpis", admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin analytics: status %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodGet, "/api/admin/audit", patient, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("patient admin audit: status %d, want 403", resp.StatusCode)
	}
	resp = doJSON(t, app, http.MethodGet, "/api/admin/audit", admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin audit: status %d", resp.StatusCode)
	}
}
