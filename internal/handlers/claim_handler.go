package handlers

import (
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/bharatcare/claims-backend/internal/dto"
	"github.com/bharatcare/claims-backend/internal/middleware"
	"github.com/bharatcare/claims-backend/internal/services"
)

type ClaimHandler struct {
	claimService *services.ClaimService
}

func NewClaimHandler(claimService *services.ClaimService) *ClaimHandler {
	return &ClaimHandler{claimService: claimService}
}

// Create accepts a multipart form: diagnosis, amount, notes, files[].
func (h *ClaimHandler) Create(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(c.FormValue("amount")), 64)
	if err != nil {
		return badRequest(c, "amount must be a number")
	}

	params := services.CreateClaimParams{
		Diagnosis: c.FormValue("diagnosis"),
		Amount:    amount,
		Notes:     c.FormValue("notes"),
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, fh := range form.File["files"] {
			f, err := fh.Open()
			if err != nil {
				return badRequest(c, "could not read uploaded file "+fh.Filename)
			}
			data := make([]byte, fh.Size)
			if _, err := io.ReadFull(f, data); err != nil {
				f.Close()
				return badRequest(c, "could not read uploaded file "+fh.Filename)
			}
			f.Close()
			params.Documents = append(params.Documents, services.DocumentUpload{
				Filename: fh.Filename,
				MimeType: fh.Header.Get("Content-Type"),
				Data:     data,
			})
		}
	}

	claim, err := h.claimService.Create(c.Context(), user, params)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewClaimResponse(claim))
}

func (h *ClaimHandler) List(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	claims, err := h.claimService.ListForRole(user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NewClaimListResponse(claims))
}

func (h *ClaimHandler) Get(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid claim ID")
	}
	claim, err := h.claimService.Get(id, user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NewClaimResponse(claim))
}

func (h *ClaimHandler) Action(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid claim ID")
	}
	var req dto.ClaimActionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	claim, err := h.claimService.Transition(id, user, req.Action)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NewClaimResponse(claim))
}
