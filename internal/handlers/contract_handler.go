package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/bharatcare/claims-backend/internal/dto"
	"github.com/bharatcare/claims-backend/internal/middleware"
	"github.com/bharatcare/claims-backend/internal/services"
)

type ContractHandler struct {
	contractService *services.ContractService
}

func NewContractHandler(contractService *services.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

func (h *ContractHandler) Deploy(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.DeployContractRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	contract, deployment, err := h.contractService.Deploy(c.Context(), user, services.DeployContractParams{
		ClaimID:        req.ClaimID,
		PolicyID:       req.PolicyID,
		Amount:         req.Amount,
		InsurerWallet:  req.InsurerWallet,
		HospitalWallet: req.HospitalWallet,
		Date:           req.Date,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DeployContractResponse{
		Contract:   contract,
		Deployment: deployment,
	})
}

func (h *ContractHandler) List(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	contracts, err := h.contractService.ListForRole(user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(contracts)
}

func (h *ContractHandler) Get(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid contract ID")
	}
	contract, err := h.contractService.Get(id, user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(contract)
}

func (h *ContractHandler) Action(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid contract ID")
	}
	var req dto.ContractActionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	contract, execution, err := h.contractService.Act(c.Context(), id, user, req.Action)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.ContractActionResponse{Contract: contract, Transaction: execution})
}

func (h *ContractHandler) Verify(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid contract ID")
	}
	result, contract, err := h.contractService.VerifyDeployment(c.Context(), id, user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.ContractVerificationResponse{Contract: contract, Result: result})
}

func (h *ContractHandler) State(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid contract ID")
	}
	state, contract, err := h.contractService.QueryState(c.Context(), id, user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.ContractStateResponse{Contract: contract, State: state})
}

func (h *ContractHandler) AuditTrail(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid contract ID")
	}
	trail, contract, err := h.contractService.AuditTrail(c.Context(), id, user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.ContractTrailResponse{Contract: contract, Trail: trail})
}
