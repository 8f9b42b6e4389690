package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/bharatcare/claims-backend/internal/middleware"
	"github.com/bharatcare/claims-backend/internal/services"
)

type DocumentHandler struct {
	documentService *services.DocumentService
}

func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Get streams a document's raw bytes with its declared MIME type for
// inline display.
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid document ID")
	}
	doc, err := h.documentService.Fetch(id, user)
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, doc.MimeType)
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+doc.Filename+`"`)
	return c.Send(doc.Data)
}
