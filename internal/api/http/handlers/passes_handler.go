package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/movementpass/public-api/internal/api/dto"
	"github.com/movementpass/public-api/internal/auth"
	"github.com/movementpass/public-api/internal/domain"
	"github.com/movementpass/public-api/internal/pagination"
	"github.com/movementpass/public-api/internal/service"
	apperrors "github.com/movementpass/public-api/pkg/util"
)

const (
	listCacheControl    = "private, max-age=180"
	pendingCacheControl = "private, max-age=180"
	settledCacheControl = "private, max-age=2592000"
)

// PassesHandler manages the caller's passes.
type PassesHandler struct {
	apply *service.ApplyHandler
	view  *service.ViewPassHandler
	list  *service.ViewPassesHandler
}

// NewPassesHandler constructs handler.
func NewPassesHandler(apply *service.ApplyHandler, view *service.ViewPassHandler, list *service.ViewPassesHandler) *PassesHandler {
	return &PassesHandler{apply: apply, view: view, list: list}
}

// Apply POST /passes.
func (h *PassesHandler) Apply(c *fiber.Ctx) error {
	callerID, ok := auth.ApplicantIDFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("applicant required")
	}
	var req dto.ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	res, err := h.apply.Handle(c.UserContext(), callerID, req)
	if err != nil {
		return err
	}
	c.Location("/passes/" + res.ID)
	return c.Status(http.StatusCreated).JSON(res)
}

// List GET /passes?id=&endAt=.
func (h *PassesHandler) List(c *fiber.Ctx) error {
	callerID, ok := auth.ApplicantIDFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("applicant required")
	}
	var cursor pagination.Cursor
	if err := c.QueryParser(&cursor); err != nil {
		return apperrors.NewBadRequest("invalid query")
	}

	res, err := h.list.Handle(c.UserContext(), callerID, &cursor)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderCacheControl, listCacheControl)
	return c.JSON(res)
}

// Get GET /passes/:id.
func (h *PassesHandler) Get(c *fiber.Ctx) error {
	callerID, ok := auth.ApplicantIDFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("applicant required")
	}
	id := c.Params("id")

	res, err := h.view.Handle(c.UserContext(), callerID, id)
	if err != nil {
		return err
	}
	if res == nil {
		return apperrors.NewNotFound("pass", map[string]any{"id": id})
	}

	switch domain.PassStatus(res.Status) {
	case domain.PassStatusApproved, domain.PassStatusRejected:
		c.Set(fiber.HeaderCacheControl, settledCacheControl)
	default:
		c.Set(fiber.HeaderCacheControl, pendingCacheControl)
	}
	return c.JSON(res)
}
