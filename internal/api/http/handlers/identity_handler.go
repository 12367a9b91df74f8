package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/movementpass/public-api/internal/api/dto"
	"github.com/movementpass/public-api/internal/service"
	apperrors "github.com/movementpass/public-api/pkg/util"
)

// IdentityHandler exposes applicant registration and login.
type IdentityHandler struct {
	register *service.RegisterHandler
	login    *service.LoginHandler
}

// NewIdentityHandler constructs handler.
func NewIdentityHandler(register *service.RegisterHandler, login *service.LoginHandler) *IdentityHandler {
	return &IdentityHandler{register: register, login: login}
}

// Register handles POST /identity/register.
func (h *IdentityHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	res, err := h.register.Handle(c.UserContext(), req)
	if err != nil {
		return err
	}
	if res == nil {
		return apperrors.NewBadRequest("Mobile phone is already registered!")
	}
	return c.Status(http.StatusCreated).JSON(res)
}

// Login handles POST /identity/login.
func (h *IdentityHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	res, err := h.login.Handle(c.UserContext(), req)
	if err != nil {
		return err
	}
	if res == nil {
		return apperrors.NewBadRequest("Invalid credential!")
	}
	return c.JSON(res)
}
