package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/movementpass/public-api/pkg/util"
)

const applicantKey = "auth_applicant_id"

// Middleware validates bearer tokens on protected routes.
type Middleware struct {
	tokens Authenticator
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens Authenticator) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle enforces authentication and stores the caller's applicant id.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	applicantID, err := m.tokens.Authenticate(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(applicantKey, applicantID)
	return c.Next()
}

// ApplicantIDFromContext retrieves the authenticated applicant id.
func ApplicantIDFromContext(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals(applicantKey).(string)
	return id, ok && id != ""
}
