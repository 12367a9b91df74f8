package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/movementpass/public-api/internal/api/dto"
	"github.com/movementpass/public-api/internal/clock"
	"github.com/movementpass/public-api/internal/domain"
	"github.com/movementpass/public-api/internal/repository"
	"github.com/movementpass/public-api/internal/validation"
)

// TokenIssuer signs access tokens for applicants.
type TokenIssuer interface {
	Generate(applicant *domain.Applicant) (*domain.JwtResult, error)
}

// RegisterHandler creates applicants.
type RegisterHandler struct {
	validator  *validation.Validator
	applicants repository.ApplicantRepository
	tokens     TokenIssuer
	clock      clock.Clock
}

// NewRegisterHandler builds the handler.
func NewRegisterHandler(v *validation.Validator, applicants repository.ApplicantRepository, tokens TokenIssuer, clk clock.Clock) *RegisterHandler {
	return &RegisterHandler{validator: v, applicants: applicants, tokens: tokens, clock: clk}
}

// Handle registers the applicant and returns a token. A mobile phone that is
// already registered yields (nil, nil) and leaves the stored applicant as is.
func (h *RegisterHandler) Handle(ctx context.Context, req dto.RegisterRequest) (*domain.JwtResult, error) {
	if err := h.validator.Struct(req); err != nil {
		return nil, validationFailure(err)
	}

	applicant := toApplicant(req, h.clock.Now())
	err := h.applicants.Register(ctx, applicant)
	if errors.Is(err, repository.ErrConflict) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("register applicant: %w", err)
	}
	return h.tokens.Generate(applicant)
}

// LoginHandler exchanges mobile phone and birth date for a token.
type LoginHandler struct {
	validator  *validation.Validator
	applicants repository.ApplicantRepository
	tokens     TokenIssuer
}

// NewLoginHandler builds the handler.
func NewLoginHandler(v *validation.Validator, applicants repository.ApplicantRepository, tokens TokenIssuer) *LoginHandler {
	return &LoginHandler{validator: v, applicants: applicants, tokens: tokens}
}

// Handle returns (nil, nil) for an unknown phone or a wrong birth date.
func (h *LoginHandler) Handle(ctx context.Context, req dto.LoginRequest) (*domain.JwtResult, error) {
	if err := h.validator.Struct(req); err != nil {
		return nil, validationFailure(err)
	}

	applicant, err := h.applicants.FindByID(ctx, req.MobilePhone)
	if err != nil {
		return nil, fmt.Errorf("find applicant: %w", err)
	}
	if applicant == nil || applicant.BirthDateCredential() != req.DateOfBirth {
		return nil, nil
	}
	return h.tokens.Generate(applicant)
}
