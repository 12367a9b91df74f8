package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/movementpass/public-api/internal/api/dto"
	"github.com/movementpass/public-api/internal/pagination"
	"github.com/movementpass/public-api/internal/repository"
	"github.com/movementpass/public-api/internal/validation"
	apperrors "github.com/movementpass/public-api/pkg/util"
)

// ApplyHandler creates a pass for the authenticated caller.
type ApplyHandler struct {
	validator  *validation.Validator
	normalizer *PassNormalizer
	passes     repository.PassRepository
}

// NewApplyHandler builds the handler.
func NewApplyHandler(v *validation.Validator, n *PassNormalizer, passes repository.PassRepository) *ApplyHandler {
	return &ApplyHandler{validator: v, normalizer: n, passes: passes}
}

// Handle validates req, stores the pass and bumps the caller's applied counter
// in one write.
func (h *ApplyHandler) Handle(ctx context.Context, callerID string, req dto.ApplyRequest) (dto.IDResult, error) {
	if err := h.validator.Struct(req); err != nil {
		return dto.IDResult{}, validationFailure(err)
	}

	pass := h.normalizer.ToPass(req, callerID)
	id, err := h.passes.Create(ctx, &pass)
	if errors.Is(err, repository.ErrApplicantNotFound) {
		return dto.IDResult{}, apperrors.NewUnauthorized("applicant is not registered")
	}
	if err != nil {
		return dto.IDResult{}, fmt.Errorf("create pass: %w", err)
	}
	return dto.IDResult{ID: id}, nil
}

// ViewPassHandler returns one of the caller's passes with its applicant.
type ViewPassHandler struct {
	passes     repository.PassRepository
	applicants repository.ApplicantRepository
}

// NewViewPassHandler builds the handler.
func NewViewPassHandler(passes repository.PassRepository, applicants repository.ApplicantRepository) *ViewPassHandler {
	return &ViewPassHandler{passes: passes, applicants: applicants}
}

// Handle returns nil when the pass does not exist or belongs to someone else.
func (h *ViewPassHandler) Handle(ctx context.Context, callerID, id string) (*dto.PassDetail, error) {
	pass, err := h.passes.GetOwned(ctx, id, callerID)
	if err != nil {
		return nil, fmt.Errorf("get pass: %w", err)
	}
	if pass == nil {
		return nil, nil
	}

	applicant, err := h.applicants.FindByID(ctx, pass.ApplicantID)
	if err != nil {
		return nil, fmt.Errorf("get applicant: %w", err)
	}
	return &dto.PassDetail{
		PassItem:  toPassItem(*pass),
		Applicant: toApplicantItem(applicant),
	}, nil
}

// ViewPassesHandler pages through the caller's passes, latest end first.
type ViewPassesHandler struct {
	passes   repository.PassRepository
	pageSize int
}

// NewViewPassesHandler builds the handler. A non-positive pageSize uses the default.
func NewViewPassesHandler(passes repository.PassRepository, pageSize int) *ViewPassesHandler {
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}
	return &ViewPassesHandler{passes: passes, pageSize: pageSize}
}

// Handle returns one page. The cursor only carries id and endAt; ownership
// always comes from callerID.
func (h *ViewPassesHandler) Handle(ctx context.Context, callerID string, cursor *pagination.Cursor) (dto.PassListResult, error) {
	passes, next, err := h.passes.QueryOwned(ctx, callerID, cursor, h.pageSize)
	if err != nil {
		return dto.PassListResult{}, fmt.Errorf("query passes: %w", err)
	}

	items := make([]dto.PassItem, 0, len(passes))
	for _, p := range passes {
		items = append(items, toPassItem(p))
	}
	return dto.PassListResult{Passes: items, NextKey: next}, nil
}

func validationFailure(err error) error {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError("validation failed", fieldErrs.Details())
	}
	return err
}
