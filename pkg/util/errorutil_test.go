package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	validation := NewValidationError("bad", map[string]any{"district": []string{"out of range"}})
	de := ToDomainError(fmt.Errorf("wrapped: %w", validation))
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)

	assert.Equal(t, http.StatusNotFound, ToDomainError(pgx.ErrNoRows).HTTPStatus)
	assert.Equal(t, http.StatusMethodNotAllowed, ToDomainError(fiber.ErrMethodNotAllowed).HTTPStatus)

	internal := ToDomainError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, internal.HTTPStatus)
	assert.Equal(t, "internal server error: boom", internal.Error())
}

func TestToDomainErrorFiberCodes(t *testing.T) {
	cases := map[*fiber.Error]string{
		fiber.ErrNotFound:            "NOT_FOUND",
		fiber.ErrMethodNotAllowed:    "METHOD_NOT_ALLOWED",
		fiber.ErrRequestTimeout:      "REQUEST_TIMEOUT",
		fiber.NewError(599, "weird"): "HTTP_599",
	}
	for err, code := range cases {
		de := ToDomainError(err)
		assert.Equal(t, code, de.Code)
		assert.Equal(t, err.Code, de.HTTPStatus)
	}
}
