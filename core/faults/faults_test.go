package faults

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"NotFound", NotFound("session %s", "abc"), fiber.StatusNotFound},
		{"Conflict", Conflict("session is locked"), fiber.StatusConflict},
		{"Validation", Validation("missing actor id"), fiber.StatusUnprocessableEntity},
		{"Storage", Storage(errors.New("disk full"), "insert failed"), fiber.StatusInternalServerError},
		{"Unknown", errors.New("plain error"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(NotFound("gone")))
	assert.Equal(t, CodeStorage, CodeOf(errors.New("unclassified")))

	// Wrapped faults keep their code through fmt chains.
	wrapped := fmt.Errorf("outer: %w", Conflict("inner"))
	assert.Equal(t, CodeConflict, CodeOf(wrapped))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	f := Storage(cause, "flush failed")

	assert.True(t, errors.Is(f, cause))
	assert.Contains(t, f.Error(), "STORAGE_ERROR")
	assert.Contains(t, f.Error(), "connection reset")
}
