package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arcanaoficial/arcana-server/internal/store"
)

func TestError_ErrorWithCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := store.ErrNotFound.WithCause(cause)

	assert.Equal(t, "resource not found: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestError_CustomMessageStillMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("update: %w", store.ErrUpdateTargetMissing)

	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NotErrorIs(t, err, store.ErrInvalidInput)
	assert.Equal(t, http.StatusNotFound, store.ErrUpdateTargetMissing.HTTPCode())
	assert.Equal(t, "No se encontró el registro para actualizar", store.ErrUpdateTargetMissing.Message)
}
