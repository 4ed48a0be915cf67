package response

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/arcanaoficial/arcana-server/internal/errors"
	"github.com/arcanaoficial/arcana-server/internal/store"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()
	Success(w, map[string]string{"status": "healthy"}, discard())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	body := decode(t, w)
	assert.Equal(t, float64(1), body["v"])
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"status": "healthy"}, body["data"])
	assert.NotContains(t, body, "error")
}

func TestTooManyRequests(t *testing.T) {
	w := httptest.NewRecorder()
	TooManyRequests(w, "slow down", discard())

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, map[string]any{"code": "RATE_LIMITED", "message": "slow down"}, body["error"])
	assert.NotContains(t, body, "data")
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "domain error",
			err:     domainerrors.AlreadyExists("Este email ya está registrado"),
			status:  http.StatusConflict,
			code:    "ALREADY_EXISTS",
			message: "Este email ya está registrado",
		},
		{
			name:    "store error",
			err:     store.ErrUpdateTargetMissing,
			status:  http.StatusNotFound,
			code:    "NOT_FOUND",
			message: "No se encontró el registro para actualizar",
		},
		{
			name:    "unknown error hides details",
			err:     errors.New("pq: password authentication failed"),
			status:  http.StatusInternalServerError,
			code:    "INTERNAL",
			message: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err, discard())

			assert.Equal(t, tt.status, w.Code)
			errBody, ok := decode(t, w)["error"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.code, errBody["code"])
			assert.Equal(t, tt.message, errBody["message"])
		})
	}
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, domainerrors.CodeValidation, StatusCode(http.StatusUnprocessableEntity))
	assert.Equal(t, domainerrors.CodeUpstream, StatusCode(http.StatusBadGateway))
	assert.Equal(t, domainerrors.CodeInternal, StatusCode(http.StatusTeapot))
}
