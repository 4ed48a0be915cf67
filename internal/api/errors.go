package api

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/arcanaoficial/arcana-server/internal/http/response"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain and store errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			if err == nil {
				continue
			}
			if code, body, ok := response.Describe(err); ok {
				return &APIError{status: code, Code: body.Code, Message: body.Message, Details: body.Details}
			}
		}

		apiErr := &APIError{
			status:  status,
			Code:    string(response.StatusCode(status)),
			Message: message,
		}
		// Request validation failures carry one error per field.
		if status == http.StatusUnprocessableEntity && len(errs) > 0 {
			details := make([]string, 0, len(errs))
			for _, err := range errs {
				if err != nil {
					details = append(details, err.Error())
				}
			}
			apiErr.Details = details
		}
		return apiErr
	}
}

// EnvelopeTransformer wraps every response body in the shared envelope.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch e := v.(type) {
	case *APIError:
		return response.Fail(response.ErrorBody{
			Code:    e.Code,
			Message: e.Message,
			Details: e.Details,
		}), nil
	case error:
		// Domain and store errors reach here directly as status errors.
		_, body, _ := response.Describe(e)
		return response.Fail(body), nil
	}
	if strings.HasPrefix(status, "4") || strings.HasPrefix(status, "5") {
		return v, nil
	}
	return response.Ok(v), nil
}
