package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/animerec/animerec-server/internal/errors"
	"github.com/animerec/animerec-server/internal/http/response"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
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
			if apiErr := fromDomain(err); apiErr != nil {
				return apiErr
			}
		}

		var details []string
		for _, err := range errs {
			if err != nil {
				details = append(details, err.Error())
			}
		}

		apiErr := &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}
		if len(details) > 0 {
			apiErr.Details = details
		}
		return apiErr
	}
}

// apiError converts err for a handler return. Domain errors keep their code
// and status; anything else becomes a 500 INTERNAL that hides the cause.
func apiError(err error) error {
	if apiErr := fromDomain(err); apiErr != nil {
		return apiErr
	}
	return fromDomain(domainerrors.Internal("internal server error").WithCause(err))
}

func fromDomain(err error) *APIError {
	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) {
		return nil
	}
	return &APIError{
		status:  domainErr.HTTPStatus(),
		Code:    string(domainErr.Code),
		Message: domainErr.Message,
		Details: domainErr.Details,
	}
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return string(domainerrors.CodeNotFound)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	case http.StatusServiceUnavailable:
		return string(domainerrors.CodeUnavailable)
	default:
		return string(domainerrors.CodeInternal)
	}
}

// handleNotFound answers unknown routes with the same error body huma uses.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	response.NotFound(w, "no route for "+r.Method+" "+strings.TrimSpace(r.URL.Path), nil)
}
