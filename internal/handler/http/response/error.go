package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/cmlabs-hris/hris-overtime-report/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-overtime-report/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Request errors
	case errors.Is(err, overtime.ErrInvalidDateRange):
		BadRequest(w, "Invalid date range", map[string]string{"to": err.Error()})
	case errors.Is(err, overtime.ErrRangeTooLarge):
		BadRequest(w, "Date range too large", map[string]string{"to": err.Error()})
	case errors.Is(err, overtime.ErrInvalidMode):
		BadRequest(w, "Invalid mode", map[string]string{"mode": err.Error()})
	case errors.Is(err, overtime.ErrNoQualifyingEmployees):
		NotFound(w, "No employees match the report filter")

	// Upstream errors
	case errors.Is(err, context.DeadlineExceeded):
		GatewayTimeout(w, "Report generation timed out")
	case errors.Is(err, context.Canceled):
		ClientClosedRequest(w, "Report generation canceled")
	case errors.Is(err, overtime.ErrSourceUnavailable):
		BadGateway(w, "HR data source unavailable")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
