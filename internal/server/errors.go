package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/predialis/predialis/internal/account/domain"
	billingdomain "github.com/predialis/predialis/internal/billing/domain"
	invoicedomain "github.com/predialis/predialis/internal/invoice/domain"
	meteringdomain "github.com/predialis/predialis/internal/metering/domain"
	ratedomain "github.com/predialis/predialis/internal/rate/domain"
	unitdomain "github.com/predialis/predialis/internal/unit/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   "request",
					Code:    code,
					Message: code,
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ratedomain.ErrInvalidUtilityType),
		errors.Is(err, ratedomain.ErrInvalidRateType),
		errors.Is(err, ratedomain.ErrInvalidBillingMethod),
		errors.Is(err, ratedomain.ErrInvalidExpenseType),
		errors.Is(err, ratedomain.ErrInvalidAmount),
		errors.Is(err, ratedomain.ErrInvalidEffectiveDate),
		errors.Is(err, meteringdomain.ErrInvalidReading),
		errors.Is(err, meteringdomain.ErrInvalidReadingDate),
		errors.Is(err, meteringdomain.ErrInvalidUnit),
		errors.Is(err, unitdomain.ErrInvalidNumber),
		errors.Is(err, unitdomain.ErrInvalidResident),
		errors.Is(err, unitdomain.ErrInvalidID),
		errors.Is(err, accountdomain.ErrInvalidName),
		errors.Is(err, accountdomain.ErrInvalidAmount),
		errors.Is(err, accountdomain.ErrInvalidType),
		errors.Is(err, accountdomain.ErrInvalidStatus),
		errors.Is(err, accountdomain.ErrInvalidDescription),
		errors.Is(err, accountdomain.ErrInvalidAccount),
		errors.Is(err, accountdomain.ErrDestinationRequired),
		errors.Is(err, accountdomain.ErrSameAccountTransfer),
		errors.Is(err, accountdomain.ErrInvalidID),
		errors.Is(err, billingdomain.ErrInvalidAmount),
		errors.Is(err, billingdomain.ErrMissingDueDate),
		errors.Is(err, billingdomain.ErrMissingUnit),
		errors.Is(err, billingdomain.ErrMissingResident),
		errors.Is(err, billingdomain.ErrInvalidStatus),
		errors.Is(err, billingdomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrInvalidInvoice),
		errors.Is(err, invoicedomain.ErrInvalidUnit),
		errors.Is(err, invoicedomain.ErrInvalidUtilityType),
		errors.Is(err, invoicedomain.ErrInvalidRateType),
		errors.Is(err, invoicedomain.ErrInvalidDiscount),
		errors.Is(err, invoicedomain.ErrInvalidReading):
		return true
	}
	return false
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, unitdomain.ErrDuplicateUnit),
		errors.Is(err, accountdomain.ErrDuplicateAccount),
		errors.Is(err, accountdomain.ErrNotCompleted),
		errors.Is(err, accountdomain.ErrInvalidTransition),
		errors.Is(err, billingdomain.ErrInvalidTransition),
		errors.Is(err, billingdomain.ErrImmutableRecord):
		return true
	}
	return false
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, unitdomain.ErrNotFound),
		errors.Is(err, accountdomain.ErrNotFound),
		errors.Is(err, accountdomain.ErrAccountNotFound),
		errors.Is(err, billingdomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrUnitNotFound):
		return true
	}
	return false
}
