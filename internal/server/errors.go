package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	approvaldomain "github.com/zenithhr/expensio/internal/approval/domain"
	auditdomain "github.com/zenithhr/expensio/internal/audit/domain"
	bankingdomain "github.com/zenithhr/expensio/internal/banking/domain"
	claimdomain "github.com/zenithhr/expensio/internal/claim/domain"
	employeedomain "github.com/zenithhr/expensio/internal/employee/domain"
	mileagedomain "github.com/zenithhr/expensio/internal/mileage/domain"
	notificationdomain "github.com/zenithhr/expensio/internal/notification/domain"
	policydomain "github.com/zenithhr/expensio/internal/policy/domain"
	reimbursementdomain "github.com/zenithhr/expensio/internal/reimbursement/domain"
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
	Type       string            `json:"type"`
	Message    string            `json:"message"`
	Errors     []ValidationError `json:"errors,omitempty"`
	Violations []string          `json:"violations,omitempty"`
	Warnings   []string          `json:"warnings,omitempty"`
	Details    any               `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
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

	// Policy violations carry the specific failed rules; they are a request
	// problem, never coerced into a generic failure.
	var policyErr *claimdomain.ValidationFailedError
	if errors.As(err, &policyErr) {
		return http.StatusBadRequest, errorPayload{
			Type:       "policy_violation",
			Message:    "claim failed policy validation",
			Violations: policyErr.Violations,
			Warnings:   policyErr.Warnings,
		}
	}

	var ineligibleErr *reimbursementdomain.IneligibleClaimsError
	if errors.As(err, &ineligibleErr) {
		return http.StatusConflict, errorPayload{
			Type:    "state_conflict",
			Message: "one or more claims are not eligible for reimbursement",
			Details: gin.H{"ineligible_claim_ids": ineligibleErr.IneligibleIDs},
		}
	}

	var detailsErr *bankingdomain.IncompleteDetailsError
	if errors.As(err, &detailsErr) {
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "configuration_error",
			Message: "one or more employees have incomplete bank details",
			Details: gin.H{
				"invalid_employees": detailsErr.Invalid,
				"payable_total":     detailsErr.PayableTotal,
			},
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "state_conflict",
			Message: conflictErrorMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isConfigurationError(err):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "configuration_error",
			Message: err.Error(),
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
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
	case errors.Is(err, ErrInvalidRequest):
		return true
	case errors.Is(err, employeedomain.ErrInvalidID),
		errors.Is(err, employeedomain.ErrInvalidEmployeeCode),
		errors.Is(err, employeedomain.ErrInvalidName),
		errors.Is(err, employeedomain.ErrInvalidEmail),
		errors.Is(err, employeedomain.ErrInvalidRole),
		errors.Is(err, employeedomain.ErrManagerNotFound):
		return true
	case errors.Is(err, policydomain.ErrInvalidID),
		errors.Is(err, policydomain.ErrInvalidName),
		errors.Is(err, policydomain.ErrInvalidCode),
		errors.Is(err, policydomain.ErrInvalidLevels),
		errors.Is(err, policydomain.ErrInvalidRuleConfig):
		return true
	case errors.Is(err, claimdomain.ErrInvalidID),
		errors.Is(err, claimdomain.ErrInvalidAmount),
		errors.Is(err, claimdomain.ErrInvalidDate),
		errors.Is(err, claimdomain.ErrInvalidStatus):
		return true
	case errors.Is(err, approvaldomain.ErrInvalidID),
		errors.Is(err, approvaldomain.ErrInvalidDecision):
		return true
	case errors.Is(err, mileagedomain.ErrInvalidID),
		errors.Is(err, mileagedomain.ErrInvalidMonth),
		errors.Is(err, mileagedomain.ErrInvalidDistance),
		errors.Is(err, mileagedomain.ErrInvalidRate),
		errors.Is(err, mileagedomain.ErrInvalidEffectiveRange):
		return true
	case errors.Is(err, reimbursementdomain.ErrInvalidID),
		errors.Is(err, reimbursementdomain.ErrNoClaims),
		errors.Is(err, reimbursementdomain.ErrInvalidPaymentMethod):
		return true
	case errors.Is(err, bankingdomain.ErrInvalidProvider),
		errors.Is(err, bankingdomain.ErrInvalidPaymentMode),
		errors.Is(err, bankingdomain.ErrNoEmployees),
		errors.Is(err, bankingdomain.ErrNoPayments):
		return true
	case errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidTimeRange),
		errors.Is(err, auditdomain.ErrInvalidAction):
		return true
	case errors.Is(err, notificationdomain.ErrInvalidRecipient):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, employeedomain.ErrNotFound),
		errors.Is(err, policydomain.ErrCategoryNotFound),
		errors.Is(err, policydomain.ErrRuleNotFound),
		errors.Is(err, claimdomain.ErrNotFound),
		errors.Is(err, approvaldomain.ErrClaimNotFound),
		errors.Is(err, approvaldomain.ErrEmployeeNotFound),
		errors.Is(err, reimbursementdomain.ErrBatchNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, claimdomain.ErrClaimNotPending),
		errors.Is(err, approvaldomain.ErrClaimNotPending),
		errors.Is(err, approvaldomain.ErrNoPendingApproval),
		errors.Is(err, reimbursementdomain.ErrBatchNotProcessing),
		errors.Is(err, employeedomain.ErrDuplicateCode),
		errors.Is(err, policydomain.ErrDuplicateCode):
		return true
	default:
		return false
	}
}

// Configuration errors mean the system cannot satisfy the request until an
// operator fixes reference data, distinct from a bad request.
func isConfigurationError(err error) bool {
	switch {
	case errors.Is(err, mileagedomain.ErrNoActiveRateConfig),
		errors.Is(err, mileagedomain.ErrPetrolCategoryMissing),
		errors.Is(err, approvaldomain.ErrNoEligibleApprovers):
		return true
	default:
		return false
	}
}

func conflictErrorMessage(err error) string {
	switch {
	case errors.Is(err, employeedomain.ErrDuplicateCode),
		errors.Is(err, policydomain.ErrDuplicateCode):
		return "duplicate code"
	default:
		return err.Error()
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
