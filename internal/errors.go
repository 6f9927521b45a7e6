package internal

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeConflict   ErrorType = "CONFLICT"
	ErrorTypeInternal   ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal   ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeMissingFields    ErrorCode = "MISSING_REQUIRED_FIELDS"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"

	ErrCodeListingNotFound ErrorCode = "LISTING_NOT_FOUND"
	ErrCodeBookingNotFound ErrorCode = "BOOKING_NOT_FOUND"
	ErrCodePaymentNotFound ErrorCode = "PAYMENT_NOT_FOUND"

	ErrCodeDuplicateReference ErrorCode = "DUPLICATE_REFERENCE"
	ErrCodeInvalidTransition  ErrorCode = "INVALID_STATUS_TRANSITION"
	ErrCodeRequestInProgress  ErrorCode = "IDEMPOTENT_REQUEST_IN_PROGRESS"
	ErrCodeIdempotencyReused  ErrorCode = "IDEMPOTENCY_KEY_REUSED"
	ErrCodeBodyTooLarge       ErrorCode = "REQUEST_BODY_TOO_LARGE"

	ErrCodeGatewayFailed      ErrorCode = "PAYMENT_GATEWAY_FAILED"
	ErrCodeGatewayUnreachable ErrorCode = "PAYMENT_GATEWAY_UNREACHABLE"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on Code so sentinel values compare equal to copies carrying
// different details or causes.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of e with cause attached. Sentinels stay untouched.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// WithDetails returns a copy of e with details attached.
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewExternalError describes a failure reported by, or while reaching, a
// third-party system. Payment initiation surfaces these to the caller as
// client errors.
func NewExternalError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

var (
	ErrMissingFields      = NewValidationError("Missing required fields", ErrCodeMissingFields)
	ErrInvalidAmount      = NewValidationError("Invalid amount", ErrCodeInvalidAmount)
	ErrGatewayFailed      = NewExternalError("Failed to initiate payment.", ErrCodeGatewayFailed)
	ErrGatewayUnreachable = NewExternalError("Failed to initiate payment.", ErrCodeGatewayUnreachable)

	ErrListingNotFound   = NewNotFoundError("Listing not found", ErrCodeListingNotFound)
	ErrBookingNotFound   = NewNotFoundError("Booking not found", ErrCodeBookingNotFound)
	ErrPaymentNotFound   = NewNotFoundError("Payment not found", ErrCodePaymentNotFound)
	ErrInvalidTransition = NewValidationError("Payment status cannot change from its current value", ErrCodeInvalidTransition)

	ErrRequestInProgress = NewConflictError("A request with this Idempotency-Key is still being processed", ErrCodeRequestInProgress)
	ErrIdempotencyReused = &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeIdempotencyReused,
		Message:    "Idempotency-Key was already used with a different request",
		StatusCode: http.StatusUnprocessableEntity,
	}
	ErrBodyTooLarge = &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeBodyTooLarge,
		Message:    "Request body too large",
		StatusCode: http.StatusRequestEntityTooLarge,
	}
)

// IsAppError unwraps err until it finds an *AppError.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
