package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error. Message is safe to show to API
// callers, Detail is the technical description meant for logs.
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"-"`
	EntityType string    `json:"entity_type,omitempty"`
	Err        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrValidation, ErrDuplicate:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrValidation
	ErrDuplicate
	ErrUnauthorized
	ErrServiceFailure
)

// NotFound reports an entity that is absent or soft-deleted.
func NotFound(entityType string) *AppError {
	return &AppError{
		Code:       ErrNotFound,
		Message:    fmt.Sprintf("The requested %s was not found. It may have been removed or doesn't exist.", entityType),
		Detail:     fmt.Sprintf("%s not found in the system", entityType),
		EntityType: entityType,
	}
}

// NotFoundID is NotFound for a known id.
func NotFoundID(entityType string, id int64) *AppError {
	return &AppError{
		Code:       ErrNotFound,
		Message:    fmt.Sprintf("The %s with ID %d was not found. Please check the ID and try again.", entityType, id),
		Detail:     fmt.Sprintf("%s with ID %d not found in database", entityType, id),
		EntityType: entityType,
	}
}

// NotFoundMessage is NotFound with a caller supplied user message.
func NotFoundMessage(entityType, message string) *AppError {
	return &AppError{
		Code:       ErrNotFound,
		Message:    message,
		Detail:     fmt.Sprintf("%s not found in the system", entityType),
		EntityType: entityType,
	}
}

// FacilityNotFound is the not-found error for a missing or deleted facility.
func FacilityNotFound(id int64) *AppError {
	return NotFoundMessage("Facility", fmt.Sprintf(
		"The medical facility with ID %d doesn't exist in our system. Please verify the facility ID or contact your administrator for assistance.", id))
}

// PatientNotFound is the not-found error for a missing or deleted patient.
func PatientNotFound(id int64) *AppError {
	return NotFoundMessage("Patient", fmt.Sprintf(
		"We couldn't find a patient with ID %d. Please check the ID and try again. If you believe this is an error, please contact support.", id))
}

func Validation(field, requirement, entityType string) *AppError {
	return &AppError{
		Code:       ErrValidation,
		Message:    fmt.Sprintf("The %s field is invalid: %s", field, requirement),
		Detail:     fmt.Sprintf("Validation failed for %s in %s", field, entityType),
		EntityType: entityType,
	}
}

// Duplicate reports a uniqueness collision. message is shown to the caller as is.
func Duplicate(message, entityType string) *AppError {
	return &AppError{
		Code:       ErrDuplicate,
		Message:    message,
		Detail:     fmt.Sprintf("Duplicate %s: %s", entityType, message),
		EntityType: entityType,
	}
}

// DuplicateField builds the single-field duplicate message used for facilities.
func DuplicateField(field, value, entityType string) *AppError {
	return Duplicate(
		fmt.Sprintf("A %s with this %s (%s) already exists. Please use a unique value.", entityType, field, value),
		entityType,
	)
}

// ServiceFailure wraps an unexpected storage fault. The cause only ends up in Detail.
func ServiceFailure(operation, entityType string, cause error) *AppError {
	detail := fmt.Sprintf("Failed to %s %s", operation, entityType)
	if cause != nil {
		detail = fmt.Sprintf("%s: %v", detail, cause)
	}
	return &AppError{
		Code:       ErrServiceFailure,
		Message:    fmt.Sprintf("We encountered an issue while processing your request for %s. Please try again later.", entityType),
		Detail:     detail,
		EntityType: entityType,
		Err:        cause,
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Detail:  "authentication failed",
		Err:     err,
	}
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func HasCode(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

func IsNotFound(err error) bool   { return HasCode(err, ErrNotFound) }
func IsValidation(err error) bool { return HasCode(err, ErrValidation) }
func IsDuplicate(err error) bool  { return HasCode(err, ErrDuplicate) }

// Passthrough reports whether err is a domain error that callers must see
// unchanged rather than wrapped into a ServiceFailure.
func Passthrough(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code != ErrServiceFailure
}
