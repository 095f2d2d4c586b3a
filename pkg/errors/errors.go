package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies application errors for transport mapping.
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeConflict indicates a conflict with existing data
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeUnknownKind indicates a facility-kind tag that resolves to no
	// facility type. Distinct from ErrorTypeNotFound: "no such facility kind"
	// versus "no such facility of that kind".
	ErrorTypeUnknownKind ErrorType = "UNKNOWN_KIND"

	// ErrorTypeAssetRejected indicates an uploaded asset failed validation
	ErrorTypeAssetRejected ErrorType = "ASSET_REJECTED"

	// ErrorTypeUnauthorized indicates unauthorized access
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeExternal indicates an error from an external service
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// Asset rejection reasons.
const (
	AssetRejectInvalidType = "invalid_type"
	AssetRejectTooLarge    = "too_large"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Reason  string // optional machine-readable detail (asset rejections)
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// TypeOf returns the ErrorType of err, or ErrorTypeInternal for plain errors.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: message,
	}
}

// NewUnknownKindError creates an error for an unresolvable facility-kind tag
func NewUnknownKindError(tag string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnknownKind,
		Message: fmt.Sprintf("unknown facility kind %q", tag),
	}
}

// NewAssetRejectedError creates an error for a rejected asset upload
func NewAssetRejectedError(reason, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeAssetRejected,
		Message: message,
		Reason:  reason,
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// NewExternalError creates a new external service error
func NewExternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExternal,
		Message: message,
		Err:     err,
	}
}
