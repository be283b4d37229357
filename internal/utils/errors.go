package utils

import "fmt"

type AppError struct {
	Code    string
	Message string
	Origin  error // Original error that caused this error, if any
}

func (appErr *AppError) Error() string {
	if appErr.Origin != nil {
		return appErr.Message + ": " + appErr.Origin.Error()
	}
	return appErr.Message
}

// Standard error codes for the application
const (
	// Resource errors
	ErrNotFound     = "NOT_FOUND"
	ErrDuplicate    = "DUPLICATE"
	ErrInvalidInput = "INVALID_INPUT"

	// Authentication/Authorization errors
	ErrUnauthorized       = "UNAUTHORIZED"
	ErrInvalidToken       = "INVALID_TOKEN"
	ErrInvalidCredentials = "INVALID_CREDENTIALS"

	// Member-specific errors
	ErrMemberNotFound      = "MEMBER_NOT_FOUND"
	ErrMemberAlreadyExists = "MEMBER_ALREADY_EXISTS"

	// Delivery errors. Always swallowed and logged; a failed live push
	// is never surfaced to the caller.
	ErrDeliveryUnavailable = "DELIVERY_UNAVAILABLE"

	// Actor communication errors
	ErrActorTimeout = "ACTOR_TIMEOUT"

	// Storage errors. The only hard failure mode of the engine.
	ErrStoreFailure = "STORE_FAILURE"
)

// Error creation helper functions
func NewAppError(code string, message string, originalErr error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Origin:  originalErr,
	}
}

// Specific error creators for common cases
func NewMemberNotFoundError(email string) *AppError {
	return &AppError{
		Code:    ErrMemberNotFound,
		Message: "Member not found: " + email,
	}
}

func NewPostNotFoundError(postID int64) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("Post not found: %d", postID),
	}
}

func NewValidationError(reason string) *AppError {
	return &AppError{
		Code:    ErrInvalidInput,
		Message: "Invalid input: " + reason,
	}
}

func NewStoreError(message string, originalErr error) *AppError {
	return &AppError{
		Code:    ErrStoreFailure,
		Message: message,
		Origin:  originalErr,
	}
}

func NewActorTimeoutError(actorName string) *AppError {
	return &AppError{
		Code:    ErrActorTimeout,
		Message: "Actor communication timeout: " + actorName,
	}
}

// Helper method to check if an error is of a specific type
func IsErrorCode(err error, code string) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// AppErrorToHTTPStatus converts an AppError code to an HTTP status code.
func AppErrorToHTTPStatus(errorCode string) int {
	switch errorCode {
	case ErrNotFound, ErrMemberNotFound:
		return 404 // http.StatusNotFound
	case ErrInvalidInput, ErrInvalidCredentials:
		return 400 // http.StatusBadRequest
	case ErrUnauthorized, ErrInvalidToken:
		return 401 // http.StatusUnauthorized
	case ErrDuplicate, ErrMemberAlreadyExists:
		return 409 // http.StatusConflict
	case ErrStoreFailure, ErrActorTimeout, ErrDeliveryUnavailable:
		return 500 // http.StatusInternalServerError
	default:
		return 500 // http.StatusInternalServerError for unknown errors
	}
}
