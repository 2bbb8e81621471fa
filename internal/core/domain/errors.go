package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrSessionNotFound indicates the session does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidCredentials indicates wrong email/password combination
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnsupportedStrategy indicates an unknown chunking strategy key
	ErrUnsupportedStrategy = errors.New("unsupported chunking strategy")

	// ErrInvalidChunkParams indicates chunking parameters fail validation
	ErrInvalidChunkParams = errors.New("invalid chunking parameters")

	// ErrUnsupportedContentType indicates no text extractor handles the content type
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrServiceUnavailable indicates a downstream service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)

// ServiceErrorKind identifies which downstream service failed
type ServiceErrorKind string

const (
	ServiceEmbedding  ServiceErrorKind = "embedding"
	ServiceGeneration ServiceErrorKind = "generation"
)

// ServiceError carries the upstream status and response body of a failed
// downstream call so callers can diagnose without leaking stack traces.
type ServiceError struct {
	Kind    ServiceErrorKind
	Message string
	Details map[string]any
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service error: %s", e.Kind, e.Message)
}

// NewServiceError creates a ServiceError for a downstream failure
func NewServiceError(kind ServiceErrorKind, message string, details map[string]any) *ServiceError {
	return &ServiceError{Kind: kind, Message: message, Details: details}
}

// NotFoundError wraps ErrNotFound with structured details, e.g. the list of
// available collections when the requested collection does not exist.
type NotFoundError struct {
	Message string
	Details map[string]any
}

func (e *NotFoundError) Error() string { return e.Message }

// Unwrap makes errors.Is(err, ErrNotFound) hold for NotFoundError values
func (e *NotFoundError) Unwrap() error { return ErrNotFound }
