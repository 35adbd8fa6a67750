// Package shared contains common domain types and errors used across all
// domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")
	ErrExpired         = errors.New("expired")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrLockNotAcquired        = errors.New("lock not acquired")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "session", "leaderboard", "quiz"
	Op      string // Operation that failed, e.g., "Get", "Update"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Session domain errors
var (
	ErrSessionNotFound    = NewDomainError("session", "Get", ErrNotFound, "session not found")
	ErrInvalidUserID      = NewDomainError("session", "Validate", ErrInvalidID, "invalid user ID")
	ErrInvalidLanguage    = NewDomainError("session", "Validate", ErrInvalidInput, "unsupported target language")
	ErrInvalidMode        = NewDomainError("session", "Validate", ErrInvalidInput, "unknown conversation mode")
	ErrInvalidLevel       = NewDomainError("session", "Validate", ErrInvalidInput, "unknown proficiency level")
	ErrEmptyMessage       = NewDomainError("session", "Validate", ErrEmptyValue, "message text is empty")
	ErrSessionLockHeld    = NewDomainError("session", "Update", ErrLockNotAcquired, "session is being modified by another request")
	ErrInvalidDailyTarget = NewDomainError("session", "SetDailyTarget", ErrValueOutOfRange, "daily target out of range")
)

// Quiz domain errors
var (
	ErrNoQuizActive      = NewDomainError("quiz", "Answer", ErrInvalidState, "no quiz in progress")
	ErrQuizActive        = NewDomainError("quiz", "Start", ErrStateTransition, "quiz already in progress")
	ErrNoVocabulary      = NewDomainError("quiz", "Start", ErrNotFound, "no vocabulary words to practice")
	ErrQuizComplete      = NewDomainError("quiz", "Answer", ErrInvalidState, "quiz already completed")
	ErrEmptyQuizQuestion = NewDomainError("quiz", "Generate", ErrEmptyValue, "cannot generate question for empty word")
)

// Rate limit domain errors
var (
	ErrRateLimitExceeded = NewDomainError("ratelimit", "Check", ErrRateLimited, "message rate limit exceeded")
)

// Leaderboard domain errors
var (
	ErrLeaderboardEmpty = NewDomainError("leaderboard", "Top", ErrNotFound, "leaderboard is empty")
	ErrUserNotRanked    = NewDomainError("leaderboard", "Rank", ErrNotFound, "user has no leaderboard entry")
	ErrInvalidTopCount  = NewDomainError("leaderboard", "Top", ErrValueOutOfRange, "top count must be positive")
)

// External service errors
var (
	ErrTutorUnavailable     = NewDomainError("tutor", "Chat", ErrServiceUnavailable, "tutor service is unavailable")
	ErrTutorTimeout         = NewDomainError("tutor", "Chat", ErrTimeout, "tutor request timed out")
	ErrTutorRateLimited     = NewDomainError("tutor", "Chat", ErrRateLimited, "tutor API rate limit exceeded")
	ErrTutorInvalidResponse = NewDomainError("tutor", "Parse", ErrInvalidFormat, "invalid response from tutor API")
	ErrTelegramAPIFailed    = NewDomainError("telegram", "Send", ErrExternalService, "Telegram API request failed")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConcurrentModification) ||
		errors.Is(err, ErrLockNotAcquired)
}
