package backoffice

import (
	"github.com/goliatone/go-errors"
)

// Text codes surfaced to the transport layer so clients can distinguish
// rejection kinds without parsing messages.
const (
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeUnauthenticated    = "UNAUTHENTICATED"
	TextCodeSessionExpired     = "SESSION_EXPIRED"
	TextCodeForbidden          = "FORBIDDEN"
	TextCodeInternalFailure    = "INTERNAL_FAILURE"
)

// ErrInvalidCredentials covers unknown email, wrong password, and inactive
// accounts. The three causes are deliberately indistinguishable to callers;
// they differ only in logs and audit events.
var ErrInvalidCredentials = errors.New("invalid email or password", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCredentials)

// ErrUnauthenticated is returned for missing, malformed, or unknown session tokens.
var ErrUnauthenticated = errors.New("authentication required", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeUnauthenticated)

// ErrSessionExpired is returned for a known session whose idle time exceeded
// the threshold. Expiry is destructive: the session is removed before this
// error is returned, so a retry with the same token yields ErrUnauthenticated.
var ErrSessionExpired = errors.New("session expired due to inactivity", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeSessionExpired)

// ErrForbidden is returned for a live session that lacks a required role.
// The session stays live; an authorization failure is not an authentication failure.
var ErrForbidden = errors.New("insufficient role for this operation", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode(TextCodeForbidden)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = errors.New("value should not be an empty string", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the normalized credential mismatch error
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCredentials)

// IsAuthRejection reports whether err is one of the structured rejections
// produced at the guard boundary.
func IsAuthRejection(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return true
	default:
		return false
	}
}

// IsSessionExpiredError checks for the destructive idle-timeout rejection.
func IsSessionExpiredError(err error) bool {
	return hasTextCode(err, TextCodeSessionExpired)
}

// IsForbiddenError checks for the non-destructive role rejection.
func IsForbiddenError(err error) bool {
	return hasTextCode(err, TextCodeForbidden)
}

// IsUnauthenticatedError checks for missing/unknown-token rejections.
func IsUnauthenticatedError(err error) bool {
	return hasTextCode(err, TextCodeUnauthenticated)
}

func hasTextCode(err error, code string) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}

func rejectionWithMetadata(base *errors.Error, metadata map[string]any) error {
	clone := base.Clone()
	if clone == nil {
		return base
	}
	return clone.WithMetadata(metadata)
}
