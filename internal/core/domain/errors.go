package domain

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrSessionNotFound = errors.New("session not found")

	ErrUserExists       = errors.New("email or username already exists")
	ErrDuplicateOrderID = errors.New("order id already assigned")
	// ErrDuplicateSubmission means another order already carries the same
	// idempotency key.
	ErrDuplicateSubmission = errors.New("order already submitted")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("access forbidden")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// Dependency failures. Blob store errors fail the calling operation,
	// notifier errors never do.
	ErrBlobStore = errors.New("image storage unavailable")
	ErrNotifier  = errors.New("notifier unavailable")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError for field with the given message.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
