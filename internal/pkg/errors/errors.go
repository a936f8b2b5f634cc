package errors

import "errors"

var (
	ErrNotFound               = errors.New("resource not found")
	ErrAlreadyExists          = errors.New("resource already exists")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidAPIKey          = errors.New("invalid or inactive API key")
	ErrQuotaExceeded          = errors.New("daily request limit exceeded")
	ErrAlreadyReviewed        = errors.New("submission has already been reviewed")
	ErrFetchTimeout           = errors.New("timed out fetching remote content")
	ErrAdapterUnavailable     = errors.New("classification backend unavailable")
	ErrTranslationUnavailable = errors.New("translation service unavailable")
	ErrInsufficientPermission = errors.New("insufficient permission")
	ErrDatabaseError          = errors.New("database error")
	ErrCacheError             = errors.New("cache error")
)

// Error carries a message for API responses alongside the underlying cause.
type Error struct {
	Err     error
	Message string
	Code    string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Wrap(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
		Code:    "INTERNAL_ERROR",
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
