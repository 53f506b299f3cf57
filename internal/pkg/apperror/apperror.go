package apperror

import "sort"

// AppError is a custom error type that includes an HTTP status code and an optional internal error code.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// FieldError reports input validation failures keyed by field name.
// It is always rendered as 400 with the offending fields listed inline.
type FieldError struct {
	Fields map[string]string
}

func (e *FieldError) Error() string {
	if len(e.Fields) == 1 {
		for name, msg := range e.Fields {
			return name + ": " + msg
		}
	}
	return "validation failed"
}

// Names returns the offending field names in stable order.
func (e *FieldError) Names() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewFieldError creates a FieldError for a single field.
func NewFieldError(field, message string) *FieldError {
	return &FieldError{Fields: map[string]string{field: message}}
}

// Add records another field failure and returns the receiver for chaining.
func (e *FieldError) Add(field, message string) *FieldError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
	return e
}

// OrNil returns nil when no field failed, so callers can `return v.OrNil()`.
func (e *FieldError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
