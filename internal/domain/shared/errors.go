package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithMessage returns a copy of the error carrying a more specific message
// while keeping the original code, so callers can still match on it.
func (e *DomainError) WithMessage(message string) *DomainError {
	return &DomainError{Code: e.Code, Message: message}
}

// Is allows errors.Is matching by code, so copies created via WithMessage
// still compare equal to their sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Common domain errors
var (
	ErrInvalidArgument    = NewDomainError("INVALID_ARGUMENT", "Invalid or missing input")
	ErrNotFound           = NewDomainError("NOT_FOUND", "Resource not found")
	ErrPermissionDenied   = NewDomainError("PERMISSION_DENIED", "Not authorized to perform this action")
	ErrFailedPrecondition = NewDomainError("FAILED_PRECONDITION", "Operation precondition not met")
	ErrConflict           = NewDomainError("CONFLICT", "Resource was modified by another process")
	ErrInternal           = NewDomainError("INTERNAL", "Internal error")
)
