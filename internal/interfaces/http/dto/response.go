package dto

import "net/http"

// Response represents a standard API response
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes a single invalid request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	}
}

// NewValidationErrorResponse creates an error response carrying per-field
// validation details
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      "INVALID_ARGUMENT",
			Message:   message,
			RequestID: requestID,
			Details:   details,
		},
	}
}

// domainCodeHTTPStatus maps domain error codes to HTTP status codes.
var domainCodeHTTPStatus = map[string]int{
	"INVALID_ARGUMENT":    http.StatusBadRequest,
	"NOT_FOUND":           http.StatusNotFound,
	"PERMISSION_DENIED":   http.StatusForbidden,
	"FAILED_PRECONDITION": http.StatusUnprocessableEntity,
	"CONFLICT":            http.StatusConflict,
	"INTERNAL":            http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for a domain error code, defaulting
// to 500 for anything unrecognized.
func GetHTTPStatus(code string) int {
	if status, ok := domainCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
