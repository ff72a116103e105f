package types

import "net/http"

// ErrorResponse is the JSON body of every error the relay returns before a
// media stream has started.
type ErrorResponse struct {
	// Error contains the error details.
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains detailed error information.
type ErrorDetail struct {
	// Message is a short human-readable error message. It never carries
	// backend internals.
	Message string `json:"message"`

	// Type categorizes the error.
	// Possible values: "invalid_request_error", "not_found",
	// "range_not_satisfiable", "method_not_allowed", "server_error",
	// "bad_gateway", "service_unavailable".
	Type string `json:"type"`

	// Code is a machine-readable error code.
	Code string `json:"code,omitempty"`
}

// Error type constants.
const (
	// ErrorTypeInvalidRequest indicates a client-side error (400).
	ErrorTypeInvalidRequest = "invalid_request_error"

	// ErrorTypeNotFound indicates the content does not exist (404).
	ErrorTypeNotFound = "not_found"

	// ErrorTypeMethodNotAllowed indicates an unsupported HTTP method (405).
	ErrorTypeMethodNotAllowed = "method_not_allowed"

	// ErrorTypeRangeNotSatisfiable indicates a range outside the file (416).
	ErrorTypeRangeNotSatisfiable = "range_not_satisfiable"

	// ErrorTypeServerError indicates an internal server error (500).
	ErrorTypeServerError = "server_error"

	// ErrorTypeBadGateway indicates the backend failed (502).
	ErrorTypeBadGateway = "bad_gateway"

	// ErrorTypeServiceUnavailable indicates the relay is not ready (503).
	ErrorTypeServiceUnavailable = "service_unavailable"
)

// Error code constants.
const (
	// CodeBadIdentifier indicates the path identifier is not a valid client ID.
	CodeBadIdentifier = "bad_identifier"

	// CodeContentNotFound indicates the message is missing or has no media.
	CodeContentNotFound = "content_not_found"

	// CodeRangeNotSatisfiable indicates the range starts past the end of the file.
	CodeRangeNotSatisfiable = "range_not_satisfiable"

	// CodeBackendUnavailable indicates the backend session could not be
	// established or lookups kept failing.
	CodeBackendUnavailable = "backend_unavailable"

	// CodeTransferFailed indicates the backend failed while sending bytes.
	CodeTransferFailed = "transfer_failed"

	// CodeMethodNotAllowed indicates an unsupported HTTP method.
	CodeMethodNotAllowed = "method_not_allowed"

	// CodeInternalError indicates an internal server error.
	CodeInternalError = "internal_error"
)

// NewErrorResponse creates a new error response with the given details.
func NewErrorResponse(message, errorType, code string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Message: message,
			Type:    errorType,
			Code:    code,
		},
	}
}

// NewInvalidRequestError creates an error response for invalid requests (400).
func NewInvalidRequestError(message, code string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeInvalidRequest, code)
}

// NewNotFoundError creates an error response for missing content (404).
func NewNotFoundError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeNotFound, CodeContentNotFound)
}

// NewServerError creates an error response for internal server errors (500).
func NewServerError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeServerError, CodeInternalError)
}

// NewBadGatewayError creates an error response for backend failures (502).
func NewBadGatewayError(message, code string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeBadGateway, code)
}

// HTTPStatusCode returns the appropriate HTTP status code for the error type.
func (e *ErrorDetail) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrorTypeRangeNotSatisfiable:
		return http.StatusRequestedRangeNotSatisfiable
	case ErrorTypeBadGateway:
		return http.StatusBadGateway
	case ErrorTypeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
