package types

// APIResponse is the standard response envelope for every endpoint.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError carries a stable machine-readable code plus a human message.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func NewSuccessResponse(data interface{}) *APIResponse {
	return &APIResponse{Success: true, Data: data}
}

func NewErrorResponse(code, message string) *APIResponse {
	return &APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
	}
}

func NewErrorResponseWithDetails(code, message string, details map[string]interface{}) *APIResponse {
	return &APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message, Details: details},
	}
}

// Error codes returned by this API.
const (
	ErrorCodeValidation     = "VALIDATION_ERROR"
	ErrorCodeNotFound       = "NOT_FOUND"
	ErrorCodeInternal       = "INTERNAL_ERROR"
	ErrorCodeRateLimit      = "RATE_LIMIT_EXCEEDED"
	ErrorCodeAlertsNotReady = "ALERTS_NOT_CONFIGURED"
	ErrorCodeAlertsFailed   = "ALERT_DELIVERY_FAILED"
	ErrorCodeInvalidRequest = "INVALID_REQUEST"
)
