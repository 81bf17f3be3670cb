// Package types holds the JSON error envelope shared by every handler.
package types

// ErrorBody carries the machine-readable part of a failed request. Code is
// one of the registry's families: AUTH_400, AUTH_401, AUTH_403 and AUTH_500
// on the auth surface, DEVICE_400, DEVICE_404 and DEVICE_500 on the device
// surface.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse is the envelope: clients switch on error.code, the dashboard
// shows error.message verbatim.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewErrorResponse builds a consistent API error payload.
// details can be string, map, struct, etc.
func NewErrorResponse(code, message string, details any) ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}
