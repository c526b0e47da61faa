package errors

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPErrorResponse represents the structure of error responses sent to clients
type HTTPErrorResponse struct {
	Error     ErrorInfo              `json:"error"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// ErrorInfo contains the core error information
type ErrorInfo struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// Response builds the client-facing body and status for err
func Response(err error) (int, HTTPErrorResponse) {
	if ae, ok := As(err); ok {
		return ae.GetHTTPStatus(), HTTPErrorResponse{
			Error: ErrorInfo{
				Code:    ae.Code,
				Message: ae.Message,
				Details: ae.Details,
			},
			Context: ae.Context,
		}
	}

	return http.StatusInternalServerError, HTTPErrorResponse{
		Error: ErrorInfo{
			Code:    ErrInternal,
			Message: "Internal server error",
			Details: err.Error(),
		},
	}
}

// ToHTTPError converts an error to an Echo HTTP error
func ToHTTPError(err error) error {
	status, body := Response(err)
	return echo.NewHTTPError(status, body)
}

// WriteJSONError writes a structured JSON error response
func WriteJSONError(w http.ResponseWriter, err error) error {
	status, body := Response(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}

// HandleError is a helper function for consistent error handling in HTTP handlers
func HandleError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	return ToHTTPError(err)
}

// BadRequest creates a 400 Bad Request error
func BadRequest(message, details string) error {
	return echo.NewHTTPError(http.StatusBadRequest, HTTPErrorResponse{
		Error: ErrorInfo{
			Code:    ErrInvalidInput,
			Message: message,
			Details: details,
		},
	})
}

// InternalServerError creates a 500 Internal Server Error
func InternalServerError(details string) error {
	return echo.NewHTTPError(http.StatusInternalServerError, HTTPErrorResponse{
		Error: ErrorInfo{
			Code:    ErrInternal,
			Message: "Internal server error",
			Details: details,
		},
	})
}
