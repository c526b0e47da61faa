package server

import (
	"net/http"

	"arenad/internal/errors"
	"arenad/internal/logger"

	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every error as an HTTPErrorResponse
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, body := errorBody(err)
	body.RequestID = c.Response().Header().Get(echo.HeaderXRequestID)

	entry := logger.GetLogger(c).WithError(err).WithField("status", code)
	if code >= http.StatusInternalServerError {
		entry.Error("Request error")
	} else {
		entry.Debug("Request rejected")
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, body)
}

// errorBody classifies err. Structured errors keep their code; echo's own
// errors (unknown route, wrong method, timeout) get one from their status.
func errorBody(err error) (int, errors.HTTPErrorResponse) {
	if he, ok := err.(*echo.HTTPError); ok {
		switch msg := he.Message.(type) {
		case errors.HTTPErrorResponse:
			return he.Code, msg
		case string:
			return he.Code, errors.HTTPErrorResponse{
				Error: errors.ErrorInfo{Code: codeForStatus(he.Code), Message: msg},
			}
		default:
			return he.Code, errors.HTTPErrorResponse{
				Error: errors.ErrorInfo{Code: codeForStatus(he.Code), Message: http.StatusText(he.Code)},
			}
		}
	}
	return errors.Response(err)
}

func codeForStatus(status int) errors.ErrorCode {
	switch status {
	case http.StatusNotFound:
		return errors.ErrNotFound
	case http.StatusBadRequest, http.StatusMethodNotAllowed, http.StatusUnsupportedMediaType:
		return errors.ErrInvalidInput
	case http.StatusServiceUnavailable, http.StatusRequestTimeout:
		return errors.ErrTimeout
	default:
		return errors.ErrInternal
	}
}
