package v1

import (
	stderrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/tourdesk/server/internal/errors"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// httpStatus maps an error code to its HTTP status.
func httpStatus(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case errors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case errors.ErrCodeCalendarUnavailable, errors.ErrCodeCalendarWriteFailed:
		return http.StatusBadGateway
	case errors.ErrCodeLLMUnavailable:
		return http.StatusServiceUnavailable
	case errors.ErrCodeTimeout, errors.ErrCodeContextCanceled:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(c echo.Context, err error) error {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Code: string(errors.ErrCodeInternal), Error: "internal error"})
	}
	msg := appErr.Message
	if appErr.Cause != nil {
		msg += ": " + appErr.Cause.Error()
	}
	return c.JSON(httpStatus(appErr.Code), ErrorResponse{Code: string(appErr.Code), Error: msg})
}
