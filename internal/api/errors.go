package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// ErrorBadRequest returns a 400 error response
func ErrorBadRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: message,
		Code:    http.StatusBadRequest,
	})
}

// ErrorForbidden returns a 403 error response
func ErrorForbidden(c echo.Context, message string) error {
	return c.JSON(http.StatusForbidden, ErrorResponse{
		Error:   "forbidden",
		Message: message,
		Code:    http.StatusForbidden,
	})
}

// ErrorNotFound returns a 404 error response
func ErrorNotFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   "not_found",
		Message: message,
		Code:    http.StatusNotFound,
	})
}

// ErrorInternal returns a 500 error response
func ErrorInternal(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: message,
		Code:    http.StatusInternalServerError,
	})
}

// ErrorServiceUnavailable returns a 503 error response
func ErrorServiceUnavailable(c echo.Context, message string) error {
	return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
		Error:   "service_unavailable",
		Message: message,
		Code:    http.StatusServiceUnavailable,
	})
}
