package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SuccessOK returns a 200 response with data
func SuccessOK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// SuccessCreated returns a 201 response with data
func SuccessCreated(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

// SuccessNoContent returns a 204 response
func SuccessNoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}
