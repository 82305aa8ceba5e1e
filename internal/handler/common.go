package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/minhvo/cafe-pos/internal/repository"
	"github.com/minhvo/cafe-pos/internal/service"
)

// paramID parses a numeric path parameter. Zero is never a valid ID.
func paramID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// getUserID extracts the authenticated staff ID stored by the JWT
// middleware. Numeric JWT claims decode as float64.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// fail translates repository and service sentinels into JSON error
// responses. Unrecognized errors become a 500 with a generic message
// so internals never leak to the terminal.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrAlreadyPaid):
		return c.JSON(http.StatusConflict, echo.Map{"error": "order already paid"})
	case errors.Is(err, repository.ErrEmptyOrder):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "order has no items"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrRetryExhausted):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "busy, try again"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
