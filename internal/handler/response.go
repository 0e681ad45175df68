package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://fitformula.app/errors/validation"
	ErrorTypeNotFound     = "https://fitformula.app/errors/not-found"
	ErrorTypeUnauthorized = "https://fitformula.app/errors/unauthorized"
	ErrorTypeForbidden    = "https://fitformula.app/errors/forbidden"
	ErrorTypeConflict     = "https://fitformula.app/errors/conflict"
	ErrorTypeInternal     = "https://fitformula.app/errors/internal"
	ErrorTypeWorkoutFull  = "https://fitformula.app/errors/workout-full"
)

// MessageResponse is the body of operations that only confirm success
type MessageResponse struct {
	Message string `json:"message"`
}

// problem writes an RFC 7807 body whose instance is the request path
func problem(c echo.Context, status int, errorType, title, detail string) error {
	return c.JSON(status, ProblemDetails{
		Type:     errorType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewValidationError reports rejected input, optionally per field
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewWorkoutFullError reports a registration that would exceed capacity.
// Clients have always received 400 for this case, with its own type URI.
func NewWorkoutFullError(c echo.Context, detail string) error {
	return problem(c, http.StatusBadRequest, ErrorTypeWorkoutFull, "Workout Full", detail)
}

func NewNotFoundError(c echo.Context, detail string) error {
	return problem(c, http.StatusNotFound, ErrorTypeNotFound, "Not Found", detail)
}

func NewUnauthorizedError(c echo.Context, detail string) error {
	return problem(c, http.StatusUnauthorized, ErrorTypeUnauthorized, "Unauthorized", detail)
}

func NewForbiddenError(c echo.Context, detail string) error {
	return problem(c, http.StatusForbidden, ErrorTypeForbidden, "Forbidden", detail)
}

func NewConflictError(c echo.Context, detail string) error {
	return problem(c, http.StatusConflict, ErrorTypeConflict, "Conflict", detail)
}

func NewInternalError(c echo.Context, detail string) error {
	return problem(c, http.StatusInternalServerError, ErrorTypeInternal, "Internal Server Error", detail)
}

// parseIDParam reads a positive int32 path parameter
func parseIDParam(c echo.Context, name string) (int32, bool) {
	return parseID(c.Param(name))
}

// parseIDQuery reads a positive int32 query parameter
func parseIDQuery(c echo.Context, name string) (int32, bool) {
	return parseID(c.QueryParam(name))
}

func parseID(raw string) (int32, bool) {
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}
