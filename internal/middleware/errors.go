package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// problemDetails represents an RFC 7807 Problem Details response
type problemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Error types
const (
	errorTypeUnauthorized = "https://fitformula.app/errors/unauthorized"
	errorTypeForbidden    = "https://fitformula.app/errors/forbidden"
	errorTypeRateLimit    = "https://fitformula.app/errors/rate-limit"
	errorTypeInternal     = "https://fitformula.app/errors/internal"
)

func writeProblem(c echo.Context, status int, errorType, title, detail string) error {
	return c.JSON(status, problemDetails{
		Type:     errorType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

func unauthorizedError(c echo.Context, detail string) error {
	return writeProblem(c, http.StatusUnauthorized, errorTypeUnauthorized, "Unauthorized", detail)
}

func forbiddenError(c echo.Context, detail string) error {
	return writeProblem(c, http.StatusForbidden, errorTypeForbidden, "Forbidden", detail)
}

func internalError(c echo.Context, detail string) error {
	return writeProblem(c, http.StatusInternalServerError, errorTypeInternal, "Internal Server Error", detail)
}
