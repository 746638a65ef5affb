package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"voiceguide-backend/internal/service"
)

var statusByKind = []struct {
	kind   error
	status int
}{
	{service.ErrInvalid, http.StatusBadRequest},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrConflict, http.StatusConflict},
	{service.ErrUpstream, http.StatusBadGateway},
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrInternal, http.StatusInternalServerError},
}

// ErrorHandler renders every error as {"detail": "..."}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, detail := http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)

	var domainErr *service.Error
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &domainErr):
		status, detail = statusFor(domainErr), domainErr.Detail
		if status >= http.StatusInternalServerError {
			slog.Error("request failed", "method", c.Request().Method, "path", c.Path(), "err", err)
		}
	case errors.As(err, &httpErr):
		status = httpErr.Code
		detail = fmt.Sprint(httpErr.Message)
	default:
		slog.Error("unhandled error", "method", c.Request().Method, "path", c.Path(), "err", err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, map[string]string{"detail": detail})
	}
	if writeErr != nil {
		slog.Error("write error response", "err", writeErr)
	}
}

func statusFor(err *service.Error) int {
	for _, m := range statusByKind {
		if err.Kind == m.kind {
			return m.status
		}
	}
	return http.StatusInternalServerError
}
