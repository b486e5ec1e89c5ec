package middleware

import (
	"log/slog"
	"net/http"

	"accounts/internal/delivery/api/response"
	deliverycontext "accounts/internal/delivery/context"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/errors"

	"github.com/labstack/echo/v4"
)

// ErrorMiddleware handles errors in the HTTP pipeline
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError is the echo.HTTPErrorHandler. Authentication failures become
// 401 with a Basic challenge, service-side kinds an empty 5xx, and everything
// else the JSON error envelope.
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		m.writeAppError(c, err, appErr)

		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		m.writeHTTPError(c, httpErr)

		return
	}

	m.log(c).Error("Unhandled error",
		slog.Any("error", err),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)

	// For 500 errors, do not expose internal error details to the client
	_ = response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error, please try again later", nil)
}

func (m *ErrorMiddleware) writeAppError(c echo.Context, err error, appErr domainerrors.AppError) {
	status := appErr.HTTPCode()

	switch {
	case status == http.StatusUnauthorized:
		_ = response.Unauthorized(c)
	case status >= http.StatusInternalServerError:
		m.log(c).Error("Request failed",
			slog.String("code", appErr.ErrorCode()),
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
		)
		_ = response.Empty(c, status)
	default:
		_ = response.Error(c, status, appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}
}

func (m *ErrorMiddleware) writeHTTPError(c echo.Context, httpErr *echo.HTTPError) {
	if httpErr.Code == http.StatusUnauthorized {
		_ = response.Unauthorized(c)

		return
	}

	message := http.StatusText(httpErr.Code)
	if msg, ok := httpErr.Message.(string); ok {
		message = msg
	}

	_ = response.Error(c, httpErr.Code, "HTTP_ERROR", message, nil)
}

func (m *ErrorMiddleware) log(c echo.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger)
}
