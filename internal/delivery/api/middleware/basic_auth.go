package middleware

import (
	"log/slog"

	deliverycontext "accounts/internal/delivery/context"
	domainerrors "accounts/internal/domain/errors"

	"github.com/labstack/echo/v4"
)

// BasicAuthMiddleware extracts HTTP Basic credentials. Verifying them is left
// to the account service; a missing or garbled header is rejected here.
type BasicAuthMiddleware struct {
	logger *slog.Logger
}

// NewBasicAuthMiddleware is the constructor for BasicAuthMiddleware.
func NewBasicAuthMiddleware(logger *slog.Logger) *BasicAuthMiddleware {
	return &BasicAuthMiddleware{logger: logger}
}

// RequireCredentials stores the parsed credentials for the handler.
func (m *BasicAuthMiddleware) RequireCredentials(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		email, password, ok := c.Request().BasicAuth()
		if !ok {
			deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger).
				Debug("Missing or malformed Basic credentials", slog.String("path", c.Request().URL.Path))

			return domainerrors.ErrInvalidCredentials.WrapMessage("missing basic credentials")
		}

		deliverycontext.SetCredentials(c, deliverycontext.Credentials{Email: email, Password: password})

		return next(c)
	}
}
