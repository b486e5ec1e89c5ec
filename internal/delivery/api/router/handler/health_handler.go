package handler

import (
	"net/http"

	"accounts/internal/delivery/api/response"
	"accounts/internal/errors"
	"accounts/internal/usecase"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports whether the service can reach its store.
type HealthHandler struct {
	uc usecase.AccountUsecase
}

// NewHealthHandler is the constructor for HealthHandler.
func NewHealthHandler(uc usecase.AccountUsecase) *HealthHandler {
	return &HealthHandler{uc: uc}
}

// Check answers 200 when the store responds and 503 otherwise.
func (h *HealthHandler) Check(c echo.Context) error {
	if err := h.uc.Health(c.Request().Context()); err != nil {
		return errors.WithStack(err)
	}

	return response.Empty(c, http.StatusOK)
}
