// Package handler contains the HTTP handlers for the account API.
package handler

import (
	"io"
	"log/slog"
	"net/http"

	"accounts/internal/delivery/api/response"
	deliverycontext "accounts/internal/delivery/context"
	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/errors"
	"accounts/internal/usecase"

	"github.com/labstack/echo/v4"
)

// AccountHandler serves signup, login and the authenticated profile endpoints.
type AccountHandler struct {
	uc     usecase.AccountUsecase
	logger *slog.Logger
}

// NewAccountHandler is the constructor for AccountHandler, injected by Fx.
func NewAccountHandler(uc usecase.AccountUsecase, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		uc:     uc,
		logger: logger,
	}
}

// SignupRequest is the body of POST /signup/.
type SignupRequest struct {
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

// UpdateProfileRequest is the merge-patch body of PUT /me. A missing or null
// field leaves the stored value unchanged.
type UpdateProfileRequest struct {
	Password  *string `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// Signup handles account creation.
func (h *AccountHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := decodeJSON(c, &req, false); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	_, err := h.uc.Signup(c.Request().Context(), &usecase.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Empty(c, http.StatusCreated)
}

// Login checks the Basic credentials.
func (h *AccountHandler) Login(c echo.Context) error {
	creds, err := credentials(c)
	if err != nil {
		return err
	}

	if _, err := h.uc.Authenticate(c.Request().Context(), creds); err != nil {
		return errors.WithStack(err)
	}

	return response.Empty(c, http.StatusOK)
}

// GetMe returns the caller's profile as text.
func (h *AccountHandler) GetMe(c echo.Context) error {
	creds, err := credentials(c)
	if err != nil {
		return err
	}

	profile, err := h.uc.GetProfile(c.Request().Context(), creds)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Text(c, http.StatusOK, profile.String())
}

// UpdateMe applies a partial profile update for the caller.
func (h *AccountHandler) UpdateMe(c echo.Context) error {
	creds, err := credentials(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := decodeJSON(c, &req, true); err != nil {
		return err
	}

	_, err = h.uc.UpdateProfile(c.Request().Context(), &usecase.UpdateProfileInput{
		Credentials: *creds,
		Patch: entity.ProfilePatch{
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		},
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Empty(c, http.StatusOK)
}

func credentials(c echo.Context) (*usecase.Credentials, error) {
	creds, ok := deliverycontext.GetCredentials(c)
	if !ok {
		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("credentials not found in context")
	}

	return &usecase.Credentials{Email: creds.Email, Password: creds.Password}, nil
}

// decodeJSON reads the body as JSON whatever the Content-Type. allowEmpty
// accepts a missing body and leaves dst untouched.
func decodeJSON(c echo.Context, dst any, allowEmpty bool) error {
	err := c.Echo().JSONSerializer.Deserialize(c, dst)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		if allowEmpty {
			return nil
		}

		return domainerrors.ErrValidationFailed.WithDetails("request body is required")
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Code == http.StatusRequestEntityTooLarge {
		return errors.WithStack(err)
	}

	return domainerrors.ErrValidationFailed.WithDetails("request body must be a JSON object")
}
