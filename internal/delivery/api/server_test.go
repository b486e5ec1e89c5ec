package api

import (
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"accounts/config"
	apimiddleware "accounts/internal/delivery/api/middleware"
	"accounts/internal/delivery/api/router"
	"accounts/internal/delivery/api/router/handler"
	"accounts/internal/infra/auth"
	"accounts/internal/infra/persistence/memory"
	"accounts/internal/usecase/impl"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Auth: &config.AuthConfig{
			HashAlgorithm: config.HashBcrypt,
			BcryptCost:    bcrypt.MinCost,
			Argon2: &config.Argon2Config{
				Memory: 1024, Time: 1, Threads: 1, KeyLength: 16, SaltLength: 8,
			},
		},
		PasswordPolicy: &config.PasswordPolicyConfig{MinLength: 8},
	}
	cfg.HTTP.MaxRequestBodySize = "1KB"

	return cfg
}

// newTestEcho wires the full API over the in-memory store.
func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()

	cfg := newTestConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hasher, err := auth.NewPasswordHasher(cfg)
	require.NoError(t, err)

	store := memory.NewStore()
	accounts := impl.NewAccountService(impl.AccountServiceParams{
		UserRepo:      store,
		HealthChecker: store,
		Hasher:        hasher,
		Config:        cfg,
		Logger:        logger,
	})

	r := router.NewRouter(router.RouterParams{
		AccountHandler: handler.NewAccountHandler(accounts, logger),
		HealthHandler:  handler.NewHealthHandler(accounts),
		BasicAuth:      apimiddleware.NewBasicAuthMiddleware(logger),
	})

	return newEcho(cfg, logger, r)
}

func basicAuth(email, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+password))
}

func do(e *echo.Echo, method, path, body, authorization string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

const signupBody = `{"email":"a@b.com","password":"password1","first_name":"A","last_name":"B"}`

func TestAPI_AccountLifecycle(t *testing.T) {
	e := newTestEcho(t)

	rec := do(e, http.MethodPost, "/signup/", signupBody, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(e, http.MethodGet, "/login/", "", basicAuth("a@b.com", "password1"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/login/", "", basicAuth("a@b.com", "wrong-password"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Basic", rec.Header().Get(echo.HeaderWWWAuthenticate))
	assert.Empty(t, rec.Body.String())

	rec = do(e, http.MethodPut, "/me", `{"last_name":"C"}`, basicAuth("a@b.com", "password1"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/me", "", basicAuth("a@b.com", "password1"))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "id=1, email='a@b.com', first_name='A', last_name='C', account_created='"), body)
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "$2a$")
}

func TestAPI_SignupDuplicateEmail(t *testing.T) {
	e := newTestEcho(t)

	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/signup/", signupBody, "").Code)

	rec := do(e, http.MethodPost, "/signup/", signupBody, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestAPI_SignupValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "seven character password", body: `{"email":"a@b.com","password":"1234567","first_name":"A","last_name":"B"}`, want: http.StatusUnprocessableEntity},
		{name: "eight character password", body: `{"email":"a@b.com","password":"12345678","first_name":"A","last_name":"B"}`, want: http.StatusCreated},
		{name: "missing last name", body: `{"email":"a@b.com","password":"password1","first_name":"A"}`, want: http.StatusUnprocessableEntity},
		{name: "malformed json", body: `{"email":`, want: http.StatusUnprocessableEntity},
		{name: "wrong type", body: `{"email":"a@b.com","password":12345678,"first_name":"A","last_name":"B"}`, want: http.StatusUnprocessableEntity},
		{name: "oversized body", body: `{"email":"` + strings.Repeat("a", 2048) + `"}`, want: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho(t)

			rec := do(e, http.MethodPost, "/signup/", tt.body, "")

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnprocessableEntity {
				assert.Contains(t, rec.Body.String(), `"code":"VALIDATION_FAILED"`)
			}
		})
	}
}

func TestAPI_UpdateProfile(t *testing.T) {
	e := newTestEcho(t)
	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/signup/", signupBody, "").Code)
	creds := basicAuth("a@b.com", "password1")

	t.Run("empty names are rejected", func(t *testing.T) {
		rec := do(e, http.MethodPut, "/me", `{"first_name":""}`, creds)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("null and empty body keep stored values", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do(e, http.MethodPut, "/me", `{"first_name":null}`, creds).Code)
		assert.Equal(t, http.StatusOK, do(e, http.MethodPut, "/me", "", creds).Code)

		rec := do(e, http.MethodGet, "/me", "", creds)
		assert.Contains(t, rec.Body.String(), "first_name='A', last_name='B'")
	})

	t.Run("bad credentials win over bad body", func(t *testing.T) {
		rec := do(e, http.MethodPut, "/me", `{"first_name":""}`, basicAuth("a@b.com", "nope-nope"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("password change takes effect", func(t *testing.T) {
		rec := do(e, http.MethodPut, "/me", `{"password":"new-password"}`, creds)
		require.Equal(t, http.StatusOK, rec.Code)

		assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/login/", "", creds).Code)
		assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/login/", "", basicAuth("a@b.com", "new-password")).Code)
	})
}

func TestAPI_Authentication(t *testing.T) {
	e := newTestEcho(t)

	tests := []struct {
		name          string
		authorization string
	}{
		{name: "missing header", authorization: ""},
		{name: "garbled header", authorization: "Basic !!!"},
		{name: "bearer scheme", authorization: "Bearer token"},
		{name: "unknown user", authorization: basicAuth("nobody@b.com", "password1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, path := range []string{"/login/", "/me"} {
				rec := do(e, http.MethodGet, path, "", tt.authorization)

				assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
				assert.Equal(t, "Basic", rec.Header().Get(echo.HeaderWWWAuthenticate), path)
			}
		})
	}
}

func TestAPI_Routing(t *testing.T) {
	e := newTestEcho(t)

	rec := do(e, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	assert.Equal(t, http.StatusMethodNotAllowed, do(e, http.MethodPost, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(e, http.MethodDelete, "/me", "", "").Code)

	rec = do(e, http.MethodGet, "/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"HTTP_ERROR"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}
