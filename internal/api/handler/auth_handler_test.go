package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/api/middleware"
	"github.com/storefront/storefront-api/internal/core/domain"
)

func newAuthHandler(stub *stubAuthService, secure bool) *AuthHandler {
	return NewAuthHandler(stub, CookieConfig{TTL: 7 * 24 * time.Hour, Secure: secure}, zerolog.Nop())
}

func sessionCookieFrom(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	t.Fatalf("session cookie not set")
	return nil
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, name, email, password string) (string, *domain.User, error) {
			if name != "Alice" || email != "alice@example.com" || password != "secret1" {
				t.Fatalf("unexpected args: %s %s %s", name, email, password)
			}
			return "token123", &domain.User{ID: "u1", Name: name, Email: email, Role: domain.RoleUser}, nil
		},
	}
	handler := newAuthHandler(stub, false)

	c, rec := newTestContext(http.MethodPost, "/api/v1/register", `{"name":"Alice","email":"alice@example.com","password":"secret1"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["success"] != true || resp["token"] != "token123" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["email"] != "alice@example.com" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
	if _, leaked := user["password"]; leaked {
		t.Fatalf("password must not be serialized")
	}

	cookie := sessionCookieFrom(t, rec.Result())
	if cookie.Value != "token123" || !cookie.HttpOnly {
		t.Fatalf("unexpected cookie: %+v", cookie)
	}
	if cookie.Secure || cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("development cookie must be Lax and not Secure: %+v", cookie)
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, name, email, password string) (string, *domain.User, error) {
			return "", nil, domain.ErrUserExists
		},
	}
	handler := newAuthHandler(stub, false)

	c, rec := newTestContext(http.MethodPost, "/api/v1/register", `{"name":"Bob","email":"bob@example.com","password":"secret1"}`)
	err := handler.Register(c)

	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("no cookie expected on failure")
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, name, email, password string) (string, *domain.User, error) {
			t.Fatalf("should not be called")
			return "", nil, nil
		},
	}
	handler := newAuthHandler(stub, false)

	for _, body := range []string{
		"not-json",
		`{"name":"Bob","email":"bob@example.com"}`,
		`{"name":"Bob","email":"not-an-email","password":"secret1"}`,
		`{"name":"Bob","email":"bob@example.com","password":"123"}`,
		`{"name":"Bob","email":"bob@example.com","password":"` + strings.Repeat("a", 73) + `"}`,
	} {
		c, _ := newTestContext(http.MethodPost, "/api/v1/register", body)
		if err := handler.Register(c); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", body, err)
		}
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			if email != "alice@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return "token123", &domain.User{ID: "u1", Name: "Alice", Role: domain.RoleAdmin}, nil
		},
	}
	handler := newAuthHandler(stub, true)

	c, rec := newTestContext(http.MethodPost, "/api/v1/login", `{"email":"alice@example.com","password":"secret"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}

	cookie := sessionCookieFrom(t, rec.Result())
	if !cookie.Secure || cookie.SameSite != http.SameSiteNoneMode {
		t.Fatalf("production cookie must be Secure with SameSite=None: %+v", cookie)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	handler := newAuthHandler(stub, false)

	c, rec := newTestContext(http.MethodPost, "/api/v1/login", `{"email":"alice@example.com","password":"bad"}`)
	err := handler.Login(c)

	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("no cookie expected on failure")
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			t.Fatalf("should not be called")
			return "", nil, nil
		},
	}
	handler := newAuthHandler(stub, false)

	c, _ := newTestContext(http.MethodPost, "/api/v1/login", "{")
	if err := handler.Login(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	var revoked string
	stub := &stubAuthService{
		logoutFn: func(ctx context.Context, token string) error {
			revoked = token
			return nil
		},
	}
	handler := newAuthHandler(stub, false)

	c, rec := newTestContext(http.MethodGet, "/api/v1/logout", "")
	c.Request().AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "token123"})

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if revoked != "token123" {
		t.Fatalf("expected token to be revoked, got %q", revoked)
	}

	cookie := sessionCookieFrom(t, rec.Result())
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Fatalf("cookie must be cleared: %+v", cookie)
	}
}

func TestAuthHandler_Logout_RevocationFailureStillLogsOut(t *testing.T) {
	stub := &stubAuthService{
		logoutFn: func(ctx context.Context, token string) error {
			return errors.New("redis down")
		},
	}
	handler := newAuthHandler(stub, false)

	c, rec := newTestContext(http.MethodGet, "/api/v1/logout", "")
	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	stub := &stubAuthService{
		forgotPasswordFn: func(ctx context.Context, email string) (string, error) {
			return email, nil
		},
	}
	handler := newAuthHandler(stub, false)

	c, rec := newTestContext(http.MethodPost, "/api/v1/password/forgot", `{"email":"alice@example.com"}`)
	if err := handler.ForgotPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp messageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message != "Email sent to: alice@example.com" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestAuthHandler_ResetPassword_UsesPathToken(t *testing.T) {
	stub := &stubAuthService{
		resetPasswordFn: func(ctx context.Context, rawToken, password, confirm string) (string, *domain.User, error) {
			if rawToken != "abc123" || password != "newpass" || confirm != "newpass" {
				t.Fatalf("unexpected args: %s %s %s", rawToken, password, confirm)
			}
			return "fresh", &domain.User{ID: "u1"}, nil
		},
	}
	handler := newAuthHandler(stub, false)

	c, rec := newTestContext(http.MethodPut, "/api/v1/password/reset/abc123", `{"password":"newpass","confirm_password":"newpass"}`)
	c.SetParamNames("token")
	c.SetParamValues("abc123")

	if err := handler.ResetPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if cookie := sessionCookieFrom(t, rec.Result()); cookie.Value != "fresh" {
		t.Fatalf("expected new session cookie, got %+v", cookie)
	}
}

func TestAuthHandler_ResetPassword_InvalidToken(t *testing.T) {
	stub := &stubAuthService{
		resetPasswordFn: func(ctx context.Context, rawToken, password, confirm string) (string, *domain.User, error) {
			return "", nil, domain.ErrResetTokenInvalid
		},
	}
	handler := newAuthHandler(stub, false)

	c, _ := newTestContext(http.MethodPut, "/api/v1/password/reset/x", `{"password":"newpass","confirm_password":"newpass"}`)
	if err := handler.ResetPassword(c); !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid, got %v", err)
	}
}

func TestAuthHandler_UpdatePassword_RequiresUser(t *testing.T) {
	handler := newAuthHandler(&stubAuthService{}, false)

	c, rec := newTestContext(http.MethodPut, "/api/v1/password/update", `{"old_password":"a","password":"b"}`)
	if err := handler.UpdatePassword(c); err != nil {
		c.Echo().HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_UpdatePassword(t *testing.T) {
	stub := &stubAuthService{
		updatePasswordFn: func(ctx context.Context, userID, oldPassword, newPassword string) (string, *domain.User, error) {
			if userID != "u1" || oldPassword != "oldpass" || newPassword != "newpass" {
				t.Fatalf("unexpected args: %s %s %s", userID, oldPassword, newPassword)
			}
			return "fresh", &domain.User{ID: "u1"}, nil
		},
	}
	handler := newAuthHandler(stub, false)

	c, rec := newTestContext(http.MethodPut, "/api/v1/password/update", `{"old_password":"oldpass","password":"newpass"}`)
	asUser(c, "u1", domain.RoleUser)

	if err := handler.UpdatePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
