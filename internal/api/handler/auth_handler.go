package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/api/metrics"
	"github.com/storefront/storefront-api/internal/api/middleware"
	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	TTL time.Duration
	// Secure also switches SameSite from Lax to None.
	Secure bool
}

type AuthHandler struct {
	authService ports.AuthService
	cookie      CookieConfig
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, cookie CookieConfig, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie, log: log}
}

// Register creates a new user account and starts a session.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Failure      500   {object}  map[string]any
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	recordAuth("register", err)
	if err != nil {
		return err
	}

	return h.sendSession(c, http.StatusCreated, token, user)
}

// Login authenticates a user and starts a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	recordAuth("login", err)
	if err != nil {
		return err
	}

	return h.sendSession(c, http.StatusOK, token, user)
}

// Logout revokes the current session token and clears the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	// Logout is public; a missing token still clears the cookie.
	token, _ := middleware.TokenFromRequest(c)

	err := h.authService.Logout(c.Request().Context(), token)
	recordAuth("logout", err)
	if err != nil {
		// The cookie is cleared either way; a denylist outage must not keep
		// the client logged in.
		h.log.Warn().Err(err).Msg("session revocation failed")
	}

	c.SetCookie(h.sessionCookie("", time.Unix(0, 0)))
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Logged out successfully"})
}

// ForgotPassword emails a password recovery link.
//
// @Summary      Request a password reset email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Failure      500   {object}  map[string]any
// @Router       /password/forgot [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	recipient, err := h.authService.ForgotPassword(c.Request().Context(), req.Email)
	recordAuth("forgot_password", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Email sent to: " + recipient})
}

// ResetPassword redeems a reset token and starts a new session.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  path      string                true  "Reset token"
// @Param        body   body      resetPasswordRequest  true  "New password"
// @Success      200    {object}  authResponse
// @Failure      400    {object}  map[string]any
// @Router       /password/reset/{token} [put]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.ResetPassword(c.Request().Context(), c.Param("token"), req.Password, req.ConfirmPassword)
	recordAuth("reset_password", err)
	if err != nil {
		return err
	}

	return h.sendSession(c, http.StatusOK, token, user)
}

// UpdatePassword changes the password of the current user.
//
// @Summary      Update password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updatePasswordRequest  true  "Old and new password"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Router       /password/update [put]
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updatePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.UpdatePassword(c.Request().Context(), userID, req.OldPassword, req.Password)
	recordAuth("update_password", err)
	if err != nil {
		return err
	}

	return h.sendSession(c, http.StatusOK, token, user)
}

func (h *AuthHandler) sendSession(c echo.Context, status int, token string, user *domain.User) error {
	c.SetCookie(h.sessionCookie(token, time.Now().Add(h.cookie.TTL)))
	return c.JSON(status, authResponse{Success: true, Token: token, User: user})
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if h.cookie.Secure {
		cookie.SameSite = http.SameSiteNoneMode
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	return cookie
}

func recordAuth(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.AuthAttemptsTotal.WithLabelValues(operation, result).Inc()
}
