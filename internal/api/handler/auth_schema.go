package handler

import "github.com/storefront/storefront-api/internal/core/domain"

type registerRequest struct {
	Name     string `json:"name"     validate:"required,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Password        string `json:"password"         validate:"required,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type updatePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	Password    string `json:"password"     validate:"required,max=72"`
}

// authResponse is returned by every operation that starts a session.
type authResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    *domain.User `json:"user"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type successResponse struct {
	Success bool `json:"success"`
}
