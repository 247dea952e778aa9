package handler

import "github.com/storefront/storefront-api/internal/core/domain"

type updateProfileRequest struct {
	Name  string `json:"name"  validate:"required,max=50"`
	Email string `json:"email" validate:"required,email"`
}

// uploadAvatarRequest carries the image as a base64 data URI.
type uploadAvatarRequest struct {
	Avatar string `json:"avatar" validate:"required"`
}

type updateUserRequest struct {
	Name  string `json:"name"  validate:"required,max=50"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role"  validate:"required,oneof=user admin"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

type usersResponse struct {
	Users []*domain.User `json:"users"`
}
