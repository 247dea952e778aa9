package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ResetTokenTTL is how long a password reset token stays redeemable.
const ResetTokenTTL = 30 * time.Minute

// Avatar references an image held by the object storage collaborator.
type Avatar struct {
	PublicID string `json:"public_id" bson:"public_id"`
	URL      string `json:"url" bson:"url"`
}

// User models an account holder. PasswordHash is only populated by the
// repository methods that explicitly ask for it.
type User struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"`
	Avatar              *Avatar    `json:"avatar,omitempty"`
	Role                string     `json:"role"`
	ResetPasswordToken  string     `json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// HasAvatar reports whether the user has an uploaded avatar.
func (u *User) HasAvatar() bool {
	return u.Avatar != nil && u.Avatar.PublicID != ""
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
