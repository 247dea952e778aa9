package ports

import (
	"context"
	"time"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// UserRepository defines persistence operations for users.
//
// Reads never populate PasswordHash except for the *WithPassword variants.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByIDWithPassword(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByEmailWithPassword(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// Update writes name, email, role and avatar of user and returns the stored record.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error

	// SetResetToken stores the hashed reset token and its expiry, replacing any
	// previous one.
	SetResetToken(ctx context.Context, id, tokenHash string, expire time.Time) error
	// ClearResetToken removes the reset token fields.
	ClearResetToken(ctx context.Context, id string) error
	// FindByResetToken returns the user whose stored token hash equals
	// tokenHash and whose expiry is after now.
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error)
	// CompletePasswordReset replaces the password hash and clears the reset
	// token only if tokenHash is still the stored one and has not expired at now.
	CompletePasswordReset(ctx context.Context, id, tokenHash, passwordHash string, now time.Time) error
}
