package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

const (
	bcryptCost      = 10
	resetTokenBytes = 20
	defaultTokenTTL = 24 * time.Hour
)

// AuthConfig holds the credential manager settings.
type AuthConfig struct {
	JWTSecret   string
	TokenTTL    time.Duration
	FrontendURL string
}

// sessionClaims is the payload of a session token.
type sessionClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// AuthService implements registration, login, session tokens and the
// password reset flow.
type AuthService struct {
	users    ports.UserRepository
	mailer   ports.Mailer
	denylist ports.TokenDenylist
	secret   []byte
	tokenTTL time.Duration
	resetURL string
	now      ports.Clock
	logger   zerolog.Logger
}

// NewAuthService wires the credential manager. denylist may be nil, in which
// case logout only clears the client cookie.
func NewAuthService(
	users ports.UserRepository,
	mailer ports.Mailer,
	denylist ports.TokenDenylist,
	cfg AuthConfig,
	logger zerolog.Logger,
) *AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &AuthService{
		users:    users,
		mailer:   mailer,
		denylist: denylist,
		secret:   []byte(cfg.JWTSecret),
		tokenTTL: ttl,
		resetURL: strings.TrimRight(cfg.FrontendURL, "/") + "/password/reset/",
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

// Register creates an account and returns a session token for it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, *domain.User, error) {
	if err := validateRegistration(name, email, password); err != nil {
		return "", nil, err
	}
	email = normalizeEmail(email)

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return "", nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", nil, fmt.Errorf("register: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", nil, err
	}

	now := s.now()
	created, err := s.users.Create(ctx, &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return "", nil, err
	}
	created.PasswordHash = ""

	token, err := s.IssueToken(created.ID)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Msg("user registered")
	return token, created, nil
}

// Login checks credentials and returns a session token. Unknown emails and
// wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return "", nil, err
	}

	user, err := s.users.FindByEmailWithPassword(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("login: %w", err)
	}

	if !CheckPassword(user.PasswordHash, password) {
		return "", nil, domain.ErrInvalidCredentials
	}
	user.PasswordHash = ""

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Logout revokes token until its own expiry. Empty or invalid tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" || s.denylist == nil {
		return nil
	}
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	return s.denylist.Revoke(ctx, token, claims.ExpiresAt.Time)
}

// IssueResetToken stores the hash of a fresh reset token on the user with the
// given email and returns the raw token.
func (s *AuthService) IssueResetToken(ctx context.Context, email string) (string, *domain.User, error) {
	if !validEmail(email) {
		return "", nil, domain.Validation("please enter a valid email")
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", nil, err
	}

	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, fmt.Errorf("generate reset token: %w", err)
	}
	raw := hex.EncodeToString(buf)

	if err := s.users.SetResetToken(ctx, user.ID, s.hashResetToken(raw), s.now().Add(domain.ResetTokenTTL)); err != nil {
		return "", nil, fmt.Errorf("store reset token: %w", err)
	}
	return raw, user, nil
}

// ForgotPassword issues a reset token and emails the recovery link. If the
// email cannot be delivered the stored token is cleared again.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	raw, user, err := s.IssueResetToken(ctx, email)
	if err != nil {
		return "", err
	}

	body, err := renderResetEmail(user.Name, s.resetURL+raw)
	if err == nil {
		err = s.mailer.Send(ctx, ports.MailMessage{
			To:      user.Email,
			Subject: "Password Recovery",
			Body:    body,
		})
	}
	if err != nil {
		if clearErr := s.users.ClearResetToken(ctx, user.ID); clearErr != nil {
			s.logger.Error().Err(clearErr).Str("user_id", user.ID).Msg("failed to roll back reset token")
		}
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("reset email not sent")
		return "", fmt.Errorf("%w: %w", domain.ErrEmailDelivery, err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("reset email sent")
	return user.Email, nil
}

// ResetPassword redeems a reset token, replaces the password, and returns a
// fresh session token.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, password, confirmPassword string) (string, *domain.User, error) {
	tokenHash := s.hashResetToken(rawToken)

	user, err := s.users.FindByResetToken(ctx, tokenHash, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrResetTokenInvalid
		}
		return "", nil, fmt.Errorf("reset password: %w", err)
	}

	if password != confirmPassword {
		return "", nil, domain.ErrPasswordMismatch
	}
	if err := validatePassword(password); err != nil {
		return "", nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", nil, err
	}
	if err := s.users.CompletePasswordReset(ctx, user.ID, tokenHash, hash, s.now()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrResetTokenInvalid
		}
		return "", nil, fmt.Errorf("reset password: %w", err)
	}
	user.PasswordHash = ""
	user.ResetPasswordToken = ""
	user.ResetPasswordExpire = nil

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info().Str("user_id", user.ID).Msg("password reset")
	return token, user, nil
}

// UpdatePassword changes the password of an authenticated user.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) (string, *domain.User, error) {
	user, err := s.users.FindByIDWithPassword(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	if !CheckPassword(user.PasswordHash, oldPassword) {
		return "", nil, domain.ErrIncorrectOldPassword
	}
	if err := validatePassword(newPassword); err != nil {
		return "", nil, err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return "", nil, err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return "", nil, err
	}
	user.PasswordHash = ""

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Authenticate resolves a session token to its (still existing) user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.VerifyToken(token)
	if err != nil {
		return nil, err
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, token)
		if err != nil {
			s.logger.Warn().Err(err).Msg("denylist lookup failed, accepting token")
		} else if revoked {
			return nil, domain.ErrInvalidToken
		}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// IssueToken signs a session token for userID.
func (s *AuthService) IssueToken(userID string) (string, error) {
	now := s.now()
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken returns the user id carried by a valid session token.
func (s *AuthService) VerifyToken(token string) (string, error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", domain.ErrInvalidToken
	}
	if claims.UserID == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.UserID, nil
}

func (s *AuthService) parse(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// hashResetToken is HMAC-SHA256 of raw keyed with the session secret.
func (s *AuthService) hashResetToken(raw string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
