package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

const (
	avatarFolder   = "avatars"
	maxAvatarBytes = 5 << 20
)

// avatarExtensions maps the accepted avatar content types to the extension
// of the stored object.
var avatarExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// UserService covers the profile endpoints and admin user management.
type UserService struct {
	users   ports.UserRepository
	storage ports.ObjectStorage
	cleanup ports.CleanupScheduler
	now     ports.Clock
	logger  zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	storage ports.ObjectStorage,
	cleanup ports.CleanupScheduler,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		users:   users,
		storage: storage,
		cleanup: cleanup,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger,
	}
}

func (s *UserService) Profile(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, id, name, email string) (*domain.User, error) {
	if err := validateProfile(name, email); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Name = strings.TrimSpace(name)
	user.Email = normalizeEmail(email)
	user.UpdatedAt = s.now()
	return s.users.Update(ctx, user)
}

// UploadAvatar stores the image carried by dataURI and makes it the user's
// avatar. The previous avatar, if any, is removed asynchronously once the new
// one is saved.
func (s *UserService) UploadAvatar(ctx context.Context, id, dataURI string) (*domain.User, error) {
	contentType, data, err := decodeImageDataURI(dataURI)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	filename := uuid.NewString() + "." + avatarExtensions[contentType]
	obj, err := s.storage.Upload(ctx, avatarFolder, filename, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	var previous string
	if user.HasAvatar() {
		previous = user.Avatar.PublicID
	}
	user.Avatar = &domain.Avatar{PublicID: obj.PublicID, URL: obj.URL}
	user.UpdatedAt = s.now()

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		// the new object is orphaned; drop it
		s.cleanup.ScheduleDelete(obj.PublicID)
		return nil, err
	}
	if previous != "" {
		s.cleanup.ScheduleDelete(previous)
	}

	s.logger.Info().Str("user_id", id).Str("public_id", obj.PublicID).Msg("avatar uploaded")
	return updated, nil
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// Update applies admin edits to name, email and role.
func (s *UserService) Update(ctx context.Context, id string, input ports.UpdateUserInput) (*domain.User, error) {
	if err := validateProfile(input.Name, input.Email); err != nil {
		return nil, err
	}
	if !domain.ValidRole(input.Role) {
		return nil, domain.Validationf("role must be %s or %s", domain.RoleUser, domain.RoleAdmin)
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Name = strings.TrimSpace(input.Name)
	user.Email = normalizeEmail(input.Email)
	user.Role = input.Role
	user.UpdatedAt = s.now()

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", id).Str("role", input.Role).Msg("user updated by admin")
	return updated, nil
}

// Delete removes the user and schedules removal of their avatar.
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	if user.HasAvatar() {
		s.cleanup.ScheduleDelete(user.Avatar.PublicID)
	}
	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

// decodeImageDataURI parses "data:image/<type>;base64,<payload>".
func decodeImageDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return "", nil, domain.Validation("avatar must be a base64 data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, domain.Validation("avatar must be a base64 data URI")
	}
	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, domain.Validation("avatar must be base64 encoded")
	}
	contentType = strings.ToLower(contentType)
	if _, ok := avatarExtensions[contentType]; !ok {
		return "", nil, domain.Validation("avatar must be a png, jpeg, gif or webp image")
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > maxAvatarBytes+2 {
		return "", nil, domain.Validationf("avatar cannot exceed %d MiB", maxAvatarBytes>>20)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, domain.Validation("avatar is not valid base64")
	}
	if len(data) == 0 {
		return "", nil, domain.Validation("avatar is empty")
	}
	if len(data) > maxAvatarBytes {
		return "", nil, domain.Validationf("avatar cannot exceed %d MiB", maxAvatarBytes>>20)
	}
	return contentType, data, nil
}

