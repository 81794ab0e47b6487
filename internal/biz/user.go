package biz

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"

	"knowledgebase/internal/domain"
	"knowledgebase/pkg/auth"
)

// AvatarStorage stores user avatar images in object storage.
type AvatarStorage interface {
	// Upload stores the object and returns its public URL.
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	// Remove deletes the object behind a previously returned URL.
	Remove(ctx context.Context, url string) error
}

// RoleSelection pairs a role name with whether the user holds it.
type RoleSelection struct {
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// UserUsecase owns registration, login and account management.
type UserUsecase struct {
	users   domain.UserRepository
	jwt     *auth.JWTManager
	avatars AvatarStorage
	log     *log.Helper
}

// NewUserUsecase creates the user usecase.
func NewUserUsecase(users domain.UserRepository, jwt *auth.JWTManager, avatars AvatarStorage, logger log.Logger) *UserUsecase {
	return &UserUsecase{
		users:   users,
		jwt:     jwt,
		avatars: avatars,
		log:     log.NewHelper(logger),
	}
}

// Register creates a new account with the default employee role. The email
// must not already be taken.
func (uc *UserUsecase) Register(ctx context.Context, email, name, surname, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)
	if email == "" || name == "" || len(password) < 8 {
		return nil, domain.ErrValidation
	}

	_, err := uc.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, domain.ErrEmailTaken
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := domain.NewUser(email, name, strings.TrimSpace(surname), hash)
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Infof("registered user %s", user.ID)
	return user, nil
}

// Login verifies the credentials and returns a signed access token. Missing
// accounts and wrong passwords are indistinguishable to the caller.
func (uc *UserUsecase) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := uc.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := uc.jwt.GenerateAccessToken(user.ID, user.FullName(), user.Email, user.Roles)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Get returns the user with the given id.
func (uc *UserUsecase) Get(ctx context.Context, id string) (*domain.User, error) {
	return uc.users.GetByID(ctx, id)
}

// List returns all users ordered by name.
func (uc *UserUsecase) List(ctx context.Context) ([]*domain.User, error) {
	return uc.users.List(ctx)
}

// UpdateNotificationSettings replaces the user's notification opt-in flags.
func (uc *UserUsecase) UpdateNotificationSettings(ctx context.Context, userID string, settings domain.NotificationSettings) error {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	user.Notify = settings
	return uc.users.Update(ctx, user)
}

// UpdateAvatar stores a new avatar image and removes the previous one. The
// old object's removal is best effort.
func (uc *UserUsecase) UpdateAvatar(ctx context.Context, userID, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	objectName := uuid.New().String() + "_" + filename
	url, err := uc.avatars.Upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		return "", err
	}

	if user.AvatarURL != "" {
		if err := uc.avatars.Remove(ctx, user.AvatarURL); err != nil {
			uc.log.Warnf("failed to remove old avatar for %s: %v", userID, err)
		}
	}

	user.AvatarURL = url
	if err := uc.users.Update(ctx, user); err != nil {
		return "", err
	}
	return url, nil
}

// Roles returns the full role set annotated with the user's membership, for
// the role management screen.
func (uc *UserUsecase) Roles(ctx context.Context, userID string) ([]RoleSelection, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	selections := make([]RoleSelection, 0, len(domain.AllRoles))
	for _, role := range domain.AllRoles {
		selections = append(selections, RoleSelection{Name: role, Selected: user.HasRole(role)})
	}
	return selections, nil
}

// UpdateRoles replaces the user's role set with the selected subset of the
// known roles. Unknown role names are rejected.
func (uc *UserUsecase) UpdateRoles(ctx context.Context, userID string, selected []string) error {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(domain.AllRoles))
	for _, role := range domain.AllRoles {
		known[role] = true
	}

	roles := make([]string, 0, len(selected))
	seen := make(map[string]bool)
	for _, role := range selected {
		if !known[role] {
			return domain.ErrRoleNotFound
		}
		if seen[role] {
			continue
		}
		seen[role] = true
		roles = append(roles, role)
	}

	user.Roles = roles
	return uc.users.Update(ctx, user)
}
