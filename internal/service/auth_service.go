package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"newsportal/internal/auth"
	apperr "newsportal/internal/errors"
	"newsportal/internal/model"
	"newsportal/internal/repository"
)

const bcryptCost = 10

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = apperr.Unauthorized("invalid email or password", "INVALID_CREDENTIALS")
	// ErrUserAlreadyExists is returned when the email or username is taken.
	ErrUserAlreadyExists = apperr.Validation("user with this email or username already exists", "USER_ALREADY_EXISTS")
	// ErrWrongPassword is returned when the current password does not match.
	ErrWrongPassword = apperr.Unauthorized("current password is incorrect", "INVALID_PASSWORD")
	// ErrAccountDisabled is returned when an inactive user tries to log in.
	ErrAccountDisabled = apperr.Unauthorized("account is disabled", "ACCOUNT_DISABLED")
	// ErrTooManyAttempts is returned while an email is locked out after failed logins.
	ErrTooManyAttempts = apperr.New(apperr.ErrTooManyRequests, "too many failed login attempts, try again later", "LOGIN_LOCKED")
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// ProfileInput carries profile changes; empty fields are left unchanged.
type ProfileInput struct {
	FirstName string
	LastName  string
	Bio       string
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string
	User  *model.User
}

// AuthService handles accounts, credentials and profiles.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context, caller *auth.Identity) (*model.User, error)
	UpdateProfile(ctx context.Context, caller *auth.Identity, in ProfileInput) (*model.User, error)
	ChangePassword(ctx context.Context, caller *auth.Identity, current, next string) error
	UpdateAvatar(ctx context.Context, caller *auth.Identity, up Upload) (*model.User, error)
}

type authService struct {
	users    repository.UserRepository
	tokens   *auth.JWTService
	attempts auth.AttemptStoreInterface
	uploader *Uploader
	now      func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, tokens *auth.JWTService, attempts auth.AttemptStoreInterface, uploader *Uploader) AuthService {
	return &authService{
		users:    users,
		tokens:   tokens,
		attempts: attempts,
		uploader: uploader,
		now:      time.Now,
	}
}

func identityOf(u *model.User) auth.Identity {
	return auth.Identity{ID: u.ID.String(), Username: u.Username, Role: u.Role}
}

// Register creates a user with role "user" and returns a token for it.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	existing, err := s.users.FindByEmailOrUsername(ctx, email, username)
	if err == nil && existing != nil {
		return nil, ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         model.RoleUser,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(identityOf(user))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials, records the login time and returns a token.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if locked, _ := s.attempts.Locked(ctx, email); locked {
		return nil, ErrTooManyAttempts
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find user: %w", err)
		}
		_ = s.attempts.RecordFailure(ctx, email)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		_ = s.attempts.RecordFailure(ctx, email)
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}
	_ = s.attempts.Reset(ctx, email)

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		slog.Warn("update last login failed", "user_id", user.ID, "error", err)
	}
	user.LastLogin = &now

	token, err := s.tokens.Issue(identityOf(user))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *authService) currentUser(ctx context.Context, caller *auth.Identity) (*model.User, error) {
	id, err := callerID(caller)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperr.ErrUserNotFound)
	}
	return user, nil
}

func (s *authService) Me(ctx context.Context, caller *auth.Identity) (*model.User, error) {
	return s.currentUser(ctx, caller)
}

func (s *authService) UpdateProfile(ctx context.Context, caller *auth.Identity, in ProfileInput) (*model.User, error) {
	user, err := s.currentUser(ctx, caller)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(in.FirstName); v != "" {
		user.FirstName = v
	}
	if v := strings.TrimSpace(in.LastName); v != "" {
		user.LastName = v
	}
	if v := strings.TrimSpace(in.Bio); v != "" {
		user.Bio = v
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, caller *auth.Identity, current, next string) error {
	user, err := s.currentUser(ctx, caller)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hashed)
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// UpdateAvatar stores a new avatar image and removes the previous file.
func (s *authService) UpdateAvatar(ctx context.Context, caller *auth.Identity, up Upload) (*model.User, error) {
	user, err := s.currentUser(ctx, caller)
	if err != nil {
		return nil, err
	}

	stored, err := s.uploader.Save(ctx, "avatars", up, AvatarTypes)
	if err != nil {
		return nil, err
	}

	oldKey := user.AvatarKey
	user.Avatar = &stored.URL
	user.AvatarKey = stored.Key
	if err := s.users.Update(ctx, user); err != nil {
		if rmErr := s.uploader.Remove(ctx, stored.Key); rmErr != nil {
			slog.Warn("remove orphaned avatar failed", "key", stored.Key, "error", rmErr)
		}
		return nil, fmt.Errorf("update avatar: %w", err)
	}

	if oldKey != "" {
		if err := s.uploader.Remove(ctx, oldKey); err != nil {
			slog.Warn("remove old avatar failed", "key", oldKey, "error", err)
		}
	}
	return user, nil
}
