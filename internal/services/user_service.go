package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/Dias221467/Campus_Overflow/internal/apperror"
	"github.com/Dias221467/Campus_Overflow/internal/models"
	"github.com/Dias221467/Campus_Overflow/internal/repository"
	"github.com/Dias221467/Campus_Overflow/pkg/logger"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// UserService encapsulates the business logic for user operations.
type UserService struct {
	repo     repository.UserStore
	validate *validator.Validate
}

func NewUserService(repo repository.UserStore) *UserService {
	return &UserService{repo: repo, validate: validator.New()}
}

// CreateUser registers a user with a bcrypt hashed password and the default
// letter avatar.
func (s *UserService) CreateUser(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	if name == "" {
		return nil, apperror.Validation("name is required")
	}
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, apperror.Validation("invalid email format")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, apperror.Validation("password must be at least 6 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal("failed to create user", err)
	}

	user := &models.User{
		Name:           name,
		Email:          email,
		AvatarURL:      DefaultAvatarURL(name),
		HashedPassword: string(hashed),
	}
	created, err := s.repo.CreateUser(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		logger.Log.WithField("email", email).Warn("Email already in use")
		return nil, apperror.Conflict("email already in use")
	}
	if err != nil {
		logger.Log.WithError(err).Error("User registration failed")
		return nil, apperror.Internal("failed to create user", err)
	}

	logger.Log.WithField("user_id", created.ID.Hex()).Info("User registered")
	return created, nil
}

// DefaultAvatarURL is the placeholder image showing the name's first letter.
func DefaultAvatarURL(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return "https://placehold.co/100x100.png"
	}
	return "https://placehold.co/100x100.png?text=" + string(r)
}

// Authenticate checks the password of a locally registered user.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, apperror.Internal("failed to authenticate", err)
	}
	if user.HashedPassword == "" || bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		logger.Log.WithField("user_id", user.ID.Hex()).Warn("Invalid credentials")
		return nil, apperror.Unauthorized("invalid credentials")
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("user")
	}
	if err != nil {
		return nil, apperror.Internal("failed to get user", err)
	}
	return user, nil
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("user")
	}
	if err != nil {
		return nil, apperror.Internal("failed to get user", err)
	}
	return user, nil
}

// GetUsersByNames returns every user carrying one of names. Empty input
// never reaches the store.
func (s *UserService) GetUsersByNames(ctx context.Context, names []string) ([]models.User, error) {
	if len(names) == 0 {
		return []models.User{}, nil
	}
	users, err := s.repo.GetUsersByNames(ctx, names)
	if err != nil {
		return nil, apperror.Internal("failed to look up users", err)
	}
	return users, nil
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.GetAllUsers(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to list users", err)
	}
	return users, nil
}

// UpdateUserProfile changes the given profile fields. A nil field is kept.
func (s *UserService) UpdateUserProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperror.Validation("name cannot be empty")
		}
		update.Name = &name
	}
	if update.AvatarURL != nil && *update.AvatarURL != "" {
		if err := s.validate.Var(*update.AvatarURL, "url"); err != nil {
			return nil, apperror.Validation("avatarUrl must be a URL")
		}
	}
	if update.Empty() {
		return s.GetUserByID(ctx, id)
	}

	user, err := s.repo.UpdateProfile(ctx, id, update)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("user")
	}
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", id.Hex()).Error("Failed to update profile")
		return nil, apperror.Internal("failed to update user", err)
	}
	return user, nil
}
