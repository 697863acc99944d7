package authservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Leopold1975/stackit/internal/pkg/config"
	"github.com/Leopold1975/stackit/internal/pkg/jwtauth"
	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/Leopold1975/stackit/internal/stackit/repository/userrepo"
	"github.com/Leopold1975/stackit/internal/stackit/services"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenType = "bearer"

type AuthService struct {
	userRepo Repository
	cfg      config.Auth
}

type Repository interface {
	CreateUser(context.Context, models.User) error
	GetUser(context.Context, string) (models.User, error)
	GetUserByID(context.Context, string) (models.User, error)
	FindConflict(ctx context.Context, username, email, excludeID string) (models.User, error)
	UpdateUser(context.Context, models.User) error
}

func New(userRepo Repository, cfg config.Auth) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

func (as *AuthService) Register(ctx context.Context, req RegisterRequest) (models.User, error) {
	return as.createUser(ctx, req, models.RoleUser)
}

// EnsureAdmin creates the bootstrap admin account unless a user with that name exists.
// Admins cannot be created through the public API.
func (as *AuthService) EnsureAdmin(ctx context.Context, req RegisterRequest) error {
	_, err := as.userRepo.GetUser(ctx, req.Username)
	if err == nil {
		return nil
	}

	if !errors.Is(err, userrepo.ErrNotFound) {
		return fmt.Errorf("get user error: %w", err)
	}

	if _, err := as.createUser(ctx, req, models.RoleAdmin); err != nil {
		return fmt.Errorf("create admin error: %w", err)
	}

	return nil
}

func (as *AuthService) createUser(ctx context.Context, req RegisterRequest, role string) (models.User, error) {
	existing, err := as.userRepo.FindConflict(ctx, req.Username, req.Email, "")
	switch {
	case err == nil && existing.Username == req.Username:
		return models.User{}, services.Fail(services.ErrConflict, "Username already registered")
	case err == nil:
		return models.User{}, services.Fail(services.ErrConflict, "Email already registered")
	case !errors.Is(err, userrepo.ErrNotFound):
		return models.User{}, fmt.Errorf("find conflict error: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("generate from password error: %w", err)
	}

	now := time.Now().UTC()

	u := models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		Role:         role,
		Active:       true,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := as.userRepo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, userrepo.ErrAlreadyExists) {
			return models.User{}, services.Fail(services.ErrConflict, "Username or email already registered")
		}

		return models.User{}, fmt.Errorf("create user error: %w", err)
	}

	return u, nil
}

func (as *AuthService) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	u, err := as.userRepo.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return LoginResponse{}, services.Fail(services.ErrUnauthorized, "Incorrect username or password")
		}

		return LoginResponse{}, fmt.Errorf("get user error: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	if err != nil {
		return LoginResponse{}, services.Fail(services.ErrUnauthorized, "Incorrect username or password")
	}

	if !u.Active {
		return LoginResponse{}, services.Fail(services.ErrInactive, "Inactive user")
	}

	token, err := jwtauth.GetToken(u, as.cfg.TTL, as.cfg.Secret)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("can't get token error: %w", err)
	}

	return LoginResponse{
		AccessToken: token,
		TokenType:   tokenType,
		User:        u,
	}, nil
}

// Auth resolves a bearer token to an active user.
func (as *AuthService) Auth(ctx context.Context, token string) (models.User, error) {
	claims, err := jwtauth.ValidateToken(token, as.cfg.Secret)
	if err != nil {
		return models.User{}, services.Fail(services.ErrUnauthorized, "Could not validate credentials")
	}

	u, err := as.userRepo.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return models.User{}, services.Fail(services.ErrUnauthorized, "Could not validate credentials")
		}

		return models.User{}, fmt.Errorf("get user error: %w", err)
	}

	if !u.Active {
		return models.User{}, services.Fail(services.ErrInactive, "Inactive user")
	}

	return u, nil
}

func (as *AuthService) UpdateMe(ctx context.Context, u models.User, req UpdateRequest) (models.User, error) { //nolint:cyclop
	if req.empty() {
		return models.User{}, services.Fail(services.ErrBadRequest, "No data to update")
	}

	username, email := u.Username, u.Email
	if req.Username != nil {
		username = *req.Username
	}

	if req.Email != nil {
		email = *req.Email
	}

	existing, err := as.userRepo.FindConflict(ctx, username, email, u.ID)
	switch {
	case err == nil && existing.Username == username:
		return models.User{}, services.Fail(services.ErrConflict, "Username already taken")
	case err == nil:
		return models.User{}, services.Fail(services.ErrConflict, "Email already taken")
	case !errors.Is(err, userrepo.ErrNotFound):
		return models.User{}, fmt.Errorf("find conflict error: %w", err)
	}

	u.Username = username
	u.Email = email

	if req.FullName != nil {
		u.FullName = *req.FullName
	}

	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("generate from password error: %w", err)
		}

		u.PasswordHash = string(hash)
	}

	u.UpdatedAt = time.Now().UTC()

	if err := as.userRepo.UpdateUser(ctx, u); err != nil {
		switch {
		case errors.Is(err, userrepo.ErrAlreadyExists):
			return models.User{}, services.Fail(services.ErrConflict, "Username or email already taken")
		case errors.Is(err, userrepo.ErrNotFound):
			return models.User{}, services.Fail(services.ErrNotFound, "User not found")
		}

		return models.User{}, fmt.Errorf("update user error: %w", err)
	}

	return u, nil
}
