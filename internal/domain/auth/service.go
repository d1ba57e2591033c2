package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"freshmart/internal/core/apperror"
	"freshmart/internal/core/id"
	"freshmart/internal/domain/ledger"
	"freshmart/pkg/logger"
)

// Service implements authentication business logic.
type Service struct {
	repo Repository
	jwt  *JWTService
}

// NewService creates an auth service.
func NewService(repo Repository, jwt *JWTService) *Service {
	return &Service{repo: repo, jwt: jwt}
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

// Login verifies credentials and issues an access token.
// Invalid email and invalid password return the same error to avoid
// leaking which accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.NewValidation("email and password are required")
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}

	if !u.Active {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(u.ID.String(), u.Email, u.Name, u.Roles)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	logger.Info(ctx, "user logged in", "user_id", u.ID, "email", u.Email)

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

// Register creates a new user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, name, password string, roles ...string) (*User, error) {
	if len(password) < 8 {
		return nil, apperror.NewValidation("password must be at least 8 characters").
			WithDetail("field", "password")
	}

	if len(roles) == 0 {
		roles = []string{RoleCustomer}
	}

	u := NewUser(email, name, roles...)
	if err := u.Validate(ctx); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	u.PasswordHash = string(hash)

	if _, err := s.repo.GetByEmail(ctx, u.Email); err == nil {
		return nil, apperror.NewDuplicate("user", "email", u.Email)
	} else if !apperror.IsNotFound(err) {
		return nil, err
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered", "user_id", u.ID, "email", u.Email, "roles", u.Roles)
	return u, nil
}

// GetByID returns a user by ID.
func (s *Service) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	if id.IsNil(userID) {
		return nil, apperror.NewValidation("user id is required")
	}
	return s.repo.GetByID(ctx, userID)
}

// GetActor implements ledger.ActorDirectory.
func (s *Service) GetActor(ctx context.Context, userID id.ID) (*ledger.Actor, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ledger.Actor{ID: u.ID, Name: u.Name, Email: u.Email}, nil
}
