// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/castpro/castpro/internal/auth"
	"github.com/castpro/castpro/internal/metrics"
	"github.com/castpro/castpro/internal/model"
	"github.com/castpro/castpro/internal/repository"
)

// User service errors.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInactiveUser       = errors.New("inactive user")
	ErrEmailRequired      = errors.New("email is required")
	ErrFullNameRequired   = errors.New("full name is required")
	ErrPasswordRequired   = errors.New("password is required")
)

// UserStore is the subset of the repository used by UserService.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// UserService handles registration and login.
type UserService struct {
	store    UserStore
	tokens   *auth.TokenIssuer
	tokenTTL time.Duration
	metrics  metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, tokens *auth.TokenIssuer, tokenTTL time.Duration, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		store:    store,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		metrics:  recorder,
	}
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Email    string
	FullName string
	Password string
}

// Register creates an active user with a hashed password.
// The returned user never carries the plaintext password.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, ErrFullNameRequired
	}
	if input.Password == "" {
		return nil, ErrPasswordRequired
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:          email,
		FullName:       strings.TrimSpace(input.FullName),
		HashedPassword: hash,
		IsActive:       true,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncUserRegistered()

	return user, nil
}

// Login verifies the credentials and issues a bearer token with the
// configured TTL. Unknown email and wrong password fail identically so
// account existence is not leaked.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLoginFailure()
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.HashedPassword)
	if err != nil || !match {
		s.metrics.IncLoginFailure()
		return "", ErrInvalidCredentials
	}

	if !user.IsActive {
		s.metrics.IncLoginFailure()
		return "", ErrInactiveUser
	}

	token, err := s.tokens.Issue(user.Email, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.metrics.IncLoginSuccess()

	return token, nil
}
