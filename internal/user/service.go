// Package user implements the Liveability user-service: password
// authentication, session token issuance and the multi-step housing
// preference flow. Handlers translate the error taxonomy defined here into
// HTTP statuses; nothing below the handler boundary speaks HTTP.
package user

import (
	"context"
	"errors"
	"fmt"

	"liveability/internal/password"
	"liveability/internal/token"
)

var (
	// ErrMissingCredentials is returned when email or password is empty
	ErrMissingCredentials = errors.New("email and password are required")
	// ErrPasswordTooShort is returned when the password fails the length check
	ErrPasswordTooShort = errors.New("password too short")
	// ErrEmailTaken is returned when the email is already registered
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is the uniform login failure. It deliberately does
	// not distinguish an unknown email from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned when a user id has no record
	ErrUserNotFound = errors.New("user not found")
)

// Service defines the user-service operations
type Service interface {
	Register(ctx context.Context, email, plaintext string) (*AuthResult, error)
	Login(ctx context.Context, email, plaintext string) (*AuthResult, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	SaveCommutePreferences(ctx context.Context, userID int64, prefs *CommutePreferences) (*User, error)
	SaveHousingPreferences(ctx context.Context, userID int64, prefs *HousingPreferences) (*User, error)
	SaveAmenitiesPreferences(ctx context.Context, userID int64, prefs *AmenitiesPreferences) (*User, error)
}

// service implements the Service interface
type service struct {
	store  Store
	tokens *token.Issuer
}

// NewService creates a new user service
func NewService(store Store, tokens *token.Issuer) Service {
	return &service{
		store:  store,
		tokens: tokens,
	}
}

// Register creates a user record and issues a session token. Validation runs
// before hashing so a rejected password never costs a bcrypt round or a
// store access.
func (s *service) Register(ctx context.Context, email, plaintext string) (*AuthResult, error) {
	if email == "" || plaintext == "" {
		return nil, ErrMissingCredentials
	}
	if len(plaintext) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := s.store.Create(ctx, email, hash)
	if err != nil {
		return nil, err
	}

	signed, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &AuthResult{User: u, Token: signed}, nil
}

// Login verifies credentials and issues a fresh session token
func (s *service) Login(ctx context.Context, email, plaintext string) (*AuthResult, error) {
	if email == "" || plaintext == "" {
		return nil, ErrMissingCredentials
	}

	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := password.Verify(plaintext, u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	signed, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &AuthResult{User: u, Token: signed}, nil
}

// GetUser retrieves a user's public record by ID
func (s *service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.store.GetByID(ctx, id)
}

// SaveCommutePreferences validates and merges the commute step
func (s *service) SaveCommutePreferences(ctx context.Context, userID int64, prefs *CommutePreferences) (*User, error) {
	if err := prefs.Validate(); err != nil {
		return nil, err
	}
	return s.store.SaveCommutePreferences(ctx, userID, prefs)
}

// SaveHousingPreferences validates and merges the housing step
func (s *service) SaveHousingPreferences(ctx context.Context, userID int64, prefs *HousingPreferences) (*User, error) {
	if err := prefs.Validate(); err != nil {
		return nil, err
	}
	return s.store.SaveHousingPreferences(ctx, userID, prefs)
}

// SaveAmenitiesPreferences validates and merges the amenities step
func (s *service) SaveAmenitiesPreferences(ctx context.Context, userID int64, prefs *AmenitiesPreferences) (*User, error) {
	if err := prefs.Validate(); err != nil {
		return nil, err
	}
	return s.store.SaveAmenitiesPreferences(ctx, userID, prefs)
}
