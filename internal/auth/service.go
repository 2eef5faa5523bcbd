package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/ports"
)

var (
	// ErrInvalidCredentials hides whether the username or password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists rejects duplicate registrations.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidToken rejects tampered or expired tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInactiveUser rejects deactivated accounts.
	ErrInactiveUser = errors.New("user is inactive")
)

// Service issues and verifies access tokens for API principals.
type Service struct {
	users       ports.UserRepository
	secret      []byte
	tokenExpiry time.Duration
}

// NewService wires the user store with the signing secret.
func NewService(users ports.UserRepository, secret string, tokenExpiry time.Duration) *Service {
	if tokenExpiry <= 0 {
		tokenExpiry = 30 * time.Minute
	}
	return &Service{users: users, secret: []byte(secret), tokenExpiry: tokenExpiry}
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, username, password string) (domain.User, error) {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return domain.User{}, ErrUserExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, ErrUserExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.users.Create(ctx, user)
}

// Login verifies credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (string, domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", domain.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.User{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", domain.User{}, ErrInactiveUser
	}

	token, err := s.issueToken(user.Username)
	if err != nil {
		return "", domain.User{}, err
	}
	return token, user, nil
}

// Verify parses a token and loads its subject.
func (s *Service) Verify(ctx context.Context, tokenString string) (domain.User, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return domain.User{}, ErrInvalidToken
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return domain.User{}, ErrInvalidToken
	}

	user, err := s.users.GetByUsername(ctx, subject)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, ErrInvalidToken
	}
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *Service) issueToken(subject string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExpiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
