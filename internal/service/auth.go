package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dan9191/finance-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Register creates a new user with hashed password
func (s *Service) Register(ctx context.Context, input models.RegisterInput) (*models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Username = strings.TrimSpace(input.Username)
	if err := s.Validate(input); err != nil {
		return nil, err
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token.
// Unknown email and wrong password are both reported as ErrUnauthorized.
func (s *Service) Login(ctx context.Context, input models.LoginInput) (string, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.Validate(input); err != nil {
		return "", err
	}

	user, err := s.store.FindUserByEmail(ctx, input.Email)
	if errors.Is(err, models.ErrNotFound) {
		return "", models.ErrUnauthorized
	}
	if err != nil {
		return "", err
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return "", models.ErrUnauthorized
	}

	// Generate JWT
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(s.config.TokenTTL)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID}).Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// ListUsers returns every registered user
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}
