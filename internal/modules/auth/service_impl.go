package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/catalog-api/internal/modules/account"
	"github.com/georgemunganga/catalog-api/internal/pkg/clock"
)

type service struct {
	accounts account.Repository
	secret   []byte
	ttl      time.Duration
	clock    clock.Clock
}

// NewService creates a new auth service signing HS256 tokens with secret.
func NewService(accounts account.Repository, secret []byte, ttl time.Duration, clk clock.Clock) Service {
	return &service{accounts: accounts, secret: secret, ttl: ttl, clock: clk}
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	a, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, account.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := s.clock.Now()
	claims := &jwt.StandardClaims{
		Id:        uuid.New().String(),
		Subject:   a.ID.String(),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

func (s *service) Authenticate(tokenString string) (string, error) {
	claims := &jwt.StandardClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true}
	_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}
	// Expiry is checked against the injected clock rather than wall time.
	now := s.clock.Now().Unix()
	if !claims.VerifyExpiresAt(now, true) || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
