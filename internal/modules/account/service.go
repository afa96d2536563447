package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service defines account management.
type Service interface {
	Register(ctx context.Context, email, password string) (*Account, error)
	// EnsureAccount registers email unless it already exists. It reports
	// whether a new account was created.
	EnsureAccount(ctx context.Context, email, password string) (bool, error)
}

type service struct {
	repo Repository
}

// NewService creates a new account service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, email, password string) (*Account, error) {
	if normalizeEmail(email) == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	a := &Account{
		ID:           uuid.New(),
		Email:        normalizeEmail(email),
		PasswordHash: string(hashedPassword),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) EnsureAccount(ctx context.Context, email, password string) (bool, error) {
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if _, err := s.Register(ctx, email, password); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
