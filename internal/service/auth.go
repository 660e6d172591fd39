package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/vietanh2810/eventbooking-api/internal/domain"
	"github.com/vietanh2810/eventbooking-api/internal/repository"
)

var (
	ErrUsernameExists     = repository.ErrUsernameExists
	ErrInvalidCredentials = errors.New("incorrect username or password")
)

type AuthUserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
}

type AuthService struct {
	repo AuthUserRepository
	cost int
}

func NewAuthService(repo AuthUserRepository) *AuthService {
	return &AuthService{
		repo: repo,
		cost: bcrypt.DefaultCost,
	}
}

// NewAuthServiceWithCost is NewAuthService with a custom bcrypt cost.
func NewAuthServiceWithCost(repo AuthUserRepository, cost int) *AuthService {
	return &AuthService{
		repo: repo,
		cost: cost,
	}
}

func (s *AuthService) Register(ctx context.Context, username, password string) (domain.User, error) {
	return s.signup(ctx, username, password, domain.RoleUser)
}

func (s *AuthService) RegisterAdmin(ctx context.Context, username, password string) (domain.User, error) {
	return s.signup(ctx, username, password, domain.RoleAdmin)
}

func (s *AuthService) signup(ctx context.Context, username, password string, role domain.Role) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}

	created, err := s.repo.Create(ctx, domain.User{
		Username: username,
		Password: string(hash),
		Role:     role,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// Login does not tell unknown usernames apart from wrong passwords.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByUsername -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}

	return user, nil
}
