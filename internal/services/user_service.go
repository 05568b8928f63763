package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"greenmart/internal/auth"
	"greenmart/internal/domain"
	"greenmart/internal/infra"
	"greenmart/internal/repository"
)

type UserUpdate struct {
	IsActive *bool
	Role     *domain.Role
}

// UserService is the admin view of customer accounts.
type UserService struct {
	users repository.UserRepository
	cache infra.CacheInterface
}

func NewUserService(users repository.UserRepository, cache infra.CacheInterface) *UserService {
	return &UserService{users: users, cache: cache}
}

func (s *UserService) List(ctx context.Context, search string, page, limit int) (*Page[domain.User], error) {
	page, limit = normalizePage(page, limit, 20, 100)
	users, total, err := s.users.List(ctx, domain.UserFilter{
		Search: strings.TrimSpace(search),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}
	return &Page[domain.User]{Items: users, Total: total, Page: page, Limit: limit}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NotFound("User not found")
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id string, in UserUpdate) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, domain.Validation("Invalid role")
		}
		user.Role = *in.Role
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	invalidateUser(ctx, s.cache, user.ID)
	return user, nil
}

// Deactivate is what deleting a user means: accounts are never removed.
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	inactive := false
	_, err := s.Update(ctx, id, UserUpdate{IsActive: &inactive})
	return err
}

// EnsureAdmin makes sure an active admin with the given email exists. A
// missing account is created, an existing one is promoted and reactivated;
// its password is left alone. Running it again changes nothing.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.Validation("Admin email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		if user.IsAdmin() && user.IsActive {
			return user, nil
		}
		user.Role = domain.RoleAdmin
		user.IsActive = true
		user.UpdatedAt = time.Now()
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
		invalidateUser(ctx, s.cache, user.ID)
		zlog.Info().Str("email", email).Msg("promoted existing user to admin")
		return user, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now()
	user = &domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  hash,
		FirstName: "Admin",
		LastName:  "User",
		Role:      domain.RoleAdmin,
		Addresses: []domain.Address{},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// another instance created it first
		if errors.Is(err, domain.ErrDuplicate) {
			return s.users.FindByEmail(ctx, email)
		}
		return nil, err
	}
	zlog.Info().Str("email", email).Msg("admin user created")
	return user, nil
}
