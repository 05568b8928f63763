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

const userCacheTTL = 5 * time.Minute

func userCacheKey(id string) string { return "user:" + id }

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
}

type ProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Avatar    *string
	Addresses []domain.Address
	Password  *string
}

type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	cache  infra.CacheInterface
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenService, cache infra.CacheInterface) *AuthService {
	return &AuthService{users: users, tokens: tokens, cache: cache}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Validation("User already exists with this email")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  hash,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     strings.TrimSpace(in.Phone),
		Role:      domain.RoleCustomer,
		Addresses: []domain.Address{},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Validation("User already exists with this email")
		}
		return nil, err
	}

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.Password, password) {
		return nil, domain.Unauthorized("Invalid email or password")
	}
	if !user.IsActive {
		return nil, domain.Unauthorized("Account is deactivated")
	}
	return s.issue(user)
}

// Refresh trades a valid refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", domain.Unauthorized("Refresh token not found")
	}
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", domain.Unauthorized("Invalid or expired refresh token")
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", err
	}
	if user == nil || !user.IsActive {
		return "", domain.Unauthorized("Invalid or expired refresh token")
	}
	return s.tokens.GenerateAccessToken(user)
}

// Authenticate resolves an access token to an active user. Users are read
// through the cache.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, domain.Unauthorized("Invalid or expired token")
	}

	user, err := s.cachedUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.Unauthorized("User not found")
	}
	if !user.IsActive {
		return nil, domain.Unauthorized("Account is deactivated")
	}
	return user, nil
}

func (s *AuthService) cachedUser(ctx context.Context, id string) (*domain.User, error) {
	var cached domain.User
	hit, err := s.cache.Get(ctx, userCacheKey(id), &cached)
	if err != nil {
		zlog.Warn().Err(err).Str("user", id).Msg("user cache read failed")
	}
	if hit {
		return &cached, nil
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, userCacheKey(id), user, userCacheTTL); err != nil {
		zlog.Warn().Err(err).Str("user", id).Msg("user cache write failed")
	}
	return user, nil
}

func (s *AuthService) Me(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NotFound("User not found")
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*domain.User, error) {
	user, err := s.Me(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil && strings.TrimSpace(*in.FirstName) != "" {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil && strings.TrimSpace(*in.LastName) != "" {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}
	if in.Addresses != nil {
		user.Addresses = in.Addresses
	}
	if in.Password != nil {
		if len(*in.Password) < 6 {
			return nil, domain.Validation("Password must be at least 6 characters")
		}
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = hash
	}
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	invalidateUser(ctx, s.cache, user.ID)
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

func invalidateUser(ctx context.Context, cache infra.CacheInterface, id string) {
	if err := cache.Delete(ctx, userCacheKey(id)); err != nil {
		zlog.Warn().Err(err).Str("user", id).Msg("user cache invalidation failed")
	}
}
