package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"greenmart/internal/auth"
	"greenmart/internal/domain"
	infracache "greenmart/internal/infra/cache"
	"greenmart/internal/mocks"
)

func newTestTokens() *auth.TokenService {
	return auth.NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func hashed(t *testing.T, plain string) string {
	t.Helper()
	h, err := auth.HashPassword(plain)
	require.NoError(t, err)
	return h
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		setupMocks    func(*mocks.MockUserRepository)
		expectedError string
	}{
		{
			name: "email already taken",
			setupMocks: func(users *mocks.MockUserRepository) {
				users.On("FindByEmail", mock.Anything, "nimal@example.com").Return(testUser(testUserID, domain.RoleCustomer), nil)
			},
			expectedError: "User already exists with this email",
		},
		{
			name: "lost race on the unique index",
			setupMocks: func(users *mocks.MockUserRepository) {
				users.On("FindByEmail", mock.Anything, "nimal@example.com").Return(nil, nil)
				users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(domain.ErrDuplicate)
			},
			expectedError: "User already exists with this email",
		},
		{
			name: "registered as customer",
			setupMocks: func(users *mocks.MockUserRepository) {
				users.On("FindByEmail", mock.Anything, "nimal@example.com").Return(nil, nil)
				users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
					return u.Email == "nimal@example.com" && u.Role == domain.RoleCustomer && u.IsActive &&
						auth.CheckPassword(u.Password, "secret1")
				})).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(mocks.MockUserRepository)
			tt.setupMocks(users)
			svc := NewAuthService(users, newTestTokens(), new(mocks.MockCache))

			res, err := svc.Register(context.Background(), RegisterInput{
				FirstName: "Nimal",
				LastName:  "Perera",
				Email:     "  Nimal@Example.com ",
				Password:  "secret1",
			})

			if tt.expectedError != "" {
				assert.EqualError(t, err, tt.expectedError)
				assert.ErrorIs(t, err, domain.ErrValidation)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, res.AccessToken)
				assert.NotEmpty(t, res.RefreshToken)
				assert.NotEqual(t, res.AccessToken, res.RefreshToken)
			}
			users.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	active := testUser(testUserID, domain.RoleCustomer)
	active.Password = hashed(t, "secret1")
	inactive := *active
	inactive.IsActive = false

	tests := []struct {
		name          string
		found         *domain.User
		password      string
		expectedError string
	}{
		{"unknown email", nil, "secret1", "Invalid email or password"},
		{"wrong password", active, "nope", "Invalid email or password"},
		{"deactivated account", &inactive, "secret1", "Account is deactivated"},
		{"valid credentials", active, "secret1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(mocks.MockUserRepository)
			if tt.found != nil {
				users.On("FindByEmail", mock.Anything, active.Email).Return(tt.found, nil)
			} else {
				users.On("FindByEmail", mock.Anything, active.Email).Return(nil, nil)
			}

			res, err := NewAuthService(users, newTestTokens(), new(mocks.MockCache)).Login(context.Background(), active.Email, tt.password)

			if tt.expectedError != "" {
				assert.EqualError(t, err, tt.expectedError)
				assert.ErrorIs(t, err, domain.ErrUnauthorized)
			} else {
				require.NoError(t, err)
				assert.Equal(t, testUserID, res.User.ID)
			}
		})
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	tokens := newTestTokens()
	user := testUser(testUserID, domain.RoleAdmin)
	access, err := tokens.GenerateAccessToken(user)
	require.NoError(t, err)
	refresh, err := tokens.GenerateRefreshToken(user)
	require.NoError(t, err)

	t.Run("refresh token is not an access token", func(t *testing.T) {
		_, err := NewAuthService(new(mocks.MockUserRepository), tokens, new(mocks.MockCache)).Authenticate(context.Background(), refresh)
		assert.EqualError(t, err, "Invalid or expired token")
	})

	t.Run("cache hit skips the store", func(t *testing.T) {
		cache := new(mocks.MockCache)
		cache.On("Get", mock.Anything, "user:"+testUserID, mock.AnythingOfType("*domain.User")).
			Run(func(args mock.Arguments) { *args.Get(2).(*domain.User) = *user }).
			Return(true, nil)

		got, err := NewAuthService(new(mocks.MockUserRepository), tokens, cache).Authenticate(context.Background(), access)

		require.NoError(t, err)
		assert.True(t, got.IsAdmin())
	})

	t.Run("cache miss loads and stores the user", func(t *testing.T) {
		users := new(mocks.MockUserRepository)
		cache := new(mocks.MockCache)
		cache.On("Get", mock.Anything, "user:"+testUserID, mock.Anything).Return(false, nil)
		users.On("FindByID", mock.Anything, testUserID).Return(user, nil)
		cache.On("Set", mock.Anything, "user:"+testUserID, user, userCacheTTL).Return(nil)

		got, err := NewAuthService(users, tokens, cache).Authenticate(context.Background(), access)

		require.NoError(t, err)
		assert.Equal(t, testUserID, got.ID)
		cache.AssertExpectations(t)
	})

	t.Run("deleted user", func(t *testing.T) {
		users := new(mocks.MockUserRepository)
		cache := new(mocks.MockCache)
		cache.On("Get", mock.Anything, "user:"+testUserID, mock.Anything).Return(false, nil)
		users.On("FindByID", mock.Anything, testUserID).Return(nil, nil)

		_, err := NewAuthService(users, tokens, cache).Authenticate(context.Background(), access)
		assert.EqualError(t, err, "User not found")
	})

	t.Run("deactivated user", func(t *testing.T) {
		off := *user
		off.IsActive = false
		cache := new(mocks.MockCache)
		cache.On("Get", mock.Anything, "user:"+testUserID, mock.Anything).
			Run(func(args mock.Arguments) { *args.Get(2).(*domain.User) = off }).
			Return(true, nil)

		_, err := NewAuthService(new(mocks.MockUserRepository), tokens, cache).Authenticate(context.Background(), access)
		assert.EqualError(t, err, "Account is deactivated")
	})
}

func TestAuthService_Refresh(t *testing.T) {
	tokens := newTestTokens()
	user := testUser(testUserID, domain.RoleCustomer)
	access, _ := tokens.GenerateAccessToken(user)
	refresh, _ := tokens.GenerateRefreshToken(user)

	users := new(mocks.MockUserRepository)
	users.On("FindByID", mock.Anything, testUserID).Return(user, nil)
	svc := NewAuthService(users, tokens, new(mocks.MockCache))

	_, err := svc.Refresh(context.Background(), access)
	assert.EqualError(t, err, "Invalid or expired refresh token")

	token, err := svc.Refresh(context.Background(), refresh)
	require.NoError(t, err)
	claims, err := tokens.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, testUserID, claims.UserID)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	t.Run("short password", func(t *testing.T) {
		users := new(mocks.MockUserRepository)
		users.On("FindByID", mock.Anything, testUserID).Return(testUser(testUserID, domain.RoleCustomer), nil)

		_, err := NewAuthService(users, newTestTokens(), new(mocks.MockCache)).
			UpdateProfile(context.Background(), testUserID, ProfileInput{Password: ptr("123")})
		assert.EqualError(t, err, "Password must be at least 6 characters")
	})

	t.Run("writes and invalidates the cached user", func(t *testing.T) {
		users := new(mocks.MockUserRepository)
		cache := new(mocks.MockCache)
		users.On("FindByID", mock.Anything, testUserID).Return(testUser(testUserID, domain.RoleCustomer), nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.FirstName == "Kamal" && u.Phone == "0711111111"
		})).Return(nil)
		cache.On("Delete", mock.Anything, []string{"user:" + testUserID}).Return(nil)

		u, err := NewAuthService(users, newTestTokens(), cache).UpdateProfile(context.Background(), testUserID, ProfileInput{
			FirstName: ptr(" Kamal "),
			Phone:     ptr("0711111111"),
		})

		require.NoError(t, err)
		assert.Equal(t, "Kamal", u.FirstName)
		users.AssertExpectations(t)
		cache.AssertExpectations(t)
	})
}

func TestUserService(t *testing.T) {
	t.Run("list clamps the page size", func(t *testing.T) {
		users := new(mocks.MockUserRepository)
		users.On("List", mock.Anything, domain.UserFilter{Search: "nim", Page: 2, Limit: 100}).
			Return([]domain.User{*testUser(testUserID, domain.RoleCustomer)}, int64(101), nil)

		page, err := NewUserService(users, new(mocks.MockCache)).List(context.Background(), " nim ", 2, 1000)

		require.NoError(t, err)
		assert.Equal(t, 2, page.Pages())
	})

	t.Run("invalid role", func(t *testing.T) {
		users := new(mocks.MockUserRepository)
		users.On("FindByID", mock.Anything, testUserID).Return(testUser(testUserID, domain.RoleCustomer), nil)
		role := domain.Role("owner")

		_, err := NewUserService(users, new(mocks.MockCache)).Update(context.Background(), testUserID, UserUpdate{Role: &role})
		assert.EqualError(t, err, "Invalid role")
	})

	t.Run("deactivate keeps the account", func(t *testing.T) {
		users := new(mocks.MockUserRepository)
		cache := new(mocks.MockCache)
		users.On("FindByID", mock.Anything, testUserID).Return(testUser(testUserID, domain.RoleCustomer), nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool { return !u.IsActive })).Return(nil)
		cache.On("Delete", mock.Anything, []string{"user:" + testUserID}).Return(nil)

		err := NewUserService(users, cache).Deactivate(context.Background(), testUserID)

		require.NoError(t, err)
		users.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		users := new(mocks.MockUserRepository)
		users.On("FindByID", mock.Anything, "nobody").Return(nil, nil)

		_, err := NewUserService(users, new(mocks.MockCache)).Get(context.Background(), "nobody")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

// memUsers is a tiny in-memory user store for flows that read their own writes.
type memUsers struct {
	byID map[string]*domain.User
}

func newMemUsers(seed ...*domain.User) *memUsers {
	m := &memUsers{byID: map[string]*domain.User{}}
	for _, u := range seed {
		m.byID[u.ID] = u
	}
	return m
}

func (m *memUsers) Create(ctx context.Context, u *domain.User) error {
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicate
		}
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) Update(ctx context.Context, u *domain.User) error {
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) List(ctx context.Context, f domain.UserFilter) ([]domain.User, int64, error) {
	out := []domain.User{}
	for _, u := range m.byID {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (m *memUsers) admins() []*domain.User {
	var out []*domain.User
	for _, u := range m.byID {
		if u.IsAdmin() {
			out = append(out, u)
		}
	}
	return out
}

func TestUserService_EnsureAdmin(t *testing.T) {
	t.Run("running twice creates one admin", func(t *testing.T) {
		store := newMemUsers()
		svc := NewUserService(store, infracache.NopCache{})

		first, err := svc.EnsureAdmin(context.Background(), " Admin@GreenMart.com ", "admin123")
		require.NoError(t, err)
		second, err := svc.EnsureAdmin(context.Background(), "admin@greenmart.com", "admin123")
		require.NoError(t, err)

		admins := store.admins()
		require.Len(t, admins, 1)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "admin@greenmart.com", admins[0].Email)
		assert.True(t, admins[0].IsActive)
		assert.True(t, auth.CheckPassword(admins[0].Password, "admin123"))
	})

	t.Run("promotes an existing customer without touching the password", func(t *testing.T) {
		existing := testUser(testUserID, domain.RoleCustomer)
		existing.Email = "owner@greenmart.com"
		existing.IsActive = false
		existing.Password = "kept-hash"
		store := newMemUsers(existing)

		u, err := NewUserService(store, infracache.NopCache{}).EnsureAdmin(context.Background(), "owner@greenmart.com", "ignored")

		require.NoError(t, err)
		assert.Equal(t, testUserID, u.ID)
		stored, _ := store.FindByID(context.Background(), testUserID)
		assert.Equal(t, domain.RoleAdmin, stored.Role)
		assert.True(t, stored.IsActive)
		assert.Equal(t, "kept-hash", stored.Password)
		assert.Len(t, store.admins(), 1)
	})

	t.Run("requires credentials", func(t *testing.T) {
		_, err := NewUserService(newMemUsers(), infracache.NopCache{}).EnsureAdmin(context.Background(), "", "x")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
