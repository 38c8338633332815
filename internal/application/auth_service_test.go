package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sanosuguru/go-event-booking/internal/domain/user"
	"github.com/sanosuguru/go-event-booking/internal/pkg/auth"
)

func newAuthTestService() (*AuthService, *MockUserRepository, *auth.TokenIssuer) {
	userRepo := new(MockUserRepository)
	issuer := auth.NewTokenIssuer("test-secret", 30*time.Minute)
	return NewAuthService(userRepo, issuer), userRepo, issuer
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func TestAuthService_Signup_Success(t *testing.T) {
	service, userRepo, _ := newAuthTestService()
	ctx := context.Background()

	userRepo.On("Create", ctx, mock.AnythingOfType("*user.User")).Return(nil)

	// Execute
	u, err := service.Signup(ctx, SignupInput{
		Name: "山田太郎", Email: "taro@example.com", Password: "password123",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "taro@example.com", u.Email)
	assert.Equal(t, user.RoleUser, u.Role)
	assert.NotEqual(t, "password123", u.HashedPassword, "パスワードは平文で保存しない")
	userRepo.AssertExpectations(t)
}

func TestAuthService_Signup_EmailTaken(t *testing.T) {
	service, userRepo, _ := newAuthTestService()
	ctx := context.Background()

	userRepo.On("Create", ctx, mock.AnythingOfType("*user.User")).Return(user.ErrEmailTaken)

	// Execute
	u, err := service.Signup(ctx, SignupInput{
		Name: "山田太郎", Email: "taken@example.com", Password: "password123",
	})

	// Assert
	assert.ErrorIs(t, err, user.ErrEmailTaken)
	assert.Nil(t, u)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	existing := &user.User{
		ID:             "user-1",
		Name:           "山田太郎",
		Email:          "taro@example.com",
		Role:           user.RoleUser,
		HashedPassword: hashPassword(t, "correct-password"),
	}

	t.Run("正しい認証情報でトークンが発行される", func(t *testing.T) {
		service, userRepo, issuer := newAuthTestService()
		userRepo.On("GetByEmail", ctx, "taro@example.com").Return(existing, nil)

		token, err := service.Login(ctx, "taro@example.com", "correct-password")

		require.NoError(t, err)
		require.NotEmpty(t, token)

		// 発行されたトークンには本人のIDとロールが入っている
		claims, err := issuer.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Sub)
		assert.Equal(t, "user", claims.Role)
	})

	t.Run("パスワード不一致は認証エラー", func(t *testing.T) {
		service, userRepo, _ := newAuthTestService()
		userRepo.On("GetByEmail", ctx, "taro@example.com").Return(existing, nil)

		token, err := service.Login(ctx, "taro@example.com", "wrong-password")

		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
		assert.Empty(t, token)
	})

	t.Run("存在しないユーザーも同じ認証エラー", func(t *testing.T) {
		service, userRepo, _ := newAuthTestService()
		userRepo.On("GetByEmail", ctx, "unknown@example.com").Return(nil, user.ErrUserNotFound)

		token, err := service.Login(ctx, "unknown@example.com", "whatever")

		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
		assert.Empty(t, token)
	})
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	service, userRepo, _ := newAuthTestService()
	ctx := context.Background()

	userRepo.On("UpsertAdmin", ctx, mock.MatchedBy(func(u *user.User) bool {
		return u.Email == "admin@admin.com" && u.Role == user.RoleAdmin
	})).Return(nil)

	// Execute
	err := service.EnsureAdmin(ctx, "admin", "admin@admin.com", "admin123")

	// Assert
	require.NoError(t, err)
	userRepo.AssertExpectations(t)
}
