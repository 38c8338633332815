package application

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/sanosuguru/go-event-booking/internal/domain/user"
	"github.com/sanosuguru/go-event-booking/internal/pkg/auth"
)

// AuthService はユーザー登録と認証を提供する
type AuthService struct {
	userRepo user.Repository
	tokens   *auth.TokenIssuer
}

// NewAuthService はAuthServiceを作成する
func NewAuthService(ur user.Repository, tokens *auth.TokenIssuer) *AuthService {
	return &AuthService{userRepo: ur, tokens: tokens}
}

// SignupInput はユーザー登録の入力
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// Signup は一般権限の新しいユーザーを登録する
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*user.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗: %w", err)
	}

	u := user.NewUser(input.Name, input.Email, string(hashed))
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login は認証を行いアクセストークンを発行する
// ユーザーが存在しない場合とパスワード不一致は区別せずに返す
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", user.ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)); err != nil {
		return "", user.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID, string(u.Role), u.Email)
	if err != nil {
		return "", fmt.Errorf("トークン発行に失敗: %w", err)
	}
	return token, nil
}

// GetUser はIDからユーザーを取得する
func (s *AuthService) GetUser(ctx context.Context, id string) (*user.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// EnsureAdmin は管理者アカウントを作成または昇格する（起動時ブートストラップ用・冪等）
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("パスワードのハッシュ化に失敗: %w", err)
	}

	u := user.NewUser(name, email, string(hashed))
	u.Role = user.RoleAdmin
	return s.userRepo.UpsertAdmin(ctx, u)
}
