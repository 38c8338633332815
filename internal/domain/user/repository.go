package user

import "context"

// Repository はユーザーリポジトリのインターフェース
type Repository interface {
	// Create は新しいユーザーを作成する
	Create(ctx context.Context, user *User) error

	// GetByID はIDからユーザーを取得する
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail はメールアドレスからユーザーを取得する
	GetByEmail(ctx context.Context, email string) (*User, error)

	// UpsertAdmin はメールアドレスをキーに管理者ユーザーを作成または昇格する
	// 起動時の管理者ブートストラップ用（冪等）
	UpsertAdmin(ctx context.Context, user *User) error
}
