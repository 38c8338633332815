package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u := NewUser("山田太郎", "taro@example.com", "hashed")

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "山田太郎", u.Name)
	assert.Equal(t, "taro@example.com", u.Email)
	assert.Equal(t, RoleUser, u.Role, "新規ユーザーは一般権限")
	assert.False(t, u.IsAdmin())
}

func TestUser_IsAdmin(t *testing.T) {
	u := NewUser("管理者", "admin@admin.com", "hashed")
	u.Role = RoleAdmin

	assert.True(t, u.IsAdmin())
}

func TestUser_Validate(t *testing.T) {
	tests := []struct {
		name        string
		user        *User
		expectedErr error
	}{
		{
			name:        "有効なユーザー",
			user:        NewUser("山田太郎", "taro@example.com", "hashed"),
			expectedErr: nil,
		},
		{
			name:        "名前が空",
			user:        NewUser("", "taro@example.com", "hashed"),
			expectedErr: ErrNameRequired,
		},
		{
			name:        "メールアドレスが空",
			user:        NewUser("山田太郎", "", "hashed"),
			expectedErr: ErrEmailRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
