package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_IssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 30*time.Minute)

	token, err := issuer.Issue("user-1", "admin", "admin@admin.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Sub)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "admin@admin.com", claims.Email)
}

func TestTokenIssuer_Parse_InvalidToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 30*time.Minute)

	_, err := issuer.Parse("not-a-token")
	assert.Error(t, err)
}

func TestTokenIssuer_Parse_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 30*time.Minute)
	other := NewTokenIssuer("other-secret", 30*time.Minute)

	token, err := issuer.Issue("user-1", "user", "taro@example.com")
	require.NoError(t, err)

	_, err = other.Parse(token)
	assert.Error(t, err, "別の鍵で署名されたトークンは拒否される")
}

func TestTokenIssuer_Parse_Expired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -1*time.Minute)

	token, err := issuer.Issue("user-1", "user", "taro@example.com")
	require.NoError(t, err)

	_, err = issuer.Parse(token)
	assert.Error(t, err, "期限切れのトークンは拒否される")
}
