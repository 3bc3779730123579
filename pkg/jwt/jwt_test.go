package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/reading-tracker/pkg/errors"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("test-secret", "reading-tracker", time.Hour)

	token, err := m.GenerateToken("user_2abc", "reader@example.com", "Reader")
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user_2abc", claims.UserID())
	assert.Equal(t, "reader@example.com", claims.Email)
	assert.Equal(t, "Reader", claims.Name)

	ttl := claims.RemainingTTL(time.Now())
	assert.True(t, ttl > 59*time.Minute && ttl <= time.Hour, "剩余有效期应接近1小时: %v", ttl)
}

func TestManager_ParseToken_Rejects(t *testing.T) {
	m := NewManager("test-secret", "reading-tracker", time.Hour)

	t.Run("签名密钥不一致", func(t *testing.T) {
		other := NewManager("other-secret", "reading-tracker", time.Hour)
		token, err := other.GenerateToken("u1", "", "")
		require.NoError(t, err)

		_, err = m.ParseToken(token)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("签发方不一致", func(t *testing.T) {
		other := NewManager("test-secret", "someone-else", time.Hour)
		token, err := other.GenerateToken("u1", "", "")
		require.NoError(t, err)

		_, err = m.ParseToken(token)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("已过期", func(t *testing.T) {
		expired := NewManager("test-secret", "reading-tracker", -time.Minute)
		token, err := expired.GenerateToken("u1", "", "")
		require.NoError(t, err)

		_, err = m.ParseToken(token)
		assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})

	t.Run("格式错误", func(t *testing.T) {
		_, err := m.ParseToken("not-a-jwt")
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestManager_GenerateToken_RequiresUser(t *testing.T) {
	m := NewManager("test-secret", "reading-tracker", time.Hour)
	_, err := m.GenerateToken("", "a@b.c", "")
	assert.Error(t, err)
}
