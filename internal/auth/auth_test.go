package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"maintenance-logbook-backend/internal/model"
)

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	p := Principal{ID: "u-1", Name: "Asha", Email: "asha@example.com", Role: model.RoleTechnician}

	raw, err := tokens.Issue(p)
	require.NoError(t, err)

	got, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestTokens_Rejects(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	p := Principal{ID: "u-1", Name: "Asha", Email: "asha@example.com", Role: model.RoleAdmin}

	t.Run("wrong secret", func(t *testing.T) {
		raw, err := NewTokens("other-secret", time.Hour).Issue(p)
		require.NoError(t, err)
		_, err = tokens.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		old := NewTokens("test-secret", time.Hour)
		old.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		raw, err := old.Issue(p)
		require.NoError(t, err)
		_, err = tokens.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("hunter22", bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := CheckPassword(hash, "hunter22")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}
