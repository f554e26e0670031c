package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashVerify(t *testing.T) {
	t.Parallel()
	h := New(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
		attempt  string
		want     bool
	}{
		{"same password", "s3cret!", "s3cret!", true},
		{"different password", "s3cret!", "s3cret?", false},
		{"empty attempt", "s3cret!", "", false},
		{"unicode", "пароль-密码", "пароль-密码", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			hashed, err := h.Hash(tt.password)
			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hashed)
			assert.Equal(t, tt.want, h.Verify(tt.attempt, hashed))
		})
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	t.Parallel()
	h := New(bcrypt.MinCost)
	assert.False(t, h.Verify("anything", "not-a-bcrypt-hash"))
	assert.False(t, h.Verify("anything", ""))
}

func TestHashTooLong(t *testing.T) {
	t.Parallel()
	_, err := New(bcrypt.MinCost).Hash(strings.Repeat("a", 100))
	require.Error(t, err)
}

func TestNewClampsCost(t *testing.T) {
	t.Parallel()
	assert.Equal(t, bcrypt.DefaultCost, New(0).Cost)
	assert.Equal(t, bcrypt.DefaultCost, New(99).Cost)
	assert.Equal(t, 12, New(12).Cost)
}

func TestRandomPassword(t *testing.T) {
	t.Parallel()
	a, err := RandomPassword(12)
	require.NoError(t, err)
	b, err := RandomPassword(12)
	require.NoError(t, err)
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}
