package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{
			name:     "simple password",
			password: "pw123",
		},
		{
			name:     "complex password",
			password: "P@ssw0rd!#$%^&*()",
		},
		{
			name:     "long password",
			password: "this-is-a-fairly-long-password-that-should-still-hash",
		},
		{
			name:     "unicode password",
			password: "密码123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			require.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)
			assert.True(t, CompareHashAndPassword(hash, tt.password))
		})
	}
}

func TestCompareHashAndPassword_Mismatch(t *testing.T) {
	hash, err := HashPassword("correct-password")
	require.NoError(t, err)

	assert.False(t, CompareHashAndPassword(hash, "wrong-password"))
	assert.False(t, CompareHashAndPassword(hash, ""))
	assert.False(t, CompareHashAndPassword("not-a-bcrypt-hash", "correct-password"))
}
