package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestGenerateAndParse(t *testing.T) {
	raw, err := Generate(secret, "buyerdesk", "u-1", "c-1", "admin", time.Hour)
	require.NoError(t, err)

	claims, err := Parse(secret, "buyerdesk", raw)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "c-1", claims.CompanyID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "u-1", claims.Subject)
}

func TestParseRejects(t *testing.T) {
	valid, err := Generate(secret, "buyerdesk", "u-1", "c-1", "buyer", time.Hour)
	require.NoError(t, err)
	expired, err := Generate(secret, "buyerdesk", "u-1", "c-1", "buyer", -time.Minute)
	require.NoError(t, err)
	noUser, err := Generate(secret, "buyerdesk", "", "c-1", "buyer", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		issuer string
		token  string
	}{
		{"wrong secret", "other", "buyerdesk", valid},
		{"wrong issuer", secret, "someone-else", valid},
		{"expired", secret, "buyerdesk", expired},
		{"garbage", secret, "buyerdesk", "not.a.jwt"},
		{"missing user", secret, "buyerdesk", noUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.secret, tt.issuer, tt.token)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestEmptySecret(t *testing.T) {
	_, err := Generate("", "i", "u", "c", "r", time.Hour)
	assert.Error(t, err)
	_, err = Parse("", "i", "x")
	assert.Error(t, err)
}
