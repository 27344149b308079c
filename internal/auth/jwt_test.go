package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/karpix25/mini-karpix/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	admin := models.Admin{ID: 3, Username: "root"}
	tok, err := GenerateToken("s3cret", admin)
	require.NoError(t, err)

	claims, err := ParseToken("s3cret", tok)
	require.NoError(t, err)
	require.Equal(t, uint(3), claims.AdminID)
	require.Equal(t, "root", claims.Username)
	require.NotEmpty(t, claims.ID)
}

func TestTokenWrongSecret(t *testing.T) {
	tok, err := GenerateToken("s3cret", models.Admin{ID: 1, Username: "root"})
	require.NoError(t, err)

	_, err = ParseToken("other", tok)
	require.Error(t, err)
}

func TestTokenGarbage(t *testing.T) {
	_, err := ParseToken("s3cret", "not-a-token")
	require.Error(t, err)
}
