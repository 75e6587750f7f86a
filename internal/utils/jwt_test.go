package utils

import (
	"testing"

	"aurapay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	u := &models.User{
		Email:        "a@b.co",
		Role:         "user",
		TokenVersion: 3,
	}
	u.ID = 7
	return u
}

func TestGenerateAndParseTokens(t *testing.T) {
	access, refresh, err := GenerateTokens(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := ParseToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "a@b.co", claims.Email)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.True(t, claims.HasPermission(models.PermissionWalletRead))
	assert.False(t, claims.HasPermission(models.PermissionWriteAdmin))
}

func TestAdminTokenCarriesAdminPermissions(t *testing.T) {
	u := testUser()
	u.Role = "admin"
	access, _, err := GenerateTokens(u)
	require.NoError(t, err)

	claims, err := ParseToken(access)
	require.NoError(t, err)
	assert.True(t, claims.HasPermission(models.PermissionWriteAdmin))
}

func TestParseTokenRejectsTampering(t *testing.T) {
	access, _, err := GenerateTokens(testUser())
	require.NoError(t, err)

	tampered := access[:len(access)-2] + "xx"
	_, err = ParseToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
