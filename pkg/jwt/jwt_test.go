package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	manager := NewManager("test-secret", 15*time.Minute)
	userID := uuid.New()

	token, err := manager.GenerateAccessToken(userID, "user@example.com", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, "user@example.com", claims.Email)
	require.Equal(t, "admin", claims.Role)
	require.Equal(t, userID.String(), claims.Subject)
}

func TestValidateAccessToken_ExpiredToken(t *testing.T) {
	manager := NewManager("test-secret", -time.Minute)

	token, err := manager.GenerateAccessToken(uuid.New(), "user@example.com", "user")
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	manager := NewManager("test-secret", 15*time.Minute)
	other := NewManager("other-secret", 15*time.Minute)

	token, err := manager.GenerateAccessToken(uuid.New(), "user@example.com", "user")
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	manager := NewManager("test-secret", 15*time.Minute)

	_, err := manager.ValidateAccessToken("not-a-token")
	require.Error(t, err)
}
