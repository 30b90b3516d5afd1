package auth

import (
	"testing"
	"time"

	"storefront/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	return &models.User{ID: uuid.New(), Username: "beam123", Role: models.RoleAdmin}
}

func TestGenerateAndVerify(t *testing.T) {
	m := NewTokenManager("0123456789abcdef", time.Hour)
	user := testUser()

	token, err := m.Generate(user)
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "beam123", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, user.ID.String(), claims.Subject)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("0123456789abcdef", time.Hour).Generate(testUser())
	require.NoError(t, err)

	_, err = NewTokenManager("fedcba9876543210", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := NewTokenManager("0123456789abcdef", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.Generate(testUser())
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{UserID: uuid.New(), RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("0123456789abcdef", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("StrongP@ssw0rd")
	require.NoError(t, err)
	assert.NotEqual(t, "StrongP@ssw0rd", hash)

	assert.True(t, CheckPassword(hash, "StrongP@ssw0rd"))
	assert.False(t, CheckPassword(hash, "WrongPassword1!"))
}
