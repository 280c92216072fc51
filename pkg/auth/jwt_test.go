package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
)

func newTestService(t *testing.T) *jwtService {
	t.Helper()
	return NewJWTService(Config{
		Secret: "test-secret",
		Expiry: time.Hour,
		Issuer: "medilink-test",
	}).(*jwtService)
}

func testUser() *model.User {
	u := &model.User{Email: "nurse@example.com", Role: model.RoleNurse}
	u.ID = uuid.New()
	return u
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestService(t)
	user := testUser()

	token, expiresAt, err := svc.GenerateToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.RoleNurse, claims.Role)
	assert.Equal(t, user.Email, claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	svc := newTestService(t)
	other := NewJWTService(Config{Secret: "other", Expiry: time.Hour, Issuer: "medilink-test"})

	token, _, err := other.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := newTestService(t)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.GenerateToken(testUser())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevoke(t *testing.T) {
	svc := newTestService(t)
	token, _, err := svc.GenerateToken(testUser())
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	svc.Revoke(claims)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrRevokedToken)

	// a fresh token for the same user is unaffected
	fresh, _, err := svc.GenerateToken(testUser())
	require.NoError(t, err)
	_, err = svc.ValidateToken(fresh)
	assert.NoError(t, err)
}
