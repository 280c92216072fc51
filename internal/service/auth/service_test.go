package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository/mocks"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/auth"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/security"
)

type fakeMailer struct {
	to, token string
	err       error
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, to, _, token string) error {
	f.to, f.token = to, token
	return f.err
}

type fixture struct {
	svc    *Service
	users  *mocks.UserRepository
	mailer *fakeMailer
	hasher security.PasswordHasher
	jwt    auth.JWTService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:  &mocks.UserRepository{},
		mailer: &fakeMailer{},
		hasher: security.NewBcryptHasher(bcrypt.MinCost),
		jwt:    auth.NewJWTService(auth.Config{Secret: "s", Expiry: time.Hour, Issuer: "test"}),
	}
	f.svc = NewService(f.users, f.jwt, f.hasher, f.mailer)
	return f
}

func (f *fixture) user(t *testing.T, password string, active bool) *model.User {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	require.NoError(t, err)
	u := &model.User{Name: "Dana", Email: "dana@example.com", PasswordHash: hash, Role: model.RoleReceptionist, IsActive: active}
	u.ID = uuid.New()
	return u
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.users.On("GetByEmail", ctx, "new@example.com").Return(nil, repository.ErrNotFound)
	f.users.On("Create", ctx, mock.AnythingOfType("*model.User")).Return(nil)

	resp, err := f.svc.Register(ctx, nil, &model.RegisterRequest{
		Name: "New Person", Email: " New@Example.com ", Password: "longenough", Role: model.RolePatient,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "new@example.com", resp.User.Email)
	assert.NotEqual(t, "longenough", resp.User.PasswordHash)
	assert.NoError(t, f.hasher.Compare(resp.User.PasswordHash, "longenough"))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.users.On("GetByEmail", ctx, "dana@example.com").Return(f.user(t, "password1", true), nil)

	_, err := f.svc.Register(ctx, &admin, &model.RegisterRequest{
		Name: "Dana", Email: "dana@example.com", Password: "password1", Role: model.RoleNurse,
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterUnknownRole(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), nil, &model.RegisterRequest{
		Name: "X", Email: "x@example.com", Password: "password1", Role: "Janitor",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

var admin = model.UserRef{ID: uuid.New(), Role: model.RoleAdmin}

func TestRegisterStaffNeedsAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nurse := model.UserRef{ID: uuid.New(), Role: model.RoleNurse}

	for _, caller := range []*model.UserRef{nil, &nurse} {
		for _, role := range []model.Role{model.RoleAdmin, model.RoleDoctor} {
			_, err := f.svc.Register(ctx, caller, &model.RegisterRequest{
				Name: "Mallory", Email: "mallory@example.com", Password: "password1", Role: role,
			})
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrForbidden, appErr.Code)
			assert.Equal(t, []string{string(model.RoleAdmin)}, appErr.Allowed)
		}
	}
	f.users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	f.users.On("GetByEmail", ctx, "doc@example.com").Return(nil, repository.ErrNotFound)
	f.users.On("Create", ctx, mock.AnythingOfType("*model.User")).Return(nil)
	resp, err := f.svc.Register(ctx, &admin, &model.RegisterRequest{
		Name: "Dr Ito", Email: "doc@example.com", Password: "password1", Role: model.RoleDoctor,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleDoctor, resp.User.Role)
}

func TestLoginFailuresShareOneMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrNotFound)
	f.users.On("GetByEmail", ctx, "dana@example.com").Return(f.user(t, "password1", true), nil).Once()
	f.users.On("GetByEmail", ctx, "dana@example.com").Return(f.user(t, "password1", false), nil).Once()

	var messages []string
	for _, req := range []*model.LoginRequest{
		{Email: "ghost@example.com", Password: "password1"},
		{Email: "dana@example.com", Password: "wrong-password"},
		{Email: "dana@example.com", Password: "password1"},
	} {
		_, err := f.svc.Login(ctx, req)
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
		messages = append(messages, appErr.Message)
	}
	assert.Equal(t, []string{invalidCredentials, invalidCredentials, invalidCredentials}, messages)
}

func TestLoginStampsLastLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "password1", true)

	f.users.On("GetByEmail", ctx, "dana@example.com").Return(u, nil)
	f.users.On("Update", ctx, u).Return(nil)

	resp, err := f.svc.Login(ctx, &model.LoginRequest{Email: "DANA@example.com", Password: "password1"})
	require.NoError(t, err)
	require.NotNil(t, resp.User.LastLoginAt)

	claims, err := f.svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, model.RoleReceptionist, claims.Role)
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrNotFound)

	assert.NoError(t, f.svc.ForgotPassword(ctx, "ghost@example.com"))
	assert.Empty(t, f.mailer.token)
}

func TestPasswordResetRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }
	u := f.user(t, "password1", true)

	f.users.On("GetByEmail", ctx, "dana@example.com").Return(u, nil)
	f.users.On("Update", ctx, u).Return(nil)

	require.NoError(t, f.svc.ForgotPassword(ctx, "dana@example.com"))
	require.NotEmpty(t, f.mailer.token)
	require.NotNil(t, u.ResetPasswordToken)
	assert.Equal(t, security.HashToken(f.mailer.token), *u.ResetPasswordToken, "only the digest is stored")
	assert.Equal(t, now.Add(10*time.Minute), *u.ResetPasswordExpire)

	f.users.On("GetByResetToken", ctx, security.HashToken(f.mailer.token), now).Return(u, nil)

	resp, err := f.svc.ResetPassword(ctx, &model.ResetPasswordRequest{Token: f.mailer.token, Password: "brand-new-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Nil(t, u.ResetPasswordToken)
	assert.NoError(t, f.hasher.Compare(u.PasswordHash, "brand-new-pass"))
}

func TestResetPasswordRejectsUnknownToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	f.svc.now = func() time.Time { return now }
	f.users.On("GetByResetToken", ctx, security.HashToken("bogus"), now).Return(nil, repository.ErrNotFound)

	_, err := f.svc.ResetPassword(ctx, &model.ResetPasswordRequest{Token: "bogus", Password: "whatever1"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestForgotPasswordClearsTokenWhenMailFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "password1", true)
	f.mailer.err = errors.New("smtp down")

	f.users.On("GetByEmail", ctx, "dana@example.com").Return(u, nil)
	f.users.On("Update", ctx, u).Return(nil)

	err := f.svc.ForgotPassword(ctx, "dana@example.com")
	assert.True(t, apperrors.Is(err, apperrors.ErrInternal))
	assert.Nil(t, u.ResetPasswordToken)
	f.users.AssertNumberOfCalls(t, "Update", 2)
}

func TestUpdatePasswordChecksCurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "password1", true)
	f.users.On("Get", ctx, u.ID).Return(u, nil)

	_, err := f.svc.UpdatePassword(ctx, u.ID, &model.UpdatePasswordRequest{CurrentPassword: "nope-nope", NewPassword: "password2"})
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))

	f.users.On("Update", ctx, u).Return(nil)
	resp, err := f.svc.UpdatePassword(ctx, u.ID, &model.UpdatePasswordRequest{CurrentPassword: "password1", NewPassword: "password2"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "password1", true)
	token, _, err := f.jwt.GenerateToken(u)
	require.NoError(t, err)

	claims, err := f.svc.ValidateToken(token)
	require.NoError(t, err)
	f.svc.Logout(claims)

	_, err = f.svc.ValidateToken(token)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}
