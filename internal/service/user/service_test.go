package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository/mocks"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
)

func account(role model.Role) *model.User {
	u := &model.User{Name: "Kabir", Email: "kabir@example.com", Role: role, IsActive: true}
	u.ID = uuid.New()
	return u
}

func TestUpdateRoleAndActiveFlag(t *testing.T) {
	repo := &mocks.UserRepository{}
	svc := NewService(repo)
	target := account(model.RoleReceptionist)
	repo.On("Get", mock.Anything, target.ID).Return(target, nil)
	repo.On("Update", mock.Anything, target).Return(nil)
	admin := model.UserRef{ID: uuid.New(), Role: model.RoleAdmin}

	role := model.RoleNurse
	got, err := svc.Update(context.Background(), admin, target.ID, &model.UpdateUserRequest{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, model.RoleNurse, got.Role)

	require.NoError(t, svc.Deactivate(context.Background(), admin, target.ID))
	assert.False(t, target.IsActive)
}

func TestAdminCannotLockThemselvesOut(t *testing.T) {
	repo := &mocks.UserRepository{}
	svc := NewService(repo)
	me := account(model.RoleAdmin)
	repo.On("Get", mock.Anything, me.ID).Return(me, nil)
	caller := model.UserRef{ID: me.ID, Role: model.RoleAdmin}

	err := svc.Deactivate(context.Background(), caller, me.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	role := model.RoleDoctor
	_, err = svc.Update(context.Background(), caller, me.ID, &model.UpdateUserRequest{Role: &role})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.True(t, me.IsActive)
}

func TestUpdateUnknownRole(t *testing.T) {
	repo := &mocks.UserRepository{}
	svc := NewService(repo)
	target := account(model.RoleDoctor)
	repo.On("Get", mock.Anything, target.ID).Return(target, nil)

	role := model.Role("Janitor")
	_, err := svc.Update(context.Background(), model.UserRef{ID: uuid.New()}, target.ID, &model.UpdateUserRequest{Role: &role})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestListNormalizesPaging(t *testing.T) {
	repo := &mocks.UserRepository{}
	svc := NewService(repo)
	repo.On("List", mock.Anything, mock.MatchedBy(func(f *model.UserFilter) bool {
		return f.Page == 1 && f.PageSize == model.MaxPageSize
	})).Return([]*model.User{account(model.RoleDoctor)}, 1, nil)

	users, total, err := svc.List(context.Background(), &model.UserFilter{Pagination: model.Pagination{PageSize: 500}})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, users, 1)

	_, _, err = svc.List(context.Background(), &model.UserFilter{Role: "Janitor"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}
