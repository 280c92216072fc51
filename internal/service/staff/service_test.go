package staff

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository/mocks"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
)

type fixture struct {
	svc      *Service
	repo     *mocks.StaffRepository
	users    *mocks.UserRepository
	counters *mocks.CounterRepository
}

func newFixture() *fixture {
	f := &fixture{repo: &mocks.StaffRepository{}, users: &mocks.UserRepository{}, counters: &mocks.CounterRepository{}}
	f.svc = NewService(&mocks.Transactor{}, f.repo, f.users, f.counters)
	f.svc.now = func() time.Time { return time.Date(2024, 11, 5, 10, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) user(role model.Role) *model.User {
	u := &model.User{Name: "Asha", Email: "asha@example.com", Role: role}
	u.ID = uuid.New()
	f.users.On("Get", mock.Anything, u.ID).Return(u, nil)
	return u
}

func TestCreateStaff(t *testing.T) {
	f := newFixture()
	u := f.user(model.RoleNurse)
	f.repo.On("GetByUserID", mock.Anything, u.ID).Return(nil, repository.ErrNotFound)
	f.counters.On("Next", mock.Anything, model.CounterStaff).Return(int64(42), nil)
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Staff")).Return(nil)

	member, err := f.svc.Create(context.Background(), &model.CreateStaffRequest{
		UserID:      u.ID,
		Designation: "Staff Nurse",
		Department:  "ICU",
		Salary:      4500000,
	})
	require.NoError(t, err)
	assert.Equal(t, "EMP00042", member.EmployeeID)
	assert.Equal(t, model.RoleNurse, member.Role)
	assert.Equal(t, model.ShiftMorning, member.Shift)
	assert.Equal(t, "2024-11-05", member.JoiningDate.String())
	assert.True(t, member.IsActive)
}

func TestCreateStaffRejectsPatientsAndDuplicates(t *testing.T) {
	f := newFixture()
	p := f.user(model.RolePatient)
	_, err := f.svc.Create(context.Background(), &model.CreateStaffRequest{UserID: p.ID, Designation: "x", Department: "y"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	u := f.user(model.RolePharmacist)
	f.repo.On("GetByUserID", mock.Anything, u.ID).Return(&model.Staff{UserID: u.ID}, nil)
	_, err = f.svc.Create(context.Background(), &model.CreateStaffRequest{UserID: u.ID, Designation: "x", Department: "y"})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	f.counters.AssertNotCalled(t, "Next", mock.Anything, mock.Anything)
}

func TestReviewPerformance(t *testing.T) {
	f := newFixture()
	member := &model.Staff{IsActive: true}
	member.ID = uuid.New()
	f.repo.On("Get", mock.Anything, member.ID).Return(member, nil)
	f.repo.On("Update", mock.Anything, member).Return(nil)

	got, err := f.svc.ReviewPerformance(context.Background(), member.ID, &model.PerformanceReviewRequest{Rating: 4.5, Notes: "steady"})
	require.NoError(t, err)
	assert.Equal(t, 4.5, got.Performance.Rating)
	require.NotNil(t, got.Performance.LastReviewDate)
	assert.Equal(t, "2024-11-05", got.Performance.LastReviewDate.String())

	_, err = f.svc.ReviewPerformance(context.Background(), member.ID, &model.PerformanceReviewRequest{Rating: 6})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestDeactivateStaff(t *testing.T) {
	f := newFixture()
	member := &model.Staff{IsActive: true}
	member.ID = uuid.New()
	f.repo.On("Get", mock.Anything, member.ID).Return(member, nil)
	f.repo.On("Update", mock.Anything, member).Return(nil)

	require.NoError(t, f.svc.Deactivate(context.Background(), member.ID))
	assert.False(t, member.IsActive)

	missing := uuid.New()
	f.repo.On("Get", mock.Anything, missing).Return(nil, repository.ErrNotFound)
	assert.True(t, apperrors.Is(f.svc.Deactivate(context.Background(), missing), apperrors.ErrNotFound))
}
