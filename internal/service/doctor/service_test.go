package doctor

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository/mocks"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
)

func user(role model.Role) *model.User {
	u := &model.User{Name: "Dr. Mehta", Email: "mehta@example.com", Role: role, IsActive: true}
	u.ID = uuid.New()
	return u
}

func TestCreateDoctorProfile(t *testing.T) {
	repo, users := &mocks.DoctorRepository{}, &mocks.UserRepository{}
	svc := NewService(repo, users)
	u := user(model.RoleDoctor)

	users.On("Get", mock.Anything, u.ID).Return(u, nil)
	repo.On("GetByUserID", mock.Anything, u.ID).Return(nil, repository.ErrNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Doctor")).Return(nil)

	doctor, err := svc.Create(context.Background(), &model.CreateDoctorRequest{
		UserID:          u.ID,
		Specialization:  "Cardiology",
		LicenseNumber:   "MCI-1001",
		ConsultationFee: 80000,
		Availability: []model.DayAvailability{{
			Day:   "Monday",
			Slots: []model.Slot{{StartTime: "09:00", EndTime: "09:30", IsAvailable: true}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Mehta", doctor.Name)
	assert.True(t, doctor.IsActive)
	assert.Len(t, doctor.SlotsOn("Monday"), 1)
}

func TestCreateDoctorRequiresDoctorRole(t *testing.T) {
	repo, users := &mocks.DoctorRepository{}, &mocks.UserRepository{}
	svc := NewService(repo, users)
	u := user(model.RoleNurse)
	users.On("Get", mock.Anything, u.ID).Return(u, nil)

	_, err := svc.Create(context.Background(), &model.CreateDoctorRequest{UserID: u.ID, Specialization: "x", LicenseNumber: "y"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestCreateDoctorOnlyOnce(t *testing.T) {
	repo, users := &mocks.DoctorRepository{}, &mocks.UserRepository{}
	svc := NewService(repo, users)
	u := user(model.RoleDoctor)
	users.On("Get", mock.Anything, u.ID).Return(u, nil)
	repo.On("GetByUserID", mock.Anything, u.ID).Return(&model.Doctor{UserID: u.ID}, nil)

	_, err := svc.Create(context.Background(), &model.CreateDoctorRequest{UserID: u.ID, Specialization: "x", LicenseNumber: "y"})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestCreateDoctorDuplicateLicense(t *testing.T) {
	repo, users := &mocks.DoctorRepository{}, &mocks.UserRepository{}
	svc := NewService(repo, users)
	u := user(model.RoleDoctor)
	users.On("Get", mock.Anything, u.ID).Return(u, nil)
	repo.On("GetByUserID", mock.Anything, u.ID).Return(nil, repository.ErrNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)

	_, err := svc.Create(context.Background(), &model.CreateDoctorRequest{UserID: u.ID, Specialization: "x", LicenseNumber: "MCI-1001"})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestUpdateAvailabilityValidatesSlots(t *testing.T) {
	repo, users := &mocks.DoctorRepository{}, &mocks.UserRepository{}
	svc := NewService(repo, users)

	_, err := svc.UpdateAvailability(context.Background(), uuid.New(), &model.UpdateAvailabilityRequest{
		Availability: []model.DayAvailability{{
			Day:   "Friday",
			Slots: []model.Slot{{StartTime: "14:00", EndTime: "13:00"}},
		}},
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	_, err = svc.UpdateAvailability(context.Background(), uuid.New(), &model.UpdateAvailabilityRequest{
		Availability: []model.DayAvailability{{Day: "Friday"}, {Day: "Friday"}},
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestDeactivate(t *testing.T) {
	repo, users := &mocks.DoctorRepository{}, &mocks.UserRepository{}
	svc := NewService(repo, users)
	doctor := &model.Doctor{IsActive: true}
	doctor.ID = uuid.New()
	repo.On("Get", mock.Anything, doctor.ID).Return(doctor, nil)
	repo.On("Update", mock.Anything, doctor).Return(nil)

	require.NoError(t, svc.Deactivate(context.Background(), doctor.ID))
	assert.False(t, doctor.IsActive)
}
