package ward

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
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/event"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/metrics"
)

type fixture struct {
	svc      *Service
	repo     *mocks.WardRepository
	patients *mocks.PatientRepository
	outbox   *mocks.OutboxRepository
	now      time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repo:     &mocks.WardRepository{},
		patients: &mocks.PatientRepository{},
		outbox:   &mocks.OutboxRepository{},
		now:      time.Date(2024, 11, 5, 8, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(&mocks.Transactor{}, f.repo, f.patients, event.NewService(f.outbox), metrics.NewNop())
	f.svc.now = func() time.Time { return f.now }
	f.outbox.On("Create", mock.Anything, mock.Anything).Return(nil)
	return f
}

func (f *fixture) createWard(t *testing.T, beds int) *model.Ward {
	t.Helper()
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Ward")).Return(nil).Once()
	ward, err := f.svc.Create(context.Background(), &model.CreateWardRequest{
		WardNumber: "W1",
		Name:       "General A",
		Type:       model.WardGeneral,
		TotalBeds:  beds,
	})
	require.NoError(t, err)
	return ward
}

func newPatient() *model.Patient {
	p := &model.Patient{Name: "Ira"}
	p.ID = uuid.New()
	return p
}

func TestCreateNumbersBeds(t *testing.T) {
	f := newFixture()
	ward := f.createWard(t, 3)

	require.Len(t, ward.Beds, 3)
	assert.Equal(t, "W1-01", ward.Beds[0].BedNumber)
	assert.Equal(t, "W1-03", ward.Beds[2].BedNumber)
	assert.Equal(t, 3, ward.TotalBeds)
	assert.Equal(t, 3, ward.AvailableBeds)
	assert.True(t, ward.IsActive)
}

func TestCreateRequiresBeds(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), &model.CreateWardRequest{WardNumber: "W2", Name: "Empty", Type: model.WardICU})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestCreateCapsBeds(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), &model.CreateWardRequest{
		WardNumber: "W3", Name: "Huge", Type: model.WardGeneral, TotalBeds: model.MaxWardBeds + 1,
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	ward := f.createWard(t, 120)
	require.Len(t, ward.Beds, 120)
	assert.Equal(t, "W1-120", ward.Beds[119].BedNumber)
}

func TestCreateDuplicateWardNumber(t *testing.T) {
	f := newFixture()
	f.repo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)
	_, err := f.svc.Create(context.Background(), &model.CreateWardRequest{WardNumber: "W1", Name: "Dup", Type: model.WardICU, TotalBeds: 2})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestAllocateUntilFull(t *testing.T) {
	f := newFixture()
	ward := f.createWard(t, 3)

	f.repo.On("GetForUpdate", mock.Anything, ward.ID).Return(ward, nil)
	f.repo.On("UpdateBed", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("Update", mock.Anything, ward).Return(nil)
	f.patients.On("GetForUpdate", mock.Anything, mock.Anything).Return(func() *model.Patient { return newPatient() }, nil)
	f.patients.On("Update", mock.Anything, mock.Anything).Return(nil)

	for i, want := range []string{"W1-01", "W1-02", "W1-03"} {
		got, err := f.svc.AllocateBed(context.Background(), ward.ID, &model.AllocateBedRequest{PatientID: uuid.New()})
		require.NoError(t, err)
		assert.Equal(t, want, got.Bed.BedNumber)
		assert.Equal(t, 2-i, got.Ward.AvailableBeds)
		assert.Equal(t, f.now, got.Admission.AdmissionDate)
	}

	_, err := f.svc.AllocateBed(context.Background(), ward.ID, &model.AllocateBedRequest{PatientID: uuid.New()})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
	assert.Equal(t, "no beds available", appErr.Message)
	assert.Equal(t, 0, ward.AvailableBeds)
	assert.Equal(t, 3, ward.TotalBeds)
	f.outbox.AssertNumberOfCalls(t, "Create", 3)
}

func TestAllocateRecordsAdmission(t *testing.T) {
	f := newFixture()
	ward := f.createWard(t, 2)
	patient := newPatient()
	discharge := f.now.Add(72 * time.Hour)

	f.repo.On("GetForUpdate", mock.Anything, ward.ID).Return(ward, nil)
	f.repo.On("UpdateBed", mock.Anything, ward.Beds[0]).Return(nil)
	f.repo.On("Update", mock.Anything, ward).Return(nil)
	f.patients.On("GetForUpdate", mock.Anything, patient.ID).Return(patient, nil)
	f.patients.On("Update", mock.Anything, patient).Return(nil)

	_, err := f.svc.AllocateBed(context.Background(), ward.ID, &model.AllocateBedRequest{
		PatientID:             patient.ID,
		ExpectedDischargeDate: &discharge,
	})
	require.NoError(t, err)

	current := patient.CurrentAdmission()
	require.NotNil(t, current)
	assert.Equal(t, "W1-01", current.BedNumber)
	assert.Equal(t, &discharge, current.ExpectedDischargeDate)
	assert.Equal(t, patient.ID, *ward.Beds[0].PatientID)

	_, err = f.svc.AllocateBed(context.Background(), ward.ID, &model.AllocateBedRequest{PatientID: patient.ID})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict), "a patient holds one bed at a time")
	assert.Equal(t, 1, ward.AvailableBeds)
}

func TestAllocateUnknownPatient(t *testing.T) {
	f := newFixture()
	ward := f.createWard(t, 1)
	missing := uuid.New()
	f.repo.On("GetForUpdate", mock.Anything, ward.ID).Return(ward, nil)
	f.patients.On("GetForUpdate", mock.Anything, missing).Return(nil, repository.ErrNotFound)

	_, err := f.svc.AllocateBed(context.Background(), ward.ID, &model.AllocateBedRequest{PatientID: missing})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, 1, ward.AvailableBeds)
}

func TestReleaseClosesAdmission(t *testing.T) {
	f := newFixture()
	ward := f.createWard(t, 2)
	patient := newPatient()

	f.repo.On("GetForUpdate", mock.Anything, ward.ID).Return(ward, nil)
	f.repo.On("UpdateBed", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("Update", mock.Anything, ward).Return(nil)
	f.patients.On("GetForUpdate", mock.Anything, patient.ID).Return(patient, nil)
	f.patients.On("Update", mock.Anything, patient).Return(nil)

	_, err := f.svc.AllocateBed(context.Background(), ward.ID, &model.AllocateBedRequest{PatientID: patient.ID})
	require.NoError(t, err)

	f.now = f.now.Add(48 * time.Hour)
	got, err := f.svc.ReleaseBed(context.Background(), ward.ID, "W1-01")
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableBeds)
	assert.False(t, got.Beds[0].IsOccupied)
	assert.Nil(t, got.Beds[0].PatientID)

	assert.Nil(t, patient.CurrentAdmission())
	require.Len(t, patient.AdmissionHistory, 1)
	assert.Equal(t, f.now, *patient.AdmissionHistory[0].DischargeDate)
}

func TestReleaseRejectsFreeOrUnknownBed(t *testing.T) {
	f := newFixture()
	ward := f.createWard(t, 2)
	f.repo.On("GetForUpdate", mock.Anything, ward.ID).Return(ward, nil)

	_, err := f.svc.ReleaseBed(context.Background(), ward.ID, "W1-02")
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	_, err = f.svc.ReleaseBed(context.Background(), ward.ID, "W9-01")
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	f.repo.AssertNotCalled(t, "UpdateBed", mock.Anything, mock.Anything)
}

func TestDeleteOccupiedWard(t *testing.T) {
	f := newFixture()
	ward := f.createWard(t, 2)
	_, err := ward.AllocateBed(uuid.New(), f.now, nil)
	require.NoError(t, err)
	f.repo.On("GetForUpdate", mock.Anything, ward.ID).Return(ward, nil)

	err = f.svc.Delete(context.Background(), ward.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	f.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteEmptyWard(t *testing.T) {
	f := newFixture()
	ward := f.createWard(t, 2)
	f.repo.On("GetForUpdate", mock.Anything, ward.ID).Return(ward, nil)
	f.repo.On("Delete", mock.Anything, ward.ID).Return(nil)

	require.NoError(t, f.svc.Delete(context.Background(), ward.ID))
}
