package appointment

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
	repo     *mocks.AppointmentRepository
	patients *mocks.PatientRepository
	doctors  *mocks.DoctorRepository
	counters *mocks.CounterRepository
	outbox   *mocks.OutboxRepository
	tx       *mocks.Transactor
}

func newFixture() *fixture {
	f := &fixture{
		repo:     &mocks.AppointmentRepository{},
		patients: &mocks.PatientRepository{},
		doctors:  &mocks.DoctorRepository{},
		counters: &mocks.CounterRepository{},
		outbox:   &mocks.OutboxRepository{},
		tx:       &mocks.Transactor{},
	}
	f.svc = NewService(f.tx, f.repo, f.patients, f.doctors, f.counters, event.NewService(f.outbox), metrics.NewNop())
	f.outbox.On("Create", mock.Anything, mock.AnythingOfType("*model.OutboxEvent")).Return(nil)
	return f
}

var receptionist = model.UserRef{ID: uuid.New(), Role: model.RoleReceptionist}

func day(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func newDoctor() *model.Doctor {
	d := &model.Doctor{Name: "Dr. Rao", IsActive: true}
	d.ID = uuid.New()
	return d
}

func newPatient() *model.Patient {
	p := &model.Patient{Name: "Ira"}
	p.ID = uuid.New()
	p.UserID = uuid.New()
	return p
}

func TestSlotConflictClearsOnCancel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	doctor := newDoctor()
	first, second := newPatient(), newPatient()
	date := day(t, "2024-11-05")
	slot := model.TimeSlot{StartTime: "09:00", EndTime: "09:30"}

	live := false
	f.doctors.On("Get", mock.Anything, doctor.ID).Return(doctor, nil)
	f.patients.On("Get", mock.Anything, first.ID).Return(first, nil)
	f.patients.On("Get", mock.Anything, second.ID).Return(second, nil)
	f.repo.On("LockSlot", mock.Anything, doctor.ID, date, "09:00").Return(nil)
	f.repo.On("HasConflict", mock.Anything, doctor.ID, date, "09:00", (*uuid.UUID)(nil)).
		Return(func() bool { return live }, nil)
	f.counters.On("Next", mock.Anything, model.CounterAppointment).Return(int64(1), nil).Once()
	f.counters.On("Next", mock.Anything, model.CounterAppointment).Return(int64(2), nil).Once()
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Appointment")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.Appointment).Touch(time.Now())
			live = true
		}).Return(nil)

	booking := func(p *model.Patient) *model.CreateAppointmentRequest {
		return &model.CreateAppointmentRequest{
			PatientID:       p.ID,
			DoctorID:        doctor.ID,
			AppointmentDate: date,
			TimeSlot:        slot,
		}
	}

	apt, err := f.svc.Create(ctx, receptionist, booking(first))
	require.NoError(t, err)
	assert.Equal(t, "APT000001", apt.AppointmentNumber)
	assert.Equal(t, model.AppointmentScheduled, apt.Status)
	assert.Equal(t, model.AppointmentConsultation, apt.Type)
	assert.Equal(t, model.PriorityNormal, apt.Priority)

	_, err = f.svc.Create(ctx, receptionist, booking(second))
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
	assert.Equal(t, "Time slot not available", appErr.Message)

	f.repo.On("GetForUpdate", mock.Anything, apt.ID).Return(apt, nil)
	f.repo.On("Update", mock.Anything, apt).Run(func(args mock.Arguments) {
		if !args.Get(1).(*model.Appointment).Status.Holds() {
			live = false
		}
	}).Return(nil)

	cancelled, err := f.svc.Cancel(ctx, apt.ID, "patient request")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancellationReason)

	again, err := f.svc.Create(ctx, receptionist, booking(second))
	require.NoError(t, err)
	assert.Equal(t, "APT000002", again.AppointmentNumber)
	f.outbox.AssertNumberOfCalls(t, "Create", 3)
}

func TestCancelTwiceIsAllowed(t *testing.T) {
	f := newFixture()
	apt := &model.Appointment{Status: model.AppointmentCancelled}
	apt.ID = uuid.New()
	f.repo.On("GetForUpdate", mock.Anything, apt.ID).Return(apt, nil)
	f.repo.On("Update", mock.Anything, apt).Return(nil)

	got, err := f.svc.Cancel(context.Background(), apt.ID, "duplicate booking")
	require.NoError(t, err)
	assert.Equal(t, "duplicate booking", *got.CancellationReason)
}

func TestCreateRejectsInvalidSlot(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), receptionist, &model.CreateAppointmentRequest{
		PatientID:       uuid.New(),
		DoctorID:        uuid.New(),
		AppointmentDate: day(t, "2024-11-05"),
		TimeSlot:        model.TimeSlot{StartTime: "10:00", EndTime: "09:00"},
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	assert.Zero(t, f.tx.Calls)
}

func TestCreateUnknownDoctor(t *testing.T) {
	f := newFixture()
	p := newPatient()
	doctorID := uuid.New()
	f.patients.On("Get", mock.Anything, p.ID).Return(p, nil)
	f.doctors.On("Get", mock.Anything, doctorID).Return(nil, repository.ErrNotFound)

	_, err := f.svc.Create(context.Background(), receptionist, &model.CreateAppointmentRequest{
		PatientID:       p.ID,
		DoctorID:        doctorID,
		AppointmentDate: day(t, "2024-11-05"),
		TimeSlot:        model.TimeSlot{StartTime: "09:00", EndTime: "09:30"},
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestPatientCannotBookForSomeoneElse(t *testing.T) {
	f := newFixture()
	me := newPatient()
	caller := model.UserRef{ID: me.UserID, Role: model.RolePatient}
	f.patients.On("GetByUserID", mock.Anything, me.UserID).Return(me, nil)

	_, err := f.svc.Create(context.Background(), caller, &model.CreateAppointmentRequest{
		PatientID:       uuid.New(),
		DoctorID:        uuid.New(),
		AppointmentDate: day(t, "2024-11-05"),
		TimeSlot:        model.TimeSlot{StartTime: "09:00", EndTime: "09:30"},
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestUpdateRechecksSlotWhenMoved(t *testing.T) {
	f := newFixture()
	apt := &model.Appointment{
		DoctorID:        uuid.New(),
		AppointmentDate: day(t, "2024-11-05"),
		TimeSlot:        model.TimeSlot{StartTime: "09:00", EndTime: "09:30"},
		Status:          model.AppointmentScheduled,
	}
	apt.ID = uuid.New()
	newDay := day(t, "2024-11-06")

	f.repo.On("GetForUpdate", mock.Anything, apt.ID).Return(apt, nil)
	f.repo.On("LockSlot", mock.Anything, apt.DoctorID, newDay, "09:00").Return(nil)
	f.repo.On("HasConflict", mock.Anything, apt.DoctorID, newDay, "09:00", &apt.ID).Return(true, nil)

	_, err := f.svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{AppointmentDate: &newDay})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateNotesSkipsSlotCheck(t *testing.T) {
	f := newFixture()
	apt := &model.Appointment{
		DoctorID:        uuid.New(),
		AppointmentDate: day(t, "2024-11-05"),
		TimeSlot:        model.TimeSlot{StartTime: "09:00", EndTime: "09:30"},
		Status:          model.AppointmentConfirmed,
	}
	apt.ID = uuid.New()
	notes := "bring previous reports"

	f.repo.On("GetForUpdate", mock.Anything, apt.ID).Return(apt, nil)
	f.repo.On("Update", mock.Anything, apt).Return(nil)

	got, err := f.svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, got.Notes)
	f.repo.AssertNotCalled(t, "HasConflict", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReviveCancelledAppointmentRechecksSlot(t *testing.T) {
	f := newFixture()
	apt := &model.Appointment{
		DoctorID:        uuid.New(),
		AppointmentDate: day(t, "2024-11-05"),
		TimeSlot:        model.TimeSlot{StartTime: "09:00", EndTime: "09:30"},
		Status:          model.AppointmentCancelled,
	}
	apt.ID = uuid.New()

	f.repo.On("GetForUpdate", mock.Anything, apt.ID).Return(apt, nil)
	f.repo.On("LockSlot", mock.Anything, apt.DoctorID, apt.AppointmentDate, "09:00").Return(nil)
	f.repo.On("HasConflict", mock.Anything, apt.DoctorID, apt.AppointmentDate, "09:00", &apt.ID).Return(true, nil)

	_, err := f.svc.UpdateStatus(context.Background(), apt.ID, model.AppointmentScheduled)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	f := newFixture()
	apt := &model.Appointment{Status: model.AppointmentScheduled}
	apt.ID = uuid.New()
	f.repo.On("GetForUpdate", mock.Anything, apt.ID).Return(apt, nil)

	_, err := f.svc.UpdateStatus(context.Background(), apt.ID, "Teleported")
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestRescheduleRequiresOpenStatus(t *testing.T) {
	f := newFixture()
	apt := &model.Appointment{Status: model.AppointmentCompleted}
	apt.ID = uuid.New()
	f.repo.On("GetForUpdate", mock.Anything, apt.ID).Return(apt, nil)

	_, err := f.svc.Reschedule(context.Background(), apt.ID, &model.RescheduleAppointmentRequest{
		AppointmentDate: day(t, "2024-11-07"),
		TimeSlot:        model.TimeSlot{StartTime: "11:00", EndTime: "11:30"},
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestRescheduleExcludesItself(t *testing.T) {
	f := newFixture()
	apt := &model.Appointment{
		DoctorID:        uuid.New(),
		AppointmentDate: day(t, "2024-11-05"),
		TimeSlot:        model.TimeSlot{StartTime: "09:00", EndTime: "09:30"},
		Status:          model.AppointmentScheduled,
	}
	apt.ID = uuid.New()
	target := day(t, "2024-11-07")

	f.repo.On("GetForUpdate", mock.Anything, apt.ID).Return(apt, nil)
	f.repo.On("LockSlot", mock.Anything, apt.DoctorID, target, "11:00").Return(nil)
	f.repo.On("HasConflict", mock.Anything, apt.DoctorID, target, "11:00", &apt.ID).Return(false, nil)
	f.repo.On("Update", mock.Anything, apt).Return(nil)

	got, err := f.svc.Reschedule(context.Background(), apt.ID, &model.RescheduleAppointmentRequest{
		AppointmentDate: target,
		TimeSlot:        model.TimeSlot{StartTime: "11:00", EndTime: "11:30"},
	})
	require.NoError(t, err)
	assert.Equal(t, target, got.AppointmentDate)
	assert.Equal(t, "11:00", got.StartTime)
	f.outbox.AssertNumberOfCalls(t, "Create", 1)
}

func TestAvailableSlotsSubtractsBookings(t *testing.T) {
	f := newFixture()
	doctor := newDoctor()
	doctor.Availability = model.JSONList[model.DayAvailability]{{
		Day: "Tuesday",
		Slots: []model.Slot{
			{StartTime: "09:00", EndTime: "09:30", IsAvailable: true},
			{StartTime: "09:30", EndTime: "10:00", IsAvailable: true},
			{StartTime: "10:00", EndTime: "10:30", IsAvailable: false},
		},
	}}
	date := day(t, "2024-11-05")
	f.doctors.On("Get", mock.Anything, doctor.ID).Return(doctor, nil)
	f.repo.On("BookedSlots", mock.Anything, doctor.ID, date).
		Return([]model.TimeSlot{{StartTime: "09:00", EndTime: "09:30"}}, nil)

	got, err := f.svc.AvailableSlots(context.Background(), doctor.ID, date)
	require.NoError(t, err)
	assert.Equal(t, "Tuesday", got.Day)
	assert.Equal(t, []model.TimeSlot{{StartTime: "09:30", EndTime: "10:00"}}, got.Slots)
}

func TestPatientSeesOnlyOwnAppointments(t *testing.T) {
	f := newFixture()
	me := newPatient()
	caller := model.UserRef{ID: me.UserID, Role: model.RolePatient}
	f.patients.On("GetByUserID", mock.Anything, me.UserID).Return(me, nil)

	f.repo.On("List", mock.Anything, mock.MatchedBy(func(filter *model.AppointmentFilter) bool {
		return filter.PatientID != nil && *filter.PatientID == me.ID
	})).Return([]*model.Appointment{}, 0, nil)

	other := uuid.New()
	_, _, err := f.svc.List(context.Background(), caller, &model.AppointmentFilter{PatientID: &other})
	require.NoError(t, err)

	foreign := &model.Appointment{PatientID: other}
	foreign.ID = uuid.New()
	f.repo.On("Get", mock.Anything, foreign.ID).Return(foreign, nil)
	_, err = f.svc.Get(context.Background(), caller, foreign.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
