package appointment

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/handler/handlertest"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) appointment(args mock.Arguments) (*model.Appointment, error) {
	if a := args.Get(0); a != nil {
		return a.(*model.Appointment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) Create(ctx context.Context, caller model.UserRef, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	return m.appointment(m.Called(ctx, caller, req))
}

func (m *mockService) Get(ctx context.Context, caller model.UserRef, id uuid.UUID) (*model.Appointment, error) {
	return m.appointment(m.Called(ctx, caller, id))
}

func (m *mockService) List(ctx context.Context, caller model.UserRef, filter *model.AppointmentFilter) ([]*model.Appointment, int, error) {
	args := m.Called(ctx, caller, filter)
	if a := args.Get(0); a != nil {
		return a.([]*model.Appointment), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *mockService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	return m.appointment(m.Called(ctx, id, req))
}

func (m *mockService) Reschedule(ctx context.Context, id uuid.UUID, req *model.RescheduleAppointmentRequest) (*model.Appointment, error) {
	return m.appointment(m.Called(ctx, id, req))
}

func (m *mockService) Cancel(ctx context.Context, id uuid.UUID, reason string) (*model.Appointment, error) {
	return m.appointment(m.Called(ctx, id, reason))
}

func (m *mockService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	return m.appointment(m.Called(ctx, id, status))
}

func (m *mockService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockService) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date model.Date) (*model.AvailableSlots, error) {
	args := m.Called(ctx, doctorID, date)
	if s := args.Get(0); s != nil {
		return s.(*model.AvailableSlots), args.Error(1)
	}
	return nil, args.Error(1)
}

func bookingBody(patientID, doctorID uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"patient_id":       patientID,
		"doctor_id":        doctorID,
		"appointment_date": "2024-11-12",
		"time_slot":        map[string]string{"start_time": "09:00", "end_time": "09:30"},
		"type":             "Consultation",
	}
}

func TestCreateAppointmentPassesCaller(t *testing.T) {
	svc := &mockService{}
	srv := handlertest.New(t, NewHandler(svc))
	patientID, doctorID := uuid.New(), uuid.New()
	receptionist := srv.User(model.RoleReceptionist)

	svc.On("Create", mock.Anything, receptionist, mock.MatchedBy(func(req *model.CreateAppointmentRequest) bool {
		return req.PatientID == patientID && req.AppointmentDate.String() == "2024-11-12" && req.TimeSlot.StartTime == "09:00"
	})).Return(&model.Appointment{AppointmentNumber: "APT000001"}, nil).Once()

	w, resp := srv.Do(model.RoleReceptionist, http.MethodPost, "/api/appointments", bookingBody(patientID, doctorID))
	require.Equal(t, http.StatusCreated, w.Code)

	var got model.Appointment
	handlertest.Decode(t, resp, &got)
	assert.Equal(t, "APT000001", got.AppointmentNumber)
	svc.AssertExpectations(t)
}

func TestCreateAppointmentSlotConflict(t *testing.T) {
	svc := &mockService{}
	srv := handlertest.New(t, NewHandler(svc))

	svc.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.Conflict("time slot is already booked")).Once()

	w, resp := srv.Do(model.RolePatient, http.MethodPost, "/api/appointments", bookingBody(uuid.New(), uuid.New()))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "time slot is already booked", resp.Message)
}

func TestCreateAppointmentRejectsMalformedSlot(t *testing.T) {
	svc := &mockService{}
	srv := handlertest.New(t, NewHandler(svc))

	body := bookingBody(uuid.New(), uuid.New())
	body["time_slot"] = map[string]string{"start_time": "9am", "end_time": "10:00"}
	w, _ := srv.Do(model.RoleAdmin, http.MethodPost, "/api/appointments", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = bookingBody(uuid.New(), uuid.New())
	body["appointment_date"] = "12/11/2024"
	w, _ = srv.Do(model.RoleAdmin, http.MethodPost, "/api/appointments", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestListAppointmentsFilters(t *testing.T) {
	svc := &mockService{}
	srv := handlertest.New(t, NewHandler(svc))
	doctorID := uuid.New()

	svc.On("List", mock.Anything, mock.Anything, mock.MatchedBy(func(f *model.AppointmentFilter) bool {
		return f.DoctorID != nil && *f.DoctorID == doctorID &&
			f.Date != nil && f.Date.String() == "2024-11-12" &&
			f.Status == model.AppointmentScheduled && f.PatientID == nil
	})).Return([]*model.Appointment{{}, {}}, 2, nil).Once()

	w, resp := srv.Do(model.RoleDoctor, http.MethodGet,
		"/api/appointments?doctor_id="+doctorID.String()+"&date=2024-11-12&status=Scheduled", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, resp.Count)
	assert.Equal(t, 2, *resp.Count)

	w, _ = srv.Do(model.RoleDoctor, http.MethodGet, "/api/appointments?patient_id=nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestAvailableSlots(t *testing.T) {
	svc := &mockService{}
	srv := handlertest.New(t, NewHandler(svc))
	doctorID := uuid.New()
	date, err := model.ParseDate("2024-11-12")
	require.NoError(t, err)

	w, resp := srv.Do(model.RolePatient, http.MethodGet, "/api/appointments/available-slots?date=2024-11-12", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "doctor_id and date are required", resp.Message)

	svc.On("AvailableSlots", mock.Anything, doctorID, date).Return(&model.AvailableSlots{
		DoctorID: doctorID,
		Date:     date,
		Day:      "Tuesday",
		Slots:    []model.TimeSlot{{StartTime: "09:30", EndTime: "10:00"}},
	}, nil).Once()

	w, resp = srv.Do(model.RolePatient, http.MethodGet,
		"/api/appointments/available-slots?doctor_id="+doctorID.String()+"&date=2024-11-12", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got model.AvailableSlots
	handlertest.Decode(t, resp, &got)
	assert.Equal(t, "Tuesday", got.Day)
	require.Len(t, got.Slots, 1)
	assert.Equal(t, "09:30", got.Slots[0].StartTime)
}

func TestCancelAcceptsEmptyBody(t *testing.T) {
	svc := &mockService{}
	srv := handlertest.New(t, NewHandler(svc))
	id := uuid.New()

	svc.On("Cancel", mock.Anything, id, "").Return(&model.Appointment{Status: model.AppointmentCancelled}, nil).Once()
	w, _ := srv.Do(model.RoleReceptionist, http.MethodPut, "/api/appointments/"+id.String()+"/cancel", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	svc.On("Cancel", mock.Anything, id, "patient travelling").
		Return(nil, apperrors.Validation("cannot cancel a completed appointment")).Once()
	w, _ = srv.Do(model.RoleReceptionist, http.MethodPut, "/api/appointments/"+id.String()+"/cancel",
		map[string]string{"reason": "patient travelling"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestAppointmentWritesByRole(t *testing.T) {
	svc := &mockService{}
	srv := handlertest.New(t, NewHandler(svc))
	id := uuid.New()

	// Patients may book and read but not change status
	w, resp := srv.Do(model.RolePatient, http.MethodPatch, "/api/appointments/"+id.String()+"/status",
		map[string]string{"status": "Completed"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.ElementsMatch(t, []string{http.MethodGet, http.MethodPost}, resp.Allowed)

	w, _ = srv.Do(model.RoleNurse, http.MethodDelete, "/api/appointments/"+id.String(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	svc.On("UpdateStatus", mock.Anything, id, model.AppointmentCompleted).
		Return(&model.Appointment{Status: model.AppointmentCompleted}, nil).Once()
	w, _ = srv.Do(model.RoleDoctor, http.MethodPatch, "/api/appointments/"+id.String()+"/status",
		map[string]string{"status": "Completed"})
	assert.Equal(t, http.StatusOK, w.Code)

	svc.On("Delete", mock.Anything, id).Return(nil).Once()
	w, resp = srv.Do(model.RoleAdmin, http.MethodDelete, "/api/appointments/"+id.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "appointment deleted", resp.Message)
	svc.AssertExpectations(t)
}
