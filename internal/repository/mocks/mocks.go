// Package mocks holds testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
)

// get returns argument i as T, tolerating a nil interface
func get[T any](args mock.Arguments, i int) T {
	var zero T
	if v := args.Get(i); v != nil {
		if fn, ok := v.(func() T); ok {
			return fn()
		}
		return v.(T)
	}
	return zero
}

// Transactor runs fn directly on the caller's context
type Transactor struct {
	Calls int
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.Calls++
	return fn(ctx)
}

var _ repository.Transactor = (*Transactor)(nil)

type UserRepository struct{ mock.Mock }

func (m *UserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	return get[*model.User](args, 0), args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	return get[*model.User](args, 0), args.Error(1)
}

func (m *UserRepository) GetByResetToken(ctx context.Context, digest string, now time.Time) (*model.User, error) {
	args := m.Called(ctx, digest, now)
	return get[*model.User](args, 0), args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) List(ctx context.Context, filter *model.UserFilter) ([]*model.User, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*model.User](args, 0), args.Int(1), args.Error(2)
}

type DoctorRepository struct{ mock.Mock }

func (m *DoctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	return m.Called(ctx, doctor).Error(0)
}

func (m *DoctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	args := m.Called(ctx, id)
	return get[*model.Doctor](args, 0), args.Error(1)
}

func (m *DoctorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error) {
	args := m.Called(ctx, userID)
	return get[*model.Doctor](args, 0), args.Error(1)
}

func (m *DoctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	return m.Called(ctx, doctor).Error(0)
}

func (m *DoctorRepository) List(ctx context.Context, filter *model.DoctorFilter) ([]*model.Doctor, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*model.Doctor](args, 0), args.Int(1), args.Error(2)
}

func (m *DoctorRepository) CountActive(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type PatientRepository struct{ mock.Mock }

func (m *PatientRepository) Create(ctx context.Context, patient *model.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *PatientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, id)
	return get[*model.Patient](args, 0), args.Error(1)
}

func (m *PatientRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, id)
	return get[*model.Patient](args, 0), args.Error(1)
}

func (m *PatientRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, userID)
	return get[*model.Patient](args, 0), args.Error(1)
}

func (m *PatientRepository) Update(ctx context.Context, patient *model.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *PatientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *PatientRepository) List(ctx context.Context, filter *model.PatientFilter) ([]*model.Patient, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*model.Patient](args, 0), args.Int(1), args.Error(2)
}

func (m *PatientRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *PatientRepository) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	args := m.Called(ctx, since)
	return args.Int(0), args.Error(1)
}

type MedicineRepository struct{ mock.Mock }

func (m *MedicineRepository) Create(ctx context.Context, medicine *model.Medicine) error {
	return m.Called(ctx, medicine).Error(0)
}

func (m *MedicineRepository) Get(ctx context.Context, id uuid.UUID) (*model.Medicine, error) {
	args := m.Called(ctx, id)
	return get[*model.Medicine](args, 0), args.Error(1)
}

func (m *MedicineRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Medicine, error) {
	args := m.Called(ctx, id)
	return get[*model.Medicine](args, 0), args.Error(1)
}

func (m *MedicineRepository) ListForUpdate(ctx context.Context, ids []uuid.UUID) ([]*model.Medicine, error) {
	args := m.Called(ctx, ids)
	return get[[]*model.Medicine](args, 0), args.Error(1)
}

func (m *MedicineRepository) GetMany(ctx context.Context, ids []uuid.UUID) ([]*model.Medicine, error) {
	args := m.Called(ctx, ids)
	return get[[]*model.Medicine](args, 0), args.Error(1)
}

func (m *MedicineRepository) Update(ctx context.Context, medicine *model.Medicine) error {
	return m.Called(ctx, medicine).Error(0)
}

func (m *MedicineRepository) List(ctx context.Context, filter *model.MedicineFilter) ([]*model.Medicine, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*model.Medicine](args, 0), args.Int(1), args.Error(2)
}

func (m *MedicineRepository) LowStock(ctx context.Context, limit int) ([]*model.Medicine, error) {
	args := m.Called(ctx, limit)
	return get[[]*model.Medicine](args, 0), args.Error(1)
}

func (m *MedicineRepository) ExpiringBefore(ctx context.Context, today, before model.Date) ([]*model.Medicine, error) {
	args := m.Called(ctx, today, before)
	return get[[]*model.Medicine](args, 0), args.Error(1)
}

func (m *MedicineRepository) Expired(ctx context.Context, today model.Date) ([]*model.Medicine, error) {
	args := m.Called(ctx, today)
	return get[[]*model.Medicine](args, 0), args.Error(1)
}

func (m *MedicineRepository) CountActive(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MedicineRepository) Inventory(ctx context.Context, today, expiringBefore model.Date) (*model.InventoryReport, error) {
	args := m.Called(ctx, today, expiringBefore)
	return get[*model.InventoryReport](args, 0), args.Error(1)
}

type WardRepository struct{ mock.Mock }

func (m *WardRepository) Create(ctx context.Context, ward *model.Ward) error {
	return m.Called(ctx, ward).Error(0)
}

func (m *WardRepository) Get(ctx context.Context, id uuid.UUID) (*model.Ward, error) {
	args := m.Called(ctx, id)
	return get[*model.Ward](args, 0), args.Error(1)
}

func (m *WardRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Ward, error) {
	args := m.Called(ctx, id)
	return get[*model.Ward](args, 0), args.Error(1)
}

func (m *WardRepository) Update(ctx context.Context, ward *model.Ward) error {
	return m.Called(ctx, ward).Error(0)
}

func (m *WardRepository) UpdateBed(ctx context.Context, bed *model.Bed) error {
	return m.Called(ctx, bed).Error(0)
}

func (m *WardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *WardRepository) List(ctx context.Context, filter *model.WardFilter) ([]*model.Ward, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*model.Ward](args, 0), args.Int(1), args.Error(2)
}

func (m *WardRepository) BedStats(ctx context.Context) (*model.BedStats, error) {
	args := m.Called(ctx)
	return get[*model.BedStats](args, 0), args.Error(1)
}

func (m *WardRepository) Occupancy(ctx context.Context) ([]model.WardOccupancy, error) {
	args := m.Called(ctx)
	return get[[]model.WardOccupancy](args, 0), args.Error(1)
}

type AppointmentRepository struct{ mock.Mock }

func (m *AppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	return m.Called(ctx, appointment).Error(0)
}

func (m *AppointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	return get[*model.Appointment](args, 0), args.Error(1)
}

func (m *AppointmentRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	return get[*model.Appointment](args, 0), args.Error(1)
}

func (m *AppointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	return m.Called(ctx, appointment).Error(0)
}

func (m *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *AppointmentRepository) List(ctx context.Context, filter *model.AppointmentFilter) ([]*model.Appointment, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*model.Appointment](args, 0), args.Int(1), args.Error(2)
}

func (m *AppointmentRepository) LockSlot(ctx context.Context, doctorID uuid.UUID, date model.Date, startTime string) error {
	return m.Called(ctx, doctorID, date, startTime).Error(0)
}

func (m *AppointmentRepository) HasConflict(ctx context.Context, doctorID uuid.UUID, date model.Date, startTime string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, doctorID, date, startTime, excludeID)
	return get[bool](args, 0), args.Error(1)
}

func (m *AppointmentRepository) BookedSlots(ctx context.Context, doctorID uuid.UUID, date model.Date) ([]model.TimeSlot, error) {
	args := m.Called(ctx, doctorID, date)
	return get[[]model.TimeSlot](args, 0), args.Error(1)
}

func (m *AppointmentRepository) CountByStatus(ctx context.Context, filter *model.AppointmentFilter) ([]model.StatusCount, error) {
	args := m.Called(ctx, filter)
	return get[[]model.StatusCount](args, 0), args.Error(1)
}

type PrescriptionRepository struct{ mock.Mock }

func (m *PrescriptionRepository) Create(ctx context.Context, prescription *model.Prescription) error {
	return m.Called(ctx, prescription).Error(0)
}

func (m *PrescriptionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	args := m.Called(ctx, id)
	return get[*model.Prescription](args, 0), args.Error(1)
}

func (m *PrescriptionRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	args := m.Called(ctx, id)
	return get[*model.Prescription](args, 0), args.Error(1)
}

func (m *PrescriptionRepository) Update(ctx context.Context, prescription *model.Prescription) error {
	return m.Called(ctx, prescription).Error(0)
}

func (m *PrescriptionRepository) List(ctx context.Context, filter *model.PrescriptionFilter) ([]*model.Prescription, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*model.Prescription](args, 0), args.Int(1), args.Error(2)
}

type BillingRepository struct{ mock.Mock }

func (m *BillingRepository) Create(ctx context.Context, bill *model.Bill) error {
	return m.Called(ctx, bill).Error(0)
}

func (m *BillingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	args := m.Called(ctx, id)
	return get[*model.Bill](args, 0), args.Error(1)
}

func (m *BillingRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	args := m.Called(ctx, id)
	return get[*model.Bill](args, 0), args.Error(1)
}

func (m *BillingRepository) Update(ctx context.Context, bill *model.Bill) error {
	return m.Called(ctx, bill).Error(0)
}

func (m *BillingRepository) List(ctx context.Context, filter *model.BillFilter) ([]*model.Bill, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*model.Bill](args, 0), args.Int(1), args.Error(2)
}

func (m *BillingRepository) Outstanding(ctx context.Context, patientID *uuid.UUID) (*model.OutstandingBills, error) {
	args := m.Called(ctx, patientID)
	return get[*model.OutstandingBills](args, 0), args.Error(1)
}

func (m *BillingRepository) CollectedSince(ctx context.Context, since time.Time) (model.Money, error) {
	args := m.Called(ctx, since)
	return get[model.Money](args, 0), args.Error(1)
}

func (m *BillingRepository) Revenue(ctx context.Context, from, to model.Date) ([]model.RevenueRow, error) {
	args := m.Called(ctx, from, to)
	return get[[]model.RevenueRow](args, 0), args.Error(1)
}

type StaffRepository struct{ mock.Mock }

func (m *StaffRepository) Create(ctx context.Context, staff *model.Staff) error {
	return m.Called(ctx, staff).Error(0)
}

func (m *StaffRepository) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	args := m.Called(ctx, id)
	return get[*model.Staff](args, 0), args.Error(1)
}

func (m *StaffRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Staff, error) {
	args := m.Called(ctx, userID)
	return get[*model.Staff](args, 0), args.Error(1)
}

func (m *StaffRepository) Update(ctx context.Context, staff *model.Staff) error {
	return m.Called(ctx, staff).Error(0)
}

func (m *StaffRepository) List(ctx context.Context, filter *model.StaffFilter) ([]*model.Staff, int, error) {
	args := m.Called(ctx, filter)
	return get[[]*model.Staff](args, 0), args.Int(1), args.Error(2)
}

func (m *StaffRepository) CountActive(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type OutboxRepository struct{ mock.Mock }

func (m *OutboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *OutboxRepository) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	return get[[]*model.OutboxEvent](args, 0), args.Error(1)
}

func (m *OutboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, maxRetries int) error {
	return m.Called(ctx, id, errMsg, maxRetries).Error(0)
}

func (m *OutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return get[int64](args, 0), args.Error(1)
}

type CounterRepository struct{ mock.Mock }

func (m *CounterRepository) Next(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return get[int64](args, 0), args.Error(1)
}

var (
	_ repository.UserRepository         = (*UserRepository)(nil)
	_ repository.DoctorRepository       = (*DoctorRepository)(nil)
	_ repository.PatientRepository      = (*PatientRepository)(nil)
	_ repository.MedicineRepository     = (*MedicineRepository)(nil)
	_ repository.WardRepository         = (*WardRepository)(nil)
	_ repository.AppointmentRepository  = (*AppointmentRepository)(nil)
	_ repository.PrescriptionRepository = (*PrescriptionRepository)(nil)
	_ repository.BillingRepository      = (*BillingRepository)(nil)
	_ repository.StaffRepository        = (*StaffRepository)(nil)
	_ repository.OutboxRepository       = (*OutboxRepository)(nil)
	_ repository.CounterRepository      = (*CounterRepository)(nil)
)
