package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
)

var (
	// ErrNotFound is returned when a row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate wraps unique constraint violations
	ErrDuplicate = errors.New("duplicate record")
	// ErrConstraint wraps check constraint violations
	ErrConstraint = errors.New("constraint violated")
)

// Transactor runs fn inside one database transaction carried by ctx.
// Repositories called with that ctx join the transaction; nested calls reuse it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		// GetByResetToken only matches tokens that have not expired at now
		GetByResetToken(ctx context.Context, digest string, now time.Time) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		List(ctx context.Context, filter *model.UserFilter) ([]*model.User, int, error)
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		List(ctx context.Context, filter *model.DoctorFilter) ([]*model.Doctor, int, error)
		CountActive(ctx context.Context) (int, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filter *model.PatientFilter) ([]*model.Patient, int, error)
		Count(ctx context.Context) (int, error)
		CountCreatedSince(ctx context.Context, since time.Time) (int, error)
	}

	MedicineRepository interface {
		Create(ctx context.Context, medicine *model.Medicine) error
		Get(ctx context.Context, id uuid.UUID) (*model.Medicine, error)
		GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Medicine, error)
		// ListForUpdate locks the rows in id order
		ListForUpdate(ctx context.Context, ids []uuid.UUID) ([]*model.Medicine, error)
		GetMany(ctx context.Context, ids []uuid.UUID) ([]*model.Medicine, error)
		Update(ctx context.Context, medicine *model.Medicine) error
		List(ctx context.Context, filter *model.MedicineFilter) ([]*model.Medicine, int, error)
		LowStock(ctx context.Context, limit int) ([]*model.Medicine, error)
		ExpiringBefore(ctx context.Context, today, before model.Date) ([]*model.Medicine, error)
		Expired(ctx context.Context, today model.Date) ([]*model.Medicine, error)
		CountActive(ctx context.Context) (int, error)
		Inventory(ctx context.Context, today, expiringBefore model.Date) (*model.InventoryReport, error)
	}

	WardRepository interface {
		// Create inserts the ward row and its beds
		Create(ctx context.Context, ward *model.Ward) error
		Get(ctx context.Context, id uuid.UUID) (*model.Ward, error)
		// GetForUpdate locks the ward row and all of its bed rows
		GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Ward, error)
		Update(ctx context.Context, ward *model.Ward) error
		UpdateBed(ctx context.Context, bed *model.Bed) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filter *model.WardFilter) ([]*model.Ward, int, error)
		BedStats(ctx context.Context) (*model.BedStats, error)
		Occupancy(ctx context.Context) ([]model.WardOccupancy, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filter *model.AppointmentFilter) ([]*model.Appointment, int, error)
		// LockSlot serializes bookings of one doctor slot until the transaction ends
		LockSlot(ctx context.Context, doctorID uuid.UUID, date model.Date, startTime string) error
		HasConflict(ctx context.Context, doctorID uuid.UUID, date model.Date, startTime string, excludeID *uuid.UUID) (bool, error)
		BookedSlots(ctx context.Context, doctorID uuid.UUID, date model.Date) ([]model.TimeSlot, error)
		CountByStatus(ctx context.Context, filter *model.AppointmentFilter) ([]model.StatusCount, error)
	}

	PrescriptionRepository interface {
		Create(ctx context.Context, prescription *model.Prescription) error
		Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error)
		GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Prescription, error)
		Update(ctx context.Context, prescription *model.Prescription) error
		List(ctx context.Context, filter *model.PrescriptionFilter) ([]*model.Prescription, int, error)
	}

	BillingRepository interface {
		Create(ctx context.Context, bill *model.Bill) error
		Get(ctx context.Context, id uuid.UUID) (*model.Bill, error)
		GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Bill, error)
		Update(ctx context.Context, bill *model.Bill) error
		List(ctx context.Context, filter *model.BillFilter) ([]*model.Bill, int, error)
		Outstanding(ctx context.Context, patientID *uuid.UUID) (*model.OutstandingBills, error)
		CollectedSince(ctx context.Context, since time.Time) (model.Money, error)
		Revenue(ctx context.Context, from, to model.Date) ([]model.RevenueRow, error)
	}

	StaffRepository interface {
		Create(ctx context.Context, staff *model.Staff) error
		Get(ctx context.Context, id uuid.UUID) (*model.Staff, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Staff, error)
		Update(ctx context.Context, staff *model.Staff) error
		List(ctx context.Context, filter *model.StaffFilter) ([]*model.Staff, int, error)
		CountActive(ctx context.Context) (int, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// GetPendingEventsWithLock must run inside a transaction
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, maxRetries int) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	// CounterRepository hands out gap-tolerant sequence numbers per name
	CounterRepository interface {
		Next(ctx context.Context, name string) (int64, error)
	}
)
