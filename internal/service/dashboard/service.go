// Package dashboard assembles the per-role landing snapshots. Every query is
// read-only and runs concurrently; nothing is cached.
package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
)

const (
	recentLimit        = 5
	pharmacyQueueLimit = 10
	expiringMonths     = 3
)

type Repositories struct {
	Patients      repository.PatientRepository
	Doctors       repository.DoctorRepository
	Staff         repository.StaffRepository
	Appointments  repository.AppointmentRepository
	Wards         repository.WardRepository
	Medicines     repository.MedicineRepository
	Prescriptions repository.PrescriptionRepository
	Bills         repository.BillingRepository
}

type Service struct {
	repos Repositories
	now   func() time.Time
}

func NewService(repos Repositories) *Service {
	return &Service{repos: repos, now: time.Now}
}

// ForRole returns the dashboard matching the caller's role
func (s *Service) ForRole(ctx context.Context, caller model.UserRef) (interface{}, error) {
	switch caller.Role {
	case model.RoleAdmin:
		return s.Admin(ctx)
	case model.RoleDoctor:
		return s.Doctor(ctx, caller)
	case model.RolePatient:
		return s.Patient(ctx, caller)
	case model.RoleNurse:
		return s.Nurse(ctx)
	case model.RoleReceptionist:
		return s.Receptionist(ctx)
	case model.RolePharmacist:
		return s.Pharmacist(ctx)
	}
	return nil, apperrors.Forbidden("no dashboard for role "+string(caller.Role), nil)
}

func page(size int) model.Pagination {
	return model.Pagination{Page: 1, PageSize: size}
}

func monthStart(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
}

func dayStart(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

func (s *Service) Admin(ctx context.Context) (*model.AdminDashboard, error) {
	now := s.now()
	today := model.Today(now)
	d := &model.AdminDashboard{GeneratedAt: now}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.TotalPatients, err = s.repos.Patients.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalDoctors, err = s.repos.Doctors.CountActive(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.ActiveStaff, err = s.repos.Staff.CountActive(ctx)
		return err
	})
	g.Go(func() (err error) {
		_, d.TodayAppointments, err = s.repos.Appointments.List(ctx, &model.AppointmentFilter{
			Pagination: page(1), Date: &today,
		})
		return err
	})
	g.Go(func() error {
		stats, err := s.repos.Wards.BedStats(ctx)
		if err == nil {
			d.Beds = *stats
		}
		return err
	})
	g.Go(func() error {
		low, err := s.repos.Medicines.LowStock(ctx, 0)
		d.LowStockMedicines = len(low)
		return err
	})
	g.Go(func() error {
		out, err := s.repos.Bills.Outstanding(ctx, nil)
		if err == nil {
			d.PendingBills = *out
		}
		return err
	})
	g.Go(func() (err error) {
		d.MonthRevenue, err = s.repos.Bills.CollectedSince(ctx, monthStart(now))
		return err
	})
	g.Go(func() (err error) {
		d.RecentAppointments, _, err = s.repos.Appointments.List(ctx, &model.AppointmentFilter{
			Pagination: page(recentLimit), Recent: true,
		})
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, service.RepoError(err, "dashboard")
	}
	return d, nil
}

func (s *Service) Doctor(ctx context.Context, caller model.UserRef) (*model.DoctorDashboard, error) {
	doctor, err := s.repos.Doctors.GetByUserID(ctx, caller.ID)
	if err != nil {
		return nil, service.RepoError(err, "doctor profile")
	}
	now := s.now()
	today := model.Today(now)
	d := &model.DoctorDashboard{Doctor: doctor, GeneratedAt: now}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.TodayAppointments, _, err = s.repos.Appointments.List(ctx, &model.AppointmentFilter{
			Pagination: page(model.MaxPageSize), DoctorID: &doctor.ID, Date: &today,
		})
		return err
	})
	g.Go(func() (err error) {
		_, d.UpcomingCount, err = s.repos.Appointments.List(ctx, &model.AppointmentFilter{
			Pagination: page(1), DoctorID: &doctor.ID, From: &today, Upcoming: true,
		})
		return err
	})
	g.Go(func() (err error) {
		d.AppointmentsByState, err = s.repos.Appointments.CountByStatus(ctx, &model.AppointmentFilter{DoctorID: &doctor.ID})
		return err
	})
	g.Go(func() (err error) {
		d.RecentPrescriptions, _, err = s.repos.Prescriptions.List(ctx, &model.PrescriptionFilter{
			Pagination: page(recentLimit), DoctorID: &doctor.ID,
		})
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, service.RepoError(err, "dashboard")
	}
	return d, nil
}

func (s *Service) Patient(ctx context.Context, caller model.UserRef) (*model.PatientDashboard, error) {
	patient, err := s.repos.Patients.GetByUserID(ctx, caller.ID)
	if err != nil {
		return nil, service.RepoError(err, "patient profile")
	}
	now := s.now()
	today := model.Today(now)
	d := &model.PatientDashboard{Patient: patient, CurrentAdmission: patient.CurrentAdmission(), GeneratedAt: now}

	var prescriptions []*model.Prescription
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.UpcomingAppointments, _, err = s.repos.Appointments.List(ctx, &model.AppointmentFilter{
			Pagination: page(recentLimit), PatientID: &patient.ID, From: &today, Upcoming: true,
		})
		return err
	})
	g.Go(func() (err error) {
		prescriptions, _, err = s.repos.Prescriptions.List(ctx, &model.PrescriptionFilter{
			Pagination: page(model.MaxPageSize), PatientID: &patient.ID,
		})
		return err
	})
	g.Go(func() error {
		bills, _, err := s.repos.Bills.List(ctx, &model.BillFilter{Pagination: page(model.MaxPageSize), PatientID: &patient.ID})
		if err != nil {
			return err
		}
		d.UnpaidBills = make([]*model.Bill, 0)
		for _, b := range bills {
			if b.Balance > 0 {
				d.UnpaidBills = append(d.UnpaidBills, b)
				d.OutstandingBalance += b.Balance
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, service.RepoError(err, "dashboard")
	}

	d.ActivePrescriptions = make([]*model.Prescription, 0)
	for _, p := range prescriptions {
		if p.Status != model.PrescriptionCancelled && p.ValidUntil.After(now) {
			d.ActivePrescriptions = append(d.ActivePrescriptions, p)
		}
	}
	return d, nil
}

func (s *Service) Nurse(ctx context.Context) (*model.NurseDashboard, error) {
	now := s.now()
	today := model.Today(now)
	d := &model.NurseDashboard{GeneratedAt: now}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		wards, _, err := s.repos.Wards.List(ctx, &model.WardFilter{Pagination: page(model.MaxPageSize)})
		d.Wards = wards
		return err
	})
	g.Go(func() error {
		stats, err := s.repos.Wards.BedStats(ctx)
		if err == nil {
			d.AdmittedPatients = stats.OccupiedBeds
		}
		return err
	})
	g.Go(func() (err error) {
		_, d.TodayAppointments, err = s.repos.Appointments.List(ctx, &model.AppointmentFilter{
			Pagination: page(1), Date: &today,
		})
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, service.RepoError(err, "dashboard")
	}
	return d, nil
}

func (s *Service) Receptionist(ctx context.Context) (*model.ReceptionistDashboard, error) {
	now := s.now()
	today := model.Today(now)
	d := &model.ReceptionistDashboard{GeneratedAt: now}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.TodayAppointments, _, err = s.repos.Appointments.List(ctx, &model.AppointmentFilter{
			Pagination: page(model.MaxPageSize), Date: &today,
		})
		return err
	})
	g.Go(func() (err error) {
		d.NewPatientsToday, err = s.repos.Patients.CountCreatedSince(ctx, dayStart(now))
		return err
	})
	g.Go(func() error {
		stats, err := s.repos.Wards.BedStats(ctx)
		if err == nil {
			d.AvailableBeds = stats.AvailableBeds
		}
		return err
	})
	g.Go(func() error {
		out, err := s.repos.Bills.Outstanding(ctx, nil)
		if err == nil {
			d.PendingBills = out.Count
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, service.RepoError(err, "dashboard")
	}
	return d, nil
}

func (s *Service) Pharmacist(ctx context.Context) (*model.PharmacistDashboard, error) {
	now := s.now()
	today := model.Today(now)
	horizon := model.NewDate(today.AddDate(0, expiringMonths, 0))
	d := &model.PharmacistDashboard{GeneratedAt: now}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.PendingPrescriptions, _, err = s.repos.Prescriptions.List(ctx, &model.PrescriptionFilter{
			Pagination: page(pharmacyQueueLimit), Status: model.PrescriptionPending,
		})
		return err
	})
	g.Go(func() (err error) {
		d.LowStock, err = s.repos.Medicines.LowStock(ctx, pharmacyQueueLimit)
		return err
	})
	g.Go(func() error {
		expiring, err := s.repos.Medicines.ExpiringBefore(ctx, today, horizon)
		d.ExpiringSoon = len(expiring)
		return err
	})
	g.Go(func() error {
		expired, err := s.repos.Medicines.Expired(ctx, today)
		d.Expired = len(expired)
		return err
	})
	g.Go(func() (err error) {
		d.TotalMedicines, err = s.repos.Medicines.CountActive(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, service.RepoError(err, "dashboard")
	}
	return d, nil
}
