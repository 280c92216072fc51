package report

import (
	"context"
	"math"
	"time"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
)

// Default window when a report is requested without dates
const defaultRangeDays = 30

// inventoryExpiryMonths matches the pharmacist dashboard's expiring window
const inventoryExpiryMonths = 3

type Service struct {
	bills        repository.BillingRepository
	appointments repository.AppointmentRepository
	wards        repository.WardRepository
	medicines    repository.MedicineRepository
	now          func() time.Time
}

func NewService(bills repository.BillingRepository, appointments repository.AppointmentRepository,
	wards repository.WardRepository, medicines repository.MedicineRepository) *Service {
	return &Service{
		bills:        bills,
		appointments: appointments,
		wards:        wards,
		medicines:    medicines,
		now:          time.Now,
	}
}

// resolveRange fills missing bounds with the trailing window ending today
func (s *Service) resolveRange(from, to *model.Date) (model.ReportRange, error) {
	today := model.Today(s.now())
	r := model.ReportRange{To: today}
	if to != nil {
		r.To = *to
	}
	r.From = model.NewDate(r.To.AddDate(0, 0, -defaultRangeDays))
	if from != nil {
		r.From = *from
	}
	if r.From.After(r.To.Time) {
		return r, apperrors.Validation("from must not be after to")
	}
	return r, nil
}

func (s *Service) Revenue(ctx context.Context, from, to *model.Date) (*model.RevenueReport, error) {
	r, err := s.resolveRange(from, to)
	if err != nil {
		return nil, err
	}
	rows, err := s.bills.Revenue(ctx, r.From, r.To)
	if err != nil {
		return nil, service.RepoError(err, "revenue report")
	}

	report := &model.RevenueReport{ReportRange: r, Rows: rows}
	if report.Rows == nil {
		report.Rows = []model.RevenueRow{}
	}
	for _, row := range rows {
		report.TotalBilled += row.Billed
		report.TotalCollected += row.Collected
		report.TotalBalance += row.Outstanding
	}
	return report, nil
}

func (s *Service) Appointments(ctx context.Context, from, to *model.Date) (*model.AppointmentReport, error) {
	r, err := s.resolveRange(from, to)
	if err != nil {
		return nil, err
	}
	counts, err := s.appointments.CountByStatus(ctx, &model.AppointmentFilter{From: &r.From, To: &r.To})
	if err != nil {
		return nil, service.RepoError(err, "appointment report")
	}

	report := &model.AppointmentReport{ReportRange: r, ByStatus: counts}
	if report.ByStatus == nil {
		report.ByStatus = []model.StatusCount{}
	}
	for _, c := range counts {
		report.Total += c.Count
	}
	return report, nil
}

func occupancyRate(total, available int) float64 {
	if total == 0 {
		return 0
	}
	rate := float64(total-available) / float64(total) * 100
	return math.Round(rate*100) / 100
}

// Occupancy reports per-ward occupied share in percent, two decimals
func (s *Service) Occupancy(ctx context.Context) (*model.OccupancyReport, error) {
	wards, err := s.wards.Occupancy(ctx)
	if err != nil {
		return nil, service.RepoError(err, "occupancy report")
	}

	report := &model.OccupancyReport{Wards: make([]model.WardOccupancy, 0, len(wards))}
	for _, w := range wards {
		w.OccupancyRate = occupancyRate(w.TotalBeds, w.AvailableBeds)
		report.Wards = append(report.Wards, w)
		report.Total.TotalBeds += w.TotalBeds
		report.Total.AvailableBeds += w.AvailableBeds
	}
	report.Total.OccupiedBeds = report.Total.TotalBeds - report.Total.AvailableBeds
	return report, nil
}

func (s *Service) Inventory(ctx context.Context) (*model.InventoryReport, error) {
	today := model.Today(s.now())
	horizon := model.NewDate(today.AddDate(0, inventoryExpiryMonths, 0))
	report, err := s.medicines.Inventory(ctx, today, horizon)
	if err != nil {
		return nil, service.RepoError(err, "inventory report")
	}
	return report, nil
}
