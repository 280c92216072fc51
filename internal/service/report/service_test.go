package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository/mocks"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
)

type fixture struct {
	svc          *Service
	bills        *mocks.BillingRepository
	appointments *mocks.AppointmentRepository
	wards        *mocks.WardRepository
	medicines    *mocks.MedicineRepository
}

func newFixture() *fixture {
	f := &fixture{
		bills:        &mocks.BillingRepository{},
		appointments: &mocks.AppointmentRepository{},
		wards:        &mocks.WardRepository{},
		medicines:    &mocks.MedicineRepository{},
	}
	f.svc = NewService(f.bills, f.appointments, f.wards, f.medicines)
	f.svc.now = func() time.Time { return time.Date(2024, 11, 5, 10, 0, 0, 0, time.UTC) }
	return f
}

func date(t *testing.T, s string) *model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return &d
}

func TestRevenueTotals(t *testing.T) {
	f := newFixture()
	from, to := date(t, "2024-10-01"), date(t, "2024-10-31")
	f.bills.On("Revenue", mock.Anything, *from, *to).Return([]model.RevenueRow{
		{PaymentStatus: model.PaymentPaid, Bills: 3, Billed: 300000, Collected: 300000},
		{PaymentStatus: model.PaymentPartiallyPaid, Bills: 1, Billed: 121000, Collected: 21000, Outstanding: 100000},
	}, nil)

	report, err := f.svc.Revenue(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, model.Money(421000), report.TotalBilled)
	assert.Equal(t, model.Money(321000), report.TotalCollected)
	assert.Equal(t, model.Money(100000), report.TotalBalance)
}

func TestRangeDefaultsAndValidation(t *testing.T) {
	f := newFixture()
	f.appointments.On("CountByStatus", mock.Anything, mock.MatchedBy(func(filter *model.AppointmentFilter) bool {
		return filter.From.String() == "2024-10-06" && filter.To.String() == "2024-11-05"
	})).Return([]model.StatusCount{{Status: "Completed", Count: 4}, {Status: "Cancelled", Count: 1}}, nil)

	report, err := f.svc.Appointments(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Total)

	_, err = f.svc.Appointments(context.Background(), date(t, "2024-11-02"), date(t, "2024-11-01"))
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestOccupancyRates(t *testing.T) {
	f := newFixture()
	f.wards.On("Occupancy", mock.Anything).Return([]model.WardOccupancy{
		{WardNumber: "W1", TotalBeds: 3, AvailableBeds: 1},
		{WardNumber: "W2", TotalBeds: 10, AvailableBeds: 10},
		{WardNumber: "W3", TotalBeds: 0, AvailableBeds: 0},
	}, nil)

	report, err := f.svc.Occupancy(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Wards, 3)
	assert.Equal(t, 66.67, report.Wards[0].OccupancyRate)
	assert.Equal(t, 0.0, report.Wards[1].OccupancyRate)
	assert.Equal(t, 0.0, report.Wards[2].OccupancyRate)
	assert.Equal(t, model.BedStats{TotalBeds: 13, AvailableBeds: 11, OccupiedBeds: 2}, report.Total)
}

func TestInventoryWindow(t *testing.T) {
	f := newFixture()
	f.medicines.On("Inventory", mock.Anything, *date(t, "2024-11-05"), *date(t, "2025-02-05")).
		Return(&model.InventoryReport{TotalMedicines: 12, LowStock: 2}, nil)

	report, err := f.svc.Inventory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.LowStock)
}

func TestReportStoreFailure(t *testing.T) {
	f := newFixture()
	f.wards.On("Occupancy", mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := f.svc.Occupancy(context.Background())
	assert.True(t, apperrors.Is(err, apperrors.ErrInternal))
}
