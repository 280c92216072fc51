package report

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/handler/handlertest"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Revenue(ctx context.Context, from, to *model.Date) (*model.RevenueReport, error) {
	args := m.Called(ctx, from, to)
	if r := args.Get(0); r != nil {
		return r.(*model.RevenueReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) Appointments(ctx context.Context, from, to *model.Date) (*model.AppointmentReport, error) {
	args := m.Called(ctx, from, to)
	if r := args.Get(0); r != nil {
		return r.(*model.AppointmentReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) Occupancy(ctx context.Context) (*model.OccupancyReport, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.(*model.OccupancyReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) Inventory(ctx context.Context) (*model.InventoryReport, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.(*model.InventoryReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRevenueDateRange(t *testing.T) {
	svc := &mockService{}
	srv := handlertest.New(t, NewHandler(svc))

	svc.On("Revenue", mock.Anything,
		mock.MatchedBy(func(d *model.Date) bool { return d != nil && d.String() == "2024-10-01" }),
		(*model.Date)(nil),
	).Return(&model.RevenueReport{TotalBilled: 1250000}, nil).Once()

	w, resp := srv.Do(model.RoleAdmin, http.MethodGet, "/api/reports/revenue?from=2024-10-01", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got model.RevenueReport
	handlertest.Decode(t, resp, &got)
	assert.Equal(t, model.Money(1250000), got.TotalBilled)

	w, _ = srv.Do(model.RoleAdmin, http.MethodGet, "/api/reports/revenue?to=October", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestPharmacistSeesOnlyInventory(t *testing.T) {
	svc := &mockService{}
	srv := handlertest.New(t, NewHandler(svc))

	svc.On("Inventory", mock.Anything).Return(&model.InventoryReport{TotalMedicines: 57, LowStock: 3}, nil).Once()

	w, resp := srv.Do(model.RolePharmacist, http.MethodGet, "/api/reports/inventory", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got model.InventoryReport
	handlertest.Decode(t, resp, &got)
	assert.Equal(t, 57, got.TotalMedicines)

	for _, path := range []string{"/api/reports/revenue", "/api/reports/appointments", "/api/reports/occupancy"} {
		w, _ = srv.Do(model.RolePharmacist, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}

	// Doctors have no reports entry in the policy table at all
	w, _ = srv.Do(model.RoleDoctor, http.MethodGet, "/api/reports/inventory", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.AssertExpectations(t)
}
