package medicine

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
	svc    *Service
	repo   *mocks.MedicineRepository
	outbox *mocks.OutboxRepository
	now    time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repo:   &mocks.MedicineRepository{},
		outbox: &mocks.OutboxRepository{},
		now:    time.Date(2024, 11, 5, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(&mocks.Transactor{}, f.repo, event.NewService(f.outbox), metrics.NewNop())
	f.svc.now = func() time.Time { return f.now }
	return f
}

func stocked(qty, reorder int) *model.Medicine {
	m := &model.Medicine{Name: "Amoxicillin", StockQuantity: qty, ReorderLevel: reorder, IsActive: true}
	m.ID = uuid.New()
	return m
}

func TestReduceLedger(t *testing.T) {
	f := newFixture()
	med := stocked(10, 2)
	f.repo.On("GetForUpdate", mock.Anything, med.ID).Return(med, nil)
	f.repo.On("Update", mock.Anything, med).Return(nil)

	got, err := f.svc.UpdateStock(context.Background(), med.ID, &model.UpdateStockRequest{Quantity: 4, Operation: model.StockReduce})
	require.NoError(t, err)
	assert.Equal(t, 6, got.StockQuantity)

	_, err = f.svc.UpdateStock(context.Background(), med.ID, &model.UpdateStockRequest{Quantity: 7, Operation: model.StockReduce})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	assert.Equal(t, 6, med.StockQuantity)
	f.repo.AssertNumberOfCalls(t, "Update", 1)
}

func TestAddStampsRestock(t *testing.T) {
	f := newFixture()
	med := stocked(5, 2)
	f.repo.On("GetForUpdate", mock.Anything, med.ID).Return(med, nil)
	f.repo.On("Update", mock.Anything, med).Return(nil)

	got, err := f.svc.UpdateStock(context.Background(), med.ID, &model.UpdateStockRequest{Quantity: 20, Operation: model.StockAdd})
	require.NoError(t, err)
	assert.Equal(t, 25, got.StockQuantity)
	require.NotNil(t, got.LastRestocked)
	assert.Equal(t, f.now, *got.LastRestocked)

	got, err = f.svc.UpdateStock(context.Background(), med.ID, &model.UpdateStockRequest{Quantity: 8, Operation: model.StockSet})
	require.NoError(t, err)
	assert.Equal(t, 8, got.StockQuantity)
}

func TestUpdateStockValidation(t *testing.T) {
	f := newFixture()
	med := stocked(5, 2)
	f.repo.On("GetForUpdate", mock.Anything, med.ID).Return(med, nil)

	for name, req := range map[string]*model.UpdateStockRequest{
		"zero quantity":     {Quantity: 0, Operation: model.StockAdd},
		"negative quantity": {Quantity: -3, Operation: model.StockSet},
		"unknown operation": {Quantity: 3, Operation: "multiply"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.UpdateStock(context.Background(), med.ID, req)
			assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
		})
	}
	assert.Equal(t, 5, med.StockQuantity)
}

func TestUpdateStockUnknownMedicine(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.repo.On("GetForUpdate", mock.Anything, id).Return(nil, repository.ErrNotFound)

	_, err := f.svc.UpdateStock(context.Background(), id, &model.UpdateStockRequest{Quantity: 1, Operation: model.StockAdd})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestStockLowEventOnlyWhenCrossing(t *testing.T) {
	f := newFixture()
	med := stocked(12, 5)
	f.repo.On("GetForUpdate", mock.Anything, med.ID).Return(med, nil)
	f.repo.On("Update", mock.Anything, med).Return(nil)
	f.outbox.On("Create", mock.Anything, mock.MatchedBy(func(e *model.OutboxEvent) bool {
		return e.EventType == model.EventStockLow && e.AggregateID == med.ID
	})).Return(nil)

	reduce := &model.UpdateStockRequest{Quantity: 4, Operation: model.StockReduce}
	for i := 0; i < 2; i++ {
		_, err := f.svc.UpdateStock(context.Background(), med.ID, reduce)
		require.NoError(t, err)
	}
	assert.Equal(t, 4, med.StockQuantity)
	f.outbox.AssertNumberOfCalls(t, "Create", 1)
}

func TestCreateDefaults(t *testing.T) {
	f := newFixture()
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Medicine")).Return(nil)

	med, err := f.svc.Create(context.Background(), &model.CreateMedicineRequest{Name: "Paracetamol", Category: "Analgesic", StockQuantity: 100})
	require.NoError(t, err)
	assert.True(t, med.IsActive)
	assert.True(t, med.RequiresPrescription)
	require.NotNil(t, med.LastRestocked)
}

func TestDeleteDeactivates(t *testing.T) {
	f := newFixture()
	med := stocked(3, 1)
	f.repo.On("GetForUpdate", mock.Anything, med.ID).Return(med, nil)
	f.repo.On("Update", mock.Anything, med).Return(nil)

	require.NoError(t, f.svc.Delete(context.Background(), med.ID))
	assert.False(t, med.IsActive)
	assert.Equal(t, 3, med.StockQuantity)
}

func TestExpiringWindow(t *testing.T) {
	f := newFixture()
	today := model.Today(f.now)
	f.repo.On("ExpiringBefore", mock.Anything, today, model.NewDate(time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC))).
		Return([]*model.Medicine{}, nil).Once()
	f.repo.On("ExpiringBefore", mock.Anything, today, model.NewDate(time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC))).
		Return([]*model.Medicine{}, nil).Once()

	_, err := f.svc.Expiring(context.Background(), 0)
	require.NoError(t, err)
	_, err = f.svc.Expiring(context.Background(), 6)
	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}
