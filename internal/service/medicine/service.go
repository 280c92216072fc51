package medicine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/event"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/metrics"
)

// DefaultExpiryWindow is the look-ahead of the expiring view, in months
const DefaultExpiryWindow = 3

type Service struct {
	tx      repository.Transactor
	repo    repository.MedicineRepository
	events  *event.Service
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(tx repository.Transactor, repo repository.MedicineRepository, events *event.Service, m *metrics.Metrics) *Service {
	return &Service{
		tx:      tx,
		repo:    repo,
		events:  events,
		metrics: m,
		now:     time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateMedicineRequest) (*model.Medicine, error) {
	med := &model.Medicine{
		Name:                 req.Name,
		GenericName:          req.GenericName,
		Category:             req.Category,
		Manufacturer:         req.Manufacturer,
		Description:          req.Description,
		StockQuantity:        req.StockQuantity,
		ReorderLevel:         req.ReorderLevel,
		UnitPrice:            req.UnitPrice,
		ExpiryDate:           req.ExpiryDate,
		BatchNumber:          req.BatchNumber,
		RequiresPrescription: true,
		IsActive:             true,
	}
	if req.RequiresPrescription != nil {
		med.RequiresPrescription = *req.RequiresPrescription
	}
	if med.StockQuantity > 0 {
		now := s.now()
		med.LastRestocked = &now
	}

	if err := s.repo.Create(ctx, med); err != nil {
		return nil, service.RepoError(err, "medicine")
	}
	return med, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Medicine, error) {
	med, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, "medicine")
	}
	return med, nil
}

func (s *Service) List(ctx context.Context, filter *model.MedicineFilter) ([]*model.Medicine, int, error) {
	filter.Normalize()
	meds, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, service.RepoError(err, "medicine")
	}
	return meds, total, nil
}

// Update patches catalogue fields. Stock only moves through UpdateStock.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateMedicineRequest) (*model.Medicine, error) {
	var med *model.Medicine
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		med, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			med.Name = *req.Name
		}
		if req.GenericName != nil {
			med.GenericName = *req.GenericName
		}
		if req.Category != nil {
			med.Category = *req.Category
		}
		if req.Manufacturer != nil {
			med.Manufacturer = *req.Manufacturer
		}
		if req.Description != nil {
			med.Description = *req.Description
		}
		if req.ReorderLevel != nil {
			med.ReorderLevel = *req.ReorderLevel
		}
		if req.UnitPrice != nil {
			med.UnitPrice = *req.UnitPrice
		}
		if req.ExpiryDate != nil {
			med.ExpiryDate = req.ExpiryDate
		}
		if req.BatchNumber != nil {
			med.BatchNumber = *req.BatchNumber
		}
		if req.RequiresPrescription != nil {
			med.RequiresPrescription = *req.RequiresPrescription
		}
		if req.IsActive != nil {
			med.IsActive = *req.IsActive
		}
		return s.repo.Update(ctx, med)
	})
	if err != nil {
		return nil, service.RepoError(err, "medicine")
	}
	return med, nil
}

// Delete deactivates the medicine; prescriptions keep referring to it
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	inactive := false
	_, err := s.Update(ctx, id, &model.UpdateMedicineRequest{IsActive: &inactive})
	return err
}

// UpdateStock applies one ledger operation with the row locked. A reduce that
// would go negative fails and leaves the stored quantity unchanged.
func (s *Service) UpdateStock(ctx context.Context, id uuid.UUID, req *model.UpdateStockRequest) (*model.Medicine, error) {
	if req.Quantity <= 0 {
		return nil, apperrors.Validation("Quantity must be a positive integer")
	}

	var med *model.Medicine
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		med, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return service.RepoError(err, "medicine")
		}

		wasLow := med.IsLowStock()
		if err := med.ApplyStock(req.Operation, req.Quantity, s.now()); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, med); err != nil {
			return service.RepoError(err, "medicine")
		}

		if !wasLow && med.IsLowStock() {
			return s.stockLow(ctx, med)
		}
		return nil
	})
	if err != nil {
		return nil, service.RepoError(err, "medicine")
	}

	s.metrics.StockAdjustments.WithLabelValues(string(req.Operation)).Inc()
	return med, nil
}

// stockLow records that a medicine fell to its reorder level. Callers hold the row lock.
func (s *Service) stockLow(ctx context.Context, med *model.Medicine) error {
	s.metrics.StockLowEvents.Inc()
	log.Ctx(ctx).Warn().
		Str("medicine", med.Name).
		Int("stock", med.StockQuantity).
		Int("reorder_level", med.ReorderLevel).
		Msg("medicine stock at reorder level")
	return s.events.Emit(ctx, model.EventStockLow, med.ID, map[string]interface{}{
		"name":           med.Name,
		"stock_quantity": med.StockQuantity,
		"reorder_level":  med.ReorderLevel,
	})
}

// CheckStockLow emits the low-stock event for a medicine whose stock was
// reduced elsewhere, such as by dispensing.
func (s *Service) CheckStockLow(ctx context.Context, med *model.Medicine, before int) error {
	wasLow := before <= med.ReorderLevel
	if wasLow || !med.IsLowStock() {
		return nil
	}
	return s.stockLow(ctx, med)
}

func (s *Service) LowStock(ctx context.Context) ([]*model.Medicine, error) {
	meds, err := s.repo.LowStock(ctx, 0)
	if err != nil {
		return nil, service.RepoError(err, "medicine")
	}
	return meds, nil
}

// Expiring lists active medicines expiring between today and today+months
func (s *Service) Expiring(ctx context.Context, months int) ([]*model.Medicine, error) {
	if months <= 0 {
		months = DefaultExpiryWindow
	}
	today := model.Today(s.now())
	before := model.NewDate(today.AddDate(0, months, 0))

	meds, err := s.repo.ExpiringBefore(ctx, today, before)
	if err != nil {
		return nil, service.RepoError(err, "medicine")
	}
	return meds, nil
}

func (s *Service) Expired(ctx context.Context) ([]*model.Medicine, error) {
	meds, err := s.repo.Expired(ctx, model.Today(s.now()))
	if err != nil {
		return nil, service.RepoError(err, "medicine")
	}
	return meds, nil
}
