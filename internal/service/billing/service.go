package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/event"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/metrics"
)

// Service keeps balance and paymentStatus derived from the payments applied,
// always recomputed under the bill row lock.
type Service struct {
	tx       repository.Transactor
	repo     repository.BillingRepository
	patients repository.PatientRepository
	counters repository.CounterRepository
	events   *event.Service
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(tx repository.Transactor, repo repository.BillingRepository, patients repository.PatientRepository,
	counters repository.CounterRepository, events *event.Service, m *metrics.Metrics) *Service {
	return &Service{
		tx:       tx,
		repo:     repo,
		patients: patients,
		counters: counters,
		events:   events,
		metrics:  m,
		now:      time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateBillRequest) (*model.Bill, error) {
	patient, err := s.patients.Get(ctx, req.PatientID)
	if err != nil {
		return nil, service.RepoError(err, "patient")
	}

	bill := &model.Bill{
		PatientID:     patient.ID,
		PatientName:   patient.Name,
		AppointmentID: req.AppointmentID,
		Items:         append([]model.BillItem(nil), req.Items...),
		Discount:      req.Discount,
		Tax:           req.Tax,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
	}
	if err := bill.Compute(); err != nil {
		return nil, err
	}

	year := s.now().Year()
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := s.counters.Next(ctx, model.BillCounter(year))
		if err != nil {
			return service.RepoError(err, "bill number")
		}
		bill.BillNumber = model.BillNumber(year, n)
		return s.repo.Create(ctx, bill)
	})
	if err != nil {
		return nil, service.RepoError(err, "bill")
	}
	return bill, nil
}

func (s *Service) Get(ctx context.Context, caller model.UserRef, id uuid.UUID) (*model.Bill, error) {
	scope, err := service.PatientScope(ctx, s.patients, caller)
	if err != nil {
		return nil, err
	}
	bill, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, "bill")
	}
	if err := service.CheckOwner(scope, bill.PatientID, "bill"); err != nil {
		return nil, err
	}
	return bill, nil
}

func (s *Service) List(ctx context.Context, caller model.UserRef, filter *model.BillFilter) ([]*model.Bill, int, error) {
	scope, err := service.PatientScope(ctx, s.patients, caller)
	if err != nil {
		return nil, 0, err
	}
	if scope != nil {
		filter.PatientID = scope
	}
	filter.Normalize()

	bills, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, service.RepoError(err, "bill")
	}
	return bills, total, nil
}

// withBill runs fn against the locked bill and saves it when fn succeeds
func (s *Service) withBill(ctx context.Context, id uuid.UUID, fn func(ctx context.Context, bill *model.Bill) error) (*model.Bill, error) {
	var bill *model.Bill
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		bill, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return service.RepoError(err, "bill")
		}
		if err := fn(ctx, bill); err != nil {
			return err
		}
		return s.repo.Update(ctx, bill)
	})
	if err != nil {
		return nil, service.RepoError(err, "bill")
	}
	return bill, nil
}

func (s *Service) RecordPayment(ctx context.Context, id uuid.UUID, req *model.RecordPaymentRequest) (*model.Bill, error) {
	bill, err := s.withBill(ctx, id, func(ctx context.Context, bill *model.Bill) error {
		if err := bill.RecordPayment(req.Amount, req.Method, req.Reference, s.now()); err != nil {
			return err
		}
		return s.events.Emit(ctx, model.EventPaymentRecorded, bill.ID, map[string]interface{}{
			"bill_number":    bill.BillNumber,
			"amount":         req.Amount,
			"method":         req.Method,
			"balance":        bill.Balance,
			"payment_status": bill.PaymentStatus,
		})
	})
	if err != nil {
		return nil, err
	}

	s.observePayment(req.Method, req.Amount)
	log.Ctx(ctx).Info().
		Str("bill", bill.BillNumber).
		Str("amount", req.Amount.String()).
		Str("status", string(bill.PaymentStatus)).
		Msg("payment recorded")
	return bill, nil
}

func (s *Service) SubmitClaim(ctx context.Context, id uuid.UUID, req *model.InsuranceClaimRequest) (*model.Bill, error) {
	return s.withBill(ctx, id, func(_ context.Context, bill *model.Bill) error {
		return bill.SubmitClaim(req.ClaimNumber, req.Provider, req.AmountClaimed, s.now())
	})
}

// ResolveClaim settles the pending claim. Approved amounts are paid into the
// bill as an Insurance payment, capped at the balance.
func (s *Service) ResolveClaim(ctx context.Context, id uuid.UUID, req *model.UpdateClaimRequest) (*model.Bill, error) {
	var paid model.Money
	bill, err := s.withBill(ctx, id, func(ctx context.Context, bill *model.Bill) error {
		var err error
		paid, err = bill.ResolveClaim(req.Status, req.ApprovedAmount, s.now())
		if err != nil {
			return err
		}
		return s.events.Emit(ctx, model.EventClaimResolved, bill.ID, map[string]interface{}{
			"bill_number":  bill.BillNumber,
			"claim_number": bill.InsuranceClaim.ClaimNumber,
			"status":       req.Status,
			"paid":         paid,
		})
	})
	if err != nil {
		return nil, err
	}

	if paid > 0 {
		s.observePayment(model.PaymentMethodInsurance, paid)
	}
	return bill, nil
}

func (s *Service) observePayment(method string, amount model.Money) {
	s.metrics.PaymentsRecorded.WithLabelValues(method).Inc()
	s.metrics.PaymentAmount.Add(float64(amount) / 100)
}
