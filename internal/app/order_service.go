package app

import (
	"context"
	"errors"
	"time"

	"github.com/srfrogui/giacomoNsei/internal/clock"
	"github.com/srfrogui/giacomoNsei/internal/domain"
	"github.com/srfrogui/giacomoNsei/internal/metrics"
)

type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	AcquireAllocationLock(ctx context.Context) error
	Exists(ctx context.Context, id string) (bool, error)
	SumUnitsByDeliveryDate(ctx context.Context, day time.Time) (int, error)
	SumUnitsAllocatedOn(ctx context.Context, day time.Time) (int, error)
	Insert(ctx context.Context, order domain.Order, days []domain.DayAllocation) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]domain.Order, error)
}

type OrderService struct {
	repo         OrderRepository
	allocator    *Allocator
	holidays     *domain.Calendar
	clock        clock.Clock
	metrics      *metrics.Metrics
	leadTimeDays int
	perDay       bool
}

const defaultLeadTimeDays = 10

func NewOrderService(repo OrderRepository, allocator *Allocator, holidays *domain.Calendar, clk clock.Clock, opts ...OrderServiceOption) *OrderService {
	svc := &OrderService{
		repo:         repo,
		allocator:    allocator,
		holidays:     holidays,
		clock:        clk,
		leadTimeDays: defaultLeadTimeDays,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type OrderServiceOption func(*OrderService)

// WithLeadTimeDays overrides the offset between entry date and the first
// candidate allocation day.
func WithLeadTimeDays(n int) OrderServiceOption {
	return func(s *OrderService) {
		if n >= 0 {
			s.leadTimeDays = n
		}
	}
}

// WithPerDayCommitments switches the capacity ledger to the per-day
// allocation table instead of attributing an order's whole quantity to its
// delivery day.
func WithPerDayCommitments(enabled bool) OrderServiceOption {
	return func(s *OrderService) {
		s.perDay = enabled
	}
}

// WithMetrics attaches order and allocation counters.
func WithMetrics(m *metrics.Metrics) OrderServiceOption {
	return func(s *OrderService) {
		s.metrics = m
	}
}

type CreateOrderInput struct {
	ID             string
	Seller         string
	Client         string
	EndClient      string
	RequestedUnits int
	EntryDate      time.Time
}

// CreateOrder validates the input, computes the delivery date by walking the
// capacity ledger from entry date plus lead time, and persists the order.
// The duplicate check, the walk, and the insert run inside one transaction
// under the allocation lock, so concurrent submissions cannot jointly exceed
// the daily ceiling. Nothing is inserted when any step fails.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (domain.Order, error) {
	if err := validateCreateOrder(in); err != nil {
		return domain.Order{}, err
	}

	now := s.clock.Now()
	start := domain.Day(in.EntryDate).AddDate(0, 0, s.leadTimeDays)
	var result domain.Order
	var daysWalked int

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.AcquireAllocationLock(txCtx); err != nil {
			return err
		}

		exists, err := s.repo.Exists(txCtx, in.ID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateOrderID
		}

		alloc, err := s.allocator.Allocate(txCtx, start, in.RequestedUnits, s.ledger())
		if err != nil {
			return err
		}
		daysWalked = len(alloc.Days)

		order := domain.Order{
			ID:             in.ID,
			Seller:         in.Seller,
			Client:         in.Client,
			EndClient:      in.EndClient,
			RequestedUnits: alloc.TotalUnits,
			EntryDate:      domain.Day(in.EntryDate),
			DeliveryDate:   alloc.DeliveryDate,
			CreatedAt:      now,
		}

		var days []domain.DayAllocation
		if s.perDay {
			days = alloc.Days
		}
		if err := s.repo.Insert(txCtx, order, days); err != nil {
			return err
		}

		result = order
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrCapacityComputation) {
			s.metrics.AllocationFailed()
		}
		return domain.Order{}, err
	}

	s.metrics.OrderCreated(daysWalked)
	return result, nil
}

// DeleteOrder removes an order by id. Other orders keep their delivery dates.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	if len(id) != domain.OrderIDLength {
		return domain.ErrInvalidOrderID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.OrderDeleted()
	return nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListAll(ctx)
}

// Holidays returns the configured non-working days in ascending order.
func (s *OrderService) Holidays() []time.Time {
	return s.holidays.Dates()
}

func (s *OrderService) ledger() CapacityReader {
	if s.perDay {
		return capacityFunc(s.repo.SumUnitsAllocatedOn)
	}
	return capacityFunc(s.repo.SumUnitsByDeliveryDate)
}

type capacityFunc func(ctx context.Context, day time.Time) (int, error)

func (f capacityFunc) CommittedUnits(ctx context.Context, day time.Time) (int, error) {
	return f(ctx, day)
}

func validateCreateOrder(in CreateOrderInput) error {
	if len(in.ID) != domain.OrderIDLength {
		return domain.ErrInvalidOrderID
	}
	if in.Seller == "" {
		return domain.ErrSellerRequired
	}
	if in.Client == "" {
		return domain.ErrClientRequired
	}
	if in.EndClient == "" {
		return domain.ErrEndClientRequired
	}
	if in.RequestedUnits <= 0 {
		return domain.ErrInvalidUnits
	}
	if in.EntryDate.IsZero() {
		return domain.ErrInvalidEntryDate
	}
	return nil
}
