package app

import (
	"context"
	"fmt"
	"time"

	"github.com/srfrogui/giacomoNsei/internal/domain"
)

// CapacityReader reports the units already committed on a calendar day.
type CapacityReader interface {
	CommittedUnits(ctx context.Context, day time.Time) (int, error)
}

// Allocation is the outcome of a capacity walk. TotalUnits equals the
// requested quantity on success; DeliveryDate is the last day that received
// units and is never a holiday.
type Allocation struct {
	DeliveryDate time.Time
	TotalUnits   int
	Days         []domain.DayAllocation
}

// Allocator spreads a requested quantity across successive working days,
// bounded by a fixed daily capacity ceiling.
type Allocator struct {
	holidays       *domain.Calendar
	maxUnitsPerDay int
	maxWalkDays    int
}

const defaultMaxWalkDays = 5000

func NewAllocator(holidays *domain.Calendar, maxUnitsPerDay int, opts ...AllocatorOption) *Allocator {
	a := &Allocator{
		holidays:       holidays,
		maxUnitsPerDay: maxUnitsPerDay,
		maxWalkDays:    defaultMaxWalkDays,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type AllocatorOption func(*Allocator)

// WithMaxWalkDays overrides the defensive ceiling on days visited per walk.
func WithMaxWalkDays(n int) AllocatorOption {
	return func(a *Allocator) {
		if n > 0 {
			a.maxWalkDays = n
		}
	}
}

// Allocate walks forward from start one day at a time. Holidays are skipped
// without consuming capacity; every other day absorbs
// min(ceiling-committed, remaining) units until the request is fully placed.
// Ledger reads happen sequentially inside the caller's transaction, so the
// committed totals seen here cannot go stale before the order is inserted.
func (a *Allocator) Allocate(ctx context.Context, start time.Time, units int, ledger CapacityReader) (Allocation, error) {
	if units <= 0 {
		return Allocation{}, domain.ErrInvalidUnits
	}
	if a.maxUnitsPerDay <= 0 {
		return Allocation{}, fmt.Errorf("%w: daily ceiling %d is not positive", domain.ErrCapacityComputation, a.maxUnitsPerDay)
	}

	cursor := domain.Day(start)
	remaining := units
	var result Allocation

	for visited := 0; ; visited++ {
		if visited >= a.maxWalkDays {
			return Allocation{}, fmt.Errorf("%w: no free capacity within %d days of %s",
				domain.ErrCapacityComputation, a.maxWalkDays, domain.Day(start).Format(domain.DateLayout))
		}

		if a.holidays.Contains(cursor) {
			cursor = cursor.AddDate(0, 0, 1)
			continue
		}

		committed, err := ledger.CommittedUnits(ctx, cursor)
		if err != nil {
			return Allocation{}, fmt.Errorf("%w: committed units on %s: %v",
				domain.ErrCapacityComputation, cursor.Format(domain.DateLayout), err)
		}
		if committed < 0 {
			return Allocation{}, fmt.Errorf("%w: negative committed units (%d) on %s",
				domain.ErrCapacityComputation, committed, cursor.Format(domain.DateLayout))
		}

		available := a.maxUnitsPerDay - committed
		if available < 0 {
			available = 0
		}
		take := min(available, remaining)
		if take > 0 {
			result.TotalUnits += take
			result.DeliveryDate = cursor
			result.Days = append(result.Days, domain.DayAllocation{Day: cursor, Units: take})
			remaining -= take
		}

		if remaining == 0 {
			return result, nil
		}
		cursor = cursor.AddDate(0, 0, 1)
	}
}
