package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/srfrogui/giacomoNsei/internal/domain"
)

func day(s string) time.Time {
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

type mapLedger struct {
	committed map[string]int
	err       error
	calls     int
}

func (m *mapLedger) CommittedUnits(_ context.Context, d time.Time) (int, error) {
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	return m.committed[d.Format(domain.DateLayout)], nil
}

func TestAllocator_Allocate(t *testing.T) {
	t.Parallel()

	noHolidays := domain.NewCalendar(nil)

	t.Run("fits on the start day", func(t *testing.T) {
		alloc, err := NewAllocator(noHolidays, 2000).
			Allocate(context.Background(), day("2024-04-01"), 1500, &mapLedger{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !alloc.DeliveryDate.Equal(day("2024-04-01")) {
			t.Fatalf("expected delivery 2024-04-01, got %s", alloc.DeliveryDate.Format(domain.DateLayout))
		}
		if alloc.TotalUnits != 1500 {
			t.Fatalf("expected total 1500, got %d", alloc.TotalUnits)
		}
		if len(alloc.Days) != 1 || alloc.Days[0].Units != 1500 {
			t.Fatalf("unexpected breakdown: %+v", alloc.Days)
		}
	})

	t.Run("spills into the next day", func(t *testing.T) {
		alloc, err := NewAllocator(noHolidays, 2000).
			Allocate(context.Background(), day("2024-04-01"), 2500, &mapLedger{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !alloc.DeliveryDate.Equal(day("2024-04-02")) {
			t.Fatalf("expected delivery 2024-04-02, got %s", alloc.DeliveryDate.Format(domain.DateLayout))
		}
		if alloc.TotalUnits != 2500 {
			t.Fatalf("expected total 2500, got %d", alloc.TotalUnits)
		}
		if len(alloc.Days) != 2 || alloc.Days[0].Units != 2000 || alloc.Days[1].Units != 500 {
			t.Fatalf("unexpected breakdown: %+v", alloc.Days)
		}
	})

	t.Run("respects committed units", func(t *testing.T) {
		ledger := &mapLedger{committed: map[string]int{
			"2024-04-01": 1500,
			"2024-04-02": 2000,
		}}
		alloc, err := NewAllocator(noHolidays, 2000).
			Allocate(context.Background(), day("2024-04-01"), 1000, ledger)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		// 500 on the start day, a full day in between, the rest on the 3rd.
		if !alloc.DeliveryDate.Equal(day("2024-04-03")) {
			t.Fatalf("expected delivery 2024-04-03, got %s", alloc.DeliveryDate.Format(domain.DateLayout))
		}
		if alloc.TotalUnits != 1000 {
			t.Fatalf("expected total 1000, got %d", alloc.TotalUnits)
		}
		if len(alloc.Days) != 2 || alloc.Days[0].Units != 500 || alloc.Days[1].Units != 500 {
			t.Fatalf("unexpected breakdown: %+v", alloc.Days)
		}
	})

	t.Run("skips holidays without consuming capacity", func(t *testing.T) {
		carnival, err := domain.ParseCalendar([]string{"2024-02-12", "2024-02-13", "2024-02-14"})
		if err != nil {
			t.Fatalf("parse calendar: %v", err)
		}
		ledger := &mapLedger{}

		alloc, err := NewAllocator(carnival, 2000).
			Allocate(context.Background(), day("2024-02-12"), 100, ledger)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !alloc.DeliveryDate.Equal(day("2024-02-15")) {
			t.Fatalf("expected delivery 2024-02-15, got %s", alloc.DeliveryDate.Format(domain.DateLayout))
		}
		if ledger.calls != 1 {
			t.Fatalf("expected one ledger read, got %d", ledger.calls)
		}
	})

	t.Run("delivery date is never a holiday", func(t *testing.T) {
		holidays, err := domain.ParseCalendar([]string{"2024-04-02"})
		if err != nil {
			t.Fatalf("parse calendar: %v", err)
		}
		alloc, err := NewAllocator(holidays, 2000).
			Allocate(context.Background(), day("2024-04-01"), 2500, &mapLedger{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if holidays.Contains(alloc.DeliveryDate) {
			t.Fatalf("delivery date %s is a holiday", alloc.DeliveryDate.Format(domain.DateLayout))
		}
		if !alloc.DeliveryDate.Equal(day("2024-04-03")) {
			t.Fatalf("expected delivery 2024-04-03, got %s", alloc.DeliveryDate.Format(domain.DateLayout))
		}
	})

	t.Run("rejects non-positive units", func(t *testing.T) {
		_, err := NewAllocator(noHolidays, 2000).
			Allocate(context.Background(), day("2024-04-01"), 0, &mapLedger{})
		if err != domain.ErrInvalidUnits {
			t.Fatalf("expected ErrInvalidUnits, got %v", err)
		}
	})

	t.Run("misconfigured ceiling fails instead of looping", func(t *testing.T) {
		_, err := NewAllocator(noHolidays, 0).
			Allocate(context.Background(), day("2024-04-01"), 100, &mapLedger{})
		if !errors.Is(err, domain.ErrCapacityComputation) {
			t.Fatalf("expected ErrCapacityComputation, got %v", err)
		}
	})

	t.Run("walk ceiling aborts a saturated horizon", func(t *testing.T) {
		saturated := capacityFunc(func(_ context.Context, _ time.Time) (int, error) {
			return 2000, nil
		})
		_, err := NewAllocator(noHolidays, 2000, WithMaxWalkDays(3)).
			Allocate(context.Background(), day("2024-04-01"), 100, saturated)
		if !errors.Is(err, domain.ErrCapacityComputation) {
			t.Fatalf("expected ErrCapacityComputation, got %v", err)
		}
	})

	t.Run("ledger failure aborts the walk", func(t *testing.T) {
		ledger := &mapLedger{err: errors.New("connection reset")}
		_, err := NewAllocator(noHolidays, 2000).
			Allocate(context.Background(), day("2024-04-01"), 100, ledger)
		if !errors.Is(err, domain.ErrCapacityComputation) {
			t.Fatalf("expected ErrCapacityComputation, got %v", err)
		}
	})

	t.Run("negative committed units abort the walk", func(t *testing.T) {
		neg := capacityFunc(func(_ context.Context, _ time.Time) (int, error) {
			return -5, nil
		})
		_, err := NewAllocator(noHolidays, 2000).
			Allocate(context.Background(), day("2024-04-01"), 100, neg)
		if !errors.Is(err, domain.ErrCapacityComputation) {
			t.Fatalf("expected ErrCapacityComputation, got %v", err)
		}
	})
}
