package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/srfrogui/giacomoNsei/internal/domain"
)

// allocationLockID serializes allocate-and-insert across the service. Taken
// as pg_advisory_xact_lock, so it is released with the transaction.
const allocationLockID int64 = 624113907

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// AcquireAllocationLock blocks until this transaction owns the allocation
// lock. Must be called inside WithTx; the lock is scoped to the transaction.
func (r *OrderRepository) AcquireAllocationLock(ctx context.Context) error {
	tx := txFromContext(ctx)
	if tx == nil {
		return errors.New("allocation lock requires a transaction")
	}
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, allocationLockID); err != nil {
		return fmt.Errorf("acquire allocation lock: %w", err)
	}
	return nil
}

func (r *OrderRepository) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`

	var exists bool
	if err := r.queryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("order exists: %w", err)
	}
	return exists, nil
}

// SumUnitsByDeliveryDate is the default capacity ledger: an order's whole
// quantity counts against its final delivery day.
func (r *OrderRepository) SumUnitsByDeliveryDate(ctx context.Context, day time.Time) (int, error) {
	const query = `SELECT COALESCE(SUM(requested_units), 0) FROM orders WHERE delivery_date = $1`

	var total int
	if err := r.queryRow(ctx, query, domain.Day(day)).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum units by delivery date: %w", err)
	}
	return total, nil
}

// SumUnitsAllocatedOn is the corrected ledger: units count against the days
// they were actually consumed on during the walk.
func (r *OrderRepository) SumUnitsAllocatedOn(ctx context.Context, day time.Time) (int, error) {
	const query = `SELECT COALESCE(SUM(units), 0) FROM order_allocations WHERE day = $1`

	var total int
	if err := r.queryRow(ctx, query, domain.Day(day)).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum units allocated on: %w", err)
	}
	return total, nil
}

// Insert persists the order and, when days is non-empty, its per-day
// allocation breakdown in the same transaction.
func (r *OrderRepository) Insert(ctx context.Context, order domain.Order, days []domain.DayAllocation) error {
	const stmt = `
INSERT INTO orders (id, seller, client, end_client, requested_units, entry_date, delivery_date, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.exec(ctx, stmt,
		order.ID,
		order.Seller,
		order.Client,
		order.EndClient,
		order.RequestedUnits,
		order.EntryDate,
		order.DeliveryDate,
		order.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateOrderID
		}
		return fmt.Errorf("insert order: %w", err)
	}

	const allocStmt = `INSERT INTO order_allocations (order_id, day, units) VALUES ($1, $2, $3)`
	for _, d := range days {
		if _, err := r.exec(ctx, allocStmt, order.ID, d.Day, d.Units); err != nil {
			return fmt.Errorf("insert allocation for %s: %w", d.Day.Format(domain.DateLayout), err)
		}
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	const stmt = `DELETE FROM orders WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	const query = `
SELECT id, seller, client, end_client, requested_units, entry_date, delivery_date, created_at
FROM orders
ORDER BY entry_date, id`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.Seller, &o.Client, &o.EndClient, &o.RequestedUnits, &o.EntryDate, &o.DeliveryDate, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.EntryDate = domain.Day(o.EntryDate)
		o.DeliveryDate = domain.Day(o.DeliveryDate)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *OrderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *OrderRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
