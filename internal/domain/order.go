package domain

import "time"

// OrderIDLength is the fixed length of client-assigned order identifiers.
const OrderIDLength = 6

// Order is a booked production order. RequestedUnits stores the fully
// allocated total, which equals the quantity originally requested.
type Order struct {
	ID             string
	Seller         string
	Client         string
	EndClient      string
	RequestedUnits int
	EntryDate      time.Time
	DeliveryDate   time.Time
	CreatedAt      time.Time
}

// DayAllocation records the units an order consumed on one calendar day of
// its allocation walk.
type DayAllocation struct {
	Day   time.Time
	Units int
}

// Day truncates t to calendar-day granularity (UTC midnight).
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
