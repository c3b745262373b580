package domain

import "errors"

var (
	ErrInvalidOrderID      = errors.New("order id must be exactly 6 characters")
	ErrSellerRequired      = errors.New("seller is required")
	ErrClientRequired      = errors.New("client is required")
	ErrEndClientRequired   = errors.New("end client is required")
	ErrInvalidUnits        = errors.New("requested units must be positive")
	ErrInvalidEntryDate    = errors.New("invalid entry date")
	ErrDuplicateOrderID    = errors.New("order id already exists")
	ErrOrderNotFound       = errors.New("order not found")
	ErrCapacityComputation = errors.New("capacity computation failed")
)
