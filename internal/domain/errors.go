package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrStore              = errors.New("store error")
)

var (
	ErrTripNotFound    = fmt.Errorf("trip %w", ErrNotFound)
	ErrBoatNotFound    = fmt.Errorf("boat %w", ErrNotFound)
	ErrBookingNotFound = fmt.Errorf("booking %w", ErrNotFound)
)

// ConflictError reports a bed that already holds an active booking.
type ConflictError struct {
	TripID    int64
	CabinID   int64
	BedNumber int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("bed %d in cabin %d is already booked on trip %d", e.BedNumber, e.CabinID, e.TripID)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

type InvariantError struct {
	Reason   string
	Booked   int
	Capacity int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: booked=%d capacity=%d", e.Reason, e.Booked, e.Capacity)
}

func (e *InvariantError) Is(target error) bool { return target == ErrInvariantViolation }

// StoreError wraps a failure of the underlying persistence layer.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStore }
