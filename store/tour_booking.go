package store

import (
	"context"
)

// TourBooking records one tour this process booked on the remote calendar.
// The calendar stays the system of record; this is an audit trail.
type TourBooking struct {
	ID            int64
	UID           string
	EventID       string
	Summary       string
	StartTs       int64
	EndTs         int64
	CustomerName  string
	CustomerEmail string
	Zpid          string
	HTMLLink      string
	CreatedTs     int64
}

// FindTourBooking is the find condition for tour bookings.
type FindTourBooking struct {
	EventID *string

	// Pagination
	Limit *int
}

// CreateTourBooking appends a booking to the ledger.
func (s *Store) CreateTourBooking(ctx context.Context, create *TourBooking) (*TourBooking, error) {
	return s.driver.CreateTourBooking(ctx, create)
}

// ListTourBookings lists bookings, newest first.
func (s *Store) ListTourBookings(ctx context.Context, find *FindTourBooking) ([]*TourBooking, error) {
	return s.driver.ListTourBookings(ctx, find)
}
