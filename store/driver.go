package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// TourBooking model related methods.
	CreateTourBooking(ctx context.Context, create *TourBooking) (*TourBooking, error)
	ListTourBookings(ctx context.Context, find *FindTourBooking) ([]*TourBooking, error)
}
