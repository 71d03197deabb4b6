package db

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hrygo/tourdesk/internal/profile"
	"github.com/hrygo/tourdesk/store"
	"github.com/hrygo/tourdesk/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	driver, err := sqlite.NewDB(profile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}

// Open creates the ledger store and applies its schema.
func Open(ctx context.Context, profile *profile.Profile) (*store.Store, error) {
	driver, err := NewDBDriver(profile)
	if err != nil {
		return nil, err
	}
	s := store.New(driver)
	if err := s.Migrate(ctx, sqlite.DriverName); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
