package store

// Store provides database access to the booking ledger.
type Store struct {
	driver Driver
}

// New creates a new instance of Store.
func New(driver Driver) *Store {
	return &Store{driver: driver}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}
