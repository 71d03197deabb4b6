package sqlite

import (
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/hrygo/tourdesk/internal/profile"
	"github.com/hrygo/tourdesk/store"
)

// DriverName is the name the schema files are stored under.
const DriverName = "sqlite"

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a SQLite database using the DSN from profile.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	dsn := strings.TrimSpace(profile.DBPath)
	if dsn == "" {
		return nil, errors.New("dsn required")
	}

	memory := dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
	if !memory {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	}

	sqliteDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", dsn)
	}
	if memory {
		// Every connection to :memory: is a separate database.
		sqliteDB.SetMaxOpenConns(1)
	}

	return &DB{db: sqliteDB, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}
