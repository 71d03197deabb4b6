package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/tourdesk/internal/profile"
	"github.com/hrygo/tourdesk/store"
	"github.com/hrygo/tourdesk/store/db"
)

// NewTestingStore opens a ledger backed by a file in the test's temp dir.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()
	s, err := db.Open(ctx, &profile.Profile{DBPath: filepath.Join(t.TempDir(), "ledger.db")})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}
