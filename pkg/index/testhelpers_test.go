package index

import (
	"path/filepath"
	"testing"

	"github.com/ferritedb/ferrite/pkg/kvstore"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *kvstore.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := kvstore.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}
