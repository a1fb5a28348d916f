package kvstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_UpdateViewRoundTrip(t *testing.T) {
	s := openTestStore(t)

	err := s.Update([]string{"widgets"}, func(txn *Txn) error {
		return txn.Put("widgets", []byte("a"), []byte("1"))
	})
	require.NoError(t, err)

	var got []byte
	err = s.View([]string{"widgets"}, func(txn *Txn) error {
		got = txn.Get("widgets", []byte("a"))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)
}

func TestStore_UpdateSpansMultipleTrees(t *testing.T) {
	s := openTestStore(t)

	err := s.Update([]string{"left", "right"}, func(txn *Txn) error {
		if err := txn.Put("left", []byte("k"), []byte("L")); err != nil {
			return err
		}
		return txn.Put("right", []byte("k"), []byte("R"))
	})
	require.NoError(t, err)

	err = s.View([]string{"left", "right"}, func(txn *Txn) error {
		assert.Equal(t, []byte("L"), txn.Get("left", []byte("k")))
		assert.Equal(t, []byte("R"), txn.Get("right", []byte("k")))
		return nil
	})
	require.NoError(t, err)
}

func TestStore_UpdateRollsBackOnError(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.OpenTree("widgets"))

	boom := assert.AnError
	err := s.Update([]string{"widgets"}, func(txn *Txn) error {
		if err := txn.Put("widgets", []byte("a"), []byte("1")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = s.View([]string{"widgets"}, func(txn *Txn) error {
		assert.Nil(t, txn.Get("widgets", []byte("a")))
		return nil
	})
	require.NoError(t, err)
}

func TestStore_GenerateIDIsMonotonic(t *testing.T) {
	s := openTestStore(t)

	first, err := s.GenerateID("updates")
	require.NoError(t, err)
	second, err := s.GenerateID("updates")
	require.NoError(t, err)

	assert.Greater(t, second, first)
}

func TestStore_ForEachPrefix(t *testing.T) {
	s := openTestStore(t)

	err := s.Update([]string{"docs"}, func(txn *Txn) error {
		for _, k := range []string{"a/1", "a/2", "b/1"} {
			if err := txn.Put("docs", []byte(k), []byte("v")); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	var keys []string
	err = s.View([]string{"docs"}, func(txn *Txn) error {
		return txn.ForEachPrefix("docs", []byte("a/"), func(k, v []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a/1", "a/2"}, keys)
}

func TestStore_WatchPrefixReceivesMatchingEvents(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.OpenTree("updates"))

	sub := s.WatchPrefix("updates", []byte("res/"))
	defer s.Unsubscribe(sub)

	err := s.Update([]string{"updates"}, func(txn *Txn) error {
		if err := txn.Put("updates", []byte("other/1"), []byte("x")); err != nil {
			return err
		}
		return txn.Put("updates", []byte("res/1"), []byte("y"))
	})
	require.NoError(t, err)

	select {
	case e := <-sub.C:
		assert.Equal(t, "res/1", string(e.Key))
		assert.Equal(t, EventSet, e.Kind)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for matching event")
	}

	select {
	case e := <-sub.C:
		t.Fatalf("unexpected second event: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStore_WatchPrefixKindFilterExcludesOtherKinds(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.OpenTree("updates"))

	sub := s.WatchPrefix("updates", []byte("q/"), EventSet)
	defer s.Unsubscribe(sub)

	require.NoError(t, s.Update([]string{"updates"}, func(txn *Txn) error {
		return txn.Put("updates", []byte("q/1"), []byte("x"))
	}))
	require.NoError(t, s.Update([]string{"updates"}, func(txn *Txn) error {
		return txn.Delete("updates", []byte("q/1"))
	}))

	select {
	case e := <-sub.C:
		assert.Equal(t, EventSet, e.Kind)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the Set event")
	}

	select {
	case e := <-sub.C:
		t.Fatalf("Delete event should have been filtered out: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}
