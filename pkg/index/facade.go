package index

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ferritedb/ferrite/pkg/kvstore"
)

// Stats is a point-in-time snapshot of an index's size, used for
// observability and exposed to pkg/metrics through the StatsSource
// interface.
type Stats struct {
	Words      int
	Synonyms   int
	Documents  int
	QueueDepth int
}

// Index is the public handle for one named search index. It owns a
// background Update Worker for as long as it's open; callers must call
// Close when done with it.
type Index struct {
	store  *kvstore.Store
	names  treeSet
	name   string
	cache  *cacheBox
	worker *worker
	closed atomic.Bool
}

// Open opens the named index within store, creating it if it does not
// exist. If schema is non-nil, it is compared against any schema
// already stored (ErrSchemaDiffer on mismatch) or stored as the index's
// schema if none exists yet. If schema is nil and none is stored,
// ErrSchemaMissing is returned — a brand new index cannot be opened
// without one.
func Open(store *kvstore.Store, name string, schema *Schema, cfg WorkerConfig) (*Index, error) {
	names := treeNames(name)

	var stored Schema
	var hasStored bool
	err := store.View(names.all(), func(txn *kvstore.Txn) error {
		m := newMainIndex(txn, names.Main)
		s, ok, err := m.Schema()
		if err != nil {
			return err
		}
		stored, hasStored = s, ok
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("index: open %q: %w", name, err)
	}

	var resolved Schema
	switch {
	case schema != nil && hasStored:
		if !schema.Equal(stored) {
			return nil, ErrSchemaDiffer
		}
		resolved = stored
	case schema != nil && !hasStored:
		resolved = schema.Clone()
		err := store.Update(names.all(), func(txn *kvstore.Txn) error {
			return newMainIndex(txn, names.Main).PutSchema(resolved)
		})
		if err != nil {
			return nil, fmt.Errorf("index: store schema for %q: %w", name, err)
		}
	case schema == nil && hasStored:
		resolved = stored
	default:
		return nil, ErrSchemaMissing
	}

	cache := &cacheBox{}
	var initial Cache
	err = store.View(names.all(), func(txn *kvstore.Txn) error {
		t := newTrees(txn, names)
		words, err := t.main.Words()
		if err != nil {
			return err
		}
		syns, err := t.main.Synonyms()
		if err != nil {
			return err
		}
		rm, err := t.main.RankedMap()
		if err != nil {
			return err
		}
		initial = Cache{Words: words, Synonyms: syns, Schema: resolved, RankedMap: rm}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("index: load initial cache for %q: %w", name, err)
	}
	cache.Store(&initial)

	w := newWorker(store, names, name, resolved, cache, cfg)
	w.start()

	return &Index{
		store:  store,
		names:  names,
		name:   name,
		cache:  cache,
		worker: w,
	}, nil
}

// Close stops the Update Worker and releases its subscription. It does
// not close the underlying Store, which the caller may share with other
// indexes.
func (ix *Index) Close() error {
	if !ix.closed.CompareAndSwap(false, true) {
		return nil
	}
	ix.worker.stop()
	return nil
}

// Name returns the index's name.
func (ix *Index) Name() string {
	return ix.name
}

// Schema returns a copy of the index's schema.
func (ix *Index) Schema() Schema {
	return ix.cache.Load().Schema.Clone()
}

// OnUpdate registers the callback invoked after every applied update.
// Registering a new callback replaces any previous one.
func (ix *Index) OnUpdate(cb UpdateCallback) {
	ix.worker.setCallback(cb)
}

// Reader returns a read adapter bound to the index's current Cache
// snapshot. The returned Reader keeps seeing that exact snapshot even as
// later updates are applied and published.
func (ix *Index) Reader() *Reader {
	return newReader(ix.store, ix.names, ix.cache.Load())
}

// Document reconstructs one document's stored fields by its external
// identifier.
func (ix *Index) Document(externalID string) (map[string][]byte, error) {
	if ix.closed.Load() {
		return nil, ErrClosed
	}
	return ix.Reader().Document(HashDocumentID(externalID))
}

// Stats reports the index's current size.
func (ix *Index) Stats() (Stats, error) {
	if ix.closed.Load() {
		return Stats{}, ErrClosed
	}
	var s Stats
	err := ix.store.View(ix.names.all(), func(txn *kvstore.Txn) error {
		t := newTrees(txn, ix.names)
		words, err := t.main.Words()
		if err != nil {
			return err
		}
		syns, err := t.main.Synonyms()
		if err != nil {
			return err
		}
		docs, err := t.documents.CountDistinctDocuments()
		if err != nil {
			return err
		}
		depth := 0
		if err := txn.ForEach(ix.names.Updates, func([]byte, []byte) error { depth++; return nil }); err != nil {
			return err
		}
		s = Stats{Words: words.Len(), Synonyms: syns.Len(), Documents: docs, QueueDepth: depth}
		return nil
	})
	return s, err
}

// WordsCount implements metrics.StatsSource.
func (ix *Index) WordsCount() int {
	s, err := ix.Stats()
	if err != nil {
		return 0
	}
	return s.Words
}

// SynonymsCount implements metrics.StatsSource.
func (ix *Index) SynonymsCount() int {
	s, err := ix.Stats()
	if err != nil {
		return 0
	}
	return s.Synonyms
}

// DocumentsCount implements metrics.StatsSource.
func (ix *Index) DocumentsCount() int {
	s, err := ix.Stats()
	if err != nil {
		return 0
	}
	return s.Documents
}

// QueueDepth implements metrics.StatsSource.
func (ix *Index) QueueDepth() int {
	s, err := ix.Stats()
	if err != nil {
		return 0
	}
	return s.QueueDepth
}

// UpdateStatus returns the stored outcome of update id, or nil if it has
// not finished (or never existed).
func (ix *Index) UpdateStatus(id uint64) (*UpdateStatus, error) {
	if ix.closed.Load() {
		return nil, ErrClosed
	}
	var status *UpdateStatus
	err := ix.store.View([]string{ix.names.UpdateResults}, func(txn *kvstore.Txn) error {
		v := txn.Get(ix.names.UpdateResults, idKey(id))
		if v == nil {
			return nil
		}
		s, err := DecodeUpdateStatus(v)
		if err != nil {
			return err
		}
		status = s
		return nil
	})
	return status, err
}

// UpdateStatusBlocking waits for update id to finish, or for ctx to be
// done. It subscribes to the update-results tree before its first read
// of storage, so a result written between that read and the subscribe
// taking effect is never missed: the watch event backing it is already
// queued on the subscription channel.
func (ix *Index) UpdateStatusBlocking(ctx context.Context, id uint64) (*UpdateStatus, error) {
	if ix.closed.Load() {
		return nil, ErrClosed
	}
	sub := ix.store.WatchPrefix(ix.names.UpdateResults, idKey(id), kvstore.EventSet)
	defer ix.store.Unsubscribe(sub)

	if status, err := ix.UpdateStatus(id); err != nil {
		return nil, err
	} else if status != nil {
		return status, nil
	}

	for {
		select {
		case <-sub.C:
			status, err := ix.UpdateStatus(id)
			if err != nil {
				return nil, err
			}
			if status != nil {
				return status, nil
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// CustomSetting returns an opaque caller-defined setting.
func (ix *Index) CustomSetting(key string) ([]byte, error) {
	var value []byte
	err := ix.store.View([]string{ix.names.Custom}, func(txn *kvstore.Txn) error {
		if v := txn.Get(ix.names.Custom, []byte(key)); v != nil {
			// Make a copy since the bucket's data is only valid during
			// the transaction, which ends before this value is returned.
			value = append([]byte(nil), v...)
		}
		return nil
	})
	return value, err
}

// PutCustomSetting stores an opaque caller-defined setting outside the
// update queue; custom settings are not versioned or queued since they
// don't affect the dictionaries or ranking.
func (ix *Index) PutCustomSetting(key string, value []byte) error {
	return ix.store.Update([]string{ix.names.Custom}, func(txn *kvstore.Txn) error {
		return newCustomSettingsIndex(txn, ix.names.Custom).Put(key, value)
	})
}
