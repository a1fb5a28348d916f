package index

import (
	"fmt"
	"sync"
	"time"

	"github.com/ferritedb/ferrite/pkg/kvstore"
	"github.com/ferritedb/ferrite/pkg/log"
	"github.com/ferritedb/ferrite/pkg/metrics"
)

// UpdateCallback is notified, outside of any storage transaction, with
// the status of every update the worker finishes applying. Exactly one
// callback can be registered at a time; registering a new one replaces
// the last.
type UpdateCallback func(UpdateStatus)

// WorkerConfig configures the Update Worker's drain loop.
type WorkerConfig struct {
	// PollInterval bounds how long the worker can go without checking
	// the queue even if it misses an enqueue notification (it never
	// should, but a watch event is not a durability guarantee).
	PollInterval time.Duration
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = 200 * time.Millisecond
	}
	return c
}

// worker is the single background goroutine that drains an index's
// Update Queue in order, applying each update inside one storage
// transaction and publishing a fresh Cache snapshot after every apply.
type worker struct {
	store  *kvstore.Store
	names  treeSet
	name   string
	schema Schema
	cache  *cacheBox
	cfg    WorkerConfig

	sub *kvstore.Subscription

	mu       sync.RWMutex
	callback UpdateCallback

	stopCh chan struct{}
	doneCh chan struct{}
}

func newWorker(store *kvstore.Store, names treeSet, name string, schema Schema, cache *cacheBox, cfg WorkerConfig) *worker {
	return &worker{
		store:  store,
		names:  names,
		name:   name,
		schema: schema,
		cache:  cache,
		cfg:    cfg.withDefaults(),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (w *worker) start() {
	w.sub = w.store.WatchPrefix(w.names.Updates, nil, kvstore.EventSet)
	go w.run()
}

func (w *worker) stop() {
	close(w.stopCh)
	<-w.doneCh
	w.store.Unsubscribe(w.sub)
}

func (w *worker) setCallback(cb UpdateCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callback = cb
}

func (w *worker) run() {
	defer close(w.doneCh)

	logger := log.WithComponent("worker")

	for {
		for {
			processed, err := w.drainOne()
			if err != nil {
				logger.Error().Err(err).Str("index", w.name).Msg("failed to apply queued update")
				break
			}
			if !processed {
				break
			}
		}

		select {
		case <-w.sub.C:
		case <-time.After(w.cfg.PollInterval):
		case <-w.stopCh:
			return
		}
	}
}

// drainOne applies the single oldest queued update, if any, inside one
// transaction spanning every tree the index owns. It returns processed
// = true if an update was found and applied (successfully or not — an
// applier error becomes a failed UpdateStatus, not a dropped update).
func (w *worker) drainOne() (processed bool, err error) {
	var (
		status     UpdateStatus
		foundAny   bool
		queueDelay time.Duration
	)

	txErr := w.store.Update(w.names.all(), func(txn *kvstore.Txn) error {
		id, update, found, derr := dequeueOldest(txn, w.names.Updates)
		if derr != nil {
			return derr
		}
		if !found {
			return nil
		}
		foundAny = true
		queueDelay = time.Since(update.EnqueuedAt)

		t := newTrees(txn, w.names)
		rm, derr := t.main.RankedMap()
		if derr != nil {
			return derr
		}

		applyTimer := metrics.NewTimer()
		applyErr := applyUpdate(w.schema, t, rm, update)
		applyDuration := applyTimer.Duration()

		// An applier error can still leave partial writes behind from
		// documents processed before the one that failed (there is no
		// rollback within the batch, only the surrounding bbolt
		// transaction). Rebuild the affected dictionaries and persist
		// the ranked map unconditionally, so the Words/Synonyms FSTs
		// and RankedMap always stay consistent with whatever WordsIndex
		// and SynonymsIndex actually hold, success or not.
		if update.Kind == DocumentsAddition || update.Kind == DocumentsDeletion {
			words, derr := rebuildWordsDictionary(t)
			if derr != nil {
				return derr
			}
			if derr := t.main.PutWords(words); derr != nil {
				return derr
			}
		}
		if update.Kind == SynonymsAddition || update.Kind == SynonymsDeletion {
			syns, derr := rebuildSynonymsDictionary(t)
			if derr != nil {
				return derr
			}
			if derr := t.main.PutSynonyms(syns); derr != nil {
				return derr
			}
		}
		if derr := t.main.PutRankedMap(rm); derr != nil {
			return derr
		}

		status = UpdateStatus{
			ID:   id,
			Type: update.Kind,
			Duration: DetailedDuration{
				Total: time.Since(update.EnqueuedAt),
				Apply: applyDuration,
			},
		}
		if applyErr != nil {
			status.Result.Err = applyErr.Error()
		}

		statusData, derr := EncodeUpdateStatus(&status)
		if derr != nil {
			return derr
		}
		if derr := txn.Put(w.names.UpdateResults, idKey(id), statusData); derr != nil {
			return derr
		}
		return txn.Delete(w.names.Updates, idKey(id))
	})
	if txErr != nil {
		return false, fmt.Errorf("index: apply update: %w", txErr)
	}
	if !foundAny {
		return false, nil
	}

	w.republishCache()

	result := "ok"
	if status.Result.Failed() {
		result = "failed"
	}
	metrics.UpdatesTotal.WithLabelValues(w.name, string(status.Type), result).Inc()
	metrics.UpdateApplyDuration.WithLabelValues(w.name, string(status.Type)).Observe(status.Duration.Apply.Seconds())
	metrics.UpdateQueueLatency.WithLabelValues(w.name, string(status.Type)).Observe(queueDelay.Seconds())

	w.mu.RLock()
	cb := w.callback
	w.mu.RUnlock()
	if cb != nil {
		cb(status)
	}

	return true, nil
}

func applyUpdate(schema Schema, t trees, rm RankedMap, u *Update) error {
	switch u.Kind {
	case DocumentsAddition:
		return applyDocumentsAddition(schema, t, rm, u.DocumentsAdditionPayload)
	case DocumentsDeletion:
		return applyDocumentsDeletion(t, rm, u.DocumentsDeletionPayload)
	case SynonymsAddition:
		return applySynonymsAddition(t, u.SynonymsAdditionPayload)
	case SynonymsDeletion:
		return applySynonymsDeletion(t, u.SynonymsDeletionPayload)
	default:
		return fmt.Errorf("index: unknown update kind %q", u.Kind)
	}
}

// republishCache reloads Words, Synonyms and RankedMap from storage and
// swaps in a brand new Cache, so the next reader to Load sees them all
// together or not at all.
func (w *worker) republishCache() {
	var next Cache
	err := w.store.View(w.names.all(), func(txn *kvstore.Txn) error {
		t := newTrees(txn, w.names)
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
		next = Cache{Words: words, Synonyms: syns, Schema: w.schema, RankedMap: rm}
		return nil
	})
	if err != nil {
		log.WithComponent("worker").Error().Err(err).Str("index", w.name).Msg("failed to republish cache")
		return
	}
	w.cache.Store(&next)
}
