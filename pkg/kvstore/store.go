package kvstore

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// Store is an embedded ordered key-value database holding a set of named
// trees (buckets). It is safe for concurrent use by multiple goroutines.
type Store struct {
	db     *bolt.DB
	broker *Broker
}

// Open opens (creating if necessary) the database file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("kvstore: open %s: %w", path, err)
	}

	s := &Store{
		db:     db,
		broker: newBroker(),
	}
	s.broker.start()
	return s, nil
}

// Close stops the watch broker and closes the underlying database file.
func (s *Store) Close() error {
	s.broker.stop()
	return s.db.Close()
}

// OpenTree creates the named tree if it does not already exist. It is a
// no-op if the tree is already present.
func (s *Store) OpenTree(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		if err != nil {
			return fmt.Errorf("kvstore: create tree %q: %w", name, err)
		}
		return nil
	})
}

// GenerateID returns the next value of the tree's durable monotonic
// sequence counter. IDs are never reused, even across restarts, because
// bbolt persists each bucket's sequence counter on commit.
func (s *Store) GenerateID(tree string) (uint64, error) {
	var id uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(tree))
		if err != nil {
			return err
		}
		id, err = b.NextSequence()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("kvstore: generate id in %q: %w", tree, err)
	}
	return id, nil
}

// Update runs fn inside a read-write transaction spanning every tree
// named. A non-nil return from fn aborts the transaction; nothing fn did
// to any tree is visible afterward. On success, every Set/Delete recorded
// during fn is published to the watch broker once the transaction has
// committed.
func (s *Store) Update(trees []string, fn func(txn *Txn) error) error {
	txn := newTxn()
	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range trees {
			b, err := tx.CreateBucketIfNotExists([]byte(name))
			if err != nil {
				return fmt.Errorf("kvstore: open tree %q: %w", name, err)
			}
			txn.buckets[name] = b
		}
		return fn(txn)
	})
	if err != nil {
		return err
	}
	s.broker.publishAll(txn.events)
	return nil
}

// View runs fn inside a read-only transaction spanning every tree named.
// Trees that do not yet exist are presented as empty.
func (s *Store) View(trees []string, fn func(txn *Txn) error) error {
	txn := newTxn()
	return s.db.View(func(tx *bolt.Tx) error {
		for _, name := range trees {
			txn.buckets[name] = tx.Bucket([]byte(name))
		}
		return fn(txn)
	})
}

// WatchPrefix subscribes to events on tree whose key starts with prefix.
// With no kinds given, both Set and Delete events match; passing one or
// more narrows the subscription to just those kinds. The caller must
// call Unsubscribe when done.
func (s *Store) WatchPrefix(tree string, prefix []byte, kinds ...EventKind) *Subscription {
	return s.broker.subscribe(tree, prefix, kinds)
}

// Unsubscribe cancels a subscription created by WatchPrefix.
func (s *Store) Unsubscribe(sub *Subscription) {
	s.broker.unsubscribe(sub)
}
