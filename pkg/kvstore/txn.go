package kvstore

import (
	"bytes"

	bolt "go.etcd.io/bbolt"
)

// Txn gives access to the trees named when the transaction was opened.
// It is only valid for the lifetime of the Store.Update/View call that
// produced it.
type Txn struct {
	buckets map[string]*bolt.Bucket
	events  []Event
}

func newTxn() *Txn {
	return &Txn{buckets: make(map[string]*bolt.Bucket)}
}

// Bucket returns the named tree, or nil if it wasn't opened for this
// transaction or (read-only case) doesn't exist yet.
func (t *Txn) Bucket(tree string) *bolt.Bucket {
	return t.buckets[tree]
}

// Put writes key/value into tree and records a Set event to be published
// after the enclosing Update commits. Calling Put inside a read-only
// View transaction fails: bbolt returns an error from the underlying
// Bucket.Put and no event is recorded.
func (t *Txn) Put(tree string, key, value []byte) error {
	b := t.Bucket(tree)
	if err := b.Put(key, value); err != nil {
		return err
	}
	t.events = append(t.events, Event{Tree: tree, Kind: EventSet, Key: append([]byte(nil), key...)})
	return nil
}

// Delete removes key from tree and records a Delete event.
func (t *Txn) Delete(tree string, key []byte) error {
	b := t.Bucket(tree)
	if err := b.Delete(key); err != nil {
		return err
	}
	t.events = append(t.events, Event{Tree: tree, Kind: EventDelete, Key: append([]byte(nil), key...)})
	return nil
}

// Get returns the current value for key in tree, or nil if absent. The
// returned slice is only valid for the lifetime of the transaction;
// callers that need to keep it must copy.
func (t *Txn) Get(tree string, key []byte) []byte {
	b := t.Bucket(tree)
	if b == nil {
		return nil
	}
	return b.Get(key)
}

// ForEach iterates every key/value pair in tree in key order.
func (t *Txn) ForEach(tree string, fn func(key, value []byte) error) error {
	b := t.Bucket(tree)
	if b == nil {
		return nil
	}
	return b.ForEach(fn)
}

// ForEachPrefix iterates every key/value pair in tree whose key starts
// with prefix, in key order.
func (t *Txn) ForEachPrefix(tree string, prefix []byte, fn func(key, value []byte) error) error {
	b := t.Bucket(tree)
	if b == nil {
		return nil
	}
	c := b.Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}
