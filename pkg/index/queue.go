package index

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/ferritedb/ferrite/pkg/kvstore"
)

func idKey(id uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, id)
	return buf
}

// enqueue durably appends update to the Update Queue and returns the ID
// it was assigned. IDs are generated from the tree's own sequence
// counter so they are monotonic and, because keys are big-endian
// encoded, also lexicographically ordered the same way.
func enqueue(store *kvstore.Store, names treeSet, update *Update) (uint64, error) {
	id, err := store.GenerateID(names.Updates)
	if err != nil {
		return 0, fmt.Errorf("index: generate update id: %w", err)
	}
	update.EnqueuedAt = time.Now()
	data, err := EncodeUpdate(update)
	if err != nil {
		return 0, err
	}
	err = store.Update([]string{names.Updates}, func(txn *kvstore.Txn) error {
		return txn.Put(names.Updates, idKey(id), data)
	})
	if err != nil {
		return 0, fmt.Errorf("index: enqueue update %d: %w", id, err)
	}
	return id, nil
}

// dequeueOldest returns the lowest-ID update still queued, or ok=false
// if the queue is empty. The Update Worker always processes updates in
// this order.
func dequeueOldest(txn *kvstore.Txn, tree string) (id uint64, update *Update, ok bool, err error) {
	var foundKey []byte
	var foundVal []byte
	err = txn.ForEachPrefix(tree, nil, func(k, v []byte) error {
		if foundKey == nil {
			foundKey = append([]byte(nil), k...)
			foundVal = append([]byte(nil), v...)
		}
		return errStopIteration
	})
	if err == errStopIteration {
		err = nil
	}
	if err != nil {
		return 0, nil, false, fmt.Errorf("index: scan update queue: %w", err)
	}
	if foundKey == nil {
		return 0, nil, false, nil
	}
	u, err := DecodeUpdate(foundVal)
	if err != nil {
		return 0, nil, false, err
	}
	return binary.BigEndian.Uint64(foundKey), u, true, nil
}

// errStopIteration is a private sentinel used only to break out of a
// ForEachPrefix scan early; it never escapes this package.
var errStopIteration = fmt.Errorf("index: stop iteration")
