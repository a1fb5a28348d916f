// Package kvstore wraps an embedded ordered key-value store (bbolt) behind
// a small facade: named trees, transactions that span several trees at
// once, durable monotonic ID generation, and a prefix-filterable watch
// mechanism bbolt itself doesn't provide.
//
//	+------------------+       +-------------------+
//	|     Store        |-----> |      *bolt.DB      |
//	|  (tree registry,  |       +-------------------+
//	|   watch broker)   |
//	+--------+---------+
//	         |
//	         v
//	+------------------+       +-------------------+
//	|       Txn         |-----> |  Bucket per tree  |
//	|  (one bolt.Tx)     |       +-------------------+
//	+------------------+
//
// Every Update call is one bolt transaction touching every tree it names;
// there is no cross-tree conflict/retry path to write because bbolt
// already serializes all writers through a single transaction.
package kvstore
