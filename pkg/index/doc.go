/*
Package index implements one per-index search engine core atop
pkg/kvstore: durable documents and synonym edits flow through a
serialized Update Queue, a single background worker drains it and
mutates the on-disk Words/Synonyms dictionaries, document store and
ranked-attribute map, and readers observe a consistent in-memory Cache
snapshot while the worker advances behind them.

	┌────────────────────────── INDEX ──────────────────────────┐
	│                                                            │
	│   callers ──submit──▶ Update Queue ──drain──▶ Appliers     │
	│                 (idx-updates)       (single worker         │
	│                                       goroutine)           │
	│                                          │                 │
	│                                          ▼                 │
	│           MainIndex / WordsIndex / DocsWordsIndex /         │
	│           DocumentsIndex / SynonymsIndex / CustomIndex      │
	│                                          │                 │
	│                                          ▼                 │
	│                                republish Cache snapshot     │
	│                                          │                 │
	│           Reader ◀───────────────────────┘                 │
	│      (Words, Synonyms, Schema, RankedMap; point-in-time)    │
	└────────────────────────────────────────────────────────────┘

Every tree above is a bucket in the same *bbolt.DB, named by prefixing
the index's own name (see treeNames); the Update Worker touches every
one of them inside a single storage transaction per update, so an
observer never sees a half-applied update.

Document identifiers are derived deterministically from a caller-given
external identifier (docid.go); tokenization happens upstream of this
package, which only ever stores and indexes the terms it's handed.
*/
package index
