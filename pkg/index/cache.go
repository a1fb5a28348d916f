package index

import "sync/atomic"

// Cache is the tuple of derived, read-optimized state readers see
// atomically: the Words and Synonyms dictionaries, the schema the index
// was opened with, and the ranking scores. The Update Worker publishes a
// brand new Cache after every applied update; nothing ever mutates one in
// place, so a reader holding a *Cache sees a fully consistent point in
// time no matter how many updates land after it loaded one.
type Cache struct {
	Words     *FSTSet
	Synonyms  *FSTSet
	Schema    Schema
	RankedMap RankedMap
}

// cacheBox holds the swappable pointer; a dedicated type keeps the
// zero-value (no Cache published yet) distinguishable from "empty but
// loaded".
type cacheBox struct {
	ptr atomic.Pointer[Cache]
}

func (b *cacheBox) Load() *Cache {
	return b.ptr.Load()
}

func (b *cacheBox) Store(c *Cache) {
	b.ptr.Store(c)
}
