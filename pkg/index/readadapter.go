package index

import "github.com/ferritedb/ferrite/pkg/kvstore"

// Reader is the read-only adapter an external query engine uses to
// evaluate a query against one consistent point in time: the Words and
// Synonyms dictionaries, the Schema and the RankedMap all come from a
// single Cache snapshot, so a reader never sees, say, a Words FST that
// includes a term whose postings haven't been written yet. Postings,
// alternatives and document fields are looked up live against storage,
// since they would be too large to duplicate into the Cache snapshot.
// They are therefore not pinned to the snapshot: a Reader held across a
// later update sees that update's postings, so a term still in its
// Words set may have had its postings changed or removed.
type Reader struct {
	store *kvstore.Store
	names treeSet
	cache *Cache
}

func newReader(store *kvstore.Store, names treeSet, cache *Cache) *Reader {
	return &Reader{store: store, names: names, cache: cache}
}

// Words returns the snapshot's term dictionary.
func (r *Reader) Words() *FSTSet {
	return r.cache.Words
}

// Synonyms returns the snapshot's set of source tokens with alternatives.
func (r *Reader) Synonyms() *FSTSet {
	return r.cache.Synonyms
}

// Schema returns the snapshot's schema.
func (r *Reader) Schema() Schema {
	return r.cache.Schema
}

// RankedMap returns the snapshot's ranking scores.
func (r *Reader) RankedMap() RankedMap {
	return r.cache.RankedMap
}

// WordIndexes returns every posting for term.
func (r *Reader) WordIndexes(term string) ([]DocIndex, error) {
	var out []DocIndex
	err := r.store.View([]string{r.names.Words}, func(txn *kvstore.Txn) error {
		w := newWordsIndex(txn, r.names.Words)
		var err error
		out, err = w.Get([]byte(term))
		return err
	})
	return out, err
}

// AlternativesTo returns the alternative tokens synonymous with term.
func (r *Reader) AlternativesTo(term string) (WordSet, error) {
	var out WordSet
	err := r.store.View([]string{r.names.Synonyms}, func(txn *kvstore.Txn) error {
		s := newSynonymsIndex(txn, r.names.Synonyms)
		var err error
		out, err = s.Alternatives([]byte(term))
		return err
	})
	return out, err
}

// Document reconstructs a document's stored fields by attribute name.
// It returns a non-nil, possibly-empty map even when the document has no
// stored fields at all — there is no separate "document exists" marker,
// so a document's existence is inferred only from whatever fields
// happen to be stored for it, never asserted independently. Preserved
// deliberately; a caller that needs to distinguish "no such document"
// from "document with no indexed fields" must track that itself.
func (r *Reader) Document(id DocumentID) (map[string][]byte, error) {
	fields := make(map[string][]byte)
	err := r.store.View([]string{r.names.Documents}, func(txn *kvstore.Txn) error {
		d := newDocumentsIndex(txn, r.names.Documents)
		return d.EachField(id, func(attr AttrID, value []byte) error {
			name := attrName(r.cache.Schema, attr)
			if name == "" {
				return nil
			}
			fields[name] = append([]byte(nil), value...)
			return nil
		})
	})
	return fields, err
}

func attrName(s Schema, id AttrID) string {
	for _, a := range s.Attrs {
		if a.ID == id {
			return a.Name
		}
	}
	return ""
}
