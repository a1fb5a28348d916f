package index

import (
	"encoding/binary"

	"github.com/ferritedb/ferrite/pkg/kvstore"
)

// treeSet names the full set of bucket names backing one named index.
type treeSet struct {
	Main, Words, DocsWords, Documents, Synonyms, Custom, Updates, UpdateResults string
}

// treeNames derives the bucket names for index the same way every time,
// so a facade only needs the index's own name to know where everything
// lives.
func treeNames(index string) treeSet {
	return treeSet{
		Main:          index,
		Words:         index + "-words",
		DocsWords:     index + "-docs-words",
		Documents:     index + "-documents",
		Synonyms:      index + "-synonyms",
		Custom:        index + "-custom",
		Updates:       index + "-updates",
		UpdateResults: index + "-updates-results",
	}
}

func (n treeSet) all() []string {
	return []string{n.Main, n.Words, n.DocsWords, n.Documents, n.Synonyms, n.Custom, n.Updates, n.UpdateResults}
}

// keys within the Main tree
const (
	mainKeySchema    = "schema"
	mainKeyWords     = "words"
	mainKeySynonyms  = "synonyms"
	mainKeyRankedMap = "ranked-map"
)

// MainIndex reads and writes the Schema, Words FST, Synonyms FST and
// RankedMap singletons.
type MainIndex struct {
	txn  *kvstore.Txn
	tree string
}

func newMainIndex(txn *kvstore.Txn, tree string) MainIndex {
	return MainIndex{txn: txn, tree: tree}
}

func (m MainIndex) Schema() (Schema, bool, error) {
	v := m.txn.Get(m.tree, []byte(mainKeySchema))
	if v == nil {
		return Schema{}, false, nil
	}
	s, err := DecodeSchema(v)
	return s, true, err
}

func (m MainIndex) PutSchema(s Schema) error {
	data, err := EncodeSchema(s)
	if err != nil {
		return err
	}
	return m.txn.Put(m.tree, []byte(mainKeySchema), data)
}

func (m MainIndex) Words() (*FSTSet, error) {
	v := m.txn.Get(m.tree, []byte(mainKeyWords))
	if v == nil {
		return LoadFSTSet(nil)
	}
	// vellum.Load wraps the slice without copying it, but v is only
	// valid for the lifetime of this transaction and the FST outlives
	// it in the Cache snapshot — copy before handing it off.
	return LoadFSTSet(append([]byte(nil), v...))
}

func (m MainIndex) PutWords(set *FSTSet) error {
	return m.txn.Put(m.tree, []byte(mainKeyWords), set.Bytes())
}

func (m MainIndex) Synonyms() (*FSTSet, error) {
	v := m.txn.Get(m.tree, []byte(mainKeySynonyms))
	if v == nil {
		return LoadFSTSet(nil)
	}
	return LoadFSTSet(append([]byte(nil), v...))
}

func (m MainIndex) PutSynonyms(set *FSTSet) error {
	return m.txn.Put(m.tree, []byte(mainKeySynonyms), set.Bytes())
}

func (m MainIndex) RankedMap() (RankedMap, error) {
	v := m.txn.Get(m.tree, []byte(mainKeyRankedMap))
	if v == nil {
		return NewRankedMap(), nil
	}
	return DecodeRankedMap(v)
}

func (m MainIndex) PutRankedMap(rm RankedMap) error {
	data, err := EncodeRankedMap(rm)
	if err != nil {
		return err
	}
	return m.txn.Put(m.tree, []byte(mainKeyRankedMap), data)
}

// WordsIndex maps a term to the sorted set of postings referencing it.
type WordsIndex struct {
	txn  *kvstore.Txn
	tree string
}

func newWordsIndex(txn *kvstore.Txn, tree string) WordsIndex {
	return WordsIndex{txn: txn, tree: tree}
}

func (w WordsIndex) Get(term []byte) ([]DocIndex, error) {
	v := w.txn.Get(w.tree, term)
	if v == nil {
		return nil, nil
	}
	return DecodeDocIndexSet(v)
}

func (w WordsIndex) Put(term []byte, postings []DocIndex) error {
	if len(postings) == 0 {
		return w.txn.Delete(w.tree, term)
	}
	return w.txn.Put(w.tree, term, EncodeDocIndexSet(postings))
}

func (w WordsIndex) Each(fn func(term []byte, postings []DocIndex) error) error {
	return w.txn.ForEach(w.tree, func(k, v []byte) error {
		postings, err := DecodeDocIndexSet(v)
		if err != nil {
			return err
		}
		return fn(k, postings)
	})
}

// DocsWordsIndex maps a document to the sorted set of terms it contains,
// the reverse index needed to remove a document's postings in
// WordsIndex without scanning every term.
type DocsWordsIndex struct {
	txn  *kvstore.Txn
	tree string
}

func newDocsWordsIndex(txn *kvstore.Txn, tree string) DocsWordsIndex {
	return DocsWordsIndex{txn: txn, tree: tree}
}

func docKey(id DocumentID) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

func (d DocsWordsIndex) Get(id DocumentID) (WordSet, error) {
	v := d.txn.Get(d.tree, docKey(id))
	if v == nil {
		return nil, nil
	}
	return DecodeWordSet(v)
}

func (d DocsWordsIndex) Put(id DocumentID, words WordSet) error {
	if len(words) == 0 {
		return d.txn.Delete(d.tree, docKey(id))
	}
	return d.txn.Put(d.tree, docKey(id), EncodeWordSet(words))
}

func (d DocsWordsIndex) Delete(id DocumentID) error {
	return d.txn.Delete(d.tree, docKey(id))
}

// DocumentsIndex stores each document's raw, schema-encoded field bytes
// keyed by (document, attribute).
type DocumentsIndex struct {
	txn  *kvstore.Txn
	tree string
}

func newDocumentsIndex(txn *kvstore.Txn, tree string) DocumentsIndex {
	return DocumentsIndex{txn: txn, tree: tree}
}

func fieldKey(id DocumentID, attr AttrID) []byte {
	buf := make([]byte, 10)
	binary.BigEndian.PutUint64(buf[0:8], uint64(id))
	binary.BigEndian.PutUint16(buf[8:10], uint16(attr))
	return buf
}

func (d DocumentsIndex) GetField(id DocumentID, attr AttrID) []byte {
	return d.txn.Get(d.tree, fieldKey(id, attr))
}

func (d DocumentsIndex) PutField(id DocumentID, attr AttrID, value []byte) error {
	return d.txn.Put(d.tree, fieldKey(id, attr), value)
}

func (d DocumentsIndex) DeleteField(id DocumentID, attr AttrID) error {
	return d.txn.Delete(d.tree, fieldKey(id, attr))
}

// EachField iterates every stored field of one document in attribute
// order.
func (d DocumentsIndex) EachField(id DocumentID, fn func(attr AttrID, value []byte) error) error {
	prefix := docKey(id)
	return d.txn.ForEachPrefix(d.tree, prefix, func(k, v []byte) error {
		attr := AttrID(binary.BigEndian.Uint16(k[8:10]))
		return fn(attr, v)
	})
}

// CountDistinctDocuments reports how many distinct documents have at
// least one stored field, by scanning keys in document order and
// counting each time the document-id prefix changes.
func (d DocumentsIndex) CountDistinctDocuments() (int, error) {
	count := 0
	var last DocumentID
	haveLast := false
	err := d.txn.ForEach(d.tree, func(k, _ []byte) error {
		id := DocumentID(binary.BigEndian.Uint64(k[0:8]))
		if !haveLast || id != last {
			count++
			last = id
			haveLast = true
		}
		return nil
	})
	return count, err
}

// SynonymsIndex maps a source token to its set of alternative tokens.
type SynonymsIndex struct {
	txn  *kvstore.Txn
	tree string
}

func newSynonymsIndex(txn *kvstore.Txn, tree string) SynonymsIndex {
	return SynonymsIndex{txn: txn, tree: tree}
}

func (s SynonymsIndex) Alternatives(word []byte) (WordSet, error) {
	v := s.txn.Get(s.tree, word)
	if v == nil {
		return nil, nil
	}
	return DecodeWordSet(v)
}

func (s SynonymsIndex) PutAlternatives(word []byte, alts WordSet) error {
	if len(alts) == 0 {
		return s.txn.Delete(s.tree, word)
	}
	return s.txn.Put(s.tree, word, EncodeWordSet(alts))
}

func (s SynonymsIndex) Delete(word []byte) error {
	return s.txn.Delete(s.tree, word)
}

// Each iterates every source token and its alternatives in key order.
func (s SynonymsIndex) Each(fn func(word []byte, alternatives WordSet) error) error {
	return s.txn.ForEach(s.tree, func(k, v []byte) error {
		alts, err := DecodeWordSet(v)
		if err != nil {
			return err
		}
		return fn(k, alts)
	})
}

// CustomSettingsIndex stores opaque, caller-defined settings that don't
// belong in the Schema, keyed by a caller-chosen name.
type CustomSettingsIndex struct {
	txn  *kvstore.Txn
	tree string
}

func newCustomSettingsIndex(txn *kvstore.Txn, tree string) CustomSettingsIndex {
	return CustomSettingsIndex{txn: txn, tree: tree}
}

func (c CustomSettingsIndex) Get(key string) []byte {
	return c.txn.Get(c.tree, []byte(key))
}

func (c CustomSettingsIndex) Put(key string, value []byte) error {
	return c.txn.Put(c.tree, []byte(key), value)
}

func (c CustomSettingsIndex) Delete(key string) error {
	return c.txn.Delete(c.tree, []byte(key))
}
