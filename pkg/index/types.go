package index

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
)

// DocumentID identifies a document within one index. It is derived from
// the caller's declared identifier attribute by hashing (see docid.go),
// never handed out by the caller directly.
type DocumentID uint64

// AttrID identifies a schema attribute within one index.
type AttrID uint16

// SchemaAttr is one named, ranked-or-not attribute in a Schema.
type SchemaAttr struct {
	ID     AttrID
	Name   string
	Ranked bool
}

// Schema is the minimal boundary contract this core needs: enough to
// validate that a reopened index matches what it was created with, and to
// know which attributes participate in the RankedMap. Tokenization,
// full attribute typing and query-facing configuration live outside this
// core.
type Schema struct {
	Attrs []SchemaAttr
}

// AttrByName returns the attribute with the given name, if present.
func (s Schema) AttrByName(name string) (SchemaAttr, bool) {
	for _, a := range s.Attrs {
		if a.Name == name {
			return a, true
		}
	}
	return SchemaAttr{}, false
}

// Equal reports whether two schemas declare the same attributes, ignoring
// declaration order, used by Open to enforce ErrSchemaDiffer.
func (s Schema) Equal(other Schema) bool {
	if len(s.Attrs) != len(other.Attrs) {
		return false
	}
	byName := make(map[string]SchemaAttr, len(s.Attrs))
	for _, a := range s.Attrs {
		byName[a.Name] = a
	}
	for _, a := range other.Attrs {
		existing, ok := byName[a.Name]
		if !ok || existing.ID != a.ID || existing.Ranked != a.Ranked {
			return false
		}
	}
	return true
}

// Clone returns a deep copy, so callers of Index.Schema can't mutate the
// index's stored schema through the returned value.
func (s Schema) Clone() Schema {
	out := Schema{Attrs: make([]SchemaAttr, len(s.Attrs))}
	copy(out.Attrs, s.Attrs)
	return out
}

// DocIndex is one posting: the document, the attribute, and the position
// within that attribute's tokenized text where a term occurred.
type DocIndex struct {
	DocumentID DocumentID
	Attribute  AttrID
	WordIndex  uint16
}

const docIndexSize = 8 + 2 + 2

func encodeDocIndex(d DocIndex) []byte {
	buf := make([]byte, docIndexSize)
	binary.BigEndian.PutUint64(buf[0:8], uint64(d.DocumentID))
	binary.BigEndian.PutUint16(buf[8:10], uint16(d.Attribute))
	binary.BigEndian.PutUint16(buf[10:12], d.WordIndex)
	return buf
}

func decodeDocIndex(b []byte) (DocIndex, error) {
	if len(b) != docIndexSize {
		return DocIndex{}, fmt.Errorf("index: malformed doc index entry of length %d", len(b))
	}
	return DocIndex{
		DocumentID: DocumentID(binary.BigEndian.Uint64(b[0:8])),
		Attribute:  AttrID(binary.BigEndian.Uint16(b[8:10])),
		WordIndex:  binary.BigEndian.Uint16(b[10:12]),
	}, nil
}

// EncodeDocIndexSet packs a sorted, de-duplicated set of DocIndex values
// into its on-disk representation. Byte order of the packed entries is
// the same as the entries' natural (DocumentID, Attribute, WordIndex)
// order, so the encoding itself never needs decoding just to merge ranges.
func EncodeDocIndexSet(entries []DocIndex) []byte {
	sorted := append([]DocIndex(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return docIndexLess(sorted[i], sorted[j]) })
	sorted = dedupDocIndex(sorted)

	buf := make([]byte, 0, len(sorted)*docIndexSize)
	for _, d := range sorted {
		buf = append(buf, encodeDocIndex(d)...)
	}
	return buf
}

// DecodeDocIndexSet unpacks the representation written by
// EncodeDocIndexSet.
func DecodeDocIndexSet(data []byte) ([]DocIndex, error) {
	if len(data)%docIndexSize != 0 {
		return nil, fmt.Errorf("index: doc index set has trailing %d bytes", len(data)%docIndexSize)
	}
	out := make([]DocIndex, 0, len(data)/docIndexSize)
	for off := 0; off < len(data); off += docIndexSize {
		d, err := decodeDocIndex(data[off : off+docIndexSize])
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func docIndexLess(a, b DocIndex) bool {
	if a.DocumentID != b.DocumentID {
		return a.DocumentID < b.DocumentID
	}
	if a.Attribute != b.Attribute {
		return a.Attribute < b.Attribute
	}
	return a.WordIndex < b.WordIndex
}

func dedupDocIndex(sorted []DocIndex) []DocIndex {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, d := range sorted[1:] {
		if d != out[len(out)-1] {
			out = append(out, d)
		}
	}
	return out
}

// RemoveDocument returns entries with every posting belonging to id
// removed, preserving order.
func RemoveDocument(entries []DocIndex, id DocumentID) []DocIndex {
	out := entries[:0:0]
	for _, d := range entries {
		if d.DocumentID != id {
			out = append(out, d)
		}
	}
	return out
}

// WordSet is a sorted, de-duplicated set of terms, the value type stored
// per-document in the doc-words tree and per-source-token in the
// synonyms tree's alternatives.
type WordSet [][]byte

// EncodeWordSet packs a WordSet as length-prefixed entries in sorted
// order.
func EncodeWordSet(words WordSet) []byte {
	sorted := append(WordSet(nil), words...)
	sort.Slice(sorted, func(i, j int) bool { return bytes.Compare(sorted[i], sorted[j]) < 0 })
	sorted = dedupWords(sorted)

	var buf bytes.Buffer
	var lenBuf [4]byte
	for _, w := range sorted {
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(w)))
		buf.Write(lenBuf[:])
		buf.Write(w)
	}
	return buf.Bytes()
}

// DecodeWordSet unpacks the representation written by EncodeWordSet.
func DecodeWordSet(data []byte) (WordSet, error) {
	var out WordSet
	for len(data) > 0 {
		if len(data) < 4 {
			return nil, fmt.Errorf("index: truncated word set")
		}
		n := binary.BigEndian.Uint32(data[:4])
		data = data[4:]
		if uint32(len(data)) < n {
			return nil, fmt.Errorf("index: truncated word set entry")
		}
		out = append(out, append([]byte(nil), data[:n]...))
		data = data[n:]
	}
	return out, nil
}

func dedupWords(sorted WordSet) WordSet {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, w := range sorted[1:] {
		if !bytes.Equal(w, out[len(out)-1]) {
			out = append(out, w)
		}
	}
	return out
}
