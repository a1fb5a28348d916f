package index

import "sort"

type rankedKey struct {
	doc  DocumentID
	attr AttrID
}

// RankedMap holds the ranking score of each (document, attribute) pair
// that has one, used by the external query engine's criteria; this core
// only stores and maintains it.
type RankedMap struct {
	values map[rankedKey]float64
}

// NewRankedMap returns an empty RankedMap.
func NewRankedMap() RankedMap {
	return RankedMap{values: make(map[rankedKey]float64)}
}

// Get returns the stored score and whether one was present.
func (m RankedMap) Get(doc DocumentID, attr AttrID) (float64, bool) {
	v, ok := m.values[rankedKey{doc, attr}]
	return v, ok
}

// Set stores a score for (doc, attr), replacing any existing one.
func (m RankedMap) Set(doc DocumentID, attr AttrID, score float64) {
	m.values[rankedKey{doc, attr}] = score
}

// RemoveDocument drops every score belonging to doc.
func (m RankedMap) RemoveDocument(doc DocumentID) {
	for k := range m.values {
		if k.doc == doc {
			delete(m.values, k)
		}
	}
}

// Len reports the number of distinct (document, attribute) scores
// recorded, not a distinct-attribute or distinct-document count.
func (m RankedMap) Len() int {
	return len(m.values)
}

// Clone returns a deep copy, used when a new Cache snapshot is published.
func (m RankedMap) Clone() RankedMap {
	out := NewRankedMap()
	for k, v := range m.values {
		out.values[k] = v
	}
	return out
}

type rankedEntry struct {
	Doc   DocumentID
	Attr  AttrID
	Score float64
}

func (m RankedMap) entries() []rankedEntry {
	out := make([]rankedEntry, 0, len(m.values))
	for k, v := range m.values {
		out = append(out, rankedEntry{Doc: k.doc, Attr: k.attr, Score: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Doc != out[j].Doc {
			return out[i].Doc < out[j].Doc
		}
		return out[i].Attr < out[j].Attr
	})
	return out
}

func rankedMapFromEntries(entries []rankedEntry) RankedMap {
	m := NewRankedMap()
	for _, e := range entries {
		m.Set(e.Doc, e.Attr, e.Score)
	}
	return m
}
