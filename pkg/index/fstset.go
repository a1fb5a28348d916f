package index

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/blevesearch/vellum"
)

// FSTSet is an ordered set of terms backed by a finite-state-transducer,
// used for the Words and Synonyms dictionaries. A synonym source token's
// set of alternatives is not an FSTSet: SynonymsIndex stores and returns
// it as a WordSet. Membership and ordered iteration
// are both fast regardless of set size; mutation always rebuilds the
// whole automaton, which is fine because the Update Worker is the only
// writer and already batches all term changes from one update into one
// rebuild.
type FSTSet struct {
	fst *vellum.FST
	raw []byte
}

// BuildFSTSet constructs the automaton for terms, which need not be
// sorted or de-duplicated beforehand.
func BuildFSTSet(terms [][]byte) (*FSTSet, error) {
	sorted := append([][]byte(nil), terms...)
	sort.Slice(sorted, func(i, j int) bool { return bytes.Compare(sorted[i], sorted[j]) < 0 })
	sorted = dedupTerms(sorted)

	var buf bytes.Buffer
	builder, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, fmt.Errorf("index: create fst builder: %w", err)
	}
	for i, t := range sorted {
		if err := builder.Insert(t, uint64(i)); err != nil {
			return nil, fmt.Errorf("index: insert term into fst: %w", err)
		}
	}
	if err := builder.Close(); err != nil {
		return nil, fmt.Errorf("index: close fst builder: %w", err)
	}
	return LoadFSTSet(buf.Bytes())
}

// LoadFSTSet deserializes the bytes written by FSTSet.Bytes.
func LoadFSTSet(data []byte) (*FSTSet, error) {
	if len(data) == 0 {
		return BuildFSTSet(nil)
	}
	fst, err := vellum.Load(data)
	if err != nil {
		return nil, fmt.Errorf("index: load fst: %w", err)
	}
	return &FSTSet{fst: fst, raw: data}, nil
}

// Bytes returns the serialized automaton, suitable for storing in the
// MainIndex tree.
func (s *FSTSet) Bytes() []byte {
	return s.raw
}

// Contains reports whether term is a member of the set.
func (s *FSTSet) Contains(term []byte) (bool, error) {
	_, found, err := s.fst.Get(term)
	if err != nil {
		return false, fmt.Errorf("index: fst lookup: %w", err)
	}
	return found, nil
}

// Len reports the number of terms in the set.
func (s *FSTSet) Len() int {
	n := 0
	_ = s.Each(func([]byte) error { n++; return nil })
	return n
}

// Each calls fn with every term in the set in ascending order, stopping
// at the first error.
func (s *FSTSet) Each(fn func(term []byte) error) error {
	it, err := s.fst.Iterator(nil, nil)
	if errors.Is(err, vellum.ErrIteratorDone) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("index: fst iterator: %w", err)
	}
	for {
		term, _ := it.Current()
		if err := fn(term); err != nil {
			return err
		}
		if err := it.Next(); err != nil {
			if errors.Is(err, vellum.ErrIteratorDone) {
				return nil
			}
			return fmt.Errorf("index: fst iterator advance: %w", err)
		}
	}
}

func dedupTerms(sorted [][]byte) [][]byte {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, t := range sorted[1:] {
		if !bytes.Equal(t, out[len(out)-1]) {
			out = append(out, t)
		}
	}
	return out
}
