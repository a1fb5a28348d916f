package index

import (
	"testing"

	"github.com/ferritedb/ferrite/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = Schema{Attrs: []SchemaAttr{
	{ID: 0, Name: "title", Ranked: true},
	{ID: 1, Name: "category"},
}}

func withTrees(t *testing.T, store *kvstore.Store, names treeSet, fn func(tr trees) error) {
	t.Helper()
	err := store.Update(names.all(), func(txn *kvstore.Txn) error {
		return fn(newTrees(txn, names))
	})
	require.NoError(t, err)
}

func TestApplyDocumentsAddition_IndexesFieldsRankAndPostings(t *testing.T) {
	store := newTestStore(t)
	names := treeNames("idx")
	rm := NewRankedMap()

	withTrees(t, store, names, func(tr trees) error {
		payload := &DocumentsAdditionPayload{Documents: []DocumentDelta{{
			ExternalID: "sku-1",
			Fields:     map[string][]byte{"title": []byte("Red Shoes"), "category": []byte("shoes")},
			Ranked:     map[string]float64{"title": 0.8},
			Postings: map[string][]TermOccurrence{
				"title": {{Term: "red", WordIndex: 0}, {Term: "shoes", WordIndex: 1}},
			},
		}}}
		return applyDocumentsAddition(testSchema, tr, rm, payload)
	})

	docID := HashDocumentID("sku-1")
	score, ok := rm.Get(docID, 0)
	assert.True(t, ok)
	assert.Equal(t, 0.8, score)

	err := store.View(names.all(), func(txn *kvstore.Txn) error {
		tr := newTrees(txn, names)

		title := tr.documents.GetField(docID, 0)
		assert.Equal(t, []byte("Red Shoes"), title)

		postings, err := tr.words.Get([]byte("red"))
		require.NoError(t, err)
		assert.Equal(t, []DocIndex{{DocumentID: docID, Attribute: 0, WordIndex: 0}}, postings)

		docWords, err := tr.docsWords.Get(docID)
		require.NoError(t, err)
		assert.ElementsMatch(t, WordSet{[]byte("red"), []byte("shoes")}, docWords)
		return nil
	})
	require.NoError(t, err)
}

func TestApplyDocumentsAddition_ReAddingUpsertsReplacingOldData(t *testing.T) {
	store := newTestStore(t)
	names := treeNames("idx")
	rm := NewRankedMap()
	docID := HashDocumentID("sku-1")

	withTrees(t, store, names, func(tr trees) error {
		return applyDocumentsAddition(testSchema, tr, rm, &DocumentsAdditionPayload{
			Documents: []DocumentDelta{{
				ExternalID: "sku-1",
				Fields:     map[string][]byte{"title": []byte("Red Shoes")},
				Postings:   map[string][]TermOccurrence{"title": {{Term: "red", WordIndex: 0}}},
			}},
		})
	})

	withTrees(t, store, names, func(tr trees) error {
		return applyDocumentsAddition(testSchema, tr, rm, &DocumentsAdditionPayload{
			Documents: []DocumentDelta{{
				ExternalID: "sku-1",
				Fields:     map[string][]byte{"title": []byte("Blue Shoes")},
				Postings:   map[string][]TermOccurrence{"title": {{Term: "blue", WordIndex: 0}}},
			}},
		})
	})

	err := store.View(names.all(), func(txn *kvstore.Txn) error {
		tr := newTrees(txn, names)

		title := tr.documents.GetField(docID, 0)
		assert.Equal(t, []byte("Blue Shoes"), title)

		oldPostings, err := tr.words.Get([]byte("red"))
		require.NoError(t, err)
		assert.Nil(t, oldPostings, "stale posting for the replaced term must be gone")

		newPostings, err := tr.words.Get([]byte("blue"))
		require.NoError(t, err)
		assert.Len(t, newPostings, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestApplyDocumentsDeletion_RemovesAllTraces(t *testing.T) {
	store := newTestStore(t)
	names := treeNames("idx")
	rm := NewRankedMap()
	docID := HashDocumentID("sku-1")

	withTrees(t, store, names, func(tr trees) error {
		return applyDocumentsAddition(testSchema, tr, rm, &DocumentsAdditionPayload{
			Documents: []DocumentDelta{{
				ExternalID: "sku-1",
				Fields:     map[string][]byte{"title": []byte("Red Shoes")},
				Ranked:     map[string]float64{"title": 1.0},
				Postings:   map[string][]TermOccurrence{"title": {{Term: "red", WordIndex: 0}}},
			}},
		})
	})
	_, ok := rm.Get(docID, 0)
	require.True(t, ok)

	withTrees(t, store, names, func(tr trees) error {
		return applyDocumentsDeletion(tr, rm, &DocumentsDeletionPayload{ExternalIDs: []string{"sku-1"}})
	})

	_, ok = rm.Get(docID, 0)
	assert.False(t, ok, "ranked score must be removed")

	err := store.View(names.all(), func(txn *kvstore.Txn) error {
		tr := newTrees(txn, names)

		var fields []AttrID
		require.NoError(t, tr.documents.EachField(docID, func(attr AttrID, _ []byte) error {
			fields = append(fields, attr)
			return nil
		}))
		assert.Empty(t, fields)

		postings, err := tr.words.Get([]byte("red"))
		require.NoError(t, err)
		assert.Nil(t, postings)

		docWords, err := tr.docsWords.Get(docID)
		require.NoError(t, err)
		assert.Nil(t, docWords)
		return nil
	})
	require.NoError(t, err)
}

func TestApplySynonymsAddition_MergesIntoExisting(t *testing.T) {
	store := newTestStore(t)
	names := treeNames("idx")

	withTrees(t, store, names, func(tr trees) error {
		return applySynonymsAddition(tr, &SynonymsAdditionPayload{
			Synonyms: []SynonymEntry{{Word: "shoe", Alternatives: []string{"shoes"}}},
		})
	})
	withTrees(t, store, names, func(tr trees) error {
		return applySynonymsAddition(tr, &SynonymsAdditionPayload{
			Synonyms: []SynonymEntry{{Word: "shoe", Alternatives: []string{"footwear"}}},
		})
	})

	err := store.View(names.all(), func(txn *kvstore.Txn) error {
		alts, err := newSynonymsIndex(txn, names.Synonyms).Alternatives([]byte("shoe"))
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"shoes", "footwear"}, stringsOf(alts))
		return nil
	})
	require.NoError(t, err)
}

func TestApplySynonymsDeletion_WholeWordAndPartialAlternatives(t *testing.T) {
	store := newTestStore(t)
	names := treeNames("idx")

	withTrees(t, store, names, func(tr trees) error {
		return applySynonymsAddition(tr, &SynonymsAdditionPayload{
			Synonyms: []SynonymEntry{
				{Word: "shoe", Alternatives: []string{"shoes", "footwear"}},
				{Word: "boot", Alternatives: []string{"boots"}},
			},
		})
	})

	withTrees(t, store, names, func(tr trees) error {
		return applySynonymsDeletion(tr, &SynonymsDeletionPayload{
			Words:        []string{"boot"},
			Alternatives: map[string][]string{"shoe": {"footwear"}},
		})
	})

	err := store.View(names.all(), func(txn *kvstore.Txn) error {
		s := newSynonymsIndex(txn, names.Synonyms)

		bootAlts, err := s.Alternatives([]byte("boot"))
		require.NoError(t, err)
		assert.Nil(t, bootAlts, "whole entry named in Words must be gone")

		shoeAlts, err := s.Alternatives([]byte("shoe"))
		require.NoError(t, err)
		assert.Equal(t, []string{"shoes"}, stringsOf(shoeAlts))
		return nil
	})
	require.NoError(t, err)
}

func TestRebuildWordsDictionary_SkipsTermsWithNoPostings(t *testing.T) {
	store := newTestStore(t)
	names := treeNames("idx")
	rm := NewRankedMap()

	withTrees(t, store, names, func(tr trees) error {
		return applyDocumentsAddition(testSchema, tr, rm, &DocumentsAdditionPayload{
			Documents: []DocumentDelta{{
				ExternalID: "sku-1",
				Postings:   map[string][]TermOccurrence{"title": {{Term: "red", WordIndex: 0}}},
			}},
		})
	})

	var dict *FSTSet
	err := store.View(names.all(), func(txn *kvstore.Txn) error {
		tr := newTrees(txn, names)
		var err error
		dict, err = rebuildWordsDictionary(tr)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, dict.Len())

	withTrees(t, store, names, func(tr trees) error {
		return applyDocumentsDeletion(tr, rm, &DocumentsDeletionPayload{ExternalIDs: []string{"sku-1"}})
	})

	err = store.View(names.all(), func(txn *kvstore.Txn) error {
		tr := newTrees(txn, names)
		var err error
		dict, err = rebuildWordsDictionary(tr)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 0, dict.Len(), "a term with an emptied posting list must not remain in the dictionary")
}

func stringsOf(ws WordSet) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = string(w)
	}
	return out
}
