package index

import (
	"testing"

	"github.com/ferritedb/ferrite/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeNames_AllCoversEveryTree(t *testing.T) {
	names := treeNames("products")
	all := names.all()
	assert.Len(t, all, 8)
	assert.Contains(t, all, "products")
	assert.Contains(t, all, "products-words")
	assert.Contains(t, all, "products-docs-words")
	assert.Contains(t, all, "products-documents")
	assert.Contains(t, all, "products-synonyms")
	assert.Contains(t, all, "products-custom")
	assert.Contains(t, all, "products-updates")
	assert.Contains(t, all, "products-updates-results")
}

func TestMainIndex_SchemaWordsSynonymsRankedMap(t *testing.T) {
	store := newTestStore(t)
	names := treeNames("idx")

	schema := Schema{Attrs: []SchemaAttr{{ID: 0, Name: "title"}}}
	words, err := BuildFSTSet([][]byte{[]byte("red")})
	require.NoError(t, err)
	syns, err := BuildFSTSet([][]byte{[]byte("shoe")})
	require.NoError(t, err)
	rm := NewRankedMap()
	rm.Set(1, 0, 0.5)

	err = store.Update(names.all(), func(txn *kvstore.Txn) error {
		m := newMainIndex(txn, names.Main)
		require.NoError(t, m.PutSchema(schema))
		require.NoError(t, m.PutWords(words))
		require.NoError(t, m.PutSynonyms(syns))
		require.NoError(t, m.PutRankedMap(rm))
		return nil
	})
	require.NoError(t, err)

	err = store.View(names.all(), func(txn *kvstore.Txn) error {
		m := newMainIndex(txn, names.Main)

		got, ok, err := m.Schema()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, schema.Equal(got))

		gotWords, err := m.Words()
		require.NoError(t, err)
		assert.Equal(t, 1, gotWords.Len())

		gotSyns, err := m.Synonyms()
		require.NoError(t, err)
		assert.Equal(t, 1, gotSyns.Len())

		gotRM, err := m.RankedMap()
		require.NoError(t, err)
		score, ok := gotRM.Get(1, 0)
		assert.True(t, ok)
		assert.Equal(t, 0.5, score)
		return nil
	})
	require.NoError(t, err)
}

func TestMainIndex_SchemaAbsentReturnsFalse(t *testing.T) {
	store := newTestStore(t)
	names := treeNames("idx")
	require.NoError(t, store.OpenTree(names.Main))

	err := store.View(names.all(), func(txn *kvstore.Txn) error {
		_, ok, err := newMainIndex(txn, names.Main).Schema()
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)
}

func TestWordsIndex_PutEmptyDeletes(t *testing.T) {
	store := newTestStore(t)
	names := treeNames("idx")

	err := store.Update(names.all(), func(txn *kvstore.Txn) error {
		w := newWordsIndex(txn, names.Words)
		require.NoError(t, w.Put([]byte("red"), []DocIndex{{DocumentID: 1, Attribute: 0, WordIndex: 0}}))

		got, err := w.Get([]byte("red"))
		require.NoError(t, err)
		assert.Len(t, got, 1)

		require.NoError(t, w.Put([]byte("red"), nil))
		got, err = w.Get([]byte("red"))
		require.NoError(t, err)
		assert.Nil(t, got)
		return nil
	})
	require.NoError(t, err)
}

func TestWordsIndex_Each(t *testing.T) {
	store := newTestStore(t)
	names := treeNames("idx")

	err := store.Update(names.all(), func(txn *kvstore.Txn) error {
		w := newWordsIndex(txn, names.Words)
		require.NoError(t, w.Put([]byte("red"), []DocIndex{{DocumentID: 1, Attribute: 0, WordIndex: 0}}))
		require.NoError(t, w.Put([]byte("shoes"), []DocIndex{{DocumentID: 1, Attribute: 0, WordIndex: 1}}))
		return nil
	})
	require.NoError(t, err)

	var terms []string
	err = store.View(names.all(), func(txn *kvstore.Txn) error {
		w := newWordsIndex(txn, names.Words)
		return w.Each(func(term []byte, postings []DocIndex) error {
			terms = append(terms, string(term))
			return nil
		})
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"red", "shoes"}, terms)
}

func TestDocsWordsIndex_GetPutDelete(t *testing.T) {
	store := newTestStore(t)
	names := treeNames("idx")

	err := store.Update(names.all(), func(txn *kvstore.Txn) error {
		d := newDocsWordsIndex(txn, names.DocsWords)
		require.NoError(t, d.Put(1, WordSet{[]byte("red"), []byte("shoes")}))

		got, err := d.Get(1)
		require.NoError(t, err)
		assert.Equal(t, WordSet{[]byte("red"), []byte("shoes")}, got)

		require.NoError(t, d.Delete(1))
		got, err = d.Get(1)
		require.NoError(t, err)
		assert.Nil(t, got)
		return nil
	})
	require.NoError(t, err)
}

func TestDocumentsIndex_EachFieldAndCountDistinctDocuments(t *testing.T) {
	store := newTestStore(t)
	names := treeNames("idx")

	err := store.Update(names.all(), func(txn *kvstore.Txn) error {
		d := newDocumentsIndex(txn, names.Documents)
		require.NoError(t, d.PutField(1, 0, []byte("Red Shoes")))
		require.NoError(t, d.PutField(1, 1, []byte("shoes")))
		require.NoError(t, d.PutField(2, 0, []byte("Blue Hat")))
		return nil
	})
	require.NoError(t, err)

	err = store.View(names.all(), func(txn *kvstore.Txn) error {
		d := newDocumentsIndex(txn, names.Documents)

		var fields []AttrID
		require.NoError(t, d.EachField(1, func(attr AttrID, value []byte) error {
			fields = append(fields, attr)
			return nil
		}))
		assert.Equal(t, []AttrID{0, 1}, fields)

		count, err := d.CountDistinctDocuments()
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		return nil
	})
	require.NoError(t, err)
}

func TestSynonymsIndex_AlternativesAndEach(t *testing.T) {
	store := newTestStore(t)
	names := treeNames("idx")

	err := store.Update(names.all(), func(txn *kvstore.Txn) error {
		s := newSynonymsIndex(txn, names.Synonyms)
		require.NoError(t, s.PutAlternatives([]byte("shoe"), WordSet{[]byte("shoes")}))
		return nil
	})
	require.NoError(t, err)

	err = store.View(names.all(), func(txn *kvstore.Txn) error {
		s := newSynonymsIndex(txn, names.Synonyms)
		alts, err := s.Alternatives([]byte("shoe"))
		require.NoError(t, err)
		assert.Equal(t, WordSet{[]byte("shoes")}, alts)

		var words []string
		require.NoError(t, s.Each(func(word []byte, alternatives WordSet) error {
			words = append(words, string(word))
			return nil
		}))
		assert.Equal(t, []string{"shoe"}, words)
		return nil
	})
	require.NoError(t, err)
}

func TestCustomSettingsIndex_GetPutDelete(t *testing.T) {
	store := newTestStore(t)
	names := treeNames("idx")

	err := store.Update(names.all(), func(txn *kvstore.Txn) error {
		c := newCustomSettingsIndex(txn, names.Custom)
		require.NoError(t, c.Put("rank-boost", []byte("2.0")))
		assert.Equal(t, []byte("2.0"), c.Get("rank-boost"))

		require.NoError(t, c.Delete("rank-boost"))
		assert.Nil(t, c.Get("rank-boost"))
		return nil
	})
	require.NoError(t, err)
}
