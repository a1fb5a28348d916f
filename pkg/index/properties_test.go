package index

import (
	"context"
	"testing"
	"time"

	"github.com/ferritedb/ferrite/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperty_EnqueueIDsAreMonotonic(t *testing.T) {
	store := newTestStore(t)
	schema := &Schema{Attrs: []SchemaAttr{{ID: 0, Name: "title"}}}
	ix, err := Open(store, "products", schema, testWorkerConfig())
	require.NoError(t, err)
	defer ix.Close()

	first, err := ix.NewSynonymsAddition().AddSynonym("a", "b").Submit()
	require.NoError(t, err)
	second, err := ix.NewSynonymsAddition().AddSynonym("c", "d").Submit()
	require.NoError(t, err)

	assert.Greater(t, second, first)
}

func TestProperty_AppliedUpdateLeavesNoIDInBothQueueAndResults(t *testing.T) {
	store := newTestStore(t)
	schema := &Schema{Attrs: []SchemaAttr{{ID: 0, Name: "title"}}}
	ix, err := Open(store, "products", schema, testWorkerConfig())
	require.NoError(t, err)
	defer ix.Close()

	id, err := ix.NewDocumentsAddition().AddDocument(DocumentDelta{ExternalID: "sku-1"}).Submit()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = ix.UpdateStatusBlocking(ctx, id)
	require.NoError(t, err)

	names := treeNames("products")
	err = store.View(names.all(), func(txn *kvstore.Txn) error {
		assert.Nil(t, txn.Get(names.Updates, idKey(id)), "applied id must not remain queued")
		assert.NotNil(t, txn.Get(names.UpdateResults, idKey(id)), "applied id must have a recorded result")
		return nil
	})
	require.NoError(t, err)
}

func TestProperty_PostingAndDocWordsDuality(t *testing.T) {
	store := newTestStore(t)
	names := treeNames("idx")
	rm := NewRankedMap()

	withTrees(t, store, names, func(tr trees) error {
		return applyDocumentsAddition(testSchema, tr, rm, &DocumentsAdditionPayload{
			Documents: []DocumentDelta{{
				ExternalID: "sku-1",
				Postings: map[string][]TermOccurrence{
					"title": {{Term: "red", WordIndex: 0}, {Term: "shoes", WordIndex: 1}},
				},
			}},
		})
	})

	docID := HashDocumentID("sku-1")
	err := store.View(names.all(), func(txn *kvstore.Txn) error {
		tr := newTrees(txn, names)

		docWords, err := tr.docsWords.Get(docID)
		require.NoError(t, err)

		for _, term := range docWords {
			postings, err := tr.words.Get(term)
			require.NoError(t, err)
			found := false
			for _, p := range postings {
				if p.DocumentID == docID {
					found = true
				}
			}
			assert.True(t, found, "term %q in doc-words must reference doc %d in postings", term, docID)
		}

		redPostings, err := tr.words.Get([]byte("red"))
		require.NoError(t, err)
		assert.Contains(t, stringsOf(docWords), "red", "posting for a term doc has must appear in doc-words")
		assert.Len(t, redPostings, 1)
		return nil
	})
	require.NoError(t, err)
}

// TestScenario_DE covers spec scenarios D (earlier updates finish with
// lower ids before a later one) and E (a registered callback observes
// every update in enqueue order, matching update_status).
func TestScenario_DE(t *testing.T) {
	store := newTestStore(t)
	schema := &Schema{Attrs: []SchemaAttr{{ID: 0, Name: "title"}}}
	ix, err := Open(store, "products", schema, testWorkerConfig())
	require.NoError(t, err)
	defer ix.Close()

	var observed []UpdateStatus
	done := make(chan struct{}, 3)
	ix.OnUpdate(func(s UpdateStatus) {
		observed = append(observed, s)
		done <- struct{}{}
	})

	var ids []uint64
	for i := 0; i < 3; i++ {
		id, err := ix.NewDocumentsAddition().AddDocument(DocumentDelta{
			ExternalID: string(rune('a' + i)),
		}).Submit()
		require.NoError(t, err)
		ids = append(ids, id)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = ix.UpdateStatusBlocking(ctx, ids[2])
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for callback")
		}
	}

	require.Len(t, observed, 3)
	for i, s := range observed {
		assert.Equal(t, ids[i], s.ID, "callback must observe updates in enqueue order")
	}

	for i := 0; i < 2; i++ {
		status, err := ix.UpdateStatus(ids[i])
		require.NoError(t, err)
		require.NotNil(t, status)
		assert.False(t, status.Result.Failed())
		assert.Equal(t, observed[i], *status, "callback status must match update_status")
		assert.Less(t, ids[i], ids[2])
	}

	names := treeNames("products")
	err = store.View(names.all(), func(txn *kvstore.Txn) error {
		depth := 0
		require.NoError(t, txn.ForEach(names.Updates, func([]byte, []byte) error { depth++; return nil }))
		assert.Equal(t, 0, depth, "the queue must be empty once every update finished")
		return nil
	})
	require.NoError(t, err)
}
