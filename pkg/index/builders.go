package index

// DocumentsAdditionBuilder stages a batch of documents before submitting
// them as a single queued update.
type DocumentsAdditionBuilder struct {
	ix   *Index
	docs []DocumentDelta
}

// NewDocumentsAddition starts staging a documents-addition update.
func (ix *Index) NewDocumentsAddition() *DocumentsAdditionBuilder {
	return &DocumentsAdditionBuilder{ix: ix}
}

// AddDocument stages one document's delta.
func (b *DocumentsAdditionBuilder) AddDocument(d DocumentDelta) *DocumentsAdditionBuilder {
	b.docs = append(b.docs, d)
	return b
}

// Submit enqueues the staged batch as one update and returns its ID.
func (b *DocumentsAdditionBuilder) Submit() (uint64, error) {
	update := &Update{
		Kind:                     DocumentsAddition,
		DocumentsAdditionPayload: &DocumentsAdditionPayload{Documents: b.docs},
	}
	return enqueue(b.ix.store, b.ix.names, update)
}

// DocumentsDeletionBuilder stages a batch of document identifiers to
// remove before submitting them as a single queued update.
type DocumentsDeletionBuilder struct {
	ix          *Index
	externalIDs []string
}

// NewDocumentsDeletion starts staging a documents-deletion update.
func (ix *Index) NewDocumentsDeletion() *DocumentsDeletionBuilder {
	return &DocumentsDeletionBuilder{ix: ix}
}

// AddDocument stages one external identifier for removal.
func (b *DocumentsDeletionBuilder) AddDocument(externalID string) *DocumentsDeletionBuilder {
	b.externalIDs = append(b.externalIDs, externalID)
	return b
}

// Submit enqueues the staged batch as one update and returns its ID.
func (b *DocumentsDeletionBuilder) Submit() (uint64, error) {
	update := &Update{
		Kind:                     DocumentsDeletion,
		DocumentsDeletionPayload: &DocumentsDeletionPayload{ExternalIDs: b.externalIDs},
	}
	return enqueue(b.ix.store, b.ix.names, update)
}

// SynonymsAdditionBuilder stages a batch of synonym entries before
// submitting them as a single queued update.
type SynonymsAdditionBuilder struct {
	ix      *Index
	entries []SynonymEntry
}

// NewSynonymsAddition starts staging a synonyms-addition update.
func (ix *Index) NewSynonymsAddition() *SynonymsAdditionBuilder {
	return &SynonymsAdditionBuilder{ix: ix}
}

// AddSynonym stages one word's alternatives.
func (b *SynonymsAdditionBuilder) AddSynonym(word string, alternatives ...string) *SynonymsAdditionBuilder {
	b.entries = append(b.entries, SynonymEntry{Word: word, Alternatives: alternatives})
	return b
}

// Submit enqueues the staged batch as one update and returns its ID.
func (b *SynonymsAdditionBuilder) Submit() (uint64, error) {
	update := &Update{
		Kind:                    SynonymsAddition,
		SynonymsAdditionPayload: &SynonymsAdditionPayload{Synonyms: b.entries},
	}
	return enqueue(b.ix.store, b.ix.names, update)
}

// SynonymsDeletionBuilder stages synonym removals before submitting
// them as a single queued update.
type SynonymsDeletionBuilder struct {
	ix           *Index
	words        []string
	alternatives map[string][]string
}

// NewSynonymsDeletion starts staging a synonyms-deletion update.
func (ix *Index) NewSynonymsDeletion() *SynonymsDeletionBuilder {
	return &SynonymsDeletionBuilder{ix: ix, alternatives: make(map[string][]string)}
}

// RemoveWord stages the removal of a word's entire synonym entry.
func (b *SynonymsDeletionBuilder) RemoveWord(word string) *SynonymsDeletionBuilder {
	b.words = append(b.words, word)
	return b
}

// RemoveAlternatives stages the removal of specific alternatives from a
// word's synonym entry, leaving the rest in place.
func (b *SynonymsDeletionBuilder) RemoveAlternatives(word string, alternatives ...string) *SynonymsDeletionBuilder {
	b.alternatives[word] = append(b.alternatives[word], alternatives...)
	return b
}

// Submit enqueues the staged batch as one update and returns its ID.
func (b *SynonymsDeletionBuilder) Submit() (uint64, error) {
	update := &Update{
		Kind: SynonymsDeletion,
		SynonymsDeletionPayload: &SynonymsDeletionPayload{
			Words:        b.words,
			Alternatives: b.alternatives,
		},
	}
	return enqueue(b.ix.store, b.ix.names, update)
}
