package index

import (
	"fmt"

	"github.com/ferritedb/ferrite/pkg/kvstore"
)

// trees bundles the tree wrappers an applier needs, all bound to the
// same in-flight transaction.
type trees struct {
	main      MainIndex
	words     WordsIndex
	docsWords DocsWordsIndex
	documents DocumentsIndex
	synonyms  SynonymsIndex
	custom    CustomSettingsIndex
}

func newTrees(txn *kvstore.Txn, names treeSet) trees {
	return trees{
		main:      newMainIndex(txn, names.Main),
		words:     newWordsIndex(txn, names.Words),
		docsWords: newDocsWordsIndex(txn, names.DocsWords),
		documents: newDocumentsIndex(txn, names.Documents),
		synonyms:  newSynonymsIndex(txn, names.Synonyms),
		custom:    newCustomSettingsIndex(txn, names.Custom),
	}
}

// applyDocumentsAddition upserts each document: any data already stored
// under the same internal DocumentID is removed first, so re-adding a
// document with the same external identifier behaves as a full
// replacement rather than a merge.
func applyDocumentsAddition(schema Schema, t trees, rm RankedMap, payload *DocumentsAdditionPayload) error {
	for _, d := range payload.Documents {
		docID := HashDocumentID(d.ExternalID)
		if err := removeDocumentData(t, docID, rm); err != nil {
			return err
		}

		for name, value := range d.Fields {
			attr, ok := schema.AttrByName(name)
			if !ok {
				return fmt.Errorf("index: document %q references unknown attribute %q", d.ExternalID, name)
			}
			if err := t.documents.PutField(docID, attr.ID, value); err != nil {
				return fmt.Errorf("index: store field %q: %w", name, err)
			}
			if attr.Ranked {
				if score, ok := d.Ranked[name]; ok {
					rm.Set(docID, attr.ID, score)
				}
			}
		}

		var docWords WordSet
		for name, occurrences := range d.Postings {
			attr, ok := schema.AttrByName(name)
			if !ok {
				return fmt.Errorf("index: document %q references unknown attribute %q", d.ExternalID, name)
			}
			for _, occ := range occurrences {
				term := []byte(occ.Term)
				postings, err := t.words.Get(term)
				if err != nil {
					return fmt.Errorf("index: read postings for %q: %w", occ.Term, err)
				}
				postings = append(postings, DocIndex{DocumentID: docID, Attribute: attr.ID, WordIndex: occ.WordIndex})
				if err := t.words.Put(term, postings); err != nil {
					return fmt.Errorf("index: write postings for %q: %w", occ.Term, err)
				}
				docWords = append(docWords, term)
			}
		}
		if len(docWords) > 0 {
			if err := t.docsWords.Put(docID, docWords); err != nil {
				return fmt.Errorf("index: store doc-words for %q: %w", d.ExternalID, err)
			}
		}
	}
	return nil
}

// applyDocumentsDeletion removes every trace of each named document.
func applyDocumentsDeletion(t trees, rm RankedMap, payload *DocumentsDeletionPayload) error {
	for _, externalID := range payload.ExternalIDs {
		docID := HashDocumentID(externalID)
		if err := removeDocumentData(t, docID, rm); err != nil {
			return err
		}
	}
	return nil
}

// removeDocumentData deletes doc's postings (driven off its doc-words
// reverse index, so no full WordsIndex scan is needed), its stored
// fields, its doc-words entry, and its ranked scores.
func removeDocumentData(t trees, doc DocumentID, rm RankedMap) error {
	existing, err := t.docsWords.Get(doc)
	if err != nil {
		return fmt.Errorf("index: read doc-words for removal: %w", err)
	}
	for _, term := range existing {
		postings, err := t.words.Get(term)
		if err != nil {
			return fmt.Errorf("index: read postings for removal: %w", err)
		}
		postings = RemoveDocument(postings, doc)
		if err := t.words.Put(term, postings); err != nil {
			return fmt.Errorf("index: write postings for removal: %w", err)
		}
	}
	if err := t.docsWords.Delete(doc); err != nil {
		return fmt.Errorf("index: delete doc-words: %w", err)
	}

	var fields []AttrID
	if err := t.documents.EachField(doc, func(attr AttrID, _ []byte) error {
		fields = append(fields, attr)
		return nil
	}); err != nil {
		return fmt.Errorf("index: enumerate fields for removal: %w", err)
	}
	for _, attr := range fields {
		if err := t.documents.DeleteField(doc, attr); err != nil {
			return fmt.Errorf("index: delete field: %w", err)
		}
	}

	rm.RemoveDocument(doc)
	return nil
}

// applySynonymsAddition merges each entry's alternatives into whatever
// is already stored for that word.
func applySynonymsAddition(t trees, payload *SynonymsAdditionPayload) error {
	for _, entry := range payload.Synonyms {
		word := []byte(entry.Word)
		existing, err := t.synonyms.Alternatives(word)
		if err != nil {
			return fmt.Errorf("index: read synonyms for %q: %w", entry.Word, err)
		}
		merged := existing
		for _, alt := range entry.Alternatives {
			merged = append(merged, []byte(alt))
		}
		if err := t.synonyms.PutAlternatives(word, merged); err != nil {
			return fmt.Errorf("index: write synonyms for %q: %w", entry.Word, err)
		}
	}
	return nil
}

// applySynonymsDeletion removes whole synonym entries named in Words,
// and specific alternatives named in Alternatives.
func applySynonymsDeletion(t trees, payload *SynonymsDeletionPayload) error {
	for _, word := range payload.Words {
		if err := t.synonyms.Delete([]byte(word)); err != nil {
			return fmt.Errorf("index: delete synonyms for %q: %w", word, err)
		}
	}
	for word, toRemove := range payload.Alternatives {
		wordBytes := []byte(word)
		existing, err := t.synonyms.Alternatives(wordBytes)
		if err != nil {
			return fmt.Errorf("index: read synonyms for %q: %w", word, err)
		}
		remove := make(map[string]bool, len(toRemove))
		for _, alt := range toRemove {
			remove[alt] = true
		}
		var kept WordSet
		for _, alt := range existing {
			if !remove[string(alt)] {
				kept = append(kept, alt)
			}
		}
		if err := t.synonyms.PutAlternatives(wordBytes, kept); err != nil {
			return fmt.Errorf("index: write synonyms for %q: %w", word, err)
		}
	}
	return nil
}

// rebuildWordsDictionary recomputes the Words FST from the current
// WordsIndex contents. Run after any update that can change the set of
// indexed terms.
func rebuildWordsDictionary(t trees) (*FSTSet, error) {
	var terms [][]byte
	if err := t.words.Each(func(term []byte, postings []DocIndex) error {
		if len(postings) > 0 {
			terms = append(terms, append([]byte(nil), term...))
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("index: enumerate words: %w", err)
	}
	return BuildFSTSet(terms)
}

// rebuildSynonymsDictionary recomputes the Synonyms FST from the current
// SynonymsIndex contents.
func rebuildSynonymsDictionary(t trees) (*FSTSet, error) {
	var words [][]byte
	if err := t.synonyms.Each(func(word []byte, _ WordSet) error {
		words = append(words, append([]byte(nil), word...))
		return nil
	}); err != nil {
		return nil, fmt.Errorf("index: enumerate synonyms: %w", err)
	}
	return BuildFSTSet(words)
}
