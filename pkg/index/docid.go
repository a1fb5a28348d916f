package index

import "github.com/cespare/xxhash/v2"

// HashDocumentID derives the internal DocumentID for a document's
// caller-declared external identifier. Hashing rather than
// sequence-assigning the ID means re-adding a document with the same
// external identifier always maps to the same internal one, which is
// what makes DocumentsAddition idempotent per identifier.
func HashDocumentID(externalID string) DocumentID {
	return DocumentID(xxhash.Sum64String(externalID))
}
