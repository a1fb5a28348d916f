package index

import "time"

// UpdateType names which of the four update variants an Update carries.
type UpdateType string

const (
	DocumentsAddition UpdateType = "documents_addition"
	DocumentsDeletion UpdateType = "documents_deletion"
	SynonymsAddition  UpdateType = "synonyms_addition"
	SynonymsDeletion  UpdateType = "synonyms_deletion"
)

// TermOccurrence is one indexed term's position within an attribute's
// text, produced by a tokenizer upstream of this core.
type TermOccurrence struct {
	Term      string
	WordIndex uint16
}

// DocumentDelta is one document's worth of field data in a
// DocumentsAddition. Fields holds the already-encoded bytes for each
// named attribute, stored verbatim for later reconstruction. Postings
// holds the already-tokenized terms for whichever attributes are
// searchable, keyed by attribute name; this core indexes exactly what it
// is given here and never tokenizes text itself. Ranked scores for
// attributes the schema marks Ranked are carried separately so the
// applier never has to decode a field just to find its score.
type DocumentDelta struct {
	ExternalID string
	Fields     map[string][]byte
	Postings   map[string][]TermOccurrence
	Ranked     map[string]float64
}

// SynonymEntry maps one source token to the tokens it should also match.
type SynonymEntry struct {
	Word         string
	Alternatives []string
}

// Update is the tagged union persisted in the Update Queue. Exactly one
// of the four payload fields is non-nil, selected by Kind; nil payload
// fields are omitted from the encoding, and fields are decoded by name,
// so a future additional variant can be added without breaking the
// decoding of updates written by an older version.
type Update struct {
	Kind       UpdateType
	EnqueuedAt time.Time

	DocumentsAdditionPayload *DocumentsAdditionPayload `codec:",omitempty"`
	DocumentsDeletionPayload *DocumentsDeletionPayload `codec:",omitempty"`
	SynonymsAdditionPayload  *SynonymsAdditionPayload  `codec:",omitempty"`
	SynonymsDeletionPayload  *SynonymsDeletionPayload  `codec:",omitempty"`
}

// DocumentsAdditionPayload carries a batch of documents to upsert.
type DocumentsAdditionPayload struct {
	Documents []DocumentDelta
}

// DocumentsDeletionPayload carries a batch of external identifiers to
// remove.
type DocumentsDeletionPayload struct {
	ExternalIDs []string
}

// SynonymsAdditionPayload carries a batch of synonym entries to merge
// into the existing alternatives for each word.
type SynonymsAdditionPayload struct {
	Synonyms []SynonymEntry
}

// SynonymsDeletionPayload removes synonym data. Every word in Words has
// its whole entry removed, whether or not Alternatives also names it;
// for each word in Alternatives, only the listed alternatives are
// removed, and the entry goes away once none are left.
type SynonymsDeletionPayload struct {
	Words        []string
	Alternatives map[string][]string
}

// DetailedDuration records an update's timing: Total runs from enqueue
// to the end of its apply (queue wait included), Apply is the time the
// applier itself took.
type DetailedDuration struct {
	Total time.Duration
	Apply time.Duration
}

// UpdateResult is empty on success; Err holds a human-readable message on
// failure. Update failures are never returned as a Go error from the
// synchronous API — they are only ever observed through UpdateStatus.
type UpdateResult struct {
	Err string
}

// Failed reports whether the update did not apply cleanly.
func (r UpdateResult) Failed() bool {
	return r.Err != ""
}

// UpdateStatus is the durable, queryable record of one update's outcome.
type UpdateStatus struct {
	ID       uint64
	Type     UpdateType
	Duration DetailedDuration
	Result   UpdateResult
}
