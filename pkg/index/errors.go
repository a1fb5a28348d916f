package index

import "errors"

// ErrSchemaDiffer is returned by Open when the stored schema does not
// match the schema the caller supplied.
var ErrSchemaDiffer = errors.New("index: stored schema differs from the one provided")

// ErrSchemaMissing is returned by Open when no schema was provided and
// none is stored yet.
var ErrSchemaMissing = errors.New("index: no schema stored and none provided")

// ErrClosed is returned by Stats, Document, UpdateStatus and
// UpdateStatusBlocking when called after Close. Other Index methods do
// not check whether the index is closed.
var ErrClosed = errors.New("index: closed")
