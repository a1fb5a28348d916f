package index

import (
	"bytes"
	"fmt"

	"github.com/hashicorp/go-msgpack/v2/codec"
)

var msgpackHandle = func() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.StructToArray = false // encode by field name, not position
	return h
}()

// EncodeUpdate serializes an Update for storage in the Update Queue.
func EncodeUpdate(u *Update) ([]byte, error) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, msgpackHandle)
	if err := enc.Encode(u); err != nil {
		return nil, fmt.Errorf("index: encode update: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeUpdate deserializes an Update written by EncodeUpdate, including
// ones written by a prior version that only knew about a subset of the
// fields present in the current Update struct.
func DecodeUpdate(data []byte) (*Update, error) {
	var u Update
	dec := codec.NewDecoder(bytes.NewReader(data), msgpackHandle)
	if err := dec.Decode(&u); err != nil {
		return nil, fmt.Errorf("index: decode update: %w", err)
	}
	return &u, nil
}

// EncodeUpdateStatus serializes an UpdateStatus for storage in the
// Update Results tree.
func EncodeUpdateStatus(s *UpdateStatus) ([]byte, error) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, msgpackHandle)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("index: encode update status: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeUpdateStatus deserializes an UpdateStatus written by
// EncodeUpdateStatus.
func DecodeUpdateStatus(data []byte) (*UpdateStatus, error) {
	var s UpdateStatus
	dec := codec.NewDecoder(bytes.NewReader(data), msgpackHandle)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("index: decode update status: %w", err)
	}
	return &s, nil
}

// EncodeSchema serializes a Schema for the MainIndex tree.
func EncodeSchema(s Schema) ([]byte, error) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, msgpackHandle)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("index: encode schema: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSchema deserializes a Schema written by EncodeSchema.
func DecodeSchema(data []byte) (Schema, error) {
	var s Schema
	dec := codec.NewDecoder(bytes.NewReader(data), msgpackHandle)
	if err := dec.Decode(&s); err != nil {
		return Schema{}, fmt.Errorf("index: decode schema: %w", err)
	}
	return s, nil
}

// EncodeRankedMap serializes a RankedMap for the MainIndex tree.
func EncodeRankedMap(m RankedMap) ([]byte, error) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, msgpackHandle)
	if err := enc.Encode(m.entries()); err != nil {
		return nil, fmt.Errorf("index: encode ranked map: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeRankedMap deserializes a RankedMap written by EncodeRankedMap.
func DecodeRankedMap(data []byte) (RankedMap, error) {
	var entries []rankedEntry
	dec := codec.NewDecoder(bytes.NewReader(data), msgpackHandle)
	if err := dec.Decode(&entries); err != nil {
		return RankedMap{}, fmt.Errorf("index: decode ranked map: %w", err)
	}
	return rankedMapFromEntries(entries), nil
}
