// Package ingest turns batches of raw apply-stream records into canonical
// passes and loads them.
package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/movementpass/public-api/internal/api/dto"
)

// ErrDecode marks a record whose payload is not a JSON apply request.
var ErrDecode = errors.New("undecodable record")

// RawRecord is one stream entry. Key identifies its stream position.
type RawRecord struct {
	Key  string
	Data []byte
}

// RecordCodec decodes record payloads.
type RecordCodec struct{}

// Decode parses r into an apply request. Anything other than a JSON object,
// including fields of the wrong type, wraps ErrDecode.
func (RecordCodec) Decode(r RawRecord) (dto.ApplyRequest, error) {
	var req dto.ApplyRequest
	trimmed := bytes.TrimSpace(r.Data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return req, fmt.Errorf("%w: %s: not a json object", ErrDecode, r.Key)
	}
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return dto.ApplyRequest{}, fmt.Errorf("%w: %s: %v", ErrDecode, r.Key, err)
	}
	return req, nil
}
