package persist

import (
	"encoding/json"
	"fmt"
)

// Codec turns records into bytes and back
type Codec interface {
	Marshal(r *Record) ([]byte, error)
	Unmarshal(data []byte) (*Record, error)
}

// JSONCodec encodes records as JSON
type JSONCodec struct{}

var _ Codec = JSONCodec{}

func (JSONCodec) Marshal(r *Record) ([]byte, error) {
	if r.Version == 0 {
		r.Version = FormatVersion
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal record %s: %w", r.Key(), err)
	}
	return data, nil
}

func (JSONCodec) Unmarshal(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	if r.Version != FormatVersion {
		return nil, VersionError{Version: r.Version}
	}
	return &r, nil
}
