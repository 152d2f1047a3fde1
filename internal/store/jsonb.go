package store

import (
	"encoding/json"
	"fmt"
)

// encodeDoc serializes a record for the doc column.
func encodeDoc(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return raw, nil
}

// decodeDoc unmarshals onto dst, which callers pre-populate with defaults so
// that fields absent from the stored document keep them.
func decodeDoc(raw []byte, dst interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}
