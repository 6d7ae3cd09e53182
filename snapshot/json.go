package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes s in the standard JSON shape. It does not validate.
func MarshalJSON(s Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// UnmarshalJSON decodes and validates a JSON snapshot. Numbers inside values
// are kept as json.Number.
func UnmarshalJSON(data []byte) (Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrSnapshotFormat, err)
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
