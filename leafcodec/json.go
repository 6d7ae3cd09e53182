package leafcodec

import (
	"encoding/json"
	"fmt"
	"io"
)

// DecodeValues reads a JSON array of leaf values, each itself an array of
// fields. Numbers are kept as json.Number so integers wider than 53 bits
// survive.
func DecodeValues(r io.Reader) ([][]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var values [][]any
	if err := dec.Decode(&values); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return values, nil
}
