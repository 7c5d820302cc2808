// Package codec converts debugger values to and from JSON text.
//
// Output always ends with a single newline so responses read well with curl.
package codec

import (
	"bytes"
	"fmt"

	"github.com/segmentio/encoding/json"
)

// ToJSON encodes v followed by a trailing newline. HTML escaping is off:
// payloads are application state, never rendered as markup.
func ToJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("codec: encode %T: %w", v, err)
	}
	return buf.Bytes(), nil
}

// FromJSON decodes data into a fresh T.
func FromJSON[T any](data []byte) (T, error) {
	var x T
	if err := json.Unmarshal(data, &x); err != nil {
		return x, fmt.Errorf("codec: decode %T: %w", x, err)
	}
	return x, nil
}
