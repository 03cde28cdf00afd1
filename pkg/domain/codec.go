package domain

import (
	"bytes"
	"encoding/json"
)

// DecodeTree parses a JSON-encoded Tree. Attribute numbers are kept as
// json.Number, matching trees built from raw payloads, so integers above
// 2^53 survive a round trip through a cache.
func DecodeTree(data []byte) (*Tree, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var t Tree
	if err := dec.Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}
