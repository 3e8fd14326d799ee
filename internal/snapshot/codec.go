package snapshot

import (
	"bytes"
	"errors"
	"fmt"

	gojson "github.com/goccy/go-json"
	"github.com/pierrec/lz4/v4"
)

// ErrDecode indicates corrupted or truncated snapshot bytes. Decode never
// returns a partial snapshot.
var ErrDecode = errors.New("snapshot decode failed")

// Encode serializes the snapshot to JSON inside an lz4 frame. The method
// names and numeric patterns repeat heavily, so the frame typically shrinks
// the payload by an order of magnitude.
func Encode(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	_ = zw.Apply(lz4.CompressionLevelOption(lz4.Level9))
	if err := gojson.NewEncoder(zw).Encode(s); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode is the exact inverse of Encode: decode(encode(s)) is identical to
// s field-for-field, including float precision.
func Decode(data []byte) (*Snapshot, error) {
	zr := lz4.NewReader(bytes.NewReader(data))
	var s Snapshot
	if err := gojson.NewDecoder(zr).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &s, nil
}
