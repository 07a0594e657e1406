// Package encoding holds the byte-level contracts and codec helpers
// shared by the packages that persist scene data.
package encoding

import (
	"bytes"
	"encoding/gob"
	"io"
)

// Serializable is implemented by values that own their byte
// representation. Deserialize must accept anything Serialize produced.
type Serializable[T any] interface {
	Serialize() ([]byte, error)
	Deserialize([]byte) error
}

// EncodeGob writes v to w in gob form.
func EncodeGob(w io.Writer, v any) error {
	return gob.NewEncoder(w).Encode(v)
}

// DecodeGob reads one gob value from r into v, which must be a pointer.
func DecodeGob(r io.Reader, v any) error {
	return gob.NewDecoder(r).Decode(v)
}

// MarshalGob returns v in gob form.
func MarshalGob(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeGob(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalGob decodes data produced by MarshalGob into v.
func UnmarshalGob(data []byte, v any) error {
	return DecodeGob(bytes.NewReader(data), v)
}
