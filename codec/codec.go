// Package codec serializes cached values to and from bytes.
//
// A Codec is value-type agnostic: Marshal takes any value and Unmarshal
// decodes into a pointer, so one Codec can serve every namespace of a cache.
package codec

// Codec encodes values for storage and decodes them back into out, which must
// be a non-nil pointer.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(b []byte, out any) error
}
