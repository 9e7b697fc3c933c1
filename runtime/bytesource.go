package runtime

import (
	"encoding/base64"
	"fmt"
)

// ByteSource is the polymorphic input accepted by the decoder. Recognised
// dynamic types:
//
//   - []byte — viewed in place (borrowed; the caller keeps it alive)
//   - string — base64 text, decoded to an owned byte slice
//   - []int  — integers in [0,255], copied to an owned byte slice
//
// Coercion happens once, on SetBlock; the decoder holds only the canonical
// []byte view afterwards.
type ByteSource interface{}

// CoerceByteSource converts src to the canonical byte view. Unrecognised
// types and out-of-range []int elements return ErrInvalidByteSource.
func CoerceByteSource(src ByteSource) ([]byte, error) {
	switch v := src.(type) {
	case []byte:
		return v, nil
	case string:
		decoded, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			// Tolerate unpadded input.
			decoded, err = base64.RawStdEncoding.DecodeString(v)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: bad base64: %v", ErrInvalidByteSource, err)
		}
		return decoded, nil
	case []int:
		out := make([]byte, len(v))
		for i, n := range v {
			if n < 0 || n > 255 {
				return nil, fmt.Errorf("%w: element %d = %d outside [0,255]", ErrInvalidByteSource, i, n)
			}
			out[i] = byte(n)
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("%w: nil source", ErrInvalidByteSource)
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidByteSource, src)
	}
}
