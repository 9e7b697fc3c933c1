package runtime

import "errors"

// Error kinds surfaced by the codec. Reads and coercions wrap these with
// positional context; callers match with errors.Is.
var (
	// ErrUnbound indicates a decoder was used before SetBlock bound it to a
	// byte view.
	ErrUnbound = errors.New("protowire: decoder has no block set")

	// ErrPastEnd indicates a read would advance the cursor beyond the end of
	// the readable window.
	ErrPastEnd = errors.New("protowire: read past end of block")

	// ErrOutOfRange indicates a positional argument outside the readable
	// window.
	ErrOutOfRange = errors.New("protowire: position out of range")

	// ErrInvalidEncoding indicates malformed wire data: a varint with no
	// terminator within 10 bytes, a negative length, or, in strict mode, a
	// varint32 whose discarded bits are not a sign extension.
	ErrInvalidEncoding = errors.New("protowire: invalid wire encoding")

	// ErrInvalidByteSource indicates an input that could not be coerced to a
	// byte view.
	ErrInvalidByteSource = errors.New("protowire: invalid byte source")
)
