package runtime

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/serialexp/protowire/longbits"
)

// Decoder deserialises scalars from a borrowed byte view, advancing a
// cursor. It does not own its bytes (except when SetBlock coerced an owned
// copy); the caller keeps the underlying storage alive for the decoder's
// lifetime.
//
// The first failure is latched: every subsequent read returns the same
// error without moving the cursor, so callers may check Err at semantically
// meaningful boundaries instead of after every read.
type Decoder struct {
	buf    []byte
	start  int
	end    int
	cursor int
	err    error
	strict bool
	bound  bool
}

// NewDecoder creates a decoder over the whole of src.
func NewDecoder(src ByteSource) (*Decoder, error) {
	d := &Decoder{}
	if err := d.SetBlock(src); err != nil {
		return nil, err
	}
	return d, nil
}

// NewDecoderWindow creates a decoder over length bytes of src starting at
// start.
func NewDecoderWindow(src ByteSource, start, length int) (*Decoder, error) {
	d := &Decoder{}
	if err := d.SetBlockWindow(src, start, length); err != nil {
		return nil, err
	}
	return d, nil
}

// SetBlock rebinds the decoder to the whole of src, clearing any latched
// error.
func (d *Decoder) SetBlock(src ByteSource) error {
	b, err := CoerceByteSource(src)
	if err != nil {
		return err
	}
	return d.bind(b, 0, len(b))
}

// SetBlockWindow rebinds the decoder to length bytes of src starting at
// start.
func (d *Decoder) SetBlockWindow(src ByteSource, start, length int) error {
	b, err := CoerceByteSource(src)
	if err != nil {
		return err
	}
	if start < 0 || length < 0 || start+length > len(b) {
		return fmt.Errorf("%w: window [%d,%d) over %d bytes", ErrOutOfRange, start, start+length, len(b))
	}
	return d.bind(b, start, start+length)
}

func (d *Decoder) bind(b []byte, start, end int) error {
	d.buf = b
	d.start = start
	d.end = end
	d.cursor = start
	d.err = nil
	d.bound = true
	return nil
}

// Clone returns an independent decoder over the same window, positioned at
// the same cursor.
func (d *Decoder) Clone() *Decoder {
	c := *d
	return &c
}

// Reset seeks back to the start of the window and clears any latched error.
func (d *Decoder) Reset() {
	d.cursor = d.start
	d.err = nil
}

// Advance moves the cursor forward by n bytes.
func (d *Decoder) Advance(n int) error {
	if d.err != nil {
		return d.err
	}
	if !d.bound {
		return d.fail(ErrUnbound)
	}
	if n < 0 || d.cursor+n > d.end {
		return d.fail(fmt.Errorf("%w: advance %d at offset %d of %d", ErrPastEnd, n, d.cursor, d.end))
	}
	d.cursor += n
	return nil
}

// Pos returns the cursor offset within the underlying bytes.
func (d *Decoder) Pos() int {
	return d.cursor
}

// SetPos seeks the cursor to an absolute offset within the window.
func (d *Decoder) SetPos(n int) error {
	if !d.bound {
		return d.fail(ErrUnbound)
	}
	if n < d.start || n > d.end {
		return d.fail(fmt.Errorf("%w: seek to %d outside [%d,%d]", ErrOutOfRange, n, d.start, d.end))
	}
	d.cursor = n
	d.err = nil
	return nil
}

// AtEnd reports whether the cursor is exactly at the end of the window.
func (d *Decoder) AtEnd() bool {
	return d.cursor == d.end
}

// PastEnd reports whether the cursor has run beyond the window.
func (d *Decoder) PastEnd() bool {
	return d.cursor > d.end
}

// Err returns the latched error, or nil. It also reports corruption when
// the cursor has escaped the window without a read noticing.
func (d *Decoder) Err() error {
	if d.err != nil {
		return d.err
	}
	if d.bound && (d.cursor < d.start || d.cursor > d.end) {
		return ErrOutOfRange
	}
	return nil
}

// Buffer returns the underlying byte view.
func (d *Decoder) Buffer() []byte {
	return d.buf
}

// SetStrict toggles verification of the sign-extension bits that
// ReadUvarint32 otherwise discards.
func (d *Decoder) SetStrict(strict bool) {
	d.strict = strict
}

// fail latches the first error and returns it.
func (d *Decoder) fail(err error) error {
	if d.err == nil {
		d.err = err
	}
	return d.err
}

// require checks that n more bytes are readable.
func (d *Decoder) require(n int) error {
	if d.err != nil {
		return d.err
	}
	if !d.bound {
		return d.fail(ErrUnbound)
	}
	if d.cursor+n > d.end {
		return d.fail(fmt.Errorf("%w: need %d bytes at offset %d of %d", ErrPastEnd, n, d.cursor, d.end))
	}
	return nil
}

func (d *Decoder) readByte() (byte, error) {
	if err := d.require(1); err != nil {
		return 0, err
	}
	b := d.buf[d.cursor]
	d.cursor++
	return b, nil
}

// ReadUint8 reads one byte.
func (d *Decoder) ReadUint8() (uint8, error) {
	return d.readByte()
}

// ReadUint16 reads a 16-bit unsigned integer, little-endian.
func (d *Decoder) ReadUint16() (uint16, error) {
	if err := d.require(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(d.buf[d.cursor:])
	d.cursor += 2
	return v, nil
}

// ReadUint32 reads a 32-bit unsigned integer, little-endian.
func (d *Decoder) ReadUint32() (uint32, error) {
	if err := d.require(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(d.buf[d.cursor:])
	d.cursor += 4
	return v, nil
}

// ReadInt8 reads an 8-bit signed integer.
func (d *Decoder) ReadInt8() (int8, error) {
	v, err := d.readByte()
	return int8(v), err
}

// ReadInt16 reads a 16-bit signed integer, little-endian two's complement.
func (d *Decoder) ReadInt16() (int16, error) {
	v, err := d.ReadUint16()
	return int16(v), err
}

// ReadInt32 reads a 32-bit signed integer, little-endian two's complement.
func (d *Decoder) ReadInt32() (int32, error) {
	v, err := d.ReadUint32()
	return int32(v), err
}

// ReadUvarint32 reads a varint and returns its low 32 bits. This is the
// hottest operation in the codec, so the five-byte body is unrolled.
//
// The fifth byte is masked with 0x0f: the top bits of a 32-bit varint exist
// only to sign-extend 64-bit values. A fifth byte with its continuation bit
// set means the wire carries such an extension; those bytes are consumed and
// discarded, except under strict mode, which verifies they form a faithful
// sign extension of the returned value.
func (d *Decoder) ReadUvarint32() (uint32, error) {
	b, err := d.readByte()
	if err != nil {
		return 0, err
	}
	x := uint32(b & 0x7f)
	if b < 0x80 {
		return x, nil
	}

	if b, err = d.readByte(); err != nil {
		return 0, err
	}
	x |= uint32(b&0x7f) << 7
	if b < 0x80 {
		return x, nil
	}

	if b, err = d.readByte(); err != nil {
		return 0, err
	}
	x |= uint32(b&0x7f) << 14
	if b < 0x80 {
		return x, nil
	}

	if b, err = d.readByte(); err != nil {
		return 0, err
	}
	x |= uint32(b&0x7f) << 21
	if b < 0x80 {
		return x, nil
	}

	if b, err = d.readByte(); err != nil {
		return 0, err
	}
	x |= uint32(b&0x0f) << 28
	if b < 0x80 {
		if d.strict && b&0x70 != 0 {
			return 0, d.fail(fmt.Errorf("%w: varint32 with non-zero extension bits", ErrInvalidEncoding))
		}
		return x, nil
	}

	// Sign-extension bytes. Accumulate the discarded high word so strict
	// mode can check it.
	hi := uint32(b&0x7f) >> 4
	shift := uint(3)
	terminated := false
	for i := 0; i < 5; i++ {
		if b, err = d.readByte(); err != nil {
			return 0, err
		}
		hi |= uint32(b&0x7f) << shift
		shift += 7
		if b < 0x80 {
			terminated = true
			break
		}
	}
	if !terminated {
		return 0, d.fail(fmt.Errorf("%w: varint exceeds 10 bytes", ErrInvalidEncoding))
	}
	if d.strict {
		if !(hi == 0xffffffff && x>>31 == 1) {
			return 0, d.fail(fmt.Errorf("%w: varint32 extension bits are not a sign extension", ErrInvalidEncoding))
		}
	}
	return x, nil
}

// ReadSvarint32 reads a varint and interprets its low 32 bits as signed.
func (d *Decoder) ReadSvarint32() (int32, error) {
	v, err := d.ReadUvarint32()
	return int32(v), err
}

// readVarint64 is the shared 64-bit varint core: at most 10 bytes, the
// tenth of which must have its continuation bit clear.
func (d *Decoder) readVarint64() (uint64, error) {
	var x uint64
	var shift uint
	for i := 0; i < MaxVarintLen64; i++ {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		x |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return x, nil
		}
		shift += 7
	}
	return 0, d.fail(fmt.Errorf("%w: varint exceeds 10 bytes", ErrInvalidEncoding))
}

// ReadUvarint64 reads a 64-bit unsigned varint.
func (d *Decoder) ReadUvarint64() (uint64, error) {
	return d.readVarint64()
}

// ReadSvarint64 reads a 64-bit varint and interprets the bits as signed.
func (d *Decoder) ReadSvarint64() (int64, error) {
	v, err := d.readVarint64()
	return int64(v), err
}

// ReadSplitVarint64 reads a 64-bit varint and returns it as little-endian
// 32-bit halves.
func (d *Decoder) ReadSplitVarint64() (lo, hi uint32, err error) {
	v, err := d.readVarint64()
	if err != nil {
		return 0, 0, err
	}
	lo, hi = longbits.SplitUint64(v)
	return lo, hi, nil
}

// ReadSplitFixed64 reads 8 little-endian bytes and returns them as 32-bit
// halves.
func (d *Decoder) ReadSplitFixed64() (lo, hi uint32, err error) {
	v, err := d.ReadUint64()
	if err != nil {
		return 0, 0, err
	}
	lo, hi = longbits.SplitUint64(v)
	return lo, hi, nil
}

// ReadZigzag32 reads a zigzag-encoded 32-bit varint.
func (d *Decoder) ReadZigzag32() (int32, error) {
	v, err := d.ReadUvarint32()
	if err != nil {
		return 0, err
	}
	return int32(v>>1) ^ -int32(v&1), nil
}

// ReadZigzag64 reads a zigzag-encoded 64-bit varint.
func (d *Decoder) ReadZigzag64() (int64, error) {
	v, err := d.readVarint64()
	if err != nil {
		return 0, err
	}
	return longbits.ZigzagDecode(v), nil
}

// ReadZigzagVarint64String reads a zigzag-encoded 64-bit varint and returns
// its signed decimal string form.
func (d *Decoder) ReadZigzagVarint64String() (string, error) {
	v, err := d.ReadZigzag64()
	if err != nil {
		return "", err
	}
	return longbits.ToSignedDecimal(longbits.SplitInt64(v)), nil
}

// ReadVarintHash64 reads a 64-bit varint into an opaque Hash64.
func (d *Decoder) ReadVarintHash64() (longbits.Hash64, error) {
	v, err := d.readVarint64()
	if err != nil {
		return longbits.Hash64{}, err
	}
	return longbits.HashFromUint64(v), nil
}

// ReadZigzagVarintHash64 reads a zigzag-encoded 64-bit varint into an
// opaque Hash64.
func (d *Decoder) ReadZigzagVarintHash64() (longbits.Hash64, error) {
	v, err := d.ReadZigzag64()
	if err != nil {
		return longbits.Hash64{}, err
	}
	return longbits.HashFromUint64(uint64(v)), nil
}

// ReadFixedHash64 reads 8 bytes into an opaque Hash64.
func (d *Decoder) ReadFixedHash64() (longbits.Hash64, error) {
	if err := d.require(8); err != nil {
		return longbits.Hash64{}, err
	}
	var h longbits.Hash64
	copy(h[:], d.buf[d.cursor:])
	d.cursor += 8
	return h, nil
}

// ReadUint64 reads a 64-bit unsigned integer, little-endian.
func (d *Decoder) ReadUint64() (uint64, error) {
	if err := d.require(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(d.buf[d.cursor:])
	d.cursor += 8
	return v, nil
}

// ReadInt64 reads a 64-bit signed integer, little-endian two's complement.
func (d *Decoder) ReadInt64() (int64, error) {
	v, err := d.ReadUint64()
	return int64(v), err
}

// ReadInt64String reads a fixed 64-bit signed integer and returns its
// decimal string form.
func (d *Decoder) ReadInt64String() (string, error) {
	v, err := d.ReadInt64()
	if err != nil {
		return "", err
	}
	return longbits.ToSignedDecimal(longbits.SplitInt64(v)), nil
}

// ReadFloat32 reads a 32-bit IEEE-754 float, little-endian.
func (d *Decoder) ReadFloat32() (float32, error) {
	v, err := d.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64 reads a 64-bit IEEE-754 float, little-endian.
func (d *Decoder) ReadFloat64() (float64, error) {
	v, err := d.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadBool reads a varint and returns whether it is non-zero.
func (d *Decoder) ReadBool() (bool, error) {
	v, err := d.ReadUvarint32()
	return v != 0, err
}

// ReadEnum reads an enum value as a signed varint.
func (d *Decoder) ReadEnum() (int32, error) {
	return d.ReadSvarint32()
}

// ReadBytes reads n bytes and returns them as a subslice of the underlying
// view; the caller must not outlive the backing storage with it. A negative
// n is malformed input, not a bounds failure.
func (d *Decoder) ReadBytes(n int) ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	if !d.bound {
		return nil, d.fail(ErrUnbound)
	}
	if n < 0 {
		return nil, d.fail(fmt.Errorf("%w: negative length %d", ErrInvalidEncoding, n))
	}
	if err := d.require(n); err != nil {
		return nil, err
	}
	b := d.buf[d.cursor : d.cursor+n]
	d.cursor += n
	return b, nil
}

// ReadString reads n bytes and decodes them as UTF-8. Well-formed payloads
// are returned as-is; otherwise a resynchronising pass skips orphaned
// continuation bytes and truncated sequences. The cursor advances by exactly
// n either way.
func (d *Decoder) ReadString(n int) (string, error) {
	b, err := d.ReadBytes(n)
	if err != nil {
		return "", err
	}
	if utf8.Valid(b) {
		return string(b), nil
	}
	return resyncUTF8(b), nil
}

// resyncUTF8 decodes b sequence by sequence: ASCII passes through, orphaned
// continuation bytes are skipped, and multi-byte heads consume their
// continuation bytes when present. Codepoints outside the valid range come
// out as U+FFFD.
func resyncUTF8(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	i := 0
	for i < len(b) {
		c := b[i]
		switch {
		case c < 0x80:
			sb.WriteByte(c)
			i++
		case c < 0xc0:
			// Orphaned continuation byte.
			i++
		case c < 0xe0:
			if i+1 >= len(b) {
				i = len(b)
				break
			}
			r := rune(c&0x1f)<<6 | rune(b[i+1]&0x3f)
			sb.WriteRune(r)
			i += 2
		case c < 0xf0:
			if i+2 >= len(b) {
				i = len(b)
				break
			}
			r := rune(c&0x0f)<<12 | rune(b[i+1]&0x3f)<<6 | rune(b[i+2]&0x3f)
			sb.WriteRune(r)
			i += 3
		case c < 0xf8:
			if i+3 >= len(b) {
				i = len(b)
				break
			}
			r := rune(c&0x07)<<18 | rune(b[i+1]&0x3f)<<12 | rune(b[i+2]&0x3f)<<6 | rune(b[i+3]&0x3f)
			sb.WriteRune(r)
			i += 4
		default:
			i++
		}
	}
	return sb.String()
}
