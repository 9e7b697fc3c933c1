// Package runtime provides the core Encoder/Decoder for the Protocol
// Buffers wire format: varints, zigzag, fixed-width integers, IEEE-754
// floats, and length-delimited bytes and strings, plus the decoder instance
// pool and byte-source coercion.
//
// The codec is single-threaded by contract. Encoder writes are strictly
// append-only; decoder reads are strictly forward. Schema binding, field-tag
// dispatch and message objects live above this layer.
package runtime

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/serialexp/protowire/longbits"
)

// Encoder serialises scalars to the wire format into an append-only buffer.
// The zero value is ready to use.
type Encoder struct {
	buf []byte
}

// NewEncoder creates an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// Finish transfers ownership of the accumulated buffer to the caller and
// resets the encoder to empty.
func (e *Encoder) Finish() []byte {
	b := e.buf
	e.buf = nil
	return b
}

// WriteUint8 writes one byte.
func (e *Encoder) WriteUint8(v uint8) {
	e.buf = append(e.buf, v)
}

// WriteUint16 writes a 16-bit unsigned integer, little-endian.
func (e *Encoder) WriteUint16(v uint16) {
	e.buf = binary.LittleEndian.AppendUint16(e.buf, v)
}

// WriteUint32 writes a 32-bit unsigned integer, little-endian.
func (e *Encoder) WriteUint32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

// WriteInt8 writes an 8-bit signed integer, two's complement.
func (e *Encoder) WriteInt8(v int8) {
	e.WriteUint8(uint8(v))
}

// WriteInt16 writes a 16-bit signed integer, little-endian two's complement.
func (e *Encoder) WriteInt16(v int16) {
	e.WriteUint16(uint16(v))
}

// WriteInt32 writes a 32-bit signed integer, little-endian two's complement.
func (e *Encoder) WriteInt32(v int32) {
	e.WriteUint32(uint32(v))
}

// WriteUvarint32 writes v as a base-128 varint, 1-5 bytes.
func (e *Encoder) WriteUvarint32(v uint32) {
	for v >= 0x80 {
		e.buf = append(e.buf, byte(v)|0x80)
		v >>= 7
	}
	e.buf = append(e.buf, byte(v))
}

// WriteSvarint32 writes v as a varint. Negative values are sign-extended to
// 64 bits first, so they always occupy 10 bytes on the wire.
func (e *Encoder) WriteSvarint32(v int32) {
	if v >= 0 {
		e.WriteUvarint32(uint32(v))
		return
	}
	e.WriteUvarint64(uint64(int64(v)))
}

// WriteUvarint64 writes v as a base-128 varint, 1-10 bytes.
func (e *Encoder) WriteUvarint64(v uint64) {
	for v >= 0x80 {
		e.buf = append(e.buf, byte(v)|0x80)
		v >>= 7
	}
	e.buf = append(e.buf, byte(v))
}

// WriteSvarint64 writes v as a varint of its two's-complement bits.
func (e *Encoder) WriteSvarint64(v int64) {
	e.WriteUvarint64(uint64(v))
}

// WriteSplitVarint64 writes the 64-bit value held as little-endian halves
// as a varint.
func (e *Encoder) WriteSplitVarint64(lo, hi uint32) {
	e.WriteUvarint64(longbits.JoinUint64(lo, hi))
}

// WriteZigzag32 writes v zigzag-encoded as a varint.
func (e *Encoder) WriteZigzag32(v int32) {
	e.WriteUvarint32(uint32(v<<1 ^ v>>31))
}

// WriteZigzag64 writes v zigzag-encoded as a varint.
func (e *Encoder) WriteZigzag64(v int64) {
	e.WriteUvarint64(longbits.ZigzagEncode(v))
}

// WriteZigzagVarint64String writes the decimal string form of a signed
// 64-bit value zigzag-encoded as a varint. Returns ErrParseFailure from the
// longbits package when s is not a decimal integer.
func (e *Encoder) WriteZigzagVarint64String(s string) error {
	h, err := longbits.ParseDecimalHash(s)
	if err != nil {
		return err
	}
	e.WriteZigzagVarintHash64(h)
	return nil
}

// WriteZigzagVarintHash64 writes the value carried by h zigzag-encoded as a
// varint.
func (e *Encoder) WriteZigzagVarintHash64(h longbits.Hash64) {
	e.WriteUvarint64(longbits.ZigzagEncode(h.Int64()))
}

// WriteVarintHash64 writes the value carried by h as a varint.
func (e *Encoder) WriteVarintHash64(h longbits.Hash64) {
	e.WriteUvarint64(h.Uint64())
}

// WriteFixedHash64 writes the 8 bytes of h verbatim (the carrier is already
// little-endian).
func (e *Encoder) WriteFixedHash64(h longbits.Hash64) {
	e.buf = append(e.buf, h[:]...)
}

// WriteUint64 writes a 64-bit unsigned integer, little-endian.
func (e *Encoder) WriteUint64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

// WriteInt64 writes a 64-bit signed integer, little-endian two's complement.
func (e *Encoder) WriteInt64(v int64) {
	e.WriteUint64(uint64(v))
}

// WriteInt64String writes the decimal string form of a signed 64-bit value
// as 8 little-endian bytes.
func (e *Encoder) WriteInt64String(s string) error {
	h, err := longbits.ParseDecimalHash(s)
	if err != nil {
		return err
	}
	e.WriteFixedHash64(h)
	return nil
}

// WriteFloat32 writes a 32-bit IEEE-754 float, little-endian.
func (e *Encoder) WriteFloat32(v float32) {
	e.WriteUint32(math.Float32bits(v))
}

// WriteFloat64 writes a 64-bit IEEE-754 float, little-endian.
func (e *Encoder) WriteFloat64(v float64) {
	e.WriteUint64(math.Float64bits(v))
}

// WriteBool writes one byte, 1 for true and 0 for false.
func (e *Encoder) WriteBool(v bool) {
	if v {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
}

// WriteEnum writes an enum value as a signed varint.
func (e *Encoder) WriteEnum(v int32) {
	e.WriteSvarint32(v)
}

// WriteBytes appends b verbatim. Length prefixes are the caller's business.
func (e *Encoder) WriteBytes(b []byte) {
	e.buf = append(e.buf, b...)
}

// WriteString appends the UTF-8 bytes of s and returns the number of bytes
// written. Invalid sequences in s are written as U+FFFD rather than dropped.
func (e *Encoder) WriteString(s string) int {
	if utf8.ValidString(s) {
		e.buf = append(e.buf, s...)
		return len(s)
	}
	before := len(e.buf)
	for _, r := range s {
		e.buf = utf8.AppendRune(e.buf, r)
	}
	return len(e.buf) - before
}
