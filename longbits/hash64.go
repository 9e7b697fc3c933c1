package longbits

import (
	"encoding/binary"
	"strconv"
)

// Hash64 is an opaque little-endian carrier for a 64-bit value. It survives
// boundaries where a numeric type would lose precision, and it is the form
// the codec's fixed- and varint-hash operations exchange.
type Hash64 [8]byte

// ToHash packs the halves into a Hash64.
func ToHash(lo, hi uint32) Hash64 {
	var h Hash64
	binary.LittleEndian.PutUint32(h[:4], lo)
	binary.LittleEndian.PutUint32(h[4:], hi)
	return h
}

// FromHash unpacks a Hash64 into halves.
func FromHash(h Hash64) (lo, hi uint32) {
	return binary.LittleEndian.Uint32(h[:4]), binary.LittleEndian.Uint32(h[4:])
}

// HashFromUint64 packs v into a Hash64.
func HashFromUint64(v uint64) Hash64 {
	var h Hash64
	binary.LittleEndian.PutUint64(h[:], v)
	return h
}

// Uint64 returns the unsigned value carried by h.
func (h Hash64) Uint64() uint64 {
	return binary.LittleEndian.Uint64(h[:])
}

// Int64 returns the signed value carried by h.
func (h Hash64) Int64() int64 {
	return int64(h.Uint64())
}

// UnsignedDecimal formats the carried value as an unsigned decimal string.
func (h Hash64) UnsignedDecimal() string {
	return ToUnsignedDecimal(FromHash(h))
}

// SignedDecimal formats the carried value as a signed decimal string.
func (h Hash64) SignedDecimal() string {
	return ToSignedDecimal(FromHash(h))
}

// ParseDecimalHash converts a decimal string matching ^-?[0-9]+$ into a
// Hash64. Negative input is stored in two's complement; magnitudes are
// accepted up to the full unsigned 64-bit range, so "-18446744073709551615"
// wraps the same way the equivalent integer arithmetic would. Malformed
// input returns ErrParseFailure rather than panicking.
func ParseDecimalHash(s string) (Hash64, error) {
	neg := false
	digits := s
	if len(s) > 0 && s[0] == '-' {
		neg = true
		digits = s[1:]
	}
	if digits == "" {
		return Hash64{}, ErrParseFailure
	}
	mag, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return Hash64{}, ErrParseFailure
	}
	v := mag
	if neg {
		v = -mag
	}
	return HashFromUint64(v), nil
}
