package runtime

// FieldType identifies the declared type of a message field. The values
// match the Protocol Buffers descriptor numbering; 30 and 31 extend it with
// the two hash64 encodings.
type FieldType int

const (
	FieldTypeInvalid FieldType = -1

	FieldTypeDouble   FieldType = 1
	FieldTypeFloat    FieldType = 2
	FieldTypeInt64    FieldType = 3
	FieldTypeUint64   FieldType = 4
	FieldTypeInt32    FieldType = 5
	FieldTypeFixed64  FieldType = 6
	FieldTypeFixed32  FieldType = 7
	FieldTypeBool     FieldType = 8
	FieldTypeString   FieldType = 9
	FieldTypeGroup    FieldType = 10
	FieldTypeMessage  FieldType = 11
	FieldTypeBytes    FieldType = 12
	FieldTypeUint32   FieldType = 13
	FieldTypeEnum     FieldType = 14
	FieldTypeSfixed32 FieldType = 15
	FieldTypeSfixed64 FieldType = 16
	FieldTypeSint32   FieldType = 17
	FieldTypeSint64   FieldType = 18

	// Extensions: 64-bit values carried as opaque Hash64, fixed or varint
	// encoded.
	FieldTypeFixedHash64  FieldType = 30
	FieldTypeVarintHash64 FieldType = 31
)

// WireType identifies how a field's payload is laid out on the wire.
type WireType int

const (
	WireTypeInvalid WireType = -1

	WireTypeVarint     WireType = 0
	WireTypeFixed64    WireType = 1
	WireTypeDelimited  WireType = 2
	WireTypeStartGroup WireType = 3 // legacy
	WireTypeEndGroup   WireType = 4 // legacy
	WireTypeFixed32    WireType = 5
)

// Maximum encoded sizes of the variable-length integers.
const (
	MaxVarintLen32 = 5
	MaxVarintLen64 = 10
)

// FieldTypeToWireType maps a declared field type to its wire layout.
// Unknown field types map to WireTypeInvalid.
func FieldTypeToWireType(t FieldType) WireType {
	switch t {
	case FieldTypeInt32, FieldTypeInt64, FieldTypeUint32, FieldTypeUint64,
		FieldTypeSint32, FieldTypeSint64, FieldTypeBool, FieldTypeEnum,
		FieldTypeVarintHash64:
		return WireTypeVarint

	case FieldTypeDouble, FieldTypeFixed64, FieldTypeSfixed64,
		FieldTypeFixedHash64:
		return WireTypeFixed64

	case FieldTypeString, FieldTypeBytes, FieldTypeMessage:
		return WireTypeDelimited

	case FieldTypeGroup:
		return WireTypeStartGroup

	case FieldTypeFloat, FieldTypeFixed32, FieldTypeSfixed32:
		return WireTypeFixed32
	}
	return WireTypeInvalid
}
