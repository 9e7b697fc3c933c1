// ABOUTME: Replays the JSON5 conformance suites against the Encoder and Decoder
// ABOUTME: Each vector is checked in both directions: value encodes to the exact bytes, bytes decode to the value; decode_error vectors are only decoded
package test

import (
	"fmt"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serialexp/protowire/runtime"
)

func TestConformanceSuites(t *testing.T) {
	suites, err := LoadAllTestSuites("testdata")
	require.NoError(t, err)
	require.NotEmpty(t, suites)

	for _, suite := range suites {
		t.Run(suite.Name, func(t *testing.T) {
			for _, tc := range suite.TestCases {
				t.Run(tc.Description, func(t *testing.T) {
					runCase(t, tc)
				})
			}
		})
	}
}

func runCase(t *testing.T, tc TestCase) {
	wire, err := tc.WireBytes()
	require.NoError(t, err)

	if tc.DecodeError {
		d, err := runtime.NewDecoder(wire)
		require.NoError(t, err)
		_, decodeErr := readValue(d, tc.Op)
		assert.Error(t, decodeErr, "vector must fail to decode")
		return
	}

	encoded := encodeValue(t, tc)
	assert.Equal(t, wire, encoded, "encode direction")

	d, err := runtime.NewDecoder(wire)
	require.NoError(t, err)
	got, err := readValue(d, tc.Op)
	require.NoError(t, err, "decode direction")
	assertValueEqual(t, tc, got)
	assert.True(t, d.AtEnd(), "decode must consume the vector exactly")
}

func encodeValue(t *testing.T, tc TestCase) []byte {
	t.Helper()
	e := runtime.NewEncoder()

	switch tc.Op {
	case "uvarint32":
		v, err := strconv.ParseUint(tc.Value, 10, 32)
		require.NoError(t, err)
		e.WriteUvarint32(uint32(v))
	case "svarint32":
		v, err := strconv.ParseInt(tc.Value, 10, 32)
		require.NoError(t, err)
		e.WriteSvarint32(int32(v))
	case "uvarint64":
		v, err := strconv.ParseUint(tc.Value, 10, 64)
		require.NoError(t, err)
		e.WriteUvarint64(v)
	case "svarint64":
		v, err := strconv.ParseInt(tc.Value, 10, 64)
		require.NoError(t, err)
		e.WriteSvarint64(v)
	case "zigzag64":
		v, err := strconv.ParseInt(tc.Value, 10, 64)
		require.NoError(t, err)
		e.WriteZigzag64(v)
	case "fixed64":
		v, err := strconv.ParseUint(tc.Value, 10, 64)
		require.NoError(t, err)
		e.WriteUint64(v)
	case "sfixed64":
		v, err := strconv.ParseInt(tc.Value, 10, 64)
		require.NoError(t, err)
		e.WriteInt64(v)
	case "float":
		v, err := strconv.ParseFloat(tc.Value, 32)
		require.NoError(t, err)
		e.WriteFloat32(float32(v))
	case "double":
		v, err := strconv.ParseFloat(tc.Value, 64)
		require.NoError(t, err)
		e.WriteFloat64(v)
	case "bool":
		e.WriteBool(tc.Value == "true")
	case "string":
		e.WriteString(tc.Value)
	default:
		t.Fatalf("unknown op %q", tc.Op)
	}
	return e.Finish()
}

// readValue decodes one value and renders it back to the suite's string
// form.
func readValue(d *runtime.Decoder, op string) (string, error) {
	switch op {
	case "uvarint32":
		v, err := d.ReadUvarint32()
		return strconv.FormatUint(uint64(v), 10), err
	case "svarint32":
		v, err := d.ReadSvarint32()
		return strconv.FormatInt(int64(v), 10), err
	case "uvarint64":
		v, err := d.ReadUvarint64()
		return strconv.FormatUint(v, 10), err
	case "svarint64":
		v, err := d.ReadSvarint64()
		return strconv.FormatInt(v, 10), err
	case "zigzag64":
		v, err := d.ReadZigzag64()
		return strconv.FormatInt(v, 10), err
	case "fixed64":
		v, err := d.ReadUint64()
		return strconv.FormatUint(v, 10), err
	case "sfixed64":
		v, err := d.ReadInt64()
		return strconv.FormatInt(v, 10), err
	case "float":
		v, err := d.ReadFloat32()
		return strconv.FormatFloat(float64(v), 'g', -1, 32), err
	case "double":
		v, err := d.ReadFloat64()
		return strconv.FormatFloat(v, 'g', -1, 64), err
	case "bool":
		v, err := d.ReadBool()
		return strconv.FormatBool(v), err
	case "string":
		// String vectors are the whole payload; no length prefix on the wire.
		return d.ReadString(len(d.Buffer()) - d.Pos())
	}
	return "", fmt.Errorf("unknown op %q", op)
}

func assertValueEqual(t *testing.T, tc TestCase, got string) {
	t.Helper()
	switch tc.Op {
	case "float":
		want, err := strconv.ParseFloat(tc.Value, 32)
		require.NoError(t, err)
		gotF, err := strconv.ParseFloat(got, 32)
		require.NoError(t, err)
		assert.Equal(t, math.Float32bits(float32(want)), math.Float32bits(float32(gotF)))
	case "double":
		want, err := strconv.ParseFloat(tc.Value, 64)
		require.NoError(t, err)
		gotF, err := strconv.ParseFloat(got, 64)
		require.NoError(t, err)
		assert.Equal(t, math.Float64bits(want), math.Float64bits(gotF))
	default:
		assert.Equal(t, tc.Value, got)
	}
}
