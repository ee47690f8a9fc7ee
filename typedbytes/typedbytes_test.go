package typedbytes

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbfs/tbfs/fs"
)

func roundTrip(t *testing.T, in interface{}) interface{} {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteValue(in))
	require.NoError(t, w.Flush())
	out, err := NewReader(&buf).ReadValue()
	require.NoError(t, err)
	return out
}

func TestValueRoundTrip(t *testing.T) {
	for _, test := range []struct {
		in   interface{}
		want interface{}
	}{
		{[]byte{0x00, 0xFF, 0x42}, []byte{0x00, 0xFF, 0x42}},
		{[]byte{}, []byte{}},
		{byte(9), byte(9)},
		{true, true},
		{false, false},
		{int32(-123456), int32(-123456)},
		{int64(1) << 40, int64(1) << 40},
		{float32(1.5), float32(1.5)},
		{float64(math.Pi), float64(math.Pi)},
		{"", ""},
		{"sequence file", "sequence file"},
		{[]interface{}{int32(1), "two", true}, []interface{}{int32(1), "two", true}},
		{map[interface{}]interface{}{"k": int32(7)}, map[interface{}]interface{}{"k": int32(7)}},
		// ints shrink to int32 when they fit and widen otherwise
		{int(42), int32(42)},
		{int(math.MaxInt32), int32(math.MaxInt32)},
		{int(math.MaxInt32) + 1, int64(math.MaxInt32) + 1},
		{int(math.MinInt32) - 1, int64(math.MinInt32) - 1},
	} {
		assert.Equal(t, test.want, roundTrip(t, test.in), "%#v", test.in)
	}
}

func TestPairRoundTrip(t *testing.T) {
	recs := []fs.Record{
		{Key: "alpha", Value: int32(1)},
		{Key: []byte{1, 2, 3}, Value: []interface{}{int64(10), "x"}},
		{Key: int32(3), Value: float64(0.25)},
	}
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, rec := range recs {
		require.NoError(t, w.Encode(rec))
	}
	require.NoError(t, w.Flush())

	r := NewReader(&buf)
	for _, want := range recs {
		got, err := r.Decode()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := r.Decode()
	assert.Equal(t, io.EOF, err)
}

func TestDecodeVector(t *testing.T) {
	// vectors only ever come from the tools, so build one by hand:
	// code 8, count 2, then an int32 5 and the string "ab"
	in := []byte{
		8, 0, 0, 0, 2,
		3, 0, 0, 0, 5,
		7, 0, 0, 0, 2, 'a', 'b',
	}
	v, err := NewReader(bytes.NewReader(in)).ReadValue()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int32(5), "ab"}, v)
}

func TestDecodeTruncated(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Encode(fs.Record{Key: "key", Value: "value"}))
	require.NoError(t, w.Flush())
	full := buf.Bytes()

	// cut between the key and the value
	r := NewReader(bytes.NewReader(full[:8]))
	_, err := r.Decode()
	require.Error(t, err)
	assert.NotEqual(t, io.EOF, err)

	// cut inside the key
	r = NewReader(bytes.NewReader(full[:3]))
	_, err = r.Decode()
	require.Error(t, err)
	assert.NotEqual(t, io.EOF, err)
}

func TestDecodeMapBytesKey(t *testing.T) {
	// a map keyed by raw bytes is fine on the wire but Go can't hash
	// it, so it has to come back as an error rather than a panic
	in := []byte{
		10, 0, 0, 0, 1,
		0, 0, 0, 0, 1, 'x',
		1, 5,
	}
	_, err := NewReader(bytes.NewReader(in)).ReadValue()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not comparable")
}

func TestDecodeOverstatedLength(t *testing.T) {
	// headers claiming 2^31-1 elements with nothing behind them must
	// fail on the missing data, not allocate for the claim
	for _, in := range [][]byte{
		{0, 0x7F, 0xFF, 0xFF, 0xFF, 'x'},         // bytes
		{8, 0x7F, 0xFF, 0xFF, 0xFF, 1, 5},        // vector
		{10, 0x7F, 0xFF, 0xFF, 0xFF, 1, 5, 1, 6}, // map
	} {
		_, err := NewReader(bytes.NewReader(in)).ReadValue()
		require.Error(t, err, "%#v", in)
		assert.NotEqual(t, io.EOF, err, "%#v", in)
	}
}

func TestDecodeUnknownCode(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{200, 1, 2, 3}))
	_, err := r.ReadValue()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type code 200")
}

func TestDecodeNegativeLength(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0, 0xFF, 0xFF, 0xFF, 0xFF}))
	_, err := r.ReadValue()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative length")
}

func TestEncodeUnsupported(t *testing.T) {
	var buf bytes.Buffer
	err := NewWriter(&buf).WriteValue(struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}
