package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed32RoundTrip(t *testing.T) {
	buf := AppendFixed32(nil, 0xDEADBEEF)
	assert.Equal(t, uint32(0xDEADBEEF), DecodeFixed32(buf))
}

func TestFixed64RoundTrip(t *testing.T) {
	buf := AppendFixed64(nil, 0x0102030405060708)
	assert.Equal(t, uint64(0x0102030405060708), DecodeFixed64(buf))
}

func TestVarint64RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 300, 1 << 40} {
		buf := AppendVarint64(nil, v)
		got, rest, err := GetVarint64(buf)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Empty(t, rest)
	}
}

func TestGetVarint64EmptyInputErrors(t *testing.T) {
	_, _, err := GetVarint64(nil)
	assert.ErrorIs(t, err, ErrVarintTermination)
}

func TestLengthPrefixedRoundTrip(t *testing.T) {
	buf := AppendLengthPrefixed(nil, []byte("hello"))
	buf = AppendLengthPrefixed(buf, []byte("world"))

	first, rest, err := GetLengthPrefixed(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), first)

	second, rest2, err := GetLengthPrefixed(rest)
	require.NoError(t, err)
	assert.Empty(t, rest2)
	assert.Equal(t, []byte("world"), second)
}

func TestGetLengthPrefixedTruncatedErrors(t *testing.T) {
	buf := AppendLengthPrefixed(nil, []byte("hello"))
	_, _, err := GetLengthPrefixed(buf[:len(buf)-2])
	assert.ErrorIs(t, err, ErrVarintTermination)
}
