package compression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripEveryCodec(t *testing.T) {
	data := []byte(`{"name":"alice","tags":["a","b","c"],"age":30}`)
	for _, ctype := range []Type{None, Snappy, LZ4, Zstd} {
		ctype := ctype
		t.Run(ctype.String(), func(t *testing.T) {
			compressed, err := Compress(ctype, data)
			require.NoError(t, err)

			decompressed, err := Decompress(ctype, compressed, len(data))
			require.NoError(t, err)
			assert.Equal(t, data, decompressed)
		})
	}
}

func TestRoundTripEmptyInput(t *testing.T) {
	for _, ctype := range []Type{None, Snappy, LZ4, Zstd} {
		ctype := ctype
		t.Run(ctype.String(), func(t *testing.T) {
			compressed, err := Compress(ctype, nil)
			require.NoError(t, err)
			decompressed, err := Decompress(ctype, compressed, 0)
			require.NoError(t, err)
			assert.Empty(t, decompressed)
		})
	}
}

func TestUnsupportedTypeErrors(t *testing.T) {
	_, err := Compress(Type(99), []byte("x"))
	assert.Error(t, err)

	_, err = Decompress(Type(99), []byte("x"), 1)
	assert.Error(t, err)
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "Zstd", Zstd.String())
	assert.Equal(t, "None", None.String())
	assert.Contains(t, Type(42).String(), "Unknown")
}
