package varint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 16384, 1 << 32, ^uint64(0)}
	for _, v := range values {
		buf := Append(nil, v)
		got, n, err := Decode(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.Equal(t, v, got)
	}
}

func TestDecodeTruncated(t *testing.T) {
	buf := Append(nil, 300)
	_, _, err := Decode(buf[:1])
	require.Error(t, err)
}
