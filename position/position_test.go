package position

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	cases := []struct{ line, col uint32 }{
		{0, 0}, {5, 100}, {100, 5}, {16383, 16383}, {0, 131071}, {131071, 0},
	}
	for _, c := range cases {
		v, shape, err := Pack(c.line, c.col)
		require.NoError(t, err)
		line, col := Unpack(v, shape)
		require.Equal(t, c.line, line)
		require.Equal(t, c.col, col)
	}
}

func TestPackOverflow(t *testing.T) {
	_, _, err := Pack(1<<17, 0)
	require.Error(t, err)

	_, _, err = Pack(0, 1<<17)
	require.Error(t, err)
}

func TestShapeSelection(t *testing.T) {
	_, shape, err := Pack(5, 100)
	require.NoError(t, err)
	require.Equal(t, Shape0, shape)

	_, shape, err = Pack(100, 5)
	require.NoError(t, err)
	require.Equal(t, Shape1, shape)
}
