package memscan

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileExact(t *testing.T) {
	pat, err := Compile("F6 41 2C 01 4C")
	require.NoError(t, err)
	require.Equal(t, Pattern{
		{Byte: 0xF6}, {Byte: 0x41}, {Byte: 0x2C}, {Byte: 0x01}, {Byte: 0x4C},
	}, pat)
}

func TestCompileWildcards(t *testing.T) {
	for _, sig := range []string{"AA ?? CC", "AA ? CC", "AA?CC", "AA??CC"} {
		pat, err := Compile(sig)
		require.NoError(t, err, sig)
		require.Equal(t, Pattern{{Byte: 0xAA}, {Any: true}, {Byte: 0xCC}}, pat, sig)
	}
}

func TestCompileWhitespace(t *testing.T) {
	pat, err := Compile("  48\t8B\n05 ")
	require.NoError(t, err)
	require.Equal(t, Pattern{{Byte: 0x48}, {Byte: 0x8B}, {Byte: 0x05}}, pat)
}

func TestCompileEmpty(t *testing.T) {
	pat, err := Compile("")
	require.NoError(t, err)
	require.Empty(t, pat)
}

func TestCompileMalformed(t *testing.T) {
	for _, sig := range []string{"GG", "48 8B ZZ", "48-8B", "0x48"} {
		_, err := Compile(sig)
		require.ErrorIs(t, err, ErrMalformedSignature, sig)
	}
}

func TestCompileDeterministic(t *testing.T) {
	const sig = "F3 0F 10 81 ?? 03 00 00"
	a, err := Compile(sig)
	require.NoError(t, err)
	b, err := Compile(sig)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestMustCompilePanics(t *testing.T) {
	require.Panics(t, func() { MustCompile("XY") })
}

func TestLiteral(t *testing.T) {
	b, ok := MustCompile("F6 41 2C 00").Literal()
	require.True(t, ok)
	require.Equal(t, []byte{0xF6, 0x41, 0x2C, 0x00}, b)

	_, ok = MustCompile("F6 ?? 2C").Literal()
	require.False(t, ok)
}

// Serializing a 4-byte value through the signature grammar and
// compiling it back must yield the value's bytes in memory order.
func TestFormatBytesRoundTrip(t *testing.T) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(16.0/9.0))

	sig := FormatBytes(buf[:])
	require.Equal(t, "39 8E E3 3F", sig)

	back, ok := MustCompile(sig).Literal()
	require.True(t, ok)
	require.Equal(t, buf[:], back)
}
