package mempatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanPrefixWholeInstructions(t *testing.T) {
	// xorps xmm0,xmm0 ; movss [rcx],xmm0 ; ret
	code := []byte{0x0F, 0x57, 0xC0, 0xF3, 0x0F, 0x11, 0x01, 0xC3}

	inf, err := scanPrefix(code, jmpRel32Len)
	require.NoError(t, err)
	require.True(t, inf.relocatable)
	// Covering 5 bytes takes both leading instructions: 3 + 4.
	require.Equal(t, 7, inf.length)

	inf, err = scanPrefix(code[3:], jmpRel32Len)
	require.NoError(t, err)
	require.True(t, inf.relocatable)
	require.Equal(t, 5, inf.length) // movss + ret, exactly the redirect size
}

func TestScanPrefixRejectsRelativeBranch(t *testing.T) {
	// call rel32 ; nop...
	code := []byte{0xE8, 0x00, 0x00, 0x00, 0x00, 0x90, 0x90, 0x90}
	inf, err := scanPrefix(code, jmpRel32Len)
	require.NoError(t, err)
	require.False(t, inf.relocatable)
}

func TestScanPrefixRejectsRIPRelative(t *testing.T) {
	// lea rax,[rip+0] ; nop
	code := []byte{0x48, 0x8D, 0x05, 0x00, 0x00, 0x00, 0x00, 0x90}
	inf, err := scanPrefix(code, jmpRel32Len)
	require.NoError(t, err)
	require.False(t, inf.relocatable)
}

func TestScanPrefixLongInstruction(t *testing.T) {
	// mov rax, imm64: one 10-byte instruction covers the redirect.
	code := []byte{0x48, 0xB8, 1, 2, 3, 4, 5, 6, 7, 8}
	inf, err := scanPrefix(code, jmpRel32Len)
	require.NoError(t, err)
	require.True(t, inf.relocatable)
	require.Equal(t, 10, inf.length)
}

func TestScanPrefixUndecodable(t *testing.T) {
	_, err := scanPrefix([]byte{0x0F}, jmpRel32Len)
	require.Error(t, err)
}
