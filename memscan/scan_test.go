package memscan

import (
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/PolarWizard/CodeVeinFix/internal/imagetest"
)

func testImage(t *testing.T, size int, payload map[int][]byte) (*Image, []byte) {
	t.Helper()
	buf := make([]byte, size)
	imagetest.Fill(buf)
	for off, b := range payload {
		require.GreaterOrEqual(t, off, imagetest.HeaderSpan)
		copy(buf[off:], b)
	}
	img, err := ImageFromBase(uintptr(unsafe.Pointer(&buf[0])))
	require.NoError(t, err)
	return img, buf
}

func TestScanSingleMatch(t *testing.T) {
	sig := []byte{0xF6, 0x41, 0x2C, 0x01, 0x4C}
	img, buf := testImage(t, 0x4000, map[int][]byte{0x300: sig})

	addrs := Scan(img, MustCompile("F6 41 2C 01 4C"))
	require.Equal(t, []uintptr{img.Base() + 0x300}, addrs)
	runtime.KeepAlive(buf)
}

func TestScanAllMatchesAscending(t *testing.T) {
	sig := []byte{0x39, 0x8E, 0xE3, 0x3F}
	img, buf := testImage(t, 0x4000, map[int][]byte{
		0x2400: sig,
		0x250:  sig,
		0x3FF8: sig,
	})

	addrs := Scan(img, MustCompile("39 8E E3 3F"))
	require.Equal(t, []uintptr{
		img.Base() + 0x250,
		img.Base() + 0x2400,
		img.Base() + 0x3FF8,
	}, addrs)
	runtime.KeepAlive(buf)
}

func TestScanWildcards(t *testing.T) {
	img, buf := testImage(t, 0x1000, map[int][]byte{
		0x200: {0xAA, 0x00, 0xCC},
		0x210: {0xAA, 0xFF, 0xCC},
		0x220: {0xAA, 0xBB, 0xDD},
	})

	addrs := Scan(img, MustCompile("AA ?? CC"))
	require.Equal(t, []uintptr{img.Base() + 0x200, img.Base() + 0x210}, addrs)
	runtime.KeepAlive(buf)
}

func TestScanMatchAtImageTail(t *testing.T) {
	sig := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	img, buf := testImage(t, 0x1000, map[int][]byte{0x1000 - 4: sig})

	addrs := Scan(img, MustCompile("DE AD BE EF"))
	require.Equal(t, []uintptr{img.Base() + 0xFFC}, addrs)
	runtime.KeepAlive(buf)
}

func TestScanFirst(t *testing.T) {
	sig := []byte{0x0F, 0x57, 0xC9}
	img, buf := testImage(t, 0x1000, map[int][]byte{0x400: sig, 0x800: sig})

	addr, found := ScanFirst(img, MustCompile("0F 57 C9"))
	require.True(t, found)
	require.Equal(t, img.Base()+0x400, addr)

	_, found = ScanFirst(img, MustCompile("01 02 03 04 05 06 07 08"))
	require.False(t, found)
	runtime.KeepAlive(buf)
}

// A pattern longer than the scanned data matches nowhere and must not
// read past the end.
func TestScanBytesPatternLongerThanData(t *testing.T) {
	require.Nil(t, ScanBytes([]byte{0x01, 0x02, 0x03}, MustCompile("01 02 03 04 05")))
}

func TestScanBytesOffsets(t *testing.T) {
	data := []byte{0x00, 0xAA, 0xBB, 0x00, 0xAA, 0xBB}
	require.Equal(t, []int{1, 4}, ScanBytes(data, MustCompile("AA BB")))
}

// A signature over a buffer equal to exactly that byte sequence
// matches once, at offset zero.
func TestScanBytesWholeBuffer(t *testing.T) {
	data := []byte{0x12, 0x34, 0x56}
	require.Equal(t, []int{0}, ScanBytes(data, MustCompile("12 34 56")))
}
