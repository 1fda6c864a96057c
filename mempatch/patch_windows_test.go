//go:build windows

package mempatch

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"

	"github.com/PolarWizard/CodeVeinFix/internal/imagetest"
)

// Protection flags must come back exactly as they were before the
// write, as reported by the OS rather than assumed.
func TestPatchRestoresProtection(t *testing.T) {
	img, _ := mapImage(t, 0x1000)
	addr := img.Base() + imagetest.HeaderSpan

	var before, after windows.MemoryBasicInformation
	require.NoError(t, windows.VirtualQuery(addr, &before, unsafe.Sizeof(before)))

	require.NoError(t, New(img).Patch(addr, "DE AD BE EF"))

	require.NoError(t, windows.VirtualQuery(addr, &after, unsafe.Sizeof(after)))
	require.Equal(t, before.Protect, after.Protect)
}
