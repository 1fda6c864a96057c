//go:build windows

package mempatch

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// writeProtected flips the target range to execute+read+write, copies
// b in, and puts back the protection VirtualProtect reported, not an
// assumed value.
func writeProtected(addr uintptr, b []byte) error {
	size := uintptr(len(b))
	var old uint32
	if err := windows.VirtualProtect(addr, size, windows.PAGE_EXECUTE_READWRITE, &old); err != nil {
		return fmt.Errorf("%w: %v", ErrProtectionChange, err)
	}
	copy(memSlice(addr, len(b)), b)
	if err := windows.VirtualProtect(addr, size, old, &old); err != nil {
		return fmt.Errorf("%w: restoring 0x%X: %v", ErrProtectionChange, old, err)
	}
	return nil
}
