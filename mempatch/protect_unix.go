//go:build !windows

package mempatch

import (
	"fmt"

	"golang.org/x/sys/unix"
)

var pageSize = uintptr(unix.Getpagesize())

// writeProtected copies b to addr under a temporary RWX window.
// mprotect works on whole pages and POSIX has no call to query the
// prior protection, so the range is restored to read+execute, the
// protection every patch site in a mapped text image started with.
func writeProtected(addr uintptr, b []byte) error {
	size := uintptr(len(b))
	if err := protectPages(addr, size, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("%w: %v", ErrProtectionChange, err)
	}
	copy(memSlice(addr, len(b)), b)
	if err := protectPages(addr, size, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("%w: %v", ErrProtectionChange, err)
	}
	return nil
}

func protectPages(addr, size uintptr, prot int) error {
	start := pageSize * (addr / pageSize)
	length := pageSize * ((addr + size + pageSize - 1 - start) / pageSize)
	for i := uintptr(0); i < length; i += pageSize {
		if err := unix.Mprotect(memSlice(start+i, int(pageSize)), prot); err != nil {
			return err
		}
	}
	return nil
}
