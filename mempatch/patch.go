// Package mempatch overwrites code and data inside the host process's
// own mapped image. Writes go through a protect-write-restore sequence
// so executable pages can be modified in place; mid-function hooks
// splice a trampoline into existing code and hand a register view to a
// Go callback before the original instructions resume.
//
// Nothing here synchronizes against another thread executing the bytes
// being rewritten. The caller's contract is to patch before the host's
// other threads can reach the affected code, typically during a
// single-threaded startup phase.
package mempatch

import (
	"fmt"
	"unsafe"

	"github.com/PolarWizard/CodeVeinFix/memscan"
)

// Patcher performs protected writes inside one mapped image. Target
// addresses come from the caller (normally scanner hits inside the
// same image); the patcher's own checking is limited to keeping every
// write within the image extent.
type Patcher struct {
	img *memscan.Image
}

// New returns a Patcher bound to img.
func New(img *memscan.Image) *Patcher {
	return &Patcher{img: img}
}

// Patch compiles sig through the signature grammar and writes the
// resulting bytes at addr. Wildcards are rejected; a replacement must
// spell out every byte it touches.
func (p *Patcher) Patch(addr uintptr, sig string) error {
	pat, err := memscan.Compile(sig)
	if err != nil {
		return err
	}
	b, ok := pat.Literal()
	if !ok {
		return fmt.Errorf("%w: %q", ErrWildcardInPatch, sig)
	}
	return p.PatchBytes(addr, b)
}

// PatchBytes writes b at addr under a temporarily relaxed protection
// window, restoring the prior protection afterwards. If the protection
// change fails nothing is written.
func (p *Patcher) PatchBytes(addr uintptr, b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if !p.img.Contains(addr, uintptr(len(b))) {
		return fmt.Errorf("%w: 0x%X+%d", ErrOutOfBounds, p.img.Offset(addr), len(b))
	}
	return writeProtected(addr, b)
}

// Image returns the image this patcher writes into.
func (p *Patcher) Image() *memscan.Image { return p.img }

func memSlice(addr uintptr, n int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n)
}
