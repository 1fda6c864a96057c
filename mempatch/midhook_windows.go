//go:build windows && amd64

package mempatch

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// prologueWindow is how many bytes past the hook site the decoder may
// examine while assembling a relocatable prefix.
const prologueWindow = 32

// InstallMidHook splices execution at addr: when control reaches it,
// fn runs with a snapshot of the register file, any registers it
// rewrites are loaded back, and the instructions originally at addr
// execute before control continues. The redirect displaces only whole
// instructions; the displaced ones run from the trampoline.
func (p *Patcher) InstallMidHook(addr uintptr, fn func(*Context)) (*MidHook, error) {
	if fn == nil {
		return nil, errors.New("nil mid-hook callback")
	}
	window := prologueWindow
	if !p.img.Contains(addr, uintptr(window)) {
		if !p.img.Contains(addr, jmpAbsLen) {
			return nil, fmt.Errorf("%w: hook site 0x%X", ErrOutOfBounds, p.img.Offset(addr))
		}
		window = int(p.img.Base() + p.img.Size() - addr)
	}

	hooksMu.Lock()
	defer hooksMu.Unlock()
	if _, ok := hooks[addr]; ok {
		return nil, fmt.Errorf("%w at 0x%X", ErrDoubleHook, p.img.Offset(addr))
	}

	tramp, err := windows.VirtualAlloc(0, trampolineCap,
		windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_EXECUTE_READWRITE)
	if err != nil {
		return nil, fmt.Errorf("allocating trampoline: %w", err)
	}
	installed := false
	defer func() {
		if !installed {
			_ = windows.VirtualFree(tramp, 0, windows.MEM_RELEASE)
		}
	}()

	redirectLen := jmpRel32Len
	if !jmpRel32Reach(addr, tramp) {
		redirectLen = jmpAbsLen
	}

	src := memSlice(addr, window)
	inf, err := scanPrefix(src, redirectLen)
	if err != nil {
		return nil, fmt.Errorf("decoding prologue at 0x%X: %w", p.img.Offset(addr), err)
	}
	if !inf.relocatable {
		return nil, fmt.Errorf("%w at 0x%X", ErrNotRelocatable, p.img.Offset(addr))
	}

	h := &MidHook{
		addr:      addr,
		prefixLen: inf.length,
		tramp:     tramp,
		ctx:       new(cpuContext),
		fn:        fn,
	}
	h.cb = windows.NewCallback(func(_ uintptr) uintptr {
		h.fn(&Context{c: h.ctx})
		return 0
	})

	prologue := make([]byte, inf.length)
	copy(prologue, src[:inf.length])
	body := emitTrampoline(uintptr(unsafe.Pointer(h.ctx)), h.cb, prologue, addr+uintptr(inf.length))
	if len(body) > trampolineCap {
		return nil, fmt.Errorf("trampoline body %d exceeds allocation", len(body))
	}
	copy(memSlice(tramp, len(body)), body)

	if err := writeProtected(addr, redirectCode(addr, tramp, inf.length)); err != nil {
		return nil, err
	}

	hooks[addr] = h
	installed = true
	return h, nil
}
