package mempatch

import "sync"

// MidHook owns the redirect and trampoline for one hooked address. A
// hook persists for the remaining lifetime of the process: there is no
// uninstall, and the handle is retained in the package registry so the
// trampoline, context block and callback stay reachable for as long as
// the host's control flow can hit the hooked address.
type MidHook struct {
	addr      uintptr
	prefixLen int
	tramp     uintptr
	ctx       *cpuContext
	fn        func(*Context)
	cb        uintptr
}

// Addr returns the hooked address.
func (h *MidHook) Addr() uintptr { return h.addr }

// Trampoline returns the address of the trampoline body, mostly for
// diagnostics.
func (h *MidHook) Trampoline() uintptr { return h.tramp }

var (
	// hooks keyed by target address; one hook per address.
	hooks   = make(map[uintptr]*MidHook)
	hooksMu sync.Mutex
)
