//go:build !windows || !amd64

package mempatch

// InstallMidHook requires the Windows/amd64 trampoline; elsewhere the
// patcher still works but hooks report ErrUnsupported.
func (p *Patcher) InstallMidHook(addr uintptr, fn func(*Context)) (*MidHook, error) {
	return nil, ErrUnsupported
}
