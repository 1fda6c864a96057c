package mempatch

import "errors"

var (
	// ErrOutOfBounds means a patch or hook span would cross the end of
	// the mapped image. Detected before any byte is written.
	ErrOutOfBounds = errors.New("write exceeds image bounds")
	// ErrProtectionChange means the OS refused to relax or restore
	// memory protection for the target range.
	ErrProtectionChange = errors.New("memory protection change failed")
	// ErrWildcardInPatch means a replacement signature contained a
	// wildcard; patches must be exact bytes.
	ErrWildcardInPatch = errors.New("wildcard in patch bytes")
	// ErrDoubleHook means the address already has a hook installed.
	ErrDoubleHook = errors.New("double hook")
	// ErrNotRelocatable means the code at the hook site starts with an
	// instruction that cannot be moved into the trampoline (relative
	// branch or RIP-relative operand).
	ErrNotRelocatable = errors.New("relative address in relocated code")
	// ErrUnsupported means mid-hooks are not available on this
	// platform/architecture combination.
	ErrUnsupported = errors.New("mid-hooks unsupported on this platform")
)
