package mempatch

import (
	"encoding/binary"
	"math"
)

// cpuContext is the register spill block written and reloaded by the
// trampoline. Field offsets are hardcoded in the emitter; changing the
// layout requires matching changes in emit.go (the offsets are pinned
// by TestContextLayout).
type cpuContext struct {
	rax, rcx, rdx, rbx uint64 // 0x00
	rsp, rbp, rsi, rdi uint64 // 0x20
	r8, r9, r10, r11   uint64 // 0x40
	r12, r13, r14, r15 uint64 // 0x60
	rflags             uint64 // 0x80
	_                  uint64
	xmm                [6][16]byte // 0x90
}

// Context is the view of processor state a mid-hook callback receives.
// It exposes the registers the trampoline snapshots; writes through
// the setters are loaded back into the processor before the original
// instructions resume. RSP is a snapshot only and is never reloaded.
type Context struct {
	c *cpuContext
}

func (c *Context) RAX() uint64 { return c.c.rax }
func (c *Context) RCX() uint64 { return c.c.rcx }
func (c *Context) RDX() uint64 { return c.c.rdx }
func (c *Context) RBX() uint64 { return c.c.rbx }
func (c *Context) RSP() uint64 { return c.c.rsp }
func (c *Context) RBP() uint64 { return c.c.rbp }
func (c *Context) RSI() uint64 { return c.c.rsi }
func (c *Context) RDI() uint64 { return c.c.rdi }
func (c *Context) R8() uint64  { return c.c.r8 }
func (c *Context) R9() uint64  { return c.c.r9 }
func (c *Context) R10() uint64 { return c.c.r10 }
func (c *Context) R11() uint64 { return c.c.r11 }
func (c *Context) R12() uint64 { return c.c.r12 }
func (c *Context) R13() uint64 { return c.c.r13 }
func (c *Context) R14() uint64 { return c.c.r14 }
func (c *Context) R15() uint64 { return c.c.r15 }

func (c *Context) SetRAX(v uint64) { c.c.rax = v }
func (c *Context) SetRCX(v uint64) { c.c.rcx = v }
func (c *Context) SetRDX(v uint64) { c.c.rdx = v }
func (c *Context) SetRBX(v uint64) { c.c.rbx = v }
func (c *Context) SetRBP(v uint64) { c.c.rbp = v }
func (c *Context) SetRSI(v uint64) { c.c.rsi = v }
func (c *Context) SetRDI(v uint64) { c.c.rdi = v }
func (c *Context) SetR8(v uint64)  { c.c.r8 = v }
func (c *Context) SetR9(v uint64)  { c.c.r9 = v }
func (c *Context) SetR10(v uint64) { c.c.r10 = v }
func (c *Context) SetR11(v uint64) { c.c.r11 = v }
func (c *Context) SetR12(v uint64) { c.c.r12 = v }
func (c *Context) SetR13(v uint64) { c.c.r13 = v }
func (c *Context) SetR14(v uint64) { c.c.r14 = v }
func (c *Context) SetR15(v uint64) { c.c.r15 = v }

// XMM returns the mutable 16-byte contents of xmm0-xmm5.
func (c *Context) XMM(n int) []byte { return c.c.xmm[n][:] }

// XMM0Float32 returns lane 0 of XMM0 as a float32, the scalar slot
// movss/comiss operate on.
func (c *Context) XMM0Float32() float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(c.c.xmm[0][:4]))
}

// SetXMM0Float32 overwrites lane 0 of XMM0.
func (c *Context) SetXMM0Float32(v float32) {
	binary.LittleEndian.PutUint32(c.c.xmm[0][:4], math.Float32bits(v))
}
