package mempatch

import "encoding/binary"

const (
	// jmpRel32Len is the size of an E9 rel32 redirect.
	jmpRel32Len = 5
	// jmpAbsLen is the size of the FF 25 [RIP+0] + imm64 redirect used
	// when the trampoline is outside rel32 range.
	jmpAbsLen = 14
	// trampolineCap bounds the emitted trampoline: spill + call +
	// reload come to just over 200 bytes, plus the relocated prefix
	// and the jump back.
	trampolineCap = 320
)

func put(code []byte, b ...byte) []byte { return append(code, b...) }

func putU32(code []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(code, b[:]...)
}

func putU64(code []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(code, b[:]...)
}

func movRAXImm(code []byte, v uint64) []byte {
	return putU64(put(code, 0x48, 0xB8), v)
}

// jmpRel32Reach reports whether a rel32 jump at 'from' can reach 'to'.
func jmpRel32Reach(from, to uintptr) bool {
	d := int64(to) - int64(from) - jmpRel32Len
	return d >= -1<<31 && d < 1<<31
}

// jmpRel32 encodes "JMP rel32" placed at 'from' targeting 'to'.
func jmpRel32(from, to uintptr) []byte {
	d := int64(to) - int64(from) - jmpRel32Len
	return putU32([]byte{0xE9}, uint32(int32(d)))
}

// jmpAbs encodes "JMP [RIP+0]" followed by the inline 64-bit target.
// Position independent and register free, at the cost of 14 bytes.
func jmpAbs(to uintptr) []byte {
	return putU64([]byte{0xFF, 0x25, 0x00, 0x00, 0x00, 0x00}, uint64(to))
}

// jmpPushRet encodes a jump to 'to' via push/ret. Like jmpAbs it works
// at any distance without registers, and it also leaves RFLAGS alone,
// which matters after the trampoline has restored them.
func jmpPushRet(to uintptr) []byte {
	code := putU32([]byte{0x68}, uint32(to))              // push imm32 (sign-extended)
	code = putU32(put(code, 0xC7, 0x44, 0x24, 0x04), uint32(to>>32)) // mov [rsp+4], imm32
	return put(code, 0xC3)                                // ret
}

// emitTrampoline assembles the trampoline body: spill the register
// file and XMM0-XMM5 into the context block at ctx, call cb with ctx
// as its argument, reload the possibly-mutated registers, execute the
// relocated prologue bytes, and jump back to resume.
//
// cb follows the Win64 C ABI (a windows.NewCallback pointer): first
// argument in RCX, 32 bytes of shadow space, RSP 16-aligned at the
// call. The hook site's RSP alignment is arbitrary, so the original
// RSP is parked in RBX (already spilled) across the call.
func emitTrampoline(ctx, cb uintptr, prologue []byte, resume uintptr) []byte {
	code := make([]byte, 0, trampolineCap)

	// Spill. RAX is staged on the stack so it can serve as the context
	// base while its own slot is filled last.
	code = put(code, 0x50)                         // push rax
	code = movRAXImm(code, uint64(ctx))            // mov rax, ctx
	code = put(code, 0x48, 0x89, 0x48, 0x08)       // mov [rax+0x08], rcx
	code = put(code, 0x48, 0x89, 0x50, 0x10)       // mov [rax+0x10], rdx
	code = put(code, 0x48, 0x89, 0x58, 0x18)       // mov [rax+0x18], rbx
	code = put(code, 0x48, 0x8D, 0x4C, 0x24, 0x08) // lea rcx, [rsp+8]  (pre-hook rsp)
	code = put(code, 0x48, 0x89, 0x48, 0x20)       // mov [rax+0x20], rcx
	code = put(code, 0x48, 0x89, 0x68, 0x28)       // mov [rax+0x28], rbp
	code = put(code, 0x48, 0x89, 0x70, 0x30)       // mov [rax+0x30], rsi
	code = put(code, 0x48, 0x89, 0x78, 0x38)       // mov [rax+0x38], rdi
	code = put(code, 0x4C, 0x89, 0x40, 0x40)       // mov [rax+0x40], r8
	code = put(code, 0x4C, 0x89, 0x48, 0x48)       // mov [rax+0x48], r9
	code = put(code, 0x4C, 0x89, 0x50, 0x50)       // mov [rax+0x50], r10
	code = put(code, 0x4C, 0x89, 0x58, 0x58)       // mov [rax+0x58], r11
	code = put(code, 0x4C, 0x89, 0x60, 0x60)       // mov [rax+0x60], r12
	code = put(code, 0x4C, 0x89, 0x68, 0x68)       // mov [rax+0x68], r13
	code = put(code, 0x4C, 0x89, 0x70, 0x70)       // mov [rax+0x70], r14
	code = put(code, 0x4C, 0x89, 0x78, 0x78)       // mov [rax+0x78], r15
	code = put(code, 0x59)                         // pop rcx (original rax)
	code = put(code, 0x48, 0x89, 0x08)             // mov [rax], rcx
	code = put(code, 0x9C)                         // pushfq
	code = put(code, 0x59)                         // pop rcx
	code = put(code, 0x48, 0x89, 0x88)             // mov [rax+0x80], rcx
	code = putU32(code, 0x80)
	for i := 0; i < 6; i++ { // movups [rax+0x90+16*i], xmmN
		code = put(code, 0x0F, 0x11, 0x80|byte(i)<<3)
		code = putU32(code, uint32(0x90+16*i))
	}

	// Call out.
	code = put(code, 0x48, 0x89, 0xC1)       // mov rcx, rax
	code = movRAXImm(code, uint64(cb))       // mov rax, cb
	code = put(code, 0x48, 0x89, 0xE3)       // mov rbx, rsp
	code = put(code, 0x48, 0x83, 0xE4, 0xF0) // and rsp, -16
	code = put(code, 0x48, 0x83, 0xEC, 0x20) // sub rsp, 0x20
	code = put(code, 0xFF, 0xD0)             // call rax
	code = put(code, 0x48, 0x89, 0xDC)       // mov rsp, rbx

	// Reload; the callback may have rewritten any slot. RSP stays as
	// it was, and none of the remaining loads touch RFLAGS.
	code = movRAXImm(code, uint64(ctx)) // mov rax, ctx
	code = put(code, 0x48, 0x8B, 0x88)  // mov rcx, [rax+0x80]
	code = putU32(code, 0x80)
	code = put(code, 0x51) // push rcx
	code = put(code, 0x9D) // popfq
	for i := 0; i < 6; i++ { // movups xmmN, [rax+0x90+16*i]
		code = put(code, 0x0F, 0x10, 0x80|byte(i)<<3)
		code = putU32(code, uint32(0x90+16*i))
	}
	code = put(code, 0x48, 0x8B, 0x48, 0x08) // mov rcx, [rax+0x08]
	code = put(code, 0x48, 0x8B, 0x50, 0x10) // mov rdx, [rax+0x10]
	code = put(code, 0x48, 0x8B, 0x58, 0x18) // mov rbx, [rax+0x18]
	code = put(code, 0x48, 0x8B, 0x68, 0x28) // mov rbp, [rax+0x28]
	code = put(code, 0x48, 0x8B, 0x70, 0x30) // mov rsi, [rax+0x30]
	code = put(code, 0x48, 0x8B, 0x78, 0x38) // mov rdi, [rax+0x38]
	code = put(code, 0x4C, 0x8B, 0x40, 0x40) // mov r8,  [rax+0x40]
	code = put(code, 0x4C, 0x8B, 0x48, 0x48) // mov r9,  [rax+0x48]
	code = put(code, 0x4C, 0x8B, 0x50, 0x50) // mov r10, [rax+0x50]
	code = put(code, 0x4C, 0x8B, 0x58, 0x58) // mov r11, [rax+0x58]
	code = put(code, 0x4C, 0x8B, 0x60, 0x60) // mov r12, [rax+0x60]
	code = put(code, 0x4C, 0x8B, 0x68, 0x68) // mov r13, [rax+0x68]
	code = put(code, 0x4C, 0x8B, 0x70, 0x70) // mov r14, [rax+0x70]
	code = put(code, 0x4C, 0x8B, 0x78, 0x78) // mov r15, [rax+0x78]
	code = put(code, 0x48, 0x8B, 0x00)       // mov rax, [rax]

	code = append(code, prologue...)
	return append(code, jmpPushRet(resume)...)
}

// redirectCode builds the bytes written at the hook site: a jump to
// the trampoline, NOP-filled out to prefixLen so no torn instruction
// remains behind the splice.
func redirectCode(addr, tramp uintptr, prefixLen int) []byte {
	redirect := make([]byte, prefixLen)
	for i := range redirect {
		redirect[i] = 0x90
	}
	if jmpRel32Reach(addr, tramp) {
		copy(redirect, jmpRel32(addr, tramp))
	} else {
		copy(redirect, jmpAbs(tramp))
	}
	return redirect
}
