package mempatch

import (
	"golang.org/x/arch/x86/x86asm"
)

// prefixInfo describes the instruction prefix at a hook site that the
// redirect will displace.
type prefixInfo struct {
	// length is the size in bytes of whole instructions covering at
	// least the redirect; the splice never cuts an instruction.
	length int
	// relocatable is false if any covered instruction encodes a
	// position-dependent operand and cannot be moved into the
	// trampoline.
	relocatable bool
}

// scanPrefix decodes instructions from src until whole instructions
// cover at least size bytes.
func scanPrefix(src []byte, size int) (prefixInfo, error) {
	inf := prefixInfo{relocatable: true}
	for inf.length < size {
		one, err := analyze(src)
		if err != nil {
			return inf, err
		}
		inf.relocatable = inf.relocatable && one.relocatable
		inf.length += one.length
		src = src[one.length:]
	}
	return inf, nil
}

func analyze(src []byte) (prefixInfo, error) {
	inst, err := x86asm.Decode(src, 64)
	if err != nil {
		return prefixInfo{}, err
	}
	inf := prefixInfo{length: inst.Len, relocatable: true}
	for _, a := range inst.Args {
		if a == nil {
			break
		}
		if mem, ok := a.(x86asm.Mem); ok {
			if mem.Base == x86asm.RIP {
				inf.relocatable = false
				return inf, nil
			}
		} else if _, ok := a.(x86asm.Rel); ok {
			inf.relocatable = false
			return inf, nil
		}
	}
	return inf, nil
}
