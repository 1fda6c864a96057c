package memscan

import (
	"debug/pe"
	"errors"
	"fmt"
	"unsafe"
)

// ErrInvalidImageHeader means the bytes at a supplied module base do
// not form a recognizable mapped PE image. This indicates the caller
// passed a handle that was never valid; scans must not proceed on it.
var ErrInvalidImageHeader = errors.New("invalid image header")

const (
	imageDOSSignature    = 0x5A4D     // "MZ"
	imageNTSignature     = 0x00004550 // "PE\0\0"
	ntOptionalHdr64Magic = 0x20B
)

type imageDOSHeader struct {
	EMagic    uint16
	ECblp     uint16
	ECp       uint16
	ECrlc     uint16
	ECparhdr  uint16
	EMinalloc uint16
	EMaxalloc uint16
	ESS       uint16
	ESP       uint16
	ECsum     uint16
	EIP       uint16
	ECS       uint16
	ELfarlc   uint16
	EOvno     uint16
	ERes      [4]uint16
	EOemid    uint16
	EOeminfo  uint16
	ERes2     [10]uint16
	ELfanew   int32
}

// imageNTHeaders64 matches the in-memory layout of IMAGE_NT_HEADERS64.
// The debug/pe structs carry the exact field layout of the file and
// optional headers, so the loader-mapped bytes can be viewed through
// them directly.
type imageNTHeaders64 struct {
	Signature      uint32
	FileHeader     pe.FileHeader
	OptionalHeader pe.OptionalHeader64
}

// Image is an opaque handle to a loaded module's mapped extent. The
// size always comes from the module's own header metadata, never from
// the file size on disk; the mapped image is typically larger due to
// section alignment. An Image stays valid for the lifetime of the
// host process because the loader owns the mapping.
type Image struct {
	base uintptr
	size uintptr
}

// ImageFromBase reads the PE headers mapped at base and returns a
// handle spanning the full declared image. Any header mismatch is an
// error; a scan over a misread image must never silently cover zero
// bytes.
func ImageFromBase(base uintptr) (*Image, error) {
	if base == 0 {
		return nil, fmt.Errorf("%w: nil module base", ErrInvalidImageHeader)
	}
	dos := (*imageDOSHeader)(unsafe.Pointer(base))
	if dos.EMagic != imageDOSSignature {
		return nil, fmt.Errorf("%w: bad DOS magic 0x%04X", ErrInvalidImageHeader, dos.EMagic)
	}
	if dos.ELfanew <= 0 {
		return nil, fmt.Errorf("%w: bad e_lfanew %d", ErrInvalidImageHeader, dos.ELfanew)
	}
	nt := (*imageNTHeaders64)(unsafe.Pointer(base + uintptr(dos.ELfanew)))
	if nt.Signature != imageNTSignature {
		return nil, fmt.Errorf("%w: bad NT signature 0x%08X", ErrInvalidImageHeader, nt.Signature)
	}
	if nt.OptionalHeader.Magic != ntOptionalHdr64Magic {
		return nil, fmt.Errorf("%w: bad optional header magic 0x%04X", ErrInvalidImageHeader, nt.OptionalHeader.Magic)
	}
	if nt.OptionalHeader.SizeOfImage == 0 {
		return nil, fmt.Errorf("%w: zero SizeOfImage", ErrInvalidImageHeader)
	}
	return &Image{base: base, size: uintptr(nt.OptionalHeader.SizeOfImage)}, nil
}

// Base returns the module base address.
func (img *Image) Base() uintptr { return img.base }

// Size returns the mapped image size in bytes.
func (img *Image) Size() uintptr { return img.size }

// Contains reports whether the span [addr, addr+n) lies entirely
// inside the mapped image.
func (img *Image) Contains(addr, n uintptr) bool {
	return addr >= img.base && addr+n >= addr && addr+n <= img.base+img.size
}

// Offset converts an absolute address to a module-relative offset,
// the stable form used for reporting across runs.
func (img *Image) Offset(addr uintptr) uintptr { return addr - img.base }

func (img *Image) bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(img.base)), img.size)
}
