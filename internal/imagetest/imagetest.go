// Package imagetest builds minimal mapped PE64 images in ordinary
// buffers so scanner and patcher tests can run against a real header
// walk without a loaded module.
package imagetest

import "encoding/binary"

// HeaderSpan is the first offset past the synthetic headers; test
// payloads go at or after this offset.
const HeaderSpan = 0x200

// Fill writes a valid DOS/NT header pair into buf declaring
// SizeOfImage = len(buf), so an image handle created over &buf[0]
// spans exactly the buffer.
func Fill(buf []byte) {
	if len(buf) < HeaderSpan {
		panic("imagetest: buffer smaller than header span")
	}
	binary.LittleEndian.PutUint16(buf[0x00:], 0x5A4D)  // "MZ"
	binary.LittleEndian.PutUint32(buf[0x3C:], 0x80)    // e_lfanew
	binary.LittleEndian.PutUint32(buf[0x80:], 0x4550)  // "PE\0\0"
	binary.LittleEndian.PutUint16(buf[0x84:], 0x8664)  // machine: amd64
	binary.LittleEndian.PutUint16(buf[0x94:], 0xF0)    // SizeOfOptionalHeader
	binary.LittleEndian.PutUint16(buf[0x98:], 0x20B)   // PE32+ magic
	binary.LittleEndian.PutUint32(buf[0xD0:], uint32(len(buf))) // SizeOfImage
}
