// The sigtool command scans an on-disk executable for the same hex
// signatures the fix scans for in memory. Useful for verifying that a
// signature still matches after a game update before shipping it.
//
//	sigtool -file CodeVein-Win64-Shipping.exe "F6 41 2C 01 4C" "39 8E E3 3F"
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	peparser "github.com/saferwall/pe"

	"github.com/PolarWizard/CodeVeinFix/memscan"
)

var (
	fileFlag = flag.String("file", "", "Path to the PE file to scan")
	maxFlag  = flag.Int("max", 10, "Maximum matches to print per signature")
)

func main() {
	flag.Parse()
	if *fileFlag == "" || flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: sigtool -file <pe> <signature> [signature...]")
		os.Exit(2)
	}

	data, err := os.ReadFile(*fileFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	fmt.Printf("file size: %d bytes\n", len(data))

	// Header parsing is best effort. Raw file offsets are still useful
	// when the file is not a well formed PE.
	file := parsePE(data)
	if file != nil {
		printImageInfo(file)
	}

	exitCode := 0
	for _, sig := range flag.Args() {
		pat, err := memscan.Compile(sig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad signature '%s': %v\n", sig, err)
			exitCode = 1
			continue
		}

		offs := memscan.ScanBytes(data, pat)
		if len(offs) == 0 {
			fmt.Printf("'%s': NOT FOUND\n", sig)
			exitCode = 1
			continue
		}

		fmt.Printf("'%s': %d match(es)\n", sig, len(offs))
		for i, off := range offs {
			if i >= *maxFlag {
				fmt.Printf("  ... %d more\n", len(offs)-i)
				break
			}
			if rva, sec, ok := fileOffsetToRVA(file, off); ok {
				fmt.Printf("  file offset 0x%X  rva 0x%X  section %s\n", off, rva, sec)
			} else {
				fmt.Printf("  file offset 0x%X\n", off)
			}
		}
	}
	os.Exit(exitCode)
}

func parsePE(data []byte) *peparser.File {
	file, err := peparser.NewBytes(data, &peparser.Options{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: not parseable as PE:", err)
		return nil
	}
	if err := file.Parse(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: PE parse failed:", err)
		return nil
	}
	return file
}

func printImageInfo(file *peparser.File) {
	if oh, ok := file.NtHeader.OptionalHeader.(peparser.ImageOptionalHeader64); ok {
		fmt.Printf("image base 0x%X, size of image 0x%X, %d sections\n",
			oh.ImageBase, oh.SizeOfImage, len(file.Sections))
	}
}

// fileOffsetToRVA maps a raw file offset into the virtual address space
// using the section table.
func fileOffsetToRVA(file *peparser.File, off int) (uint32, string, bool) {
	if file == nil {
		return 0, "", false
	}
	for _, sec := range file.Sections {
		start := int(sec.Header.PointerToRawData)
		end := start + int(sec.Header.SizeOfRawData)
		if off >= start && off < end {
			rva := sec.Header.VirtualAddress + uint32(off-start)
			name := strings.TrimRight(string(sec.Header.Name[:]), "\x00")
			return rva, name, true
		}
	}
	return 0, "", false
}
