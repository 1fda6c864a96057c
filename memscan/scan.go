package memscan

// Scan walks the image byte-by-byte and returns every absolute
// address where pat matches, in ascending order. There is no early
// exit: signatures such as a hardcoded aspect ratio recur at multiple
// sites within the same image and every one of them must be reported.
// An empty result means the signature was not found. A pattern longer
// than the image matches nowhere; the final candidate offset is
// Size()-len(pat), so no read ever crosses the image bound.
func Scan(img *Image, pat Pattern) []uintptr {
	offs := ScanBytes(img.bytes(), pat)
	if offs == nil {
		return nil
	}
	addrs := make([]uintptr, len(offs))
	for i, off := range offs {
		addrs[i] = img.base + uintptr(off)
	}
	return addrs
}

// ScanFirst returns the lowest matching address. Callers that want
// only one patch site use this; callers that must patch every site
// use Scan.
func ScanFirst(img *Image, pat Pattern) (uintptr, bool) {
	n := len(pat)
	if uintptr(n) > img.size {
		return 0, false
	}
	buf := img.bytes()
	for i := 0; i+n <= len(buf); i++ {
		if matchAt(buf, i, pat) {
			return img.base + uintptr(i), true
		}
	}
	return 0, false
}

// ScanBytes is the engine behind Scan, operating on a plain buffer
// and returning buffer offsets. It also serves offline scans of
// on-disk images, where offsets are file-relative.
func ScanBytes(data []byte, pat Pattern) []int {
	n := len(pat)
	if n > len(data) {
		return nil
	}
	var offs []int
	for i := 0; i+n <= len(data); i++ {
		if matchAt(data, i, pat) {
			offs = append(offs, i)
		}
	}
	return offs
}

func matchAt(data []byte, off int, pat Pattern) bool {
	for j, t := range pat {
		if !t.Any && data[off+j] != t.Byte {
			return false
		}
	}
	return true
}
