// Package memscan locates byte signatures inside a module's mapped
// executable image. A signature is written IDA-style as whitespace
// separated hex byte literals, with "?" or "??" marking a position
// that matches any byte:
//
//	"F3 0F 10 81 9C 03 00 00"
//	"48 8B 05 ?? ?? ?? ?? 48 8B D9"
package memscan

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedSignature means a signature contained characters outside
// the hex/wildcard grammar.
var ErrMalformedSignature = errors.New("malformed signature")

// Token is one element of a compiled signature: either an exact byte
// or a single-byte wildcard.
type Token struct {
	Byte byte
	Any  bool
}

// Pattern is an ordered token sequence; order defines the match.
type Pattern []Token

// Compile parses a signature into a token sequence. Parsing is
// left-to-right and tolerant of arbitrary whitespace; a wildcard does
// not require a separator on either side, so "AA?CC" and "AA ?? CC"
// compile identically. An empty signature compiles to an empty
// pattern, which matches at every offset.
func Compile(sig string) (Pattern, error) {
	var pat Pattern
	for i := 0; i < len(sig); {
		c := sig[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == '?':
			i++
			if i < len(sig) && sig[i] == '?' {
				i++
			}
			pat = append(pat, Token{Any: true})
		default:
			hi, ok := hexVal(c)
			if !ok {
				return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrMalformedSignature, c, i)
			}
			b := hi
			i++
			if i < len(sig) {
				if lo, ok := hexVal(sig[i]); ok {
					b = b<<4 | lo
					i++
				}
			}
			pat = append(pat, Token{Byte: b})
		}
	}
	return pat, nil
}

// MustCompile is Compile for signatures hardcoded in fix routines.
func MustCompile(sig string) Pattern {
	pat, err := Compile(sig)
	if err != nil {
		panic(err)
	}
	return pat
}

// Literal returns the pattern's exact byte sequence. ok is false if
// the pattern contains a wildcard.
func (p Pattern) Literal() ([]byte, bool) {
	b := make([]byte, len(p))
	for i, t := range p {
		if t.Any {
			return nil, false
		}
		b[i] = t.Byte
	}
	return b, true
}

// FormatBytes renders bytes in the signature grammar, in memory order:
// a float32 16:9 aspect ratio (0x3FE38E39) serializes little-endian as
// "39 8E E3 3F". The result round-trips through Compile as exact
// tokens.
func FormatBytes(b []byte) string {
	var sb strings.Builder
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", v)
	}
	return sb.String()
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
