package value

import "fmt"

// fnvOffset and fnvPrime are the 32-bit FNV-1a constants used to hash
// string contents, matching the reference implementation's precomputed
// string hash.
const (
	fnvOffset uint32 = 2166136261
	fnvPrime  uint32 = 16777619
)

// HashBytes computes the 32-bit FNV-1a hash of b.
func HashBytes(b []byte) uint32 {
	h := fnvOffset
	for _, c := range b {
		h ^= uint32(c)
		h *= fnvPrime
	}
	return h
}

// String is an immutable byte sequence with an eagerly precomputed hash.
// The reference implementation stores a trailing NUL byte for interop with
// C string functions; that has no purpose in a Go port (Go strings and
// []byte are already length-prefixed), so Data holds exactly the string's
// bytes with no sentinel terminator.
type String struct {
	Header
	Data []byte
	Hash uint32
}

func (s *String) Len() int { return len(s.Data) }

func (s *String) String() string { return fmt.Sprintf("%q", s.Data) }

// Format implements stringFormat(fmt, ...): a minimal two-placeholder
// template expander. '$' substitutes the raw text of a Go string argument
// (analogous to inserting a C "%s" string by strlen), '@' substitutes the
// bytes of a language String value. Any other character is copied as-is.
//
// The reference implementation runs a length-counting first pass followed
// by a fill pass; that two-pass shape only matters when writing into a
// fixed C buffer. Here we build directly into a growing []byte, which
// preserves the same semantics (and the same hash-at-the-end contract)
// without the first pass.
func Format(format string, args ...any) (data []byte, hash uint32) {
	var out []byte
	argi := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		switch c {
		case '$':
			out = append(out, []byte(args[argi].(string))...)
			argi++
		case '@':
			out = append(out, args[argi].(*String).Data...)
			argi++
		default:
			out = append(out, c)
		}
	}
	return out, HashBytes(out)
}
