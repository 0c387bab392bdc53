// Package libc reproduces the slice of the C standard library that the
// built-in checks exercise: NUL-terminated strings held in fixed-size
// buffers, the <string.h> routines operating on them, and the <math.h>
// functions together with printf-style "%f" rendering.
//
// It is not a general C interop layer. Checks must behave exactly like
// the C calls they probe, so the quirks of C strings (fixed capacity,
// value ends at the first NUL, byte-wise comparison) are kept rather
// than papered over with native Go strings.
package libc

import (
	"bytes"
	"fmt"
	"strings"
)

// Str is a C character array: a fixed-capacity byte buffer holding a
// NUL-terminated string. The string value are the bytes up to, but not
// including, the first NUL.
type Str struct {
	buf []byte
}

// NewStr allocates a zeroed buffer of n bytes, like "char buf[n]" at
// file scope in C. The string value starts out empty. It panics if
// n < 1 because even the empty string needs room for its terminator.
func NewStr(n int) *Str {
	if n < 1 {
		panic(fmt.Sprintf("libc: buffer size %d is too small", n))
	}
	return &Str{buf: make([]byte, n)}
}

// StrLit allocates a buffer of n bytes initialized with s, like
// "char buf[n] = ..." in C. It panics if s plus its terminator does not
// fit, the same situation a C compiler rejects at compile time.
func StrLit(n int, s string) *Str {
	if len(s)+1 > n {
		panic(fmt.Sprintf("libc: initializer of %d bytes in buffer of %d", len(s)+1, n))
	}
	str := NewStr(n)
	copy(str.buf, s)
	return str
}

// String returns the string value, the bytes up to the first NUL.
func (s *Str) String() string {
	return string(s.buf[:s.strlen()])
}

// Cap returns the buffer capacity in bytes, terminator included.
func (s *Str) Cap() int {
	return len(s.buf)
}

func (s *Str) strlen() int {
	if i := bytes.IndexByte(s.buf, 0); i >= 0 {
		return i
	}
	return len(s.buf)
}

// Strlen returns the length of s in bytes, like strlen(3).
func Strlen(s *Str) int {
	return s.strlen()
}

// Strcpy copies src and a terminating NUL into dst, like strcpy(3).
// Where C would silently overrun the buffer, Strcpy refuses: it returns
// an error and leaves dst untouched if dst is too small for src plus
// the terminator. Bytes past the new terminator keep their old values,
// as they would in C.
func Strcpy(dst *Str, src string) error {
	if len(src)+1 > len(dst.buf) {
		return fmt.Errorf("copying %d bytes into buffer of %d", len(src)+1, len(dst.buf))
	}

	n := copy(dst.buf, src)
	dst.buf[n] = 0
	return nil
}

// Strcmp compares a and b byte-wise, like strcmp(3): the result is the
// difference between the first pair of bytes that differ, with the
// terminator participating so that a proper prefix compares less than
// the longer string. Only the sign of the result is part of the
// contract; callers must not rely on its magnitude.
func Strcmp(a, b *Str) int {
	av := a.buf[:a.strlen()+1]
	bv := b.buf[:b.strlen()+1]

	for i := 0; i < len(av) && i < len(bv); i++ {
		if av[i] != bv[i] {
			return int(av[i]) - int(bv[i])
		}
	}
	return 0
}

// Strstr searches haystack for the first occurrence of needle, like
// strstr(3), and returns the suffix of haystack starting at the match.
// The empty needle matches at the start. Where C returns NULL, the
// second return value is false.
func Strstr(haystack, needle *Str) (string, bool) {
	h := haystack.String()

	i := strings.Index(h, needle.String())
	if i < 0 {
		return "", false
	}
	return h[i:], true
}

// Strchr searches s for the first occurrence of byte c, like strchr(3),
// and returns the suffix of s starting at the match. Searching for the
// NUL terminator finds the empty string at the end of s, as in C.
// Where C returns NULL, the second return value is false.
func Strchr(s *Str, c byte) (string, bool) {
	v := s.String()

	if c == 0 {
		return "", true
	}
	i := strings.IndexByte(v, c)
	if i < 0 {
		return "", false
	}
	return v[i:], true
}
