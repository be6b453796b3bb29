// Package zero implements the fast is-this-buffer-all-zeros test used to
// take the zero-block shortcut before reaching for a real digest.
package zero

import "bytes"

// IsZero reports whether buf contains only zero bytes. It is based on Rusty
// Russell's memeqzero (http://rusty.ozlabs.org/?p=560): the first 16 bytes
// are checked by hand, then the rest of the buffer is compared against
// itself shifted by 16 bytes, which collapses to a single vectorized
// memcmp whenever the first check passes.
//
// IsZero panics if len(buf) < 16; callers only ever call it with full
// blocks, which are always at least that large.
func IsZero(buf []byte) bool {
	if len(buf) < 16 {
		panic("zero.IsZero: buffer shorter than 16 bytes")
	}

	var head [16]byte
	copy(head[:], buf)

	var zero [16]byte
	if head != zero {
		return false
	}

	return bytes.Equal(buf[:len(buf)-16], buf[16:])
}
