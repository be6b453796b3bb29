// Package cacheline carries the padding size used to keep the per-stream
// hot state in package blkhash on separate cache lines, the Go analogue of
// the C library's __attribute__((aligned(CACHE_LINE_SIZE))) on struct
// stream.
package cacheline

// Size is the assumed cache line size on the target machines this runs on.
// It is a tuning constant, not a correctness requirement: a mismatch only
// costs a little extra false sharing, never wrong results.
const Size = 64

// PadFor returns the number of padding bytes needed to round used up to a
// multiple of Size.
func PadFor(used int) int {
	rem := used % Size
	if rem == 0 {
		return 0
	}
	return Size - rem
}
