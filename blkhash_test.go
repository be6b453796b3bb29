package blkhash

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const testBlockSize = 64 * 1024

func sumAll(t *testing.T, threads int, data []byte) []byte {
	t.Helper()

	// The stream count is part of the digest, so it stays fixed while only
	// the thread count varies.
	h, err := New(WithDigest("sha256"), WithBlockSize(testBlockSize), WithThreads(threads), WithStreams(32))
	require.NoError(t, err)

	require.NoError(t, h.Update(data))

	md, err := h.Final()
	require.NoError(t, err)
	return md
}

func TestDigestStableAcrossThreadCounts(t *testing.T) {
	data := bytes.Repeat([]byte{'A'}, testBlockSize*8)

	reference := sumAll(t, 1, data)
	for _, threads := range []int{2, 4, 8, 16, 32} {
		got := sumAll(t, threads, data)
		require.Equalf(t, reference, got, "threads=%d produced a different digest", threads)
	}
}

// TestDigestStableAcrossThreadCountsDistinctBlocks guards against a stream
// being folded out of index order: unlike
// TestDigestStableAcrossThreadCounts, every block here has distinct
// content, so folding two of a stream's blocks in the wrong order changes
// the digest instead of silently matching by coincidence.
func TestDigestStableAcrossThreadCountsDistinctBlocks(t *testing.T) {
	const numBlocks = 64
	data := make([]byte, testBlockSize*numBlocks)
	for i := 0; i < numBlocks; i++ {
		block := data[i*testBlockSize : (i+1)*testBlockSize]
		for j := range block {
			block[j] = byte(i + 1)
		}
	}

	reference := sumAll(t, 1, data)
	for _, threads := range []int{2, 4, 8} {
		got := sumAll(t, threads, data)
		require.Equalf(t, reference, got, "threads=%d produced a different digest", threads)
	}
}

func TestZeroDataEquivalentToZeroCall(t *testing.T) {
	zeros := make([]byte, testBlockSize*4)

	h1, err := New(WithDigest("sha256"), WithBlockSize(testBlockSize))
	require.NoError(t, err)
	require.NoError(t, h1.Update(zeros))
	md1, err := h1.Final()
	require.NoError(t, err)

	h2, err := New(WithDigest("sha256"), WithBlockSize(testBlockSize))
	require.NoError(t, err)
	require.NoError(t, h2.Zero(len(zeros)))
	md2, err := h2.Final()
	require.NoError(t, err)

	require.Equal(t, md1, md2, "Update(zeros) and Zero(len) must produce the same digest")
}

func TestChunkingDoesNotAffectDigest(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789abcdef"), testBlockSize/16*5)

	whole, err := New(WithDigest("sha256"), WithBlockSize(testBlockSize))
	require.NoError(t, err)
	require.NoError(t, whole.Update(data))
	mdWhole, err := whole.Final()
	require.NoError(t, err)

	chunked, err := New(WithDigest("sha256"), WithBlockSize(testBlockSize))
	require.NoError(t, err)
	for i := 0; i < len(data); i += 777 {
		end := i + 777
		if end > len(data) {
			end = len(data)
		}
		require.NoError(t, chunked.Update(data[i:end]))
	}
	mdChunked, err := chunked.Final()
	require.NoError(t, err)

	require.Equal(t, mdWhole, mdChunked)
}

func TestMixedZeroAndDataBlocks(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(bytes.Repeat([]byte{'A'}, testBlockSize))
	buf.Write(make([]byte, testBlockSize*3))
	buf.Write(bytes.Repeat([]byte{'-'}, testBlockSize/2))

	h, err := New(WithDigest("sha256"), WithBlockSize(testBlockSize))
	require.NoError(t, err)
	require.NoError(t, h.Update(buf.Bytes()))
	md, err := h.Final()
	require.NoError(t, err)
	require.Len(t, md, 32)
}

func TestFinalTwiceReturnsErrFinalized(t *testing.T) {
	h, err := New()
	require.NoError(t, err)

	_, err = h.Final()
	require.NoError(t, err)

	_, err = h.Final()
	require.True(t, errors.Is(err, ErrFinalized))
}

func TestUpdateAfterFinalizedFails(t *testing.T) {
	h, err := New()
	require.NoError(t, err)

	_, err = h.Final()
	require.NoError(t, err)

	err = h.Update([]byte("too late"))
	require.True(t, errors.Is(err, ErrFinalized))
}

func TestCloseWithoutFinalReleasesWorkers(t *testing.T) {
	h, err := New()
	require.NoError(t, err)

	require.NoError(t, h.Update([]byte("some data, never finalized")))
	require.NoError(t, h.Close())

	// Calling Close again must not block or panic.
	require.NoError(t, h.Close())
}

func TestEmptyInputProducesADigest(t *testing.T) {
	h, err := New()
	require.NoError(t, err)

	md, err := h.Final()
	require.NoError(t, err)
	require.NotEmpty(t, md)
}

func TestInvalidOptionsRejected(t *testing.T) {
	_, err := New(WithBlockSize(100)) // not a power of two
	require.True(t, errors.Is(err, ErrInvalidOption))

	_, err = New(WithBlockSize(2048)) // power of two, but below the 4KiB floor
	require.True(t, errors.Is(err, ErrInvalidOption))

	_, err = New(WithStreams(4), WithThreads(5)) // threads must be <= streams
	require.True(t, errors.Is(err, ErrInvalidOption))

	_, err = New(WithStreams(256)) // above the 128 stream ceiling
	require.True(t, errors.Is(err, ErrInvalidOption))

	_, err = New(WithQueueDepth(-1)) // below the 0 floor
	require.True(t, errors.Is(err, ErrInvalidOption))

	_, err = New(WithQueueDepth(0)) // 0 is valid: async interface disabled
	require.NoError(t, err)
}

func TestUnknownDigestRejected(t *testing.T) {
	_, err := New(WithDigest("not-a-real-digest"))
	require.Error(t, err)
}
