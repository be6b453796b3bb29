package blkhash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T, streams int) *config {
	t.Helper()
	o := NewOptions("sha256").SetBlockSize(4096).SetThreads(streams).SetStreams(streams).SetQueueDepth(streams * 2)
	cfg, err := o.toConfig()
	require.NoError(t, err)
	return cfg
}

func TestStreamFoldsSingleDataBlock(t *testing.T) {
	cfg := newTestConfig(t, 1)
	s, err := newStream(0, cfg)
	require.NoError(t, err)

	block := make([]byte, 32) // pretend this is already a block digest
	for i := range block {
		block[i] = byte(i)
	}

	sub := newDataSubmission(s, 0, block, nil)
	s.update(sub)

	md, err := s.final()
	require.NoError(t, err)
	require.Len(t, md, 32)
}

func TestStreamFillsZeroGapBeforeData(t *testing.T) {
	cfg := newTestConfig(t, 2)

	s0, err := newStream(0, cfg)
	require.NoError(t, err)

	// Stream 0 owns indices 0, 2, 4, ... lastIndex starts at 0-2=-2.
	// A ZERO submission watermarked at 4 should fold the zero digest for
	// index 0 and index 2 before any data block arrives.
	zeroSub := newZeroSubmission(s0, 4)
	s0.update(zeroSub)
	require.Equal(t, int64(2), s0.lastIndex)

	dataSub := newDataSubmission(s0, 4, cfg.zeroDigest, nil)
	s0.update(dataSub)
	require.Equal(t, int64(4), s0.lastIndex)
}

func TestStreamStickyErrorRejectsFurtherSubmissions(t *testing.T) {
	cfg := newTestConfig(t, 1)
	s, err := newStream(0, cfg)
	require.NoError(t, err)

	s.setError(ErrDigestFailed)

	sub := newDataSubmission(s, 0, cfg.zeroDigest, nil)
	s.update(sub)

	_, err = s.final()
	require.ErrorIs(t, err, ErrDigestFailed)
}
