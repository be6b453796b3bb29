package blkhash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToConfigDefaults(t *testing.T) {
	o := NewOptions("sha256")
	cfg, err := o.toConfig()
	require.NoError(t, err)

	require.Equal(t, DefaultBlockSize, cfg.blockSize)
	require.Equal(t, DefaultThreads, cfg.workers)
	require.Equal(t, DefaultThreads, cfg.streams)
	require.Len(t, cfg.zeroDigest, 32)
}

func TestToConfigRejectsNonPowerOfTwoBlockSize(t *testing.T) {
	o := NewOptions("sha256").SetBlockSize(1000)
	_, err := o.toConfig()
	require.ErrorIs(t, err, ErrInvalidOption)
}

func TestToConfigRejectsThreadsExceedingStreams(t *testing.T) {
	o := NewOptions("sha256").SetStreams(4).SetThreads(8)
	_, err := o.toConfig()
	require.ErrorIs(t, err, ErrInvalidOption)
}

func TestToConfigRejectsQueueDepthOutOfRange(t *testing.T) {
	o := NewOptions("sha256").SetQueueDepth(65537)
	_, err := o.toConfig()
	require.ErrorIs(t, err, ErrInvalidOption)
}

func TestToConfigAllowsZeroQueueDepth(t *testing.T) {
	o := NewOptions("sha256").SetQueueDepth(0)
	_, err := o.toConfig()
	require.NoError(t, err)
}

func TestZeroDigestIsDigestOfAllZeroBlock(t *testing.T) {
	o := NewOptions("sha256").SetBlockSize(4096)
	cfg, err := o.toConfig()
	require.NoError(t, err)

	want, err := computeZeroDigest("sha256", 4096)
	require.NoError(t, err)
	require.Equal(t, want, cfg.zeroDigest)
}
