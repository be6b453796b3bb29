package blkhash

import (
	"github.com/blkhash/blkhash/digest"
	"golang.org/x/xerrors"
)

// DefaultBlockSize is the block size used when no Option overrides it,
// matching the 64 KiB block size the reference test suite uses.
const DefaultBlockSize = 64 * 1024

// DefaultThreads is the worker count used when no Option overrides it. The
// C library's own doc comment calls 4 "good for most cases" unless the
// caller has very fast storage and a big machine.
const DefaultThreads = 4

// MaxDigestSize is the largest digest this package can ever produce,
// exported as BLKHASH_MAX_MD_SIZE is in the C API.
const MaxDigestSize = digest.MaxSize

// Valid ranges for Options fields, matching the C library's own bounds.
const (
	minBlockSize = 4 * 1024
	maxBlockSize = 1 * 1024 * 1024

	minStreams = 1
	maxStreams = 128

	minQueueDepth = 0
	maxQueueDepth = 65536
)

// zeroBatchBlocks is the number of consecutive zero blocks consumed before
// a ZERO submission is sent to every stream, amortizing the fixed
// cost of folding a zero digest into one submission per this many blocks.
const zeroBatchBlocks = 64 * 1024

// config is the immutable, validated configuration backing a Hash. It is
// built once from Options by toConfig and never mutated afterwards, so it
// can be shared by every stream and worker goroutine without locking.
type config struct {
	digestName string
	blockSize  int
	streams    int
	workers    int
	queueDepth int
	zeroDigest []byte
}

func (o *Options) toConfig() (*config, error) {
	if o.blockSize <= 0 || o.blockSize&(o.blockSize-1) != 0 {
		return nil, xerrorsInvalidOption("block size must be a power of two, got %d", o.blockSize)
	}
	if o.blockSize < minBlockSize || o.blockSize > maxBlockSize {
		return nil, xerrorsInvalidOption("block size must be between %d and %d, got %d", minBlockSize, maxBlockSize, o.blockSize)
	}
	if o.streams < minStreams || o.streams > maxStreams {
		return nil, xerrorsInvalidOption("streams must be between %d and %d, got %d", minStreams, maxStreams, o.streams)
	}
	if o.threads < 1 || o.threads > o.streams {
		return nil, xerrorsInvalidOption("threads must be between 1 and streams (%d), got %d", o.streams, o.threads)
	}
	if o.queueDepth < minQueueDepth || o.queueDepth > maxQueueDepth {
		return nil, xerrorsInvalidOption("queue depth must be between %d and %d, got %d", minQueueDepth, maxQueueDepth, o.queueDepth)
	}

	zeroMD, err := computeZeroDigest(o.digestName, o.blockSize)
	if err != nil {
		return nil, err
	}

	return &config{
		digestName: o.digestName,
		blockSize:  o.blockSize,
		streams:    o.streams,
		workers:    o.threads,
		queueDepth: o.queueDepth,
		zeroDigest: zeroMD,
	}, nil
}

// computeZeroDigest hashes one all-zero block once at construction time so
// folding a run of zero blocks never has to touch a real digest context.
func computeZeroDigest(name string, blockSize int) ([]byte, error) {
	d, err := digest.New(name)
	if err != nil {
		return nil, xerrors.Errorf("%w: %v", ErrUnknownDigest, err)
	}
	if err := d.Update(make([]byte, blockSize)); err != nil {
		return nil, err
	}
	return d.Final()
}
