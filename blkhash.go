package blkhash

import (
	"context"
	"sync"

	"github.com/blkhash/blkhash/digest"
	"github.com/blkhash/blkhash/internal/zero"
)

// Hash computes a content digest over a disk image: repeated Update calls
// feed it bytes, Zero calls feed it implicit zeros (holes), and Final
// collapses everything into one digest, regardless of which of those two
// calls produced any given byte range. Internally it partitions the
// stream into fixed-size blocks, fans block digests out across a worker
// pool, folds them into config.streams independent running hashes, and
// combines those at Final time. A Hash must not be used concurrently from
// more than one goroutine for Update/Zero/Final/Close; Completions and
// AsyncCompletionFD may be polled from a different goroutine than the one
// driving Update/AsyncUpdate.
type Hash struct {
	cfg  *config
	pool *pool

	mu sync.Mutex

	pending     []byte
	pendingLen  int
	pendingZero bool

	blockIndex  int64
	updateIndex int64
	imageSize   int64

	err       error
	finalized bool
	closed    bool

	ring *completionRing
}

// New allocates a Hash using the default options together with any
// supplied overrides, e.g. New(WithDigest("sha256"), WithStreams(32)).
func New(opts ...Option) (*Hash, error) {
	o := NewOptions(DefaultDigest)
	for _, opt := range opts {
		opt(o)
	}
	return NewWithOptions(o)
}

// NewWithOptions allocates a Hash from an explicitly built Options value.
func NewWithOptions(o *Options) (*Hash, error) {
	cfg, err := o.toConfig()
	if err != nil {
		return nil, err
	}

	p, err := newPool(cfg)
	if err != nil {
		return nil, err
	}

	return &Hash{
		cfg:     cfg,
		pool:    p,
		pending: make([]byte, cfg.blockSize),
	}, nil
}

// BlockSize returns the block size blocks are partitioned into.
func (h *Hash) BlockSize() int { return h.cfg.blockSize }

// Size returns the number of bytes Final will return.
func (h *Hash) Size() int {
	d, err := digest.New(h.cfg.digestName)
	if err != nil {
		return 0
	}
	return d.Size()
}

// addPendingData copies up to len(buf) bytes of buf into the pending
// partial block, converting any pending zeros to real zero bytes first.
// Mirrors add_pending_data in blkhash.c. Returns the number of bytes
// consumed from buf.
func (h *Hash) addPendingData(buf []byte) int {
	n := min(len(buf), h.cfg.blockSize-h.pendingLen)

	if h.pendingZero {
		for i := 0; i < h.pendingLen; i++ {
			h.pending[i] = 0
		}
		h.pendingZero = false
	}

	copy(h.pending[h.pendingLen:h.pendingLen+n], buf[:n])
	h.pendingLen += n
	return n
}

// addPendingZeros accounts up to count zero bytes into the pending
// partial block. Mirrors add_pending_zeros in blkhash.c.
func (h *Hash) addPendingZeros(count int) int {
	n := min(count, h.cfg.blockSize-h.pendingLen)

	if h.pendingLen == 0 {
		h.pendingZero = true
	} else if !h.pendingZero {
		for i := h.pendingLen; i < h.pendingLen+n; i++ {
			h.pending[i] = 0
		}
	}

	h.pendingLen += n
	return n
}

// consumeZeroBlocks accounts count zero blocks worth of the image and, if
// enough have accumulated since the last real submission, flushes a ZERO
// submission to every stream. Mirrors consume_zero_blocks in blkhash.c.
func (h *Hash) consumeZeroBlocks(ctx context.Context, count int64) error {
	h.blockIndex += count
	if h.blockIndex-h.updateIndex >= zeroBatchBlocks {
		return h.submitZeroBlock(ctx)
	}
	return nil
}

// submitZeroBlock sends one ZERO submission, watermarked at the current
// block index, to every stream. Mirrors submit_zero_block in blkhash.c.
func (h *Hash) submitZeroBlock(ctx context.Context) error {
	for _, s := range h.pool.streams {
		sub := newZeroSubmission(s, h.blockIndex)
		if err := h.pool.submit(ctx, sub); err != nil {
			return h.setError(err)
		}
	}
	h.updateIndex = h.blockIndex
	return nil
}

// submitDataBlock sends one DATA submission for a real, non-zero block to
// the stream that owns blockIndex, copying buf since the caller may reuse
// it. Mirrors submit_data_block in blkhash.c.
func (h *Hash) submitDataBlock(ctx context.Context, buf []byte) error {
	data := make([]byte, len(buf))
	copy(data, buf)

	s := h.pool.streamFor(h.blockIndex)
	sub := newDataSubmission(s, h.blockIndex, data, nil)
	if err := h.pool.submit(ctx, sub); err != nil {
		return h.setError(err)
	}

	h.updateIndex = h.blockIndex
	h.blockIndex++
	return nil
}

// consumeDataBlock is the zero-detection fast path: a full-size block of
// all zero bytes is folded via consumeZeroBlocks instead of ever being
// sent to a worker as a DATA submission. Mirrors consume_data_block.
func (h *Hash) consumeDataBlock(ctx context.Context, buf []byte) error {
	if len(buf) == h.cfg.blockSize && isZeroBuffer(buf) {
		return h.consumeZeroBlocks(ctx, 1)
	}
	return h.submitDataBlock(ctx, buf)
}

// consumePending flushes whatever is in the pending buffer (a full or
// partial block of data or zeros) as one block submission, then clears
// it. Mirrors consume_pending in blkhash.c.
func (h *Hash) consumePending(ctx context.Context) error {
	if h.pendingLen == h.cfg.blockSize && h.pendingZero {
		if err := h.consumeZeroBlocks(ctx, 1); err != nil {
			return err
		}
	} else {
		if h.pendingZero {
			for i := 0; i < h.pendingLen; i++ {
				h.pending[i] = 0
			}
		}
		if err := h.consumeDataBlock(ctx, h.pending[:h.pendingLen]); err != nil {
			return err
		}
	}

	h.pendingLen = 0
	h.pendingZero = false
	return nil
}

// Update hashes len(buf) bytes of real data. It detects zero blocks in buf
// itself, so callers that already know a range is zero should prefer Zero,
// which skips the detection pass entirely.
func (h *Hash) Update(buf []byte) error {
	return h.UpdateContext(context.Background(), buf)
}

// UpdateContext is Update with an explicit context bounding how long the
// call may block waiting for queue space.
func (h *Hash) UpdateContext(ctx context.Context, buf []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.checkWritable(); err != nil {
		return err
	}

	h.imageSize += int64(len(buf))

	if h.pendingLen > 0 {
		n := h.addPendingData(buf)
		buf = buf[n:]
		if h.pendingLen == h.cfg.blockSize {
			if err := h.consumePending(ctx); err != nil {
				return h.err
			}
		}
	}

	for len(buf) >= h.cfg.blockSize {
		if err := h.consumeDataBlock(ctx, buf[:h.cfg.blockSize]); err != nil {
			return h.err
		}
		buf = buf[h.cfg.blockSize:]
	}

	if len(buf) > 0 {
		h.addPendingData(buf)
	}

	return nil
}

// Zero hashes count bytes of implicit zeros, the fast path for holes in a
// sparse image: it never has to detect anything since the caller is
// already certain the range is zero.
func (h *Hash) Zero(count int) error {
	return h.ZeroContext(context.Background(), count)
}

// ZeroContext is Zero with an explicit context bounding how long the call
// may block waiting for queue space.
func (h *Hash) ZeroContext(ctx context.Context, count int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.checkWritable(); err != nil {
		return err
	}

	h.imageSize += int64(count)

	if h.pendingLen > 0 {
		n := h.addPendingZeros(count)
		count -= n
		if h.pendingLen == h.cfg.blockSize {
			if err := h.consumePending(ctx); err != nil {
				return h.err
			}
		}
	}

	if count >= h.cfg.blockSize {
		if err := h.consumeZeroBlocks(ctx, int64(count/h.cfg.blockSize)); err != nil {
			return h.err
		}
		count %= h.cfg.blockSize
	}

	if count > 0 {
		h.addPendingZeros(count)
	}

	return nil
}

// Final flushes any pending partial block, stops the worker pool, folds
// every stream's own digest into one root digest (in ascending stream id
// order, so the result does not depend on scheduling), and returns it.
// Final may only be called once; later calls return ErrFinalized.
func (h *Hash) Final() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.finalized {
		return nil, ErrFinalized
	}
	h.finalized = true

	if h.pendingLen > 0 {
		_ = h.consumePending(context.Background())
	}

	h.pool.stop()

	if poolErr := h.pool.firstError(); poolErr != nil {
		h.setError(poolErr)
	}

	if h.err != nil {
		h.closeRing()
		return nil, h.err
	}

	streamDigests, err := h.pool.finalStreams()
	if err != nil {
		h.setError(err)
		h.closeRing()
		return nil, h.err
	}

	root, err := digest.New(h.cfg.digestName)
	if err != nil {
		h.setError(err)
		h.closeRing()
		return nil, h.err
	}
	for _, md := range streamDigests {
		if err := root.Update(md); err != nil {
			h.setError(err)
			h.closeRing()
			return nil, h.err
		}
	}

	result, err := root.Final()
	if err != nil {
		h.setError(err)
		h.closeRing()
		return nil, h.err
	}

	h.closeRing()
	return result, nil
}

// Close stops the worker pool without finalizing, releasing all goroutines
// and resources. It is safe to call Close after Final, or more than once.
// Submissions already queued are still processed before the workers exit.
func (h *Hash) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	if !h.finalized {
		h.finalized = true
		h.pool.stop()
	}

	h.closeRing()
	return nil
}

func (h *Hash) closeRing() {
	if h.ring != nil {
		_ = h.ring.close()
		h.ring = nil
	}
}

func (h *Hash) checkWritable() error {
	if h.err != nil {
		return h.err
	}
	if h.closed {
		return ErrShutdown
	}
	if h.finalized {
		return ErrFinalized
	}
	return nil
}

// setError records err as the sticky facade error if none is set yet, and
// returns it. Once set, every later call returns this error unchanged.
func (h *Hash) setError(err error) error {
	if h.err == nil {
		h.err = err
	}
	return h.err
}

func isZeroBuffer(buf []byte) bool {
	return zero.IsZero(buf)
}
