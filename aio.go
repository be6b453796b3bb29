package blkhash

import "context"

// AsyncUpdate behaves like UpdateContext, except the completion of every
// block submission this call produces is reported once, collectively,
// through the completion ring rather than by blocking the caller until
// the data is fully folded in. userData is returned unchanged on the
// corresponding Completion. The caller must not modify buf until that
// completion has been observed, since full blocks of buf are handed to the
// workers without being copied.
//
// AsyncUpdate blocks the caller while the submission queue is full,
// exactly as UpdateContext does; pass a context with a deadline to opt
// out of blocking indefinitely.
func (h *Hash) AsyncUpdate(ctx context.Context, buf []byte, userData interface{}) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.checkWritable(); err != nil {
		return err
	}
	if err := h.ensureRing(); err != nil {
		return err
	}

	c := newCompletion(func(ud interface{}, err error) {
		h.ring.push(Completion{UserData: ud, Err: err})
	}, userData)

	h.imageSize += int64(len(buf))

	// Flush any pending partial block synchronously first: async
	// submission only applies to the bytes in this call, and the pending
	// buffer is internal bookkeeping the caller never sees a completion
	// for.
	if h.pendingLen > 0 {
		n := h.addPendingData(buf)
		buf = buf[n:]
		if h.pendingLen == h.cfg.blockSize {
			if err := h.consumePending(ctx); err != nil {
				c.unref()
				return h.err
			}
		}
	}

	for len(buf) >= h.cfg.blockSize {
		if isZeroBuffer(buf[:h.cfg.blockSize]) {
			if err := h.consumeZeroBlocks(ctx, 1); err != nil {
				c.unref()
				return h.err
			}
		} else if err := h.submitAsyncDataBlock(ctx, buf[:h.cfg.blockSize], c); err != nil {
			c.unref()
			return h.err
		}
		buf = buf[h.cfg.blockSize:]
	}

	if len(buf) > 0 {
		h.addPendingData(buf)
	}

	// Release the caller's own reference; the completion still fires once
	// every block submission created above has also released its ref.
	c.unref()
	return nil
}

// AsyncZero behaves like ZeroContext, reporting completion through the
// completion ring the same way AsyncUpdate does.
func (h *Hash) AsyncZero(ctx context.Context, count int, userData interface{}) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.checkWritable(); err != nil {
		return err
	}
	if err := h.ensureRing(); err != nil {
		return err
	}

	c := newCompletion(func(ud interface{}, err error) {
		h.ring.push(Completion{UserData: ud, Err: err})
	}, userData)

	h.imageSize += int64(count)

	if h.pendingLen > 0 {
		n := h.addPendingZeros(count)
		count -= n
		if h.pendingLen == h.cfg.blockSize {
			if err := h.consumePending(ctx); err != nil {
				c.unref()
				return h.err
			}
		}
	}

	if count >= h.cfg.blockSize {
		if err := h.consumeZeroBlocks(ctx, int64(count/h.cfg.blockSize)); err != nil {
			c.unref()
			return h.err
		}
		count %= h.cfg.blockSize
	}

	if count > 0 {
		h.addPendingZeros(count)
	}

	c.unref()
	return nil
}

// submitAsyncDataBlock is submitDataBlock's async counterpart: the
// submission borrows buf instead of copying it, and shares the caller's
// completion instead of being untracked.
func (h *Hash) submitAsyncDataBlock(ctx context.Context, buf []byte, c *completion) error {
	s := h.pool.streamFor(h.blockIndex)
	sub := newDataSubmission(s, h.blockIndex, buf, c)
	if err := h.pool.submit(ctx, sub); err != nil {
		// The queue never took sub: complete it here so the completion's
		// reference is released and the error is reported.
		sub.setError(err)
		sub.complete()
		return h.setError(err)
	}

	h.updateIndex = h.blockIndex
	h.blockIndex++
	return nil
}

func (h *Hash) ensureRing() error {
	if h.cfg.queueDepth == 0 {
		return ErrAsyncDisabled
	}
	if h.ring != nil {
		return nil
	}
	ring, err := newCompletionRing()
	if err != nil {
		return h.setError(err)
	}
	h.ring = ring
	return nil
}

// Completions drains up to max pending async completions (0 means drain
// everything currently queued). It is safe to call from a different
// goroutine than the one calling AsyncUpdate/AsyncZero.
func (h *Hash) Completions(max int) []Completion {
	h.mu.Lock()
	ring := h.ring
	h.mu.Unlock()

	if ring == nil {
		return nil
	}
	return ring.drain(max)
}

// AsyncCompletionFD returns a file descriptor that becomes readable
// whenever at least one completion is waiting in the ring, suitable for
// registering with an external poll/epoll loop. It returns -1 if no async
// call has been made yet. The fd is closed by Close/Final.
func (h *Hash) AsyncCompletionFD() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ring == nil {
		return -1
	}
	return h.ring.fd()
}

// WaitCompletionFD blocks until AsyncCompletionFD is readable, an
// in-process convenience for callers that would otherwise have to call
// poll(2) themselves just to wait on this one fd.
func (h *Hash) WaitCompletionFD() error {
	h.mu.Lock()
	ring := h.ring
	h.mu.Unlock()

	if ring == nil {
		return nil
	}
	return ring.wait()
}
