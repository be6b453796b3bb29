package blkhash

import (
	"github.com/blkhash/blkhash/digest"
	"github.com/blkhash/blkhash/internal/cacheline"
)

// stream accumulates one of the config.streams independent hashes that the
// final root digest is folded from. Each stream only ever sees the subset
// of block indices congruent to its id modulo config.streams, and is
// permanently owned by exactly one pool worker (see workerFor in pool.go),
// so update is only ever called by that one goroutine at a time: no lock
// is needed here. final is only safe to call after pool.stop() has joined
// every worker goroutine.
type stream struct {
	cfg *config
	id  int

	root      digest.Digest // accumulates the stream's own root digest
	lastIndex int64
	err       error

	_ [cacheline.Size]byte // avoid false sharing between streams
}

func newStream(id int, cfg *config) (*stream, error) {
	root, err := digest.New(cfg.digestName)
	if err != nil {
		return nil, err
	}

	return &stream{
		cfg:       cfg,
		id:        id,
		root:      root,
		lastIndex: int64(id) - int64(cfg.streams),
	}, nil
}

// update folds sub into the stream: first any zero blocks implied by the
// gap between the stream's last consumed index and sub.index, then sub's
// own data block if it carries one. Mirrors stream_update in stream.c.
func (s *stream) update(sub *submission) {
	if s.err != nil {
		sub.setError(s.err)
		return
	}

	s.addZeroBlocksBefore(sub.index)

	// A ZERO submission only ever advances the watermark up to (but not
	// including) sub.index: it tells the stream how far the facade has
	// confirmed zeros, the same way submit_zero_block's submission does
	// in the C library. Only a DATA submission folds a block at its own
	// index.
	if sub.typ == submissionData {
		s.addDataBlock(sub)
	}

	if s.err != nil {
		sub.setError(s.err)
	}
}

// addZeroBlocksBefore folds one zero digest for every stream-owned block
// index strictly between the stream's last consumed index and upTo.
func (s *stream) addZeroBlocksBefore(upTo int64) {
	if s.err != nil {
		return
	}

	index := s.lastIndex + int64(s.cfg.streams)
	for index < upTo {
		if err := s.root.Update(s.cfg.zeroDigest); err != nil {
			s.setError(err)
			return
		}
		s.lastIndex = index
		index += int64(s.cfg.streams)
	}
}

// addDataBlock folds sub's block digest into the stream's root digest.
// The worker that dispatched sub has already reduced sub.data to the
// block's own digest (see pool.go hashBlock) before handing it to the
// stream, so folding it here is a single cheap Update call rather than a
// full block-sized hash computation.
func (s *stream) addDataBlock(sub *submission) {
	if s.err != nil {
		return
	}

	if err := s.root.Update(sub.data); err != nil {
		s.setError(err)
		return
	}

	s.lastIndex = sub.index
}

// final returns the stream's own root digest. Must only be called after
// pool.stop has joined every worker goroutine.
func (s *stream) final() ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.root.Final()
}

func (s *stream) setError(err error) {
	if s.err == nil {
		s.err = err
	}
}
