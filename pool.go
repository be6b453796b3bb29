package blkhash

import (
	"context"
	"sync"

	"github.com/blkhash/blkhash/digest"
	"golang.org/x/sync/errgroup"
)

// pool is the worker pool: config.workers goroutines, each with its own
// bounded queue, rather than one queue shared by every worker. A stream is
// permanently owned by exactly one worker (streamID % workers, see
// workerFor), so the goroutine that folds a block into a given stream is
// always the same one, in the order it dequeues them. That is what keeps
// folding order deterministic: a shared queue drained by many goroutines
// preserves the order submissions are *received* in, but not the order in
// which each receiver finishes computing its block digest and reaches the
// stream, so two workers could fold the same stream's blocks out of index
// order. Pinning a stream to one worker removes the race instead of
// reordering around it.
type pool struct {
	cfg     *config
	queues  []*queue
	streams []*stream

	workers *errgroup.Group

	mu  sync.Mutex
	err error
}

func newPool(cfg *config) (*pool, error) {
	streams := make([]*stream, cfg.streams)
	for i := range streams {
		s, err := newStream(i, cfg)
		if err != nil {
			return nil, err
		}
		streams[i] = s
	}

	queues := make([]*queue, cfg.workers)
	for i := range queues {
		queues[i] = newQueue(cfg.queueDepth)
	}

	p := &pool{
		cfg:     cfg,
		queues:  queues,
		streams: streams,
		workers: &errgroup.Group{},
	}

	for i := 0; i < cfg.workers; i++ {
		id := i
		p.workers.Go(func() error { return p.worker(id) })
	}

	return p, nil
}

// workerFor returns the id of the worker that permanently owns streamID.
func workerFor(streamID, workers int) int {
	return streamID % workers
}

// worker is run under an errgroup.Group rather than a plain sync.WaitGroup
// so that a worker goroutine that never manages to build its scratch digest
// surfaces that failure through Wait instead of only through setError.
func (p *pool) worker(id int) error {
	q := p.queues[id]

	d, err := digest.New(p.cfg.digestName)
	if err != nil {
		p.setError(err)
		// Drain until our STOP arrives so stop() doesn't block forever
		// waiting on a worker that never started.
		for {
			sub := q.pop()
			sub.setError(err)
			sub.complete()
			if sub.typ == submissionStop {
				return err
			}
		}
	}

	for {
		sub := q.pop()
		if sub.typ == submissionStop {
			sub.complete()
			return nil
		}

		// The facade only ever creates a DATA submission for a full-size
		// block it has already determined is not all zero, or for the short
		// final block, which is hashed as data either way (see
		// consumeDataBlock in blkhash.go); the fast path never reaches the
		// workers at all, so there is no need to re-check here.
		if sub.typ == submissionData {
			p.hashBlock(d, sub)
		}

		sub.stream.update(sub)
		sub.complete()
	}
}

// hashBlock computes sub's block digest up front using the worker's own
// scratch digest, replacing sub.data with the digest before it ever
// reaches stream.update. Mirrors compute_block_digest in hash-pool.c.
func (p *pool) hashBlock(d digest.Digest, sub *submission) {
	d.Init()
	if err := d.Update(sub.data); err != nil {
		sub.setError(err)
		p.setError(err)
		return
	}
	md, err := d.Final()
	if err != nil {
		sub.setError(err)
		p.setError(err)
		return
	}
	sub.data = md
}

func (p *pool) setError(err error) {
	p.mu.Lock()
	if p.err == nil {
		p.err = err
	}
	p.mu.Unlock()
}

func (p *pool) firstError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// submit enqueues sub on the queue owned by the worker that owns sub's
// destination stream, used for DATA and ZERO submissions.
func (p *pool) submit(ctx context.Context, sub *submission) error {
	id := workerFor(sub.stream.id, len(p.queues))
	return p.queues[id].push(ctx, sub)
}

// stop pushes one STOP submission to every worker's own queue and waits for
// every worker goroutine to exit, matching stop_workers in hash-pool.c. It
// must only be called once.
func (p *pool) stop() {
	for _, q := range p.queues {
		q.pushBlocking(newStopSubmission())
	}
	if err := p.workers.Wait(); err != nil {
		p.setError(err)
	}
}

// streamFor returns the stream that owns block index.
func (p *pool) streamFor(index int64) *stream {
	n := int64(len(p.streams))
	return p.streams[index%n]
}

// finalStreams returns the final digest of every stream, in ascending
// stream id order. Must only be called after stop has returned, so no
// worker can still be folding a block into any stream.
func (p *pool) finalStreams() ([][]byte, error) {
	digests := make([][]byte, len(p.streams))
	for i, s := range p.streams {
		md, err := s.final()
		if err != nil {
			return nil, err
		}
		digests[i] = md
	}
	return digests, nil
}
