package blkhash

import "context"

// queue is the bounded submission FIFO owned by a single worker goroutine.
// A buffered channel already gives us the mutex+condvar ring buffer the C
// library hand-rolls in hash-pool.c: a send blocks while the channel is
// full (the "not_full" wait) and a receive blocks while it is empty (the
// "not_empty" wait), with no separate lock needed.
type queue struct {
	ch chan *submission
}

func newQueue(depth int) *queue {
	return &queue{ch: make(chan *submission, depth)}
}

// push enqueues sub, blocking while the queue is full, or returning
// ctx.Err() if ctx is done first. It never loses sub: on cancellation the
// caller is responsible for completing it with the context's error.
func (q *queue) push(ctx context.Context, sub *submission) error {
	select {
	case q.ch <- sub:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pushBlocking enqueues sub unconditionally, used for the internal STOP
// submissions that must never be rejected by a caller-supplied context.
func (q *queue) pushBlocking(sub *submission) {
	q.ch <- sub
}

// pop dequeues the next submission, blocking until one is available.
func (q *queue) pop() *submission {
	return <-q.ch
}
