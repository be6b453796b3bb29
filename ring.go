package blkhash

import (
	"sync"

	"golang.org/x/sys/unix"
)

// Completion describes one async submission that has finished, returned
// from Hash.Completions.
type Completion struct {
	// UserData is the value passed to AsyncUpdate/AsyncZero for this
	// submission.
	UserData interface{}
	// Err is the error reported against this submission, or nil.
	Err error
}

// completionRing is a mutex-protected, unbounded-append ring buffer of
// finished async submissions, paired with an event so a caller polling
// Hash.AsyncCompletionFD learns when to drain it. Appending and signaling
// happen together under the same lock, so a reader that observes the
// event can never race ahead of the entry it was signaled for.
type completionRing struct {
	mu      sync.Mutex
	entries []Completion
	ev      event
}

func newCompletionRing() (*completionRing, error) {
	ev, err := newEvent()
	if err != nil {
		return nil, err
	}
	return &completionRing{ev: ev}, nil
}

func (r *completionRing) push(c Completion) {
	r.mu.Lock()
	r.entries = append(r.entries, c)
	// Signal while still holding the lock, so that appending and signaling
	// are one step as far as drain is concerned.
	_ = r.ev.Signal()
	r.mu.Unlock()
}

// drain removes and returns every completion currently queued, up to max
// entries (0 means unlimited), mirroring blkhash_aio_completions.
func (r *completionRing) drain(max int) []Completion {
	r.mu.Lock()
	defer r.mu.Unlock()

	if max <= 0 || max > len(r.entries) {
		max = len(r.entries)
	}

	out := make([]Completion, max)
	copy(out, r.entries[:max])
	r.entries = r.entries[max:]
	return out
}

func (r *completionRing) fd() int {
	return r.ev.FD()
}

// wait blocks until the event's fd is readable, then consumes the signal.
// The fd is non-blocking, so the poll is what does the waiting.
func (r *completionRing) wait() error {
	fds := []unix.PollFd{{Fd: int32(r.ev.FD()), Events: unix.POLLIN}}
	for {
		_, err := unix.Poll(fds, -1)
		if err == nil {
			break
		}
		if err != unix.EINTR {
			return err
		}
	}
	return r.ev.Wait()
}

func (r *completionRing) close() error {
	return r.ev.Close()
}
