package blkhash

import "sync/atomic"

type submissionType uint8

const (
	submissionData submissionType = iota
	submissionZero
	submissionStop
)

// submission is one unit of work handed to the worker pool: fold a data
// block into a stream, fold a run of zero blocks into a stream, or stop.
// It mirrors struct submission in the C library, with the completion and
// queue-entry bookkeeping replaced by Go's channel and GC.
type submission struct {
	typ    submissionType
	stream *stream

	// index is the block index this submission represents. A ZERO
	// submission carries no explicit count: it tells the stream "you are
	// now at index", and the stream fills in every zero block in the gap
	// since its last consumed index (see addZeroBlocksBefore in stream.go).
	// This is how a facade-side batch of many zero blocks collapses into
	// one submission per stream.
	index int64

	data []byte // only meaningful for submissionData

	completion *completion // nil for submissions not awaited by the caller

	completed atomic.Bool
}

func newDataSubmission(s *stream, index int64, data []byte, c *completion) *submission {
	sub := &submission{typ: submissionData, stream: s, index: index, data: data, completion: c}
	if c != nil {
		c.ref()
	}
	return sub
}

func newZeroSubmission(s *stream, index int64) *submission {
	return &submission{typ: submissionZero, stream: s, index: index}
}

func newStopSubmission() *submission {
	return &submission{typ: submissionStop}
}

// setError reports err against this submission's completion, if any.
func (s *submission) setError(err error) {
	if s.completion != nil {
		s.completion.setError(err)
	}
}

// complete marks the submission handled and releases its completion
// reference, firing the completion's callback if this was the last
// outstanding reference.
func (s *submission) complete() {
	s.completed.Store(true)
	if s.completion != nil {
		s.completion.unref()
	}
}
