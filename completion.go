package blkhash

import "sync/atomic"

// completionCallback is invoked once a completion's reference count drops
// to zero, i.e. once every submission sharing it has been handled by a
// worker.
type completionCallback func(userData interface{}, err error)

// completion is a reference-counted one-shot notification shared by every
// submission issued from a single call to AsyncUpdate or AsyncZero. It
// mirrors struct completion in the C library: refs starts at 1 (owned by
// the caller that created it), gains one ref per submission, and fires
// callback exactly once when the last reference is released.
type completion struct {
	callback completionCallback
	userData interface{}

	refs int32 // atomic

	errOnce int32 // atomic, guards err
	err     error
}

func newCompletion(cb completionCallback, userData interface{}) *completion {
	return &completion{
		callback: cb,
		userData: userData,
		refs:     1,
	}
}

// ref adds one reference, called when a new submission is created that
// shares this completion.
func (c *completion) ref() {
	atomic.AddInt32(&c.refs, 1)
}

// unref releases one reference and fires the callback if it was the last
// one, matching completion_unref's ACQ_REL fetch-and-subtract.
func (c *completion) unref() {
	if atomic.AddInt32(&c.refs, -1) == 0 {
		c.callback(c.userData, c.err)
	}
}

// setError keeps the first error reported against this completion, the
// same "first error wins" policy used everywhere else in this package.
func (c *completion) setError(err error) {
	if err == nil {
		return
	}
	if atomic.CompareAndSwapInt32(&c.errOnce, 0, 1) {
		c.err = err
	}
}
