//go:build !linux

package blkhash

import (
	"os"

	"golang.org/x/sys/unix"
)

// pipeEvent backs event on non-Linux platforms with a self-pipe, the
// fallback lib/event.c uses when HAVE_EVENTFD is not defined.
type pipeEvent struct {
	r, w *os.File
}

func newEvent() (event, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(int(r.Fd()), true); err != nil {
		r.Close()
		w.Close()
		return nil, err
	}
	if err := unix.SetNonblock(int(w.Fd()), true); err != nil {
		r.Close()
		w.Close()
		return nil, err
	}
	return &pipeEvent{r: r, w: w}, nil
}

func (e *pipeEvent) Signal() error {
	_, err := e.w.Write([]byte{1})
	if err == unix.EAGAIN {
		// The pipe buffer still holds an unread byte: already signaled.
		return nil
	}
	return err
}

func (e *pipeEvent) Wait() error {
	var buf [128]byte
	_, err := e.r.Read(buf[:])
	if err == unix.EAGAIN {
		return nil
	}
	return err
}

func (e *pipeEvent) FD() int { return int(e.r.Fd()) }

func (e *pipeEvent) Close() error {
	werr := e.w.Close()
	rerr := e.r.Close()
	if werr != nil {
		return werr
	}
	return rerr
}
