//go:build linux

package blkhash

import "golang.org/x/sys/unix"

// eventfdEvent backs event on Linux with a real eventfd(2), the same
// primitive lib/event.c reaches for under HAVE_EVENTFD.
type eventfdEvent struct {
	fd int
}

func newEvent() (event, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, err
	}
	return &eventfdEvent{fd: fd}, nil
}

func (e *eventfdEvent) Signal() error {
	var buf [8]byte
	buf[0] = 1
	_, err := unix.Write(e.fd, buf[:])
	if err == unix.EAGAIN {
		// The counter would overflow: it is already signaled, which is
		// exactly the readiness state Signal is trying to establish.
		return nil
	}
	return err
}

func (e *eventfdEvent) Wait() error {
	var buf [8]byte
	_, err := unix.Read(e.fd, buf[:])
	if err == unix.EAGAIN {
		return nil
	}
	return err
}

func (e *eventfdEvent) FD() int { return e.fd }

func (e *eventfdEvent) Close() error {
	return unix.Close(e.fd)
}
