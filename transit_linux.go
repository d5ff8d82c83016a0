//go:build linux
// +build linux

package mmport

import (
	"golang.org/x/sys/unix"
)

// eventfdGate is a drainGate backed by a Linux eventfd created in
// EFD_SEMAPHORE mode: reads block until the counter is non-zero and then
// decrement it by exactly one, which is exactly the semantics transitGate
// needs and avoids the wakeup-all behavior of a plain eventfd.
type eventfdGate struct {
	fd int
}

func newDrainGate() drainGate {
	fd, err := unix.Eventfd(1, unix.EFD_SEMAPHORE|unix.EFD_CLOEXEC)
	if err != nil {
		// Fall back to the portable implementation rather than fail
		// construction; eventfd is a steady-state optimization, not a
		// correctness requirement.
		return newChanGate()
	}
	return &eventfdGate{fd: fd}
}

func (g *eventfdGate) consume() {
	var buf [8]byte
	for {
		_, err := unix.Read(g.fd, buf[:])
		if err == unix.EINTR {
			continue
		}
		return
	}
}

func (g *eventfdGate) post() {
	buf := [8]byte{0, 0, 0, 0, 0, 0, 0, 1}
	for {
		_, err := unix.Write(g.fd, buf[:])
		if err == unix.EINTR {
			continue
		}
		return
	}
}
