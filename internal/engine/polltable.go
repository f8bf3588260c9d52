package engine

import (
	"golang.org/x/sys/unix"
)

const (
	overalloc         = 8  // slack appended on every resize
	downsizeThreshold = 15 // free slots tolerated before shrinking
)

// pollTable is the dense vector handed to poll(2).
// Slot 0 is always the listening socket; slots [1, used) are client
// sockets, each backed by a registry handle in owner. Slots never have
// holes, removal swaps the last slot in.
type pollTable struct {
	fds   []unix.PollFd
	owner []int // registry handle per slot, -1 for the listener
	used  int   // populated slots
}

func newPollTable(listenFd int) *pollTable {
	t := &pollTable{
		fds:   make([]unix.PollFd, 1+overalloc),
		owner: make([]int, 1+overalloc),
	}
	t.fds[0] = unix.PollFd{Fd: int32(listenFd), Events: unix.POLLIN}
	t.owner[0] = -1
	t.used = 1
	return t
}

// add appends a slot for fd and returns its index, growing the table
// when the next accept would not fit.
func (t *pollTable) add(fd int, events int16, handle int) int {
	if t.used >= len(t.fds)-1 {
		t.resize(t.used + 3 + overalloc)
	}
	i := t.used
	t.fds[i] = unix.PollFd{Fd: int32(fd), Events: events}
	t.owner[i] = handle
	t.used++
	return i
}

// remove swap-removes slot i and returns the handle whose slot moved
// into i, or -1 when i was already the last slot.
func (t *pollTable) remove(i int) int {
	last := t.used - 1
	moved := -1
	if i != last {
		t.fds[i] = t.fds[last]
		t.owner[i] = t.owner[last]
		moved = t.owner[i]
	}
	t.fds[last] = unix.PollFd{}
	t.owner[last] = 0
	t.used--

	if t.used+2+downsizeThreshold < len(t.fds) {
		t.resize(t.used + 3 + overalloc)
	}
	return moved
}

// setEvents rearms the interest mask of slot i
func (t *pollTable) setEvents(i int, events int16) {
	t.fds[i].Events = events
	t.fds[i].Revents = 0
}

func (t *pollTable) revents(i int) int16 {
	return t.fds[i].Revents
}

func (t *pollTable) resize(n int) {
	fds := make([]unix.PollFd, n)
	owner := make([]int, n)
	copy(fds, t.fds[:t.used])
	copy(owner, t.owner[:t.used])
	t.fds, t.owner = fds, owner
}
