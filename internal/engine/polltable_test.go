package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestPollTableListenerSlot(t *testing.T) {
	pt := newPollTable(5)

	require.Equal(t, 1, pt.used)
	assert.Equal(t, int32(5), pt.fds[0].Fd)
	assert.Equal(t, int16(unix.POLLIN), pt.fds[0].Events)
	assert.Equal(t, -1, pt.owner[0])
}

func TestPollTableAddGrows(t *testing.T) {
	pt := newPollTable(5)
	cap0 := len(pt.fds)

	// fill past the initial capacity; the table must stay dense
	for i := range 32 {
		slot := pt.add(100+i, unix.POLLIN, i)
		assert.Equal(t, 1+i, slot)
	}

	require.Equal(t, 33, pt.used)
	assert.Greater(t, len(pt.fds), cap0)
	assert.LessOrEqual(t, pt.used, len(pt.fds))
	for i := range 32 {
		assert.Equal(t, int32(100+i), pt.fds[1+i].Fd)
		assert.Equal(t, i, pt.owner[1+i])
	}
}

func TestPollTableSwapRemove(t *testing.T) {
	pt := newPollTable(5)
	for i := range 4 {
		pt.add(100+i, unix.POLLIN, i)
	}

	// removing a middle slot pulls the last one in
	moved := pt.remove(2)
	assert.Equal(t, 3, moved)
	assert.Equal(t, int32(103), pt.fds[2].Fd)
	assert.Equal(t, 4, pt.used)

	// removing the last slot moves nobody
	moved = pt.remove(pt.used - 1)
	assert.Equal(t, -1, moved)
	assert.Equal(t, 3, pt.used)
}

func TestPollTableShrinks(t *testing.T) {
	pt := newPollTable(5)
	for i := range 64 {
		pt.add(100+i, unix.POLLIN, i)
	}
	grown := len(pt.fds)

	for pt.used > 1 {
		pt.remove(pt.used - 1)
	}

	assert.Less(t, len(pt.fds), grown)
	assert.Equal(t, 1, pt.used)
	assert.Equal(t, int32(5), pt.fds[0].Fd)
}

func TestPollTableSetEvents(t *testing.T) {
	pt := newPollTable(5)
	slot := pt.add(100, unix.POLLIN, 0)
	pt.fds[slot].Revents = unix.POLLIN

	pt.setEvents(slot, unix.POLLOUT)
	assert.Equal(t, int16(unix.POLLOUT), pt.fds[slot].Events)
	assert.Zero(t, pt.fds[slot].Revents)

	pt.setEvents(slot, 0)
	assert.Zero(t, pt.fds[slot].Events)
}
