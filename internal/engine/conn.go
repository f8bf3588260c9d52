package engine

import (
	"os"
)

const (
	bufferSize = 1024    // initial per-connection buffer
	maxBuffer  = 1 << 20 // hard cap, overflow closes the connection
)

// connection state machine
type connState uint8

const (
	stateReceiving    connState = iota // reading request bytes
	stateSending                       // draining buffer, maybe refilling from file
	stateChatReceiver                  // parked until the next broadcast
	stateChatSender                    // reading a POST body for the chat log
)

// conn is the per-client state: the socket, an optional file being
// streamed as the response body, and one growable buffer shared by the
// receive and send phases.
// Invariant: 0 <= cursor <= length <= len(buf) <= maxBuffer.
type conn struct {
	fd   int
	file *os.File // response body source, nil when headers-only

	buf    []byte // len(buf) is the capacity
	length int    // populated bytes
	cursor int    // first unsent byte while sending

	bodyOff    int // first body byte, set for chat senders
	contentLen int // expected body length, set for chat senders

	state connState
	slot  int // index of this conn's slot in the poll table

	prev, next int // registry links, -1 terminated
}

// grow doubles the buffer, false once maxBuffer is reached
func (c *conn) grow() bool {
	if len(c.buf) >= maxBuffer {
		return false
	}
	n := len(c.buf) * 2
	if n > maxBuffer {
		n = maxBuffer
	}
	nb := make([]byte, n)
	copy(nb, c.buf[:c.length])
	c.buf = nb
	return true
}
