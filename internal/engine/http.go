// receive / respond half of the connection state machine
package engine

import (
	"errors"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/kfcemployee/httpd/internal/protocol"
)

// receive pulls bytes off the socket and advances the state machine.
// Valid in stateReceiving and stateChatSender only; dispatch guarantees
// readability.
func (s *Server) receive(h int) {
	c := s.reg.get(h)

	if c.length == len(c.buf) {
		if !c.grow() {
			s.errlog.Printf("request exceeds %d bytes, closing fd %d", maxBuffer, c.fd)
			s.closeConn(h)
			return
		}
	}

	n, err := unix.Read(c.fd, c.buf[c.length:])
	if err != nil {
		if err == unix.EAGAIN {
			return
		}
		s.errlog.Printf("read fd %d: %v", c.fd, err)
		s.closeConn(h)
		return
	}
	if n == 0 {
		// peer closed cleanly
		s.closeConn(h)
		return
	}
	c.length += n

	switch c.state {
	case stateReceiving:
		req, perr := protocol.Parse(c.buf[:c.length])
		if errors.Is(perr, protocol.ErrIncomplete) {
			return
		}
		if perr != nil {
			s.errlog.Printf("parse fd %d: %v", c.fd, perr)
			s.closeConn(h)
			return
		}
		s.handleRequest(h, req)
	case stateChatSender:
		s.checkChatComplete(h)
	}
}

// handleRequest routes one parsed head: broadcast subscribe, broadcast
// publish, or a plain file request.
func (s *Server) handleRequest(h int, req protocol.Request) {
	c := s.reg.get(h)

	if req.Post {
		if req.ContentLength == 0 {
			// long-poll subscriber: park until the next publish
			c.state = stateChatReceiver
			s.table.setEvents(c.slot, 0)
			return
		}
		c.state = stateChatSender
		c.bodyOff = req.BodyOffset
		c.contentLen = req.ContentLength
		s.checkChatComplete(h)
		return
	}

	s.serveFile(h, string(req.URL))
}

// serveFile opens docRoot||url and arms the send phase with a 200, or
// falls back to the 404 document.
func (s *Server) serveFile(h int, url string) {
	c := s.reg.get(h)

	var code int
	var file *os.File
	var err error
	if hasDotDot(url) {
		err = os.ErrNotExist
	} else {
		file, err = os.Open(s.cfg.DocRoot + url)
	}
	if err != nil {
		s.errlog.Printf("GET %s 404 Not Found", url)
		code = 404
		file, _ = os.Open(s.cfg.ErrorDoc) // nil file means headers only
	} else {
		s.access.Printf("GET %s 200 OK", url)
		code = 200
	}

	c.file = file
	n := protocol.BuildResp(code, time.Now(), c.buf)
	c.cursor, c.length = 0, n
	c.state = stateSending
	s.table.setEvents(c.slot, unix.POLLOUT)
}

// send drains buf[cursor:length], then refills from the streamed file.
// The connection dies on full delivery, file EOF, or a dead peer.
func (s *Server) send(h int) {
	c := s.reg.get(h)

	n, err := unix.Write(c.fd, c.buf[c.cursor:c.length])
	if err != nil {
		if err == unix.EAGAIN {
			return
		}
		s.errlog.Printf("write fd %d: %v", c.fd, err)
		s.closeConn(h)
		return
	}
	if n == 0 {
		s.closeConn(h)
		return
	}
	c.cursor += n
	if c.cursor < c.length {
		return
	}

	if c.file == nil {
		s.closeConn(h)
		return
	}
	rn, rerr := c.file.Read(c.buf)
	if rerr != nil || rn == 0 {
		// EOF or a broken file, either way the response is over
		s.closeConn(h)
		return
	}
	c.cursor, c.length = 0, rn
}

// hasDotDot rejects targets with a ".." path segment
func hasDotDot(url string) bool {
	for _, seg := range strings.Split(url, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
