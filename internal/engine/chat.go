// broadcast half of the state machine: the chat log file is the topic,
// every publish replays the whole log to every parked receiver
package engine

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/kfcemployee/httpd/internal/protocol"
)

// checkChatComplete fires once a chat sender's buffer may hold its full
// body. Appends the body to the chat log, closes the sender and rearms
// every parked receiver with a fresh replay of the log. Anything the
// sender wrote past its Content-Length is never consumed.
func (s *Server) checkChatComplete(h int) {
	c := s.reg.get(h)
	if c.bodyOff+c.contentLen > c.length {
		return
	}

	body := c.buf[c.bodyOff : c.bodyOff+c.contentLen]
	if err := appendChatLog(s.cfg.ChatLog, body); err != nil {
		s.errlog.Printf("chat log: %v", err)
		s.closeConn(h)
		return
	}
	s.access.Printf("POST /broadcast.service 200 OK")
	s.closeConn(h)

	// registry order keeps the broadcast fair; snapshot next, the
	// error path below disposes the receiver it is visiting
	for rh := s.reg.head; rh != -1; {
		next := s.reg.get(rh).next
		if s.reg.get(rh).state == stateChatReceiver {
			s.armReceiver(rh)
		}
		rh = next
	}
}

// armReceiver turns a parked subscriber into a sender of the whole log
func (s *Server) armReceiver(h int) {
	c := s.reg.get(h)

	file, err := os.Open(s.cfg.ChatLog)
	if err != nil {
		s.errlog.Printf("chat log: %v", err)
		s.closeConn(h)
		return
	}

	c.file = file
	n := protocol.BuildResp(200, time.Now(), c.buf)
	c.cursor, c.length = 0, n
	c.state = stateSending
	s.table.setEvents(c.slot, unix.POLLOUT)
}

// appendChatLog appends one message body. Open-write-close per message,
// no handle caching, so replays always observe the append.
func appendChatLog(path string, body []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	if _, err := f.Write(body); err != nil {
		f.Close()
		return fmt.Errorf("append: %w", err)
	}
	return f.Close()
}
