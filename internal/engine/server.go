// poll loop and connection lifecycle
// only event fan-out here, request semantics live in http.go and chat.go
package engine

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/kfcemployee/httpd/internal/weblog"
)

// finite wait so the shutdown channel is consulted on idle servers
const pollTimeoutMs = 1000

// Config is everything the server touches outside its own process.
type Config struct {
	Port      int    // 0 binds an ephemeral port, see Server.Port
	DocRoot   string // prefix concatenated with request targets
	ErrorDoc  string // body served with 404 responses
	AccessLog string
	ErrorLog  string
	ChatLog   string // broadcast history, append-only
}

func (c *Config) withDefaults() {
	if c.DocRoot == "" {
		c.DocRoot = "./htdocs"
	}
	if c.ErrorDoc == "" {
		c.ErrorDoc = "./error_documents/404.html"
	}
	if c.AccessLog == "" {
		c.AccessLog = "./logs/access.log"
	}
	if c.ErrorLog == "" {
		c.ErrorLog = "./logs/error.log"
	}
	if c.ChatLog == "" {
		c.ChatLog = "./logs/chat_log"
	}
}

// Server owns the listener, the poll table, the registry and both logs.
// Everything past New runs on the single goroutine inside Run; Shutdown
// is the only member safe to call from elsewhere.
type Server struct {
	cfg Config

	listenFd int
	port     int

	table *pollTable
	reg   *registry

	access *weblog.Log
	errlog *weblog.Log

	done     chan struct{}
	shutdown sync.Once
}

// New opens the logs and the listening socket. Callers must Run the
// returned server or leak both.
func New(cfg Config) (*Server, error) {
	cfg.withDefaults()

	access, err := weblog.Open(cfg.AccessLog)
	if err != nil {
		return nil, err
	}
	errlog, err := weblog.Open(cfg.ErrorLog)
	if err != nil {
		access.Close()
		return nil, err
	}

	fd, err := listenSocket(cfg.Port)
	if err != nil {
		access.Close()
		errlog.Close()
		return nil, err
	}
	port, err := socketPort(fd)
	if err != nil {
		unix.Close(fd)
		access.Close()
		errlog.Close()
		return nil, err
	}

	return &Server{
		cfg:      cfg,
		listenFd: fd,
		port:     port,
		table:    newPollTable(fd),
		reg:      newRegistry(),
		access:   access,
		errlog:   errlog,
		done:     make(chan struct{}),
	}, nil
}

// Port reports the bound listening port.
func (s *Server) Port() int {
	return s.port
}

// Shutdown asks the loop to exit after its current iteration.
func (s *Server) Shutdown() {
	s.shutdown.Do(func() { close(s.done) })
}

// Run drives the poll loop until Shutdown or a poll failure. Accept is
// handled before any per-connection event; connections are then visited
// in insertion order with next snapshotted, since a handler may dispose
// the connection it runs on.
func (s *Server) Run() error {
	defer s.cleanup()

	for {
		select {
		case <-s.done:
			return nil
		default:
		}

		n, err := unix.Poll(s.table.fds[:s.table.used], pollTimeoutMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("poll: %w", err)
		}
		if n == 0 {
			continue
		}

		if s.table.revents(0)&unix.POLLIN != 0 {
			s.accept()
		}

		for h := s.reg.head; h != -1; {
			next := s.reg.get(h).next
			s.dispatch(h)
			h = next
		}
	}
}

// dispatch routes one connection's readiness result
func (s *Server) dispatch(h int) {
	c := s.reg.get(h)
	if c.slot < 0 {
		// disposed by an earlier handler in this iteration
		return
	}
	re := s.table.revents(c.slot)

	switch {
	case re&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0:
		s.closeConn(h)
	case re&unix.POLLIN != 0:
		s.receive(h)
	case re&unix.POLLOUT != 0:
		// writability outside the sending state is stale, ignore it
		if c.state == stateSending {
			s.send(h)
		}
	}
}

// accept takes one pending connection; per-call failure is logged, not fatal
func (s *Server) accept() {
	nfd, _, err := unix.Accept(s.listenFd)
	if err != nil {
		s.errlog.Printf("accept: %v", err)
		return
	}
	unix.SetNonblock(nfd, true)

	h := s.reg.alloc()
	c := s.reg.get(h)
	c.fd = nfd
	c.buf = make([]byte, bufferSize)
	c.state = stateReceiving
	c.slot = s.table.add(nfd, unix.POLLIN, h)
}

// closeConn disposes h: both descriptors, the poll slot and the
// registry node. The displaced neighbor's slot index is patched after
// the swap-remove.
func (s *Server) closeConn(h int) {
	c := s.reg.get(h)
	slot := c.slot

	unix.Close(c.fd)
	if c.file != nil {
		c.file.Close()
	}

	moved := s.table.remove(slot)
	if moved != -1 {
		s.reg.get(moved).slot = slot
	}
	s.reg.release(h)
}

func (s *Server) cleanup() {
	for h := s.reg.head; h != -1; {
		next := s.reg.get(h).next
		s.closeConn(h)
		h = next
	}
	unix.Close(s.listenFd)
	s.access.Close()
	s.errlog.Close()
}
