// parse the head of a raw HTTP/1.0 request w zero-alloc
// only parser logic
package protocol

import (
	"bytes"
)

// requestable urls are shorter than this; targets of this length or
// longer are rejected
const MaxURLSize = 256

var (
	crlfcrlf      = []byte("\r\n\r\n")
	methodGet     = []byte("GET")
	postBroadcast = []byte("POST /broadcast.service")
	contentLenKey = []byte("Content-Length: ")
)

// Request is the parsed view of one request head.
// URL points into the caller's buffer and stays valid until the buffer is reused.
type Request struct {
	Post          bool // POST to the broadcast service
	ContentLength int
	URL           []byte
	BodyOffset    int // first body byte, right after the blank line
}

// Parse scans raw for a complete \r\n\r\n-terminated head and extracts
// the GET target or the broadcast POST marker plus its Content-Length.
// Returns ErrIncomplete until the terminator has arrived; raw is never
// modified, so partial heads can be re-scanned after more bytes land.
func Parse(raw []byte) (Request, error) {
	end := bytes.Index(raw, crlfcrlf)
	if end == -1 {
		return Request{}, ErrIncomplete
	}

	req := Request{BodyOffset: end + len(crlfcrlf)}
	head := raw[:end]
	for len(head) > 0 {
		line := head
		if i := bytes.Index(head, crlf); i != -1 {
			line = head[:i]
			head = head[i+2:]
		} else {
			head = nil
		}

		switch {
		case bytes.HasPrefix(line, methodGet):
			target := line[len(methodGet):]
			if len(target) == 0 || target[0] != ' ' {
				return req, ErrInvalid
			}
			target = target[1:]
			sep := bytes.IndexByte(target, ' ')
			if sep == -1 {
				return req, ErrInvalid
			}
			if sep >= MaxURLSize {
				return req, ErrURLTooLong
			}
			req.URL = target[:sep]

		case bytes.HasPrefix(line, postBroadcast):
			req.Post = true

		case req.Post && bytes.HasPrefix(line, contentLenKey):
			// digits only, anything after them is ignored
			n := 0
			for _, c := range line[len(contentLenKey):] {
				if c < '0' || c > '9' {
					break
				}
				n = n*10 + int(c-'0')
			}
			req.ContentLength = n
			return req, nil
		}
	}

	if !req.Post && req.URL == nil {
		return req, ErrInvalid
	}
	return req, nil
}
