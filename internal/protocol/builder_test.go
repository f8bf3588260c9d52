package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildResp200(t *testing.T) {
	now := time.Date(2009, time.November, 10, 23, 0, 0, 0, time.UTC)
	buf := make([]byte, 1024)

	n := BuildResp(200, now, buf)
	require.NotZero(t, n)
	assert.Equal(t, "HTTP/1.0 200 OK\r\nDate: Tue, 10 Nov 2009 23:00:00 GMT\r\n\r\n", string(buf[:n]))
}

func TestBuildResp200ConvertsToGMT(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	now := time.Date(2009, time.November, 11, 0, 0, 0, 0, loc)
	buf := make([]byte, 1024)

	n := BuildResp(200, now, buf)
	assert.Equal(t, "HTTP/1.0 200 OK\r\nDate: Tue, 10 Nov 2009 23:00:00 GMT\r\n\r\n", string(buf[:n]))
}

func TestBuildResp404(t *testing.T) {
	buf := make([]byte, 1024)

	n := BuildResp(404, time.Now(), buf)
	require.NotZero(t, n)
	assert.Equal(t, "HTTP/1.0 404 Not Found\r\n\r\n", string(buf[:n]))
}

func TestBuildRespRejects(t *testing.T) {
	buf := make([]byte, 1024)
	assert.Zero(t, BuildResp(500, time.Now(), buf))

	small := make([]byte, 16)
	assert.Zero(t, BuildResp(200, time.Now(), small))
}
