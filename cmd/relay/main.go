// relay is a netcat-style pump: stdin to a tcp peer and the peer back
// to stdout, multiplexed over the same poll(2) primitive the server
// uses.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

const bufferSize = 64

func main() {
	host := flag.String("host", "127.0.0.1", "peer address")
	port := flag.Int("port", 5555, "peer port")
	flag.Parse()

	ip := net.ParseIP(*host).To4()
	if ip == nil {
		fmt.Fprintf(os.Stderr, "relay: not an IPv4 address: %s\n", *host)
		os.Exit(1)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "relay: socket: %v\n", err)
		os.Exit(1)
	}

	sa := &unix.SockaddrInet4{Port: *port}
	copy(sa.Addr[:], ip)
	if err := unix.Connect(fd, sa); err != nil {
		fmt.Fprintf(os.Stderr, "relay: connect: %v\n", err)
		os.Exit(1)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		unix.Close(fd)
		os.Exit(0)
	}()

	fds := []unix.PollFd{
		{Fd: 0, Events: unix.POLLIN},
		{Fd: int32(fd), Events: unix.POLLIN},
	}
	buf := make([]byte, bufferSize)

	for {
		if _, err := unix.Poll(fds, -1); err != nil {
			if err == unix.EINTR {
				continue
			}
			fmt.Fprintf(os.Stderr, "relay: poll: %v\n", err)
			os.Exit(1)
		}

		if fds[0].Revents&unix.POLLIN != 0 {
			n, err := unix.Read(0, buf)
			if err != nil || n == 0 {
				break
			}
			if !writeAll(fd, buf[:n]) {
				break
			}
		}
		if fds[1].Revents&(unix.POLLIN|unix.POLLHUP) != 0 {
			n, err := unix.Read(fd, buf)
			if err != nil || n == 0 {
				break
			}
			if !writeAll(1, buf[:n]) {
				break
			}
		}
	}
	unix.Close(fd)
}

func writeAll(fd int, b []byte) bool {
	for len(b) > 0 {
		n, err := unix.Write(fd, b)
		if err != nil || n == 0 {
			return false
		}
		b = b[n:]
	}
	return true
}
