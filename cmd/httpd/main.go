// httpd serves static files over HTTP/1.0 plus the /broadcast.service
// long-poll chat endpoint, all on one poll(2) loop.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/kfcemployee/httpd/internal/engine"
)

func usage() {
	fmt.Println("httpd: a web server")
	fmt.Println("start server:\t httpd -p port")
	fmt.Println("options:")
	fmt.Println("\t-p port\t\t port or service name to listen on")
}

func main() {
	var (
		portArg string
		help    bool
	)
	flag.StringVar(&portArg, "p", "", "port or service name to listen on")
	flag.StringVar(&portArg, "port", "", "port or service name to listen on")
	flag.BoolVar(&help, "h", false, "print usage")
	flag.BoolVar(&help, "help", false, "print usage")
	flag.Usage = usage
	flag.Parse()

	if help {
		usage()
		os.Exit(0)
	}
	if portArg == "" {
		fmt.Fprintln(os.Stderr, "httpd: no port given")
		os.Exit(1)
	}

	port, err := resolvePort(portArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "httpd: %v\n", err)
		os.Exit(1)
	}

	srv, err := engine.New(engine.Config{Port: port})
	if err != nil {
		fmt.Fprintf(os.Stderr, "httpd: %v\n", err)
		os.Exit(1)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		srv.Shutdown()
	}()

	if err := srv.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "httpd: %v\n", err)
		os.Exit(1)
	}
}

// resolvePort accepts a decimal port or a services(5) name for tcp.
func resolvePort(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 65535 {
			return 0, fmt.Errorf("port %d is out of valid port range", n)
		}
		return n, nil
	}
	n, err := net.LookupPort("tcp", s)
	if err != nil {
		return 0, fmt.Errorf("port could not be resolved: %w", err)
	}
	return n, nil
}
