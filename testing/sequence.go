package testing

import (
	"net"
	"sync"
)

var portMu sync.Mutex

// NextPort returns a port number which was free at the time of the call.
// The kernel picks it, so that tests running in parallel do not clash.
func NextPort() int {
	portMu.Lock()
	defer portMu.Unlock()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		panic(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}
