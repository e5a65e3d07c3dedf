//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/tarm/serial"
)

type hostSerial struct {
	mu sync.Mutex
	r  io.Reader
	w  io.Writer
}

// openSerial opens port, or wraps stdin and stdout when port is empty. "none"
// disables the serial link.
func openSerial(port string, baud int) (Serial, io.Closer, error) {
	switch port {
	case "none":
		return nil, nil, nil
	case "":
		return &hostSerial{r: os.Stdin, w: os.Stdout}, nil, nil
	}
	if baud <= 0 {
		baud = 115200
	}
	p, err := serial.OpenPort(&serial.Config{
		Name:        port,
		Baud:        baud,
		ReadTimeout: 100 * time.Millisecond,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open serial port %s: %w", port, err)
	}
	return &hostSerial{r: p, w: p}, p, nil
}

func (s *hostSerial) Read(p []byte) (int, error) {
	if s.r == nil {
		return 0, ErrNotImplemented
	}
	return s.r.Read(p)
}

func (s *hostSerial) Write(p []byte) (int, error) {
	if s.w == nil {
		return 0, ErrNotImplemented
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
