// Package logger drains log messages from a kernel endpoint into a hal.Logger and
// keeps the most recent lines for the debug server.
package logger

import (
	"sync"

	"dotclock/clockos/kernel"
	"dotclock/clockos/proto"
	"dotclock/hal"
)

// RecentLines is how many lines Recent can return.
const RecentLines = 64

type Service struct {
	log hal.Logger
	ep  kernel.Capability

	mu     sync.Mutex
	recent [RecentLines]string
	next   int
	n      int
}

func New(log hal.Logger, ep kernel.Capability) *Service {
	return &Service{log: log, ep: ep}
}

func (s *Service) Step(ctx *kernel.Context) {
	msg, ok := ctx.Recv(s.ep)
	if !ok {
		return
	}
	if msg.Kind != uint16(proto.MsgLogLine) {
		return
	}
	line := msg.Payload()
	s.remember(string(line))
	if s.log == nil {
		return
	}
	s.log.WriteLineBytes(line)
}

func (s *Service) remember(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent[s.next] = line
	s.next = (s.next + 1) % RecentLines
	if s.n < RecentLines {
		s.n++
	}
}

// Recent returns up to RecentLines logged lines, oldest first.
func (s *Service) Recent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, s.n)
	start := (s.next - s.n + RecentLines) % RecentLines
	for i := 0; i < s.n; i++ {
		out = append(out, s.recent[(start+i)%RecentLines])
	}
	return out
}

// Log sends a log line to the logger service.
//
// The call is best-effort: it may drop on queue full.
func Log(ctx *kernel.Context, logCap kernel.Capability, line string) kernel.SendResult {
	if ctx == nil {
		return kernel.SendErrInvalidFromCap
	}
	b := []byte(line)
	if len(b) > kernel.MaxMessageBytes {
		b = b[:kernel.MaxMessageBytes]
	}
	return ctx.SendToCapResult(logCap, uint16(proto.MsgLogLine), proto.LogLinePayload(b), kernel.Capability{})
}
