// Package remote serves the clock's line protocol to an IR bridge or web layer over
// a byte stream. Each line is one command; each command gets one reply line.
package remote

import (
	"errors"
	"io"

	"dotclock/clockos/kernel"
	"dotclock/clockos/proto"
	"dotclock/clockos/ring"
	"dotclock/clockos/rtc"
	"dotclock/clockos/services/logger"
	"dotclock/clockos/setup"
)

// MaxLineBytes bounds one command line.
const MaxLineBytes = 80

// ErrLineTooLong is replied to lines longer than MaxLineBytes.
var ErrLineTooLong = errors.New("line too long")

// Controller is the clock API the protocol drives. clock.Core implements it.
type Controller interface {
	EnqueueScroll(tag proto.Tag) error
	EnterSetupMode(mode setup.Mode) error
	ForceSetupStep(step setup.Step) error
	Now() rtc.Time
}

type line struct {
	text string
	err  error
}

// Service reads command lines from rw and writes replies back.
type Service struct {
	ctl    Controller
	rw     io.ReadWriter
	logCap kernel.Capability

	lines   chan line
	started bool
}

// New returns a service. logCap may be zero to skip logging.
func New(ctl Controller, rw io.ReadWriter, logCap kernel.Capability) *Service {
	return &Service{ctl: ctl, rw: rw, logCap: logCap, lines: make(chan line, 4)}
}

func (s *Service) Step(ctx *kernel.Context) {
	if !s.started {
		s.started = true
		if s.rw != nil {
			go s.readLoop(ctx)
		}
	}
	select {
	case l := <-s.lines:
		reply := proto.ReplyErr(ErrLineTooLong)
		if l.err == nil {
			reply = s.Handle(l.text)
		}
		if s.logCap.Valid() {
			logger.Log(ctx, s.logCap, "remote: "+l.text+" -> "+reply)
		}
		_, _ = io.WriteString(s.rw, reply+"\r\n")
	case <-ctx.Done():
	}
}

// Handle runs one command line and returns the reply.
func (s *Service) Handle(text string) string {
	cmd, err := proto.ParseCommand(text)
	if err != nil {
		return proto.ReplyErr(err)
	}
	switch cmd.Op {
	case proto.OpScroll:
		err = s.ctl.EnqueueScroll(cmd.Tag)
	case proto.OpSetup:
		err = s.ctl.EnterSetupMode(cmd.Mode)
	case proto.OpStep:
		err = s.ctl.ForceSetupStep(cmd.Step)
	case proto.OpTime:
		return proto.ReplyOK + " " + s.ctl.Now().String()
	}
	switch {
	case err == nil:
		return proto.ReplyOK
	case errors.Is(err, ring.ErrFull):
		return proto.ReplyFull
	default:
		return proto.ReplyErr(err)
	}
}

// readLoop splits the stream into lines. A read that returns nothing, which serial
// ports do on timeout, waits for the next tick. It stops at io.EOF.
func (s *Service) readLoop(ctx *kernel.Context) {
	buf := make([]byte, 64)
	cur := make([]byte, 0, MaxLineBytes)
	overflow := false
	for !ctx.Stopped() {
		n, err := s.rw.Read(buf)
		for _, b := range buf[:n] {
			if b != '\n' && b != '\r' {
				if len(cur) < MaxLineBytes {
					cur = append(cur, b)
				} else {
					overflow = true
				}
				continue
			}
			if len(cur) == 0 && !overflow {
				continue
			}
			l := line{text: string(cur)}
			if overflow {
				l.err = ErrLineTooLong
			}
			cur, overflow = cur[:0], false
			select {
			case s.lines <- l:
			case <-ctx.Done():
				return
			}
		}
		if errors.Is(err, io.EOF) {
			if len(cur) > 0 || overflow {
				l := line{text: string(cur)}
				if overflow {
					l.err = ErrLineTooLong
				}
				select {
				case s.lines <- l:
				case <-ctx.Done():
				}
			}
			return
		}
		if n == 0 || err != nil {
			ctx.BlockOnTick()
		}
	}
}
