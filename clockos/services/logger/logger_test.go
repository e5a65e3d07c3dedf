package logger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"dotclock/clockos/kernel"
	"dotclock/clockos/proto"
)

type memLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *memLogger) WriteLineString(s string) { l.WriteLineBytes([]byte(s)) }

func (l *memLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, string(b))
}

func (l *memLogger) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

func TestServiceWritesLines(t *testing.T) {
	k := kernel.New()
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	out := new(memLogger)
	svc := New(out, ep.Restrict(kernel.RightRecv))
	k.AddTask(svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		k.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	k.Post(ep, uint16(proto.MsgEnterSetup), nil)
	for i := 0; i < 3; i++ {
		if res := k.Post(ep, uint16(proto.MsgLogLine), proto.LogLinePayload([]byte(fmt.Sprintf("line %d", i)))); res != kernel.SendOK {
			t.Fatalf("Post() = %s, want ok", res)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(out.snapshot()) < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("timed out, got %q", out.snapshot())
		}
		time.Sleep(time.Millisecond)
	}
	want := []string{"line 0", "line 1", "line 2"}
	if got := out.snapshot(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("lines = %q, want %q", got, want)
	}
	if got := svc.Recent(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("Recent() = %q, want %q", got, want)
	}
}

func TestRecentWraps(t *testing.T) {
	svc := New(nil, kernel.Capability{})
	for i := 0; i < RecentLines+5; i++ {
		svc.remember(fmt.Sprintf("l%d", i))
	}
	got := svc.Recent()
	if len(got) != RecentLines {
		t.Fatalf("len(Recent()) = %d, want %d", len(got), RecentLines)
	}
	if got[0] != "l5" || got[len(got)-1] != fmt.Sprintf("l%d", RecentLines+4) {
		t.Fatalf("Recent() = %q..%q, want l5..l%d", got[0], got[len(got)-1], RecentLines+4)
	}
}

func TestLogRejectsNilContext(t *testing.T) {
	if res := Log(nil, kernel.Capability{}, "x"); res != kernel.SendErrInvalidFromCap {
		t.Fatalf("Log(nil) = %s, want %s", res, kernel.SendErrInvalidFromCap)
	}
}
