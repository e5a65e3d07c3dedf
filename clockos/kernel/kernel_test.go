package kernel

import (
	"context"
	"testing"
	"time"
)

func TestMessagePayloadClampsLen(t *testing.T) {
	var msg Message
	msg.Len = MaxMessageBytes + 10
	if got := len(msg.Payload()); got != MaxMessageBytes {
		t.Fatalf("expected payload length %d, got %d", MaxMessageBytes, got)
	}
}

func TestRestrict(t *testing.T) {
	k := New()
	ep := k.NewEndpoint(RightSend | RightRecv)
	if !ep.Valid() {
		t.Fatal("expected valid capability")
	}
	recv := ep.Restrict(RightRecv)
	if recv.canSend() || !recv.canRecv() {
		t.Fatalf("Restrict(RightRecv) rights = %b", recv.rights)
	}
	if got := recv.Restrict(RightSend); got.Valid() {
		t.Fatal("expected restricting recv-only to send to be invalid")
	}
	if got := (Capability{}).Restrict(RightSend); got.Valid() {
		t.Fatal("expected zero capability to stay invalid")
	}

	ctx := &Context{k: k}
	if res := ctx.SendToCapResult(recv, 1, nil, Capability{}); res != SendErrToNoSendRight {
		t.Fatalf("expected SendErrToNoSendRight, got %s", res)
	}
	if _, ok := ctx.TryRecv(ep.Restrict(RightSend)); ok {
		t.Fatal("expected TryRecv without recv right to fail")
	}
}

func TestSendErrors(t *testing.T) {
	k := New()
	ep := k.NewEndpoint(RightSend | RightRecv)
	ctx := &Context{k: k}

	big := make([]byte, MaxMessageBytes+1)
	if res := ctx.SendToCapResult(ep, 1, big, Capability{}); res != SendErrPayloadTooLarge {
		t.Fatalf("expected SendErrPayloadTooLarge, got %s", res)
	}
	ghost := Capability{ep: 30, rights: RightSend}
	if res := ctx.SendToCapResult(ghost, 1, nil, Capability{}); res != SendErrNoEndpoint {
		t.Fatalf("expected SendErrNoEndpoint, got %s", res)
	}
	if res := ctx.SendCapResult(Capability{}, ep, 1, nil, Capability{}); res != SendErrInvalidFromCap {
		t.Fatalf("expected SendErrInvalidFromCap, got %s", res)
	}

	reply := k.NewEndpoint(RightSend | RightRecv)
	if res := ctx.SendCapResult(reply, ep, 7, []byte("hi"), Capability{}); res != SendOK {
		t.Fatalf("expected SendOK, got %s", res)
	}
	msg, ok := ctx.TryRecv(ep)
	if !ok {
		t.Fatal("expected message")
	}
	if msg.From != reply.ep || msg.Kind != 7 || string(msg.Payload()) != "hi" {
		t.Fatalf("message = from %d kind %d %q", msg.From, msg.Kind, msg.Payload())
	}
}

func fill(t *testing.T, ctx *Context, to Capability) {
	t.Helper()
	for i := 0; i < mailboxSlots; i++ {
		if res := ctx.SendToCapResult(to, 1, []byte("x"), Capability{}); res != SendOK {
			t.Fatalf("expected SendOK filling queue, got %s", res)
		}
	}
}

func tickFor(k *Kernel, n int) {
	for i := 1; i <= n; i++ {
		k.TickTo(uint64(i))
		time.Sleep(time.Millisecond)
	}
}

func TestSendToCapRetryZeroLimitDoesNotBlock(t *testing.T) {
	k := New()
	ep := k.NewEndpoint(RightSend | RightRecv)
	ctx := &Context{k: k, taskID: 1}
	to := ep.Restrict(RightSend)
	fill(t, ctx, to)

	if res := ctx.SendToCapRetry(to, 1, []byte("y"), Capability{}, 0); res != SendErrQueueFull {
		t.Fatalf("expected SendErrQueueFull, got %s", res)
	}
}

func TestSendToCapRetrySucceedsAfterDrain(t *testing.T) {
	k := New()
	ep := k.NewEndpoint(RightSend | RightRecv)
	ctx := &Context{k: k, taskID: 1}
	to := ep.Restrict(RightSend)
	fill(t, ctx, to)

	resultCh := make(chan SendResult, 1)
	go func() {
		resultCh <- ctx.SendToCapRetry(to, 1, []byte("y"), Capability{}, 5)
	}()
	if _, ok := ctx.Recv(ep.Restrict(RightRecv)); !ok {
		t.Fatal("expected Recv to drain one message")
	}
	go tickFor(k, 10)

	select {
	case res := <-resultCh:
		if res != SendOK {
			t.Fatalf("expected SendOK after drain, got %s", res)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timed out waiting for send retry")
	}
}

func TestSendToCapRetryRespectsLimit(t *testing.T) {
	k := New()
	ep := k.NewEndpoint(RightSend | RightRecv)
	ctx := &Context{k: k, taskID: 1}
	to := ep.Restrict(RightSend)
	fill(t, ctx, to)

	resultCh := make(chan SendResult, 1)
	go func() {
		resultCh <- ctx.SendToCapRetry(to, 1, []byte("y"), Capability{}, 1)
	}()
	go tickFor(k, 10)

	select {
	case res := <-resultCh:
		if res != SendErrQueueFull {
			t.Fatalf("expected SendErrQueueFull, got %s", res)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timed out waiting for send retry")
	}
}

type echoTask struct {
	in, out Capability
}

func (e *echoTask) Step(ctx *Context) {
	msg, ok := ctx.Recv(e.in)
	if !ok {
		return
	}
	ctx.SendTo(e.out, msg.Kind+1, msg.Payload())
}

type tickTask struct {
	last uint64
	seen chan uint64
}

func (tt *tickTask) Step(ctx *Context) {
	tt.last = ctx.WaitTick(tt.last)
	select {
	case tt.seen <- tt.last:
	default:
	}
}

func TestRunStepsTasksUntilCancel(t *testing.T) {
	k := New()
	in := k.NewEndpoint(RightSend | RightRecv)
	out := k.NewEndpoint(RightSend | RightRecv)
	k.AddTask(&echoTask{in: in.Restrict(RightRecv), out: out.Restrict(RightSend)})
	tt := &tickTask{seen: make(chan uint64, 1)}
	k.AddTask(tt)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- k.Run(ctx) }()

	c := &Context{k: k}
	if !c.SendTo(in, 1, []byte("ping")) {
		t.Fatal("expected send to succeed")
	}
	select {
	case msg := <-mustChan(t, c, out):
		if msg.Kind != 2 || string(msg.Payload()) != "ping" {
			t.Fatalf("echo = kind %d %q, want kind 2 \"ping\"", msg.Kind, msg.Payload())
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for echo")
	}

	k.TickTo(5)
	select {
	case got := <-tt.seen:
		if got != 5 {
			t.Fatalf("WaitTick() = %d, want 5", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for tick")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if !c.Stopped() {
		t.Fatal("expected kernel to be stopped")
	}
}

func mustChan(t *testing.T, c *Context, ep Capability) <-chan Message {
	t.Helper()
	ch, ok := c.RecvChan(ep)
	if !ok {
		t.Fatal("expected recv channel")
	}
	return ch
}

type panicTask struct{}

func (panicTask) Step(*Context) { panic("boom") }

func TestTaskPanicIsRecovered(t *testing.T) {
	got := make(chan PanicInfo, 1)
	SetPanicHandler(func(info PanicInfo) { got <- info })

	k := New()
	tt := &tickTask{seen: make(chan uint64, 1)}
	k.AddTask(tt)
	id := k.AddTask(panicTask{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go k.Run(ctx)

	select {
	case info := <-got:
		if info.TaskID != id || info.Value != "boom" {
			t.Fatalf("PanicInfo = task %d value %v, want task %d value boom", info.TaskID, info.Value, id)
		}
		if len(info.Stack) == 0 {
			t.Fatal("expected a stack trace")
		}
	case <-time.After(time.Second):
		t.Fatal("panic handler not called")
	}
	if !InPanicMode() {
		t.Fatal("expected panic mode")
	}

	// The surviving task still runs.
	k.TickTo(1)
	select {
	case <-tt.seen:
	case <-time.After(time.Second):
		t.Fatal("surviving task stopped")
	}
}

func TestPostAndRunContext(t *testing.T) {
	k := New()
	ep := k.NewEndpoint(RightSend | RightRecv)
	if res := k.Post(ep.Restrict(RightRecv), 1, nil); res != SendErrToNoSendRight {
		t.Fatalf("expected SendErrToNoSendRight, got %s", res)
	}
	if res := k.Post(ep, 3, []byte("x")); res != SendOK {
		t.Fatalf("expected SendOK, got %s", res)
	}

	c := &Context{k: k}
	if err := c.Context().Err(); err != nil {
		t.Fatalf("Context().Err() before Run = %v, want nil", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		k.Run(ctx)
		close(done)
	}()
	cancel()
	<-done
	if c.Context().Err() == nil {
		t.Fatal("expected run context to end with the kernel")
	}
}
