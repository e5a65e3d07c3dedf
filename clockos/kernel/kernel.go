// Package kernel is the main-loop scheduler: cooperative tasks, capability-guarded
// endpoints with bounded mailboxes, a shared tick and panic capture.
//
// Each task runs its Step in a loop on its own goroutine; Step is expected to block in
// Recv or WaitTick. Interrupt context never touches the kernel except through TickTo.
package kernel

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

const (
	maxTasks     = 16
	maxEndpoints = 32
	mailboxSlots = 16
)

type TaskID uint8

// Rights define which operations are allowed for a capability.
type Rights uint8

const (
	RightSend Rights = 1 << iota
	RightRecv
)

// Endpoint identifies an IPC destination.
type Endpoint uint8

// Capability grants access to an IPC endpoint.
//
// It is opaque by construction (no exported fields) and may be transferred via IPC.
type Capability struct {
	ep     Endpoint
	rights Rights
}

func (c Capability) valid() bool {
	return c.rights != 0
}

func (c Capability) Valid() bool { return c.valid() }

func (c Capability) canSend() bool { return c.rights&RightSend != 0 }
func (c Capability) canRecv() bool { return c.rights&RightRecv != 0 }

// Restrict returns a capability with a reduced set of rights.
func (c Capability) Restrict(rights Rights) Capability {
	if !c.valid() {
		return Capability{}
	}
	r := c.rights & rights
	if r == 0 {
		return Capability{}
	}
	return Capability{ep: c.ep, rights: r}
}

// MaxMessageBytes is the maximum payload size for IPC messages.
const MaxMessageBytes = 128

// Message is a fixed-size IPC envelope.
type Message struct {
	From Endpoint
	To   Endpoint
	Kind uint16
	Len  uint16
	Data [MaxMessageBytes]byte
	Cap  Capability
}

// Payload returns the valid part of Data.
func (m *Message) Payload() []byte {
	n := int(m.Len)
	if n > MaxMessageBytes {
		n = MaxMessageBytes
	}
	return m.Data[:n]
}

// SendResult describes the outcome of a send attempt.
type SendResult uint8

const (
	SendOK SendResult = iota
	SendErrInvalidFromCap
	SendErrInvalidToCap
	SendErrFromNoSendRight
	SendErrToNoSendRight
	SendErrNoEndpoint
	SendErrPayloadTooLarge
	SendErrQueueFull
)

func (r SendResult) String() string {
	switch r {
	case SendOK:
		return "ok"
	case SendErrInvalidFromCap:
		return "invalid from capability"
	case SendErrInvalidToCap:
		return "invalid to capability"
	case SendErrFromNoSendRight:
		return "from capability has no send right"
	case SendErrToNoSendRight:
		return "to capability has no send right"
	case SendErrNoEndpoint:
		return "no such endpoint"
	case SendErrPayloadTooLarge:
		return "payload too large"
	case SendErrQueueFull:
		return "queue full"
	default:
		return "unknown"
	}
}

// Task is a cooperative unit of execution.
type Task interface {
	Step(*Context)
}

type endpointState struct {
	ch chan Message
}

// Kernel routes messages between tasks and distributes the tick.
type Kernel struct {
	mu            sync.Mutex
	endpoints     [maxEndpoints]endpointState
	endpointCount Endpoint
	tasks         []Task

	tick   atomic.Uint64
	tickMu sync.Mutex
	tickCh chan struct{}

	done    chan struct{}
	stopped atomic.Bool
	runCtx  context.Context
}

// New creates a kernel instance.
func New() *Kernel {
	return &Kernel{
		tickCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// NewEndpoint allocates a new endpoint and returns a capability for it.
func (k *Kernel) NewEndpoint(rights Rights) Capability {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.endpointCount >= maxEndpoints {
		return Capability{}
	}
	ep := k.endpointCount
	k.endpointCount++
	k.endpoints[ep].ch = make(chan Message, mailboxSlots)
	return Capability{ep: ep, rights: rights}
}

// AddTask registers a task and returns its ID. Tasks added after Run are ignored.
func (k *Kernel) AddTask(t Task) TaskID {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.tasks) >= maxTasks {
		return 0
	}
	k.tasks = append(k.tasks, t)
	return TaskID(len(k.tasks) - 1)
}

// Run steps every task on its own goroutine until ctx ends. A task that panics is
// stopped and reported through the panic handler; the others keep running.
func (k *Kernel) Run(ctx context.Context) error {
	k.mu.Lock()
	tasks := append([]Task(nil), k.tasks...)
	k.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	k.mu.Lock()
	k.runCtx = ctx
	k.mu.Unlock()
	g.Go(func() error {
		<-ctx.Done()
		k.stop()
		return nil
	})
	for id, t := range tasks {
		id, t := TaskID(id), t
		g.Go(func() error {
			k.runTask(id, t)
			return nil
		})
	}
	return g.Wait()
}

func (k *Kernel) runTask(id TaskID, t Task) {
	defer func() {
		if v := recover(); v != nil {
			triggerPanic(PanicInfo{TaskID: id, Value: v})
		}
	}()
	c := &Context{k: k, taskID: id}
	for !k.stopped.Load() {
		t.Step(c)
	}
}

// Post sends a message from outside any task, for example from a service goroutine.
func (k *Kernel) Post(toCap Capability, kind uint16, payload []byte) SendResult {
	c := Context{k: k}
	return c.SendToCapResult(toCap, kind, payload, Capability{})
}

func (k *Kernel) stop() {
	if k.stopped.CompareAndSwap(false, true) {
		close(k.done)
	}
}

// TickTo publishes a new tick value and wakes tasks waiting on the tick.
func (k *Kernel) TickTo(seq uint64) {
	k.tick.Store(seq)
	k.tickMu.Lock()
	close(k.tickCh)
	k.tickCh = make(chan struct{})
	k.tickMu.Unlock()
}

func (k *Kernel) nowTick() uint64 { return k.tick.Load() }

func (k *Kernel) waitTick(after uint64) uint64 {
	for {
		k.tickMu.Lock()
		now := k.tick.Load()
		ch := k.tickCh
		k.tickMu.Unlock()
		if now > after {
			return now
		}
		select {
		case <-ch:
		case <-k.done:
			return k.tick.Load()
		}
	}
}

func (k *Kernel) endpoint(ep Endpoint) chan Message {
	k.mu.Lock()
	defer k.mu.Unlock()
	if ep >= k.endpointCount {
		return nil
	}
	return k.endpoints[ep].ch
}

func (k *Kernel) send(from Endpoint, to Endpoint, kind uint16, payload []byte, xfer Capability) SendResult {
	ch := k.endpoint(to)
	if ch == nil {
		return SendErrNoEndpoint
	}
	if len(payload) > MaxMessageBytes {
		return SendErrPayloadTooLarge
	}

	msg := Message{From: from, To: to, Kind: kind, Len: uint16(len(payload)), Cap: xfer}
	copy(msg.Data[:], payload)

	select {
	case ch <- msg:
		return SendOK
	default:
		return SendErrQueueFull
	}
}
