package kernel

import "context"

// Context is a task's handle on the kernel.
type Context struct {
	k      *Kernel
	taskID TaskID
}

// TaskID returns the current task ID.
func (c *Context) TaskID() TaskID { return c.taskID }

// Done is closed when the kernel stops.
func (c *Context) Done() <-chan struct{} {
	if c.k == nil {
		return nil
	}
	return c.k.done
}

// Context returns a context.Context that ends with the kernel run.
func (c *Context) Context() context.Context {
	if c.k == nil {
		return context.Background()
	}
	c.k.mu.Lock()
	defer c.k.mu.Unlock()
	if c.k.runCtx == nil {
		return context.Background()
	}
	return c.k.runCtx
}

// Stopped reports whether the kernel has stopped.
func (c *Context) Stopped() bool {
	return c.k == nil || c.k.stopped.Load()
}

// RecvChan returns the inbound channel for an endpoint capability with the receive right.
func (c *Context) RecvChan(epCap Capability) (<-chan Message, bool) {
	if !epCap.valid() || !epCap.canRecv() || c.k == nil {
		return nil, false
	}
	ch := c.k.endpoint(epCap.ep)
	return ch, ch != nil
}

// Recv blocks until a message arrives or the kernel stops.
func (c *Context) Recv(epCap Capability) (Message, bool) {
	ch, ok := c.RecvChan(epCap)
	if !ok {
		return Message{}, false
	}
	select {
	case msg := <-ch:
		return msg, true
	case <-c.k.done:
		return Message{}, false
	}
}

// TryRecv reads one message without blocking.
func (c *Context) TryRecv(epCap Capability) (Message, bool) {
	ch, ok := c.RecvChan(epCap)
	if !ok {
		return Message{}, false
	}
	select {
	case msg := <-ch:
		return msg, true
	default:
		return Message{}, false
	}
}

// SendTo sends kind and payload to toCap. The From field is left at 0.
func (c *Context) SendTo(toCap Capability, kind uint16, payload []byte) bool {
	return c.SendToCapResult(toCap, kind, payload, Capability{}) == SendOK
}

// SendToCapResult sends a message and transfers an optional capability.
func (c *Context) SendToCapResult(toCap Capability, kind uint16, payload []byte, xfer Capability) SendResult {
	if !toCap.valid() {
		return SendErrInvalidToCap
	}
	if !toCap.canSend() {
		return SendErrToNoSendRight
	}
	return c.k.send(0, toCap.ep, kind, payload, xfer)
}

// SendCapResult sends a message from fromCap's endpoint so the receiver can reply.
func (c *Context) SendCapResult(fromCap, toCap Capability, kind uint16, payload []byte, xfer Capability) SendResult {
	switch {
	case !fromCap.valid():
		return SendErrInvalidFromCap
	case !fromCap.canSend():
		return SendErrFromNoSendRight
	case !toCap.valid():
		return SendErrInvalidToCap
	case !toCap.canSend():
		return SendErrToNoSendRight
	}
	return c.k.send(fromCap.ep, toCap.ep, kind, payload, xfer)
}

// SendToCapRetry retries a full mailbox once per tick, up to limit extra attempts.
func (c *Context) SendToCapRetry(toCap Capability, kind uint16, payload []byte, xfer Capability, limit int) SendResult {
	res := c.SendToCapResult(toCap, kind, payload, xfer)
	for tries := 0; res == SendErrQueueFull && tries < limit; tries++ {
		c.WaitTick(c.NowTick())
		if c.Stopped() {
			break
		}
		res = c.SendToCapResult(toCap, kind, payload, xfer)
	}
	return res
}

// NowTick returns the last published tick.
func (c *Context) NowTick() uint64 {
	if c.k == nil {
		return 0
	}
	return c.k.nowTick()
}

// WaitTick blocks until the tick passes after and returns the new tick.
// It returns early when the kernel stops.
func (c *Context) WaitTick(after uint64) uint64 {
	if c.k == nil {
		return 0
	}
	return c.k.waitTick(after)
}

// BlockOnTick blocks until the next tick.
func (c *Context) BlockOnTick() {
	c.WaitTick(c.NowTick())
}
