package amqpwire

import (
	"fmt"
	"sync"
	"time"
)

// ChannelState is the lifecycle of a Channel, spec.md §4.6.
type ChannelState int

const (
	StateOpenPending ChannelState = iota
	StateOpen
	StateClosing
	StateClosed
)

func (s ChannelState) String() string {
	switch s {
	case StateOpenPending:
		return "open-pending"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Delivery is what a channel hands to the application for a content-bearing
// method once its header and body frames have fully arrived: the method
// itself (e.g. *BasicDeliver, *BasicGetOk, *BasicReturn), its properties,
// and the assembled body.
type Delivery struct {
	Method     Method
	Properties *BasicProperties
	Body       []byte
}

// watch pairs a matcher (selecting which content-bearing methods this sink
// wants) with the sink that receives matched Deliveries, per spec.md §3's
// "watches: list of (matcher, sink)".
type watch struct {
	matcher func(Method) bool
	sink    chan<- Delivery
}

// pendingCall is a send-sync waiter: resolved by the first received method
// whose (class,method) is in want, or failed with an error.
type pendingCall struct {
	want   []methodKey
	result chan pendingResult
}

type pendingResult struct {
	method Method
	err    error
}

// frameSender is the subset of Connection a Channel needs, kept as an
// interface so channel.go can be unit tested without a live Connection.
type frameSender interface {
	enqueueFrame(priority int, f Frame, done chan error)
	frameOverhead() int
	notifyChannelClosed(id uint16)
}

// Channel is one logical stream multiplexed over a Connection: every
// application operation (declare, publish, consume, ack...) is a Method
// sent on some Channel. Channel 0 is the connection's own control channel
// and is created directly by the connection, skipping Open/OpenOk.
type Channel struct {
	id    uint16
	conn  frameSender
	isControl bool

	mu    sync.Mutex
	state ChannelState
	pending   *pendingCall
	watches   []watch

	// accumHeader/accumBody track an in-flight content delivery: a method
	// with HasContent()==true has arrived and we are waiting for its
	// header then body frames, per spec.md §4.6's content framing rows.
	accumMethod Method
	accumHeader *ContentHeader
	accumBody   []byte

	openDone chan error

	closeErr error // set once state reaches Closed
}

func newChannel(id uint16, conn frameSender, isControl bool) *Channel {
	c := &Channel{id: id, conn: conn, isControl: isControl}
	if isControl {
		c.state = StateOpen
	} else {
		c.state = StateOpenPending
		c.openDone = make(chan error, 1)
	}
	return c
}

// ID returns the channel's wire id.
func (c *Channel) ID() uint16 { return c.id }

// State returns the channel's current lifecycle state.
func (c *Channel) State() ChannelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// awaitOpen blocks until ChannelOpenOk has been received (or the open
// fails), used by Connection.Channel after sending channel.Open.
func (c *Channel) awaitOpen() error {
	if c.isControl {
		return nil
	}
	return <-c.openDone
}

// Send enqueues method (and, if it HasContent(), the given properties and
// body split into frame_size_max chunks) at priority. It does not wait for
// a response - use SendSync for that. Per spec.md §4.6, header and body
// frames are enqueued contiguously with the method so nothing else for
// this channel can be interleaved between them.
func (c *Channel) Send(method Method, properties *BasicProperties, body []byte, priority int) error {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()
	// Close moves the channel to Closing before sending channel.Close itself.
	_, isClose := method.(*ChannelClose)
	if state != StateOpen && !(isClose && state == StateClosing) {
		return fmt.Errorf("amqpwire: channel %d is not open (state=%s)", c.id, state)
	}

	mf, err := packMethodFrame(c.id, method)
	if err != nil {
		return err
	}
	if !method.HasContent() {
		return c.enqueueAndWait(priority, mf)
	}

	if err := c.enqueueAndWait(priority, mf); err != nil {
		return err
	}
	hf, err := packHeaderFrame(c.id, ContentHeader{ClassID: method.ClassID(), BodySize: uint64(len(body)), Properties: properties})
	if err != nil {
		return err
	}
	if err := c.enqueueAndWait(priority, hf); err != nil {
		return err
	}
	chunkSize := c.bodyChunkSize()
	if len(body) == 0 {
		return nil
	}
	for offset := 0; offset < len(body); offset += chunkSize {
		end := offset + chunkSize
		if end > len(body) {
			end = len(body)
		}
		bf := packBodyFrame(c.id, body[offset:end])
		if err := c.enqueueAndWait(priority, bf); err != nil {
			return err
		}
	}
	return nil
}

// bodyChunkSize is frame_size_max minus the frame envelope overhead, or the
// whole body in one frame when frame_size_max is 0 ("unlimited"), per
// spec.md §4.6.
func (c *Channel) bodyChunkSize() int {
	overhead := c.conn.frameOverhead()
	if overhead <= 0 {
		return 1 << 30 // effectively unlimited; one body frame
	}
	return overhead
}

func (c *Channel) enqueueAndWait(priority int, f Frame) error {
	done := make(chan error, 1)
	c.conn.enqueueFrame(priority, f, done)
	return <-done
}

// SendSync sends method and blocks until a response in method.Responses()
// is received on this channel, returning it. Per spec.md §4.6, a Close
// received while a waiter is pending fails the waiter with the
// corresponding AMQPError.
func (c *Channel) SendSync(method Method, priority int) (Method, error) {
	want := method.Responses()
	if len(want) == 0 {
		return nil, fmt.Errorf("amqpwire: method (class=%d, method=%d) has no synchronous response", method.ClassID(), method.MethodID())
	}
	call := &pendingCall{want: want, result: make(chan pendingResult, 1)}

	c.mu.Lock()
	if c.pending != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("amqpwire: channel %d already has a pending synchronous call", c.id)
	}
	c.pending = call
	c.mu.Unlock()

	// A handshakeAwait only parks the waiter; it has no wire form to send.
	if _, parkOnly := method.(*handshakeAwait); parkOnly {
		res := <-call.result
		return res.method, res.err
	}

	if err := c.Send(method, nil, nil, priority); err != nil {
		c.mu.Lock()
		c.pending = nil
		c.mu.Unlock()
		return nil, err
	}

	res := <-call.result
	return res.method, res.err
}

// Watch registers sink to receive content deliveries whose method matches
// matcher (e.g. a *BasicDeliver for a particular consumer tag).
func (c *Channel) Watch(matcher func(Method) bool, sink chan<- Delivery) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watches = append(c.watches, watch{matcher: matcher, sink: sink})
}

// recvFrame is the connection dispatcher's single entry point into a
// channel's receive-side state machine.
func (c *Channel) recvFrame(f Frame) error {
	switch f.Type {
	case frameMethod:
		return c.recvMethod(f)
	case frameHeader:
		return c.recvHeader(f)
	case frameBody:
		return c.recvBody(f)
	default:
		return errUnexpectedFrame(fmt.Sprintf("channel %d received unexpected frame type %d", c.id, f.Type))
	}
}

func (c *Channel) recvMethod(f Frame) error {
	m, err := unpackMethodFrame(f.Payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.accumMethod != nil {
		c.mu.Unlock()
		return errUnexpectedFrame(fmt.Sprintf("channel %d received a method frame while awaiting content for a prior method", c.id))
	}
	c.mu.Unlock()

	if c.isControl {
		return c.recvControlMethod(m)
	}

	switch mm := m.(type) {
	case *ChannelOpenOk:
		c.mu.Lock()
		c.state = StateOpen
		c.mu.Unlock()
		c.openDone <- nil
		return nil
	case *ChannelClose:
		return c.handlePeerClose(NewAMQPError(mm.ReplyCode, mm.ReplyText))
	case *ChannelCloseOk:
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
		c.resolvePending(m, nil)
		return nil
	}

	if m.HasContent() {
		c.mu.Lock()
		c.accumMethod = m
		c.mu.Unlock()
		return nil
	}

	if c.resolvePending(m, nil) {
		return nil
	}
	// An unsolicited method with no pending waiter (e.g. basic.Ack in
	// confirm mode) is delivered as a zero-body Delivery for Watch sinks
	// to pick up.
	c.dispatchDelivery(Delivery{Method: m})
	return nil
}

func (c *Channel) recvControlMethod(m Method) error {
	switch mm := m.(type) {
	case *ConnectionClose:
		return c.handlePeerClose(NewAMQPError(mm.ReplyCode, mm.ReplyText))
	default:
		if c.resolvePending(m, nil) {
			return nil
		}
		c.dispatchDelivery(Delivery{Method: m})
		return nil
	}
}

func (c *Channel) recvHeader(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accumMethod == nil {
		return errUnexpectedFrame(fmt.Sprintf("channel %d received a header frame with no pending content method", c.id))
	}
	h, err := unpackContentHeader(f.Payload)
	if err != nil {
		return err
	}
	c.accumHeader = &h
	c.accumBody = make([]byte, 0, h.BodySize)
	if h.BodySize == 0 {
		return c.deliverAccumulatedLocked()
	}
	return nil
}

func (c *Channel) recvBody(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accumMethod == nil || c.accumHeader == nil {
		return errUnexpectedFrame(fmt.Sprintf("channel %d received a body frame with no pending content header", c.id))
	}
	c.accumBody = append(c.accumBody, f.Payload...)
	if uint64(len(c.accumBody)) > c.accumHeader.BodySize {
		return errUnexpectedFrame(fmt.Sprintf("channel %d received more body bytes than declared", c.id))
	}
	if uint64(len(c.accumBody)) == c.accumHeader.BodySize {
		return c.deliverAccumulatedLocked()
	}
	return nil
}

// deliverAccumulatedLocked must be called with c.mu held; it resets the
// accumulator and dispatches the completed Delivery to whichever watch
// claims it.
func (c *Channel) deliverAccumulatedLocked() error {
	d := Delivery{Method: c.accumMethod, Properties: c.accumHeader.Properties, Body: c.accumBody}
	c.accumMethod, c.accumHeader, c.accumBody = nil, nil, nil
	c.mu.Unlock()
	c.dispatchDelivery(d)
	c.mu.Lock()
	return nil
}

// dispatchDelivery routes d to the first matching watch. An unclaimed
// delivery is dropped; spec.md §4.6 calls this a warning condition for a
// consumer that can't keep up or mis-registered a matcher, which does not
// belong in this package's error taxonomy - logging it is the
// application's job via its own Logger.
func (c *Channel) dispatchDelivery(d Delivery) {
	c.mu.Lock()
	watches := append([]watch(nil), c.watches...)
	c.mu.Unlock()
	for _, w := range watches {
		if w.matcher(d.Method) {
			select {
			case w.sink <- d:
			case <-time.After(5 * time.Second):
			}
			return
		}
	}
}

func (c *Channel) resolvePending(m Method, err error) bool {
	c.mu.Lock()
	call := c.pending
	if call == nil {
		c.mu.Unlock()
		return false
	}
	if err == nil && !responseMatches(call.want, m) {
		c.mu.Unlock()
		return false
	}
	c.pending = nil
	c.mu.Unlock()
	call.result <- pendingResult{method: m, err: err}
	return true
}

// handlePeerClose handles a server-initiated Close on this channel (or, for
// the control channel, on the connection): reply with the matching CloseOk,
// fail any pending waiter, and transition to Closed.
func (c *Channel) handlePeerClose(err AMQPError) error {
	c.mu.Lock()
	c.state = StateClosing
	c.closeErr = err
	c.mu.Unlock()

	if c.isControl {
		okFrame, packErr := packMethodFrame(c.id, &ConnectionCloseOk{})
		if packErr == nil {
			c.conn.enqueueFrame(PriorityShutdown, okFrame, nil)
		}
	} else {
		okFrame, packErr := packMethodFrame(c.id, &ChannelCloseOk{})
		if packErr == nil {
			c.conn.enqueueFrame(PriorityControl, okFrame, nil)
		}
	}

	c.resolvePending(nil, err)
	c.mu.Lock()
	c.state = StateClosed
	c.mu.Unlock()
	c.conn.notifyChannelClosed(c.id)
	return nil
}

// Close gracefully closes this channel: sends channel.Close and waits for
// CloseOk. The control channel instead forwards to the connection's own
// graceful close, per spec.md's ControlChannel special case.
func (c *Channel) Close(err AMQPError) error {
	if c.isControl {
		if conn, ok := c.conn.(interface{ Close(AMQPError) error }); ok {
			return conn.Close(err)
		}
	}
	c.mu.Lock()
	if c.state == StateClosed || c.state == StateClosing {
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosing
	c.mu.Unlock()

	closeMethod := NewChannelClose(err, nil)
	_, sendErr := c.SendSync(closeMethod, PriorityControl)

	c.mu.Lock()
	c.state = StateClosed
	c.mu.Unlock()
	c.conn.notifyChannelClosed(c.id)
	return sendErr
}

// failAll fails any pending waiter with the connection's fatal error and
// marks the channel Closed, used when the owning connection terminates.
func (c *Channel) failAll(err error) {
	c.mu.Lock()
	c.state = StateClosed
	c.closeErr = err
	if !c.isControl && c.openDone != nil {
		select {
		case c.openDone <- err:
		default:
		}
	}
	c.mu.Unlock()
	c.resolvePending(nil, err)
}
