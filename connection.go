package amqpwire

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"runtime"
	"sync"
	"time"
	"weak"

	"github.com/hashicorp/go-multierror"
)

// Authentication is one SASL mechanism a Dial/Open call is willing to offer,
// the out-of-scope "concrete security-mechanism implementation" spec.md §1
// hands to this package as an external collaborator (e.g. a PLAIN or
// AMQPLAIN helper built on top of this type).
type Authentication struct {
	Mechanism string
	Response  []byte
	// Challenge, if non-nil, answers a connection.Secure challenge with a
	// SecureOk response. Most mechanisms never need this.
	Challenge func(challenge []byte) (response []byte, err error)
}

// Config carries everything Open needs beyond the already-connected socket.
type Config struct {
	VirtualHost      string
	ChannelMax       uint16
	FrameSizeMax     uint32
	Heartbeat        time.Duration // 0 disables heartbeating
	Locales          []string      // preference order; "en_US" assumed if empty and server offers it
	ClientProperties Table
	SASL             []Authentication
	Logger           Logger
	Metrics          *Metrics // nil disables instrumentation
}

func (c Config) withDefaults() Config {
	if c.VirtualHost == "" {
		c.VirtualHost = "/"
	}
	if len(c.Locales) == 0 {
		c.Locales = []string{"en_US"}
	}
	if c.Logger == nil {
		c.Logger = NopLogger{}
	}
	return c
}

// Connection is a live AMQP 0-9-1 connection: one TCP socket, one send loop,
// one receive loop, and a registry of channels multiplexed over it.
type Connection struct {
	conn    net.Conn
	writer  *bufio.Writer
	cfg     Config
	logger  Logger
	metrics *Metrics

	outboundMu sync.Mutex
	sendQueue  *SendQueue

	mu             sync.Mutex
	tuneChannelMax     uint16
	tuneFrameSizeMax   uint32
	tuneHeartbeatDelay uint16
	serverVersion      [2]uint8
	channels           map[uint16]weak.Pointer[Channel]
	control            *Channel

	connected chan struct{}

	finishOnce sync.Once
	doneCh     chan struct{}
	finishErr  error
	closeSocketErr error

	onErrorMu sync.Mutex
	onError   []func(*Connection, error)

	lastSend time.Time
	lastSendMu sync.Mutex
}

// Dial opens a TCP connection to addr (host:port) and runs the AMQP
// handshake described in spec.md §4.7, returning once Open/OpenOk
// completes.
func Dial(addr string, cfg Config) (*Connection, error) {
	nc, err := net.DialTimeout("tcp", addr, 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("amqpwire: dial %s: %w", addr, err)
	}
	conn, err := Open(nc, cfg)
	if err != nil {
		nc.Close()
		return nil, err
	}
	return conn, nil
}

// Open performs the handshake over an already-established net.Conn.
func Open(nc net.Conn, cfg Config) (*Connection, error) {
	cfg = cfg.withDefaults()
	c := &Connection{
		conn:      nc,
		writer:    bufio.NewWriter(nc),
		cfg:       cfg,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		sendQueue: NewSendQueue(),
		channels:  map[uint16]weak.Pointer[Channel]{},
		connected: make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	c.control = newChannel(0, c, true)
	c.channels[0] = weak.Make(c.control)

	if err := c.handshake(); err != nil {
		c.fail(err)
		return nil, err
	}
	return c, nil
}

// OnError registers a callback invoked (on an independent goroutine) once
// this connection terminates, fatally or gracefully.
func (c *Connection) OnError(fn func(*Connection, error)) {
	c.onErrorMu.Lock()
	c.onError = append(c.onError, fn)
	c.onErrorMu.Unlock()
}

// Wait blocks until the connection is closed, returning the terminal error
// (nil for a graceful close).
func (c *Connection) Wait() error {
	<-c.doneCh
	return c.finishErr
}

func (c *Connection) handshake() error {
	// Phase 1: socket open -> write ProtocolHeader. Block everything but
	// this handshake's own control traffic until the handshake completes.
	c.sendQueue.SetLimit(1) // only PriorityControl and PriorityShutdown are dequeuable
	go c.sendLoop()
	go c.recvLoop()

	if _, err := c.conn.Write(DefaultProtocolHeader().pack()); err != nil {
		return err
	}
	c.logger.Debugf("amqpwire: protocol header sent")

	// Phase 2: receive Start.
	startMethod, err := c.awaitControl(methodKey{classConnection, 10})
	if err != nil {
		return err
	}
	start := startMethod.(*ConnectionStart)
	c.mu.Lock()
	c.serverVersion = [2]uint8{start.VersionMajor, start.VersionMinor}
	c.mu.Unlock()
	// AMQP 0-9-1: connection.Start advertises version-major=0, version-minor=9.
	if start.VersionMajor != 0 || start.VersionMinor != 9 {
		return &BadServerVersion{Major: start.VersionMajor, Minor: start.VersionMinor}
	}
	c.logger.Infof("amqpwire: server offers mechanisms=%q locales=%q", start.Mechanisms, start.Locales)

	mechanisms := splitSpace(start.Mechanisms)
	locales := splitSpace(start.Locales)
	if len(locales) == 0 {
		return errSyntaxError("Start method contained no locales")
	}

	auth, ok := c.chooseAuth(mechanisms)
	if !ok {
		return &AuthFailed{Reason: "no configured security mechanism is supported by the server", ServerSupports: mechanisms}
	}

	locale := locales[0]
	for _, pref := range c.cfg.Locales {
		if contains(locales, pref) {
			locale = pref
			break
		}
	}

	// Phase 3: send StartOk.
	startOk := &ConnectionStartOk{
		ClientProperties:  c.cfg.ClientProperties,
		SecurityMechanism: auth.Mechanism,
		SecurityResponse:  auth.Response,
		Locale:            locale,
	}
	if err := c.sendControl(startOk); err != nil {
		return err
	}

	// Phase 4: optional Secure/SecureOk challenge loop.
	var tuneMethod Method
	if auth.Challenge != nil {
		for {
			m, err := c.awaitEitherControl(methodKey{classConnection, 20}, methodKey{classConnection, 30})
			if err != nil {
				return err
			}
			secure, isSecure := m.(*ConnectionSecure)
			if !isSecure {
				tuneMethod = m
				break // Tune arrived; challenge loop is over
			}
			resp, err := auth.Challenge(secure.Challenge)
			if err != nil {
				return &AuthFailed{Reason: err.Error()}
			}
			if err := c.sendControl(&ConnectionSecureOk{Response: resp}); err != nil {
				return err
			}
		}
	}

	// Phase 5: receive Tune (unless the challenge loop already did), reconcile.
	if tuneMethod == nil {
		tuneMethod, err = c.awaitControl(methodKey{classConnection, 30})
		if err != nil {
			return err
		}
	}
	tune := tuneMethod.(*ConnectionTune)
	if tune.FrameSizeMax != 0 && tune.FrameSizeMax <= uint32(frameHeaderSize+1) {
		return errSyntaxError(fmt.Sprintf("frame-max %d is too small to send any content", tune.FrameSizeMax))
	}

	reconciledChannelMax := reconcileMax(c.cfg.ChannelMax, tune.ChannelMax)
	reconciledFrameMax := reconcileMaxU32(c.cfg.FrameSizeMax, tune.FrameSizeMax)
	var reconciledHeartbeat uint16
	ourHeartbeat := uint16(0)
	if c.cfg.Heartbeat > 0 {
		ourHeartbeat = uint16(c.cfg.Heartbeat / time.Second)
	}
	if ourHeartbeat != 0 && tune.HeartbeatDelay != 0 {
		reconciledHeartbeat = tune.HeartbeatDelay
	}

	c.mu.Lock()
	c.tuneChannelMax = reconciledChannelMax
	c.tuneFrameSizeMax = reconciledFrameMax
	c.tuneHeartbeatDelay = reconciledHeartbeat
	c.mu.Unlock()

	// Phase 6: send TuneOk; send-sync Open(vhost) -> OpenOk.
	if err := c.sendControl(&ConnectionTuneOk{
		ChannelMax:     reconciledChannelMax,
		FrameSizeMax:   reconciledFrameMax,
		HeartbeatDelay: reconciledHeartbeat,
	}); err != nil {
		return err
	}
	if _, err := c.control.SendSync(&ConnectionOpen{VirtualHost: c.cfg.VirtualHost}, PriorityControl); err != nil {
		return err
	}

	// Phase 7: connected; lift the limit; begin heartbeating.
	close(c.connected)
	c.sendQueue.SetLimit(maxPriority)
	c.logger.Infof("amqpwire: connected vhost=%q channel-max=%d frame-max=%d heartbeat=%ds",
		c.cfg.VirtualHost, reconciledChannelMax, reconciledFrameMax, reconciledHeartbeat)
	if reconciledHeartbeat != 0 {
		go c.heartbeatLoop(time.Duration(reconciledHeartbeat) * time.Second)
	}
	return nil
}

const maxPriority = 1 << 30

func reconcileMax(ours, theirs uint16) uint16 {
	if ours != 0 && (theirs == 0 || ours < theirs) {
		return ours
	}
	return theirs
}

func reconcileMaxU32(ours, theirs uint32) uint32 {
	if ours != 0 && (theirs == 0 || ours < theirs) {
		return ours
	}
	return theirs
}

func splitSpace(s string) []string {
	var out []string
	start := -1
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] != ' ' {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			out = append(out, s[start:i])
			start = -1
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (c *Connection) chooseAuth(serverMechanisms []string) (Authentication, bool) {
	for _, a := range c.cfg.SASL {
		if contains(serverMechanisms, a.Mechanism) {
			return a, true
		}
	}
	return Authentication{}, false
}

// awaitControl blocks for the next method received on the control channel
// matching key, used only during the handshake: SendSync parks the waiter
// for a handshakeAwait without sending any frame.
func (c *Connection) awaitControl(key methodKey) (Method, error) {
	return c.control.SendSync(&handshakeAwait{want: []methodKey{key}}, PriorityControl)
}

func (c *Connection) awaitEitherControl(a, b methodKey) (Method, error) {
	return c.control.SendSync(&handshakeAwait{want: []methodKey{a, b}}, PriorityControl)
}

// handshakeAwait is a zero-wire-footprint pseudo-method used only to park a
// pendingCall on the control channel while awaiting a server-initiated
// method during the handshake (Start, Tune, and the Secure/SecureOk loop
// arrive unsolicited - there is no client method to key the wait off of).
type handshakeAwait struct{ want []methodKey }

func (h *handshakeAwait) ClassID() uint16        { return 0 }
func (h *handshakeAwait) MethodID() uint16       { return 0 }
func (h *handshakeAwait) HasContent() bool       { return false }
func (h *handshakeAwait) Responses() []methodKey { return h.want }
func (h *handshakeAwait) pack(buf *bytes.Buffer) error { return nil }

func (c *Connection) sendControl(m Method) error {
	f, err := packMethodFrame(0, m)
	if err != nil {
		return err
	}
	done := make(chan error, 1)
	c.enqueueFrame(PriorityControl, f, done)
	return <-done
}

// enqueueFrame satisfies frameSender: puts (frame, done) on the priority
// send queue.
func (c *Connection) enqueueFrame(priority int, f Frame, done chan error) {
	c.sendQueue.Put(priority, sendJob{frame: f, done: done})
}

func (c *Connection) frameOverhead() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tuneFrameSizeMax == 0 {
		return 0
	}
	overhead := frameHeaderSize + 1
	if int(c.tuneFrameSizeMax) <= overhead {
		return 1
	}
	return int(c.tuneFrameSizeMax) - overhead
}

type sendJob struct {
	frame Frame
	done  chan error
}

// sendLoop is the connection's single sender task: it drains the priority
// queue and writes each frame under outboundMu, per spec.md §4.7/§5. A
// half-written frame always completes even if the connection is shutting
// down - partial writes corrupt the stream for every other frame.
func (c *Connection) sendLoop() {
	for {
		v, ok := c.sendQueue.Get()
		if !ok {
			return
		}
		job := v.(sendJob)
		err := c.writeFrame(job.frame)
		if job.done != nil {
			job.done <- err
		}
		if err != nil {
			c.fail(err)
			return
		}
	}
}

func (c *Connection) writeFrame(f Frame) error {
	c.outboundMu.Lock()
	defer c.outboundMu.Unlock()
	if _, err := c.writer.Write(f.pack()); err != nil {
		return err
	}
	if err := c.writer.Flush(); err != nil {
		return err
	}
	c.metrics.observeSend(f)
	c.lastSendMu.Lock()
	c.lastSend = timeNow()
	c.lastSendMu.Unlock()
	return nil
}

// recvLoop reads bytes from the socket and repeatedly decodes frames,
// dispatching each to its channel, per spec.md §4.7. Once a heartbeat delay
// is negotiated, reading nothing for twice that delay ends the connection
// with ConnectionForced.
func (c *Connection) recvLoop() {
	buf := make([]byte, 0, 65536)
	tmp := make([]byte, 65536)
	for {
		c.mu.Lock()
		heartbeat := c.tuneHeartbeatDelay
		c.mu.Unlock()
		if heartbeat != 0 {
			c.conn.SetReadDeadline(timeNow().Add(2 * time.Duration(heartbeat) * time.Second))
		}
		n, err := c.conn.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
			for {
				frame, rest, ferr := unpackFrame(buf)
				if ferr == errIncomplete {
					break
				}
				if ferr != nil {
					c.closeWith(ferr, nil, false)
					return
				}
				buf = rest
				if derr := c.dispatch(frame); derr != nil {
					c.closeWith(derr, nil, false)
					return
				}
			}
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				c.closeWith(errConnectionForced("no frame from peer within twice the heartbeat delay"), nil, false)
				return
			}
			c.closeWith(&ServerClosed{}, nil, false)
			return
		}
	}
}

func (c *Connection) dispatch(f Frame) error {
	c.metrics.observeRecv(f)
	if f.Type == frameHeartbeat {
		return nil // receipt alone resets the peer timeout: recvLoop renews its read deadline on every read
	}
	c.mu.Lock()
	wp, ok := c.channels[f.Channel]
	c.mu.Unlock()
	if !ok {
		return errCommandInvalid(fmt.Sprintf("channel %d is not open", f.Channel))
	}
	ch := wp.Value()
	if ch == nil {
		return errCommandInvalid(fmt.Sprintf("channel %d is not open", f.Channel))
	}
	return ch.recvFrame(f)
}

// Channel allocates a new channel at the given send priority, opens it on
// the wire, and returns it once OpenOk is received. Per spec.md §5, the
// connection holds only a weak reference: once the caller's last strong
// reference to the returned *Channel is dropped, it is asynchronously
// closed.
func (c *Connection) Channel(priority int) (*Channel, error) {
	id, err := c.nextChannelID()
	if err != nil {
		return nil, err
	}
	ch := newChannel(id, c, false)

	c.mu.Lock()
	c.channels[id] = weak.Make(ch)
	c.mu.Unlock()
	c.metrics.observeChannelDelta(1)
	runtime.AddCleanup(ch, func(connRef *Connection) { connRef.closeDroppedChannel(id) }, c)

	f, err := packMethodFrame(id, &ChannelOpen{})
	if err != nil {
		c.forgetChannel(id)
		return nil, err
	}
	done := make(chan error, 1)
	c.enqueueFrame(priority, f, done)
	if err := <-done; err != nil {
		c.forgetChannel(id)
		return nil, err
	}
	if err := ch.awaitOpen(); err != nil {
		c.forgetChannel(id)
		return nil, err
	}
	return ch, nil
}

func (c *Connection) nextChannelID() (uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	max := c.tuneChannelMax
	if max == 0 {
		max = 65535
	}
	for id := uint16(1); id <= max; id++ {
		if _, taken := c.channels[id]; !taken {
			return id, nil
		}
		if id == max {
			break
		}
	}
	return 0, &NoMoreChannels{ChannelMax: max}
}

func (c *Connection) forgetChannel(id uint16) {
	c.mu.Lock()
	_, existed := c.channels[id]
	delete(c.channels, id)
	c.mu.Unlock()
	if existed {
		c.metrics.observeChannelDelta(-1)
	}
}

// notifyChannelClosed satisfies frameSender: drop a channel from the
// registry once it has fully closed.
func (c *Connection) notifyChannelClosed(id uint16) {
	if id == 0 {
		return
	}
	c.forgetChannel(id)
}

// closeDroppedChannel runs (via runtime.AddCleanup) once the application's
// last strong reference to a Channel is collected: it asynchronously closes
// the channel on the wire, per spec.md §5's weak-ownership model.
func (c *Connection) closeDroppedChannel(id uint16) {
	c.mu.Lock()
	wp, ok := c.channels[id]
	c.mu.Unlock()
	if !ok {
		return
	}
	if wp.Value() != nil {
		return // resurrected/raced; a live strong ref still exists
	}
	f, err := packMethodFrame(id, NewChannelClose(nil, nil))
	if err == nil {
		c.enqueueFrame(PriorityControl, f, nil)
	}
	c.forgetChannel(id)
}

// heartbeatLoop sends a heartbeat frame whenever the connection has been
// idle-send for delay, per spec.md §5's idle-send watchdog.
func (c *Connection) heartbeatLoop(delay time.Duration) {
	ticker := time.NewTicker(delay / 2)
	defer ticker.Stop()
	for range ticker.C {
		select {
		case <-c.doneCh:
			return
		default:
		}
		c.lastSendMu.Lock()
		idle := timeNow().Sub(c.lastSend)
		c.lastSendMu.Unlock()
		if idle >= delay {
			c.enqueueFrame(PriorityControl, packHeartbeatFrame(), nil)
		}
	}
}

// Close gracefully closes the connection per spec.md §4.7: sets the send
// queue limit to block everything but the close itself, sends Close at
// shutdown priority, awaits CloseOk, then calls fail(error).
func (c *Connection) Close(appErr AMQPError) error {
	select {
	case <-c.doneCh:
		return c.finishErr
	default:
	}
	sendErr := appErr
	if sendErr == nil {
		sendErr = errConnectionForced("CONNECTION_FORCED")
	}
	c.sendQueue.SetLimit(0) // nothing but PriorityShutdown is now dequeuable
	closeMethod := NewConnectionClose(sendErr, nil)
	_, err := c.control.SendSync(closeMethod, PriorityShutdown)
	c.fail(appErrOrNil(appErr))

	// fail() has now run synchronously (finishOnce blocks until the first
	// caller's body completes), so closeSocketErr is populated whether this
	// goroutine or a concurrent one actually ran it.
	return multierror.Append(nil, err, c.closeSocketErr).ErrorOrNil()
}

func appErrOrNil(e AMQPError) error {
	if e == nil {
		return nil
	}
	return e
}

// closeWith is used by the receive loop: a fatal local condition (bad
// frame, unknown channel) closes the connection without waiting for
// CloseOk, since the peer's ability to reply is already in question.
func (c *Connection) closeWith(err error, method Method, waitForOk bool) {
	c.sendQueue.SetLimit(0)
	if ae, ok := err.(AMQPError); ok {
		f, perr := packMethodFrame(0, NewConnectionClose(ae, method))
		if perr == nil {
			c.enqueueFrame(PriorityShutdown, f, nil)
		}
	}
	c.fail(err)
}

// fail is the common point for stopping all connection operations,
// gracefully or not (spec.md §4.7's `error(ex)`). Reentrant-safe: calling
// it again with the same terminal error is a no-op.
func (c *Connection) fail(err error) {
	c.finishOnce.Do(func() {
		if err != nil {
			c.logger.Warnf("amqpwire: connection terminating: %v", err)
			c.metrics.observeError(err)
		} else {
			c.logger.Infof("amqpwire: connection closed gracefully")
		}
		c.finishErr = err
		close(c.doneCh)

		c.sendQueue.Close()
		c.closeSocketErr = c.conn.Close()

		c.mu.Lock()
		chans := make([]*Channel, 0, len(c.channels))
		for _, wp := range c.channels {
			if ch := wp.Value(); ch != nil {
				chans = append(chans, ch)
			}
		}
		c.mu.Unlock()
		for _, ch := range chans {
			ch.failAll(errTerminal(err))
		}

		c.onErrorMu.Lock()
		callbacks := append([]func(*Connection, error){}, c.onError...)
		c.onErrorMu.Unlock()
		for _, cb := range callbacks {
			go cb(c, err)
		}
	})
}

func errTerminal(err error) error {
	if err == nil {
		return ErrShutdown
	}
	return err
}

func timeNow() time.Time { return time.Now() }
