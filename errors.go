package amqpwire

import "fmt"

// AMQPError is satisfied by every error defined by the AMQP 0-9-1 spec as
// well as by the handful of non-AMQP conditions (auth failure, version
// mismatch, channel exhaustion, unexpected socket closure) that this client
// treats the same way: fatal either to a Channel or to the whole Connection.
type AMQPError interface {
	error
	// Code returns the numeric reply code, or 0 for a non-AMQP condition.
	Code() uint16
	// Fatal reports whether this error is fatal to the connection (true)
	// or isolated to a single channel (false).
	Fatal() bool
}

// codedError is the common representation for every reply-code-bearing
// AMQPError. Reason is the human-readable text, either supplied by the peer
// (a received Close) or generated locally.
type codedError struct {
	code   uint16
	name   string
	doc    string
	reason string
	fatal  bool
}

func (e *codedError) Code() uint16 { return e.code }
func (e *codedError) Fatal() bool  { return e.fatal }

func (e *codedError) Error() string {
	if e.reason != "" {
		return fmt.Sprintf("%s: %s (%d, %s)", e.name, e.doc, e.code, e.reason)
	}
	return fmt.Sprintf("%s: %s (%d)", e.name, e.doc, e.code)
}

// errorDescriptors mirrors grabbit's errors.py:
// the AMQPError subclass hierarchy is replaced here by a flat table keyed
// by reply code, matched against the spec's two broad fault classes.
var errorDescriptors = map[uint16]struct {
	name  string
	doc   string
	fatal bool
}{
	311: {"ContentTooLarge", "Server rejected content - too large. Try again later.", false},
	312: {"NoRoute", "Mandatory flag set and message cannot be routed to a queue", false},
	313: {"NoConsumers", "Immediate flag set and no immediate delivery possible", false},
	320: {"ConnectionForced", "Connection terminated by administrator", true},
	402: {"InvalidPath", "Unknown virtual host", true},
	403: {"AccessRefused", "Client does not have permission to access this resource", false},
	404: {"NotFound", "Resource does not exist", false},
	405: {"ResourceLocked", "Resource is unavailable as another client is using it", false},
	406: {"PreconditionFailed", "Method is not allowed as some precondition has failed", false},
	501: {"FrameError", "Malformed frame received", true},
	502: {"SyntaxError", "Frame contained illegal value", true},
	503: {"CommandInvalid", "Client sent invalid sequence of frames", true},
	504: {"InvalidChannelError", "Given channel is not open", true},
	505: {"UnexpectedFrame", "Peer sent a frame that was not expected", true},
	506: {"ResourceError", "Server out of resource", true},
	530: {"NotAllowed", "Client attempted to do something prohibited by the server", true},
	540: {"NotImplemented", "Server does not implement this functionality", true},
	541: {"InternalError", "Server suffered an internal error", true},
}

// NewAMQPError builds the AMQPError for a given reply code and reason text,
// as sent by the peer in a connection.Close or channel.Close. Equivalent to
// grabbit's AMQPError.from_code.
func NewAMQPError(code uint16, reason string) AMQPError {
	d, ok := errorDescriptors[code]
	if !ok {
		return &codedError{code: code, name: "AMQPError", doc: "unrecognised reply code", reason: reason, fatal: true}
	}
	return &codedError{code: code, name: d.name, doc: d.doc, reason: reason, fatal: d.fatal}
}

// Named constructors for the conditions this client itself raises (as
// opposed to ones only ever received from the peer), used directly by the
// connection/channel state machines so call sites read naturally.
func errContentTooLarge(reason string) AMQPError     { return NewAMQPError(311, reason) }
func errNoRoute(reason string) AMQPError             { return NewAMQPError(312, reason) }
func errNoConsumers(reason string) AMQPError         { return NewAMQPError(313, reason) }
func errConnectionForced(reason string) AMQPError    { return NewAMQPError(320, reason) }
func errInvalidPath(reason string) AMQPError         { return NewAMQPError(402, reason) }
func errAccessRefused(reason string) AMQPError       { return NewAMQPError(403, reason) }
func errNotFound(reason string) AMQPError            { return NewAMQPError(404, reason) }
func errPreconditionFailed(reason string) AMQPError  { return NewAMQPError(406, reason) }
func errFrameError(reason string) AMQPError          { return NewAMQPError(501, reason) }
func errSyntaxError(reason string) AMQPError         { return NewAMQPError(502, reason) }
func errCommandInvalid(reason string) AMQPError      { return NewAMQPError(503, reason) }
func errUnexpectedFrame(reason string) AMQPError     { return NewAMQPError(505, reason) }

// IsChannelError reports whether err is an AMQPError that isolates to a
// single channel rather than killing the whole connection.
func IsChannelError(err error) bool {
	ae, ok := err.(AMQPError)
	return ok && !ae.Fatal()
}

// IsConnectionError reports whether err is an AMQPError fatal to the
// connection.
func IsConnectionError(err error) bool {
	ae, ok := err.(AMQPError)
	return ok && ae.Fatal()
}

// AuthFailed is raised locally when no configured Authentication mechanism
// is offered by the server, or a challenge is rejected. Not an AMQP reply
// code - this never crosses the wire.
type AuthFailed struct {
	Reason         string
	ServerSupports []string
}

func (e *AuthFailed) Error() string {
	if len(e.ServerSupports) == 0 {
		return "amqpwire: auth failed: " + e.Reason
	}
	return fmt.Sprintf("amqpwire: auth failed: %s (server supports: %v)", e.Reason, e.ServerSupports)
}
func (e *AuthFailed) Code() uint16 { return 0 }
func (e *AuthFailed) Fatal() bool  { return true }

// BadServerVersion is raised when the server's connection.Start advertises a
// protocol version this client does not speak.
type BadServerVersion struct {
	Major, Minor uint8
}

func (e *BadServerVersion) Error() string {
	return fmt.Sprintf("amqpwire: unsupported server protocol version %d-%d", e.Major, e.Minor)
}
func (e *BadServerVersion) Code() uint16 { return 0 }
func (e *BadServerVersion) Fatal() bool  { return true }

// NoMoreChannels is raised when the negotiated channel_max has no free
// channel ids left to allocate.
type NoMoreChannels struct {
	ChannelMax uint16
}

func (e *NoMoreChannels) Error() string {
	return fmt.Sprintf("amqpwire: no free channel id below channel_max=%d", e.ChannelMax)
}
func (e *NoMoreChannels) Code() uint16 { return 0 }
func (e *NoMoreChannels) Fatal() bool  { return true }

// ServerClosed is raised when the socket returns EOF before a graceful
// connection.Close/CloseOk exchange completed.
type ServerClosed struct{}

func (e *ServerClosed) Error() string  { return "amqpwire: server closed the connection" }
func (e *ServerClosed) Code() uint16   { return 0 }
func (e *ServerClosed) Fatal() bool    { return true }

// ErrShutdown is the generic cancellation cause delivered to waiters and
// goroutines when a Connection shuts down without a more specific error
// (e.g. a causeless Close()).
var ErrShutdown = fmt.Errorf("amqpwire: connection shut down")
