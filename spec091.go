package amqpwire

import "bytes"

// Class ids for the method classes this client speaks, per spec.md §4.5.
const (
	classConnection = 10
	classChannel    = 20
	classExchange   = 40
	classQueue      = 50
	classBasic      = 60
	classTx         = 90
	classConfirm    = 85 // RabbitMQ extension
)

// Method is satisfied by every concrete method argument type (the
// descriptor registry's unit of registration). A flat table keyed by
// (class-id, method-id) replaces the donor source's subclass-walk lookup,
// per spec.md §9 "Descriptor registry instead of subclass walks".
type Method interface {
	ClassID() uint16
	MethodID() uint16
	// HasContent reports whether this method is followed by a content
	// header frame and zero or more body frames.
	HasContent() bool
	// Responses lists the (class-id, method-id) pairs that complete a
	// send-sync call made with this method, or nil if this method has no
	// synchronous response.
	Responses() []methodKey
	pack(buf *bytes.Buffer) error
}

type methodKey struct {
	class  uint16
	method uint16
}

func keyOf(m Method) methodKey { return methodKey{m.ClassID(), m.MethodID()} }

// methodUnpacker decodes a method's argument sequence from its payload
// (after the class-id/method-id header has already been consumed by the
// frame codec).
type methodUnpacker func(data []byte) (Method, []byte, error)

var methodRegistry = map[methodKey]methodUnpacker{}

func registerMethod(class, method uint16, fn methodUnpacker) {
	methodRegistry[methodKey{class, method}] = fn
}

// lookupMethod resolves a (class-id, method-id) pair to its unpacker, the
// frame codec's sole point of dispatch into the method registry.
func lookupMethod(class, method uint16) (methodUnpacker, bool) {
	fn, ok := methodRegistry[methodKey{class, method}]
	return fn, ok
}

func init() {
	registerMethod(classConnection, 10, func(d []byte) (Method, []byte, error) { return unpackConnectionStart(d) })
	registerMethod(classConnection, 11, func(d []byte) (Method, []byte, error) { return unpackConnectionStartOk(d) })
	registerMethod(classConnection, 20, func(d []byte) (Method, []byte, error) { return unpackConnectionSecure(d) })
	registerMethod(classConnection, 21, func(d []byte) (Method, []byte, error) { return unpackConnectionSecureOk(d) })
	registerMethod(classConnection, 30, func(d []byte) (Method, []byte, error) { return unpackConnectionTune(d) })
	registerMethod(classConnection, 31, func(d []byte) (Method, []byte, error) { return unpackConnectionTuneOk(d) })
	registerMethod(classConnection, 40, func(d []byte) (Method, []byte, error) { return unpackConnectionOpen(d) })
	registerMethod(classConnection, 41, func(d []byte) (Method, []byte, error) { return unpackConnectionOpenOk(d) })
	registerMethod(classConnection, 50, func(d []byte) (Method, []byte, error) { return unpackConnectionClose(d) })
	registerMethod(classConnection, 51, func(d []byte) (Method, []byte, error) { return unpackConnectionCloseOk(d) })

	registerMethod(classChannel, 10, func(d []byte) (Method, []byte, error) { return unpackChannelOpen(d) })
	registerMethod(classChannel, 11, func(d []byte) (Method, []byte, error) { return unpackChannelOpenOk(d) })
	registerMethod(classChannel, 20, func(d []byte) (Method, []byte, error) { return unpackChannelFlow(d) })
	registerMethod(classChannel, 21, func(d []byte) (Method, []byte, error) { return unpackChannelFlowOk(d) })
	registerMethod(classChannel, 40, func(d []byte) (Method, []byte, error) { return unpackChannelClose(d) })
	registerMethod(classChannel, 41, func(d []byte) (Method, []byte, error) { return unpackChannelCloseOk(d) })

	registerMethod(classExchange, 10, func(d []byte) (Method, []byte, error) { return unpackExchangeDeclare(d) })
	registerMethod(classExchange, 11, func(d []byte) (Method, []byte, error) { return unpackExchangeDeclareOk(d) })
	registerMethod(classExchange, 20, func(d []byte) (Method, []byte, error) { return unpackExchangeDelete(d) })
	registerMethod(classExchange, 21, func(d []byte) (Method, []byte, error) { return unpackExchangeDeleteOk(d) })
	registerMethod(classExchange, 30, func(d []byte) (Method, []byte, error) { return unpackExchangeBind(d) })
	registerMethod(classExchange, 31, func(d []byte) (Method, []byte, error) { return unpackExchangeBindOk(d) })

	registerMethod(classQueue, 10, func(d []byte) (Method, []byte, error) { return unpackQueueDeclare(d) })
	registerMethod(classQueue, 11, func(d []byte) (Method, []byte, error) { return unpackQueueDeclareOk(d) })
	registerMethod(classQueue, 20, func(d []byte) (Method, []byte, error) { return unpackQueueBind(d) })
	registerMethod(classQueue, 21, func(d []byte) (Method, []byte, error) { return unpackQueueBindOk(d) })
	registerMethod(classQueue, 50, func(d []byte) (Method, []byte, error) { return unpackQueueUnbind(d) })
	registerMethod(classQueue, 51, func(d []byte) (Method, []byte, error) { return unpackQueueUnbindOk(d) })
	registerMethod(classQueue, 30, func(d []byte) (Method, []byte, error) { return unpackQueuePurge(d) })
	registerMethod(classQueue, 31, func(d []byte) (Method, []byte, error) { return unpackQueuePurgeOk(d) })
	registerMethod(classQueue, 40, func(d []byte) (Method, []byte, error) { return unpackQueueDelete(d) })
	registerMethod(classQueue, 41, func(d []byte) (Method, []byte, error) { return unpackQueueDeleteOk(d) })

	registerMethod(classBasic, 10, func(d []byte) (Method, []byte, error) { return unpackBasicQos(d) })
	registerMethod(classBasic, 11, func(d []byte) (Method, []byte, error) { return unpackBasicQosOk(d) })
	registerMethod(classBasic, 20, func(d []byte) (Method, []byte, error) { return unpackBasicConsume(d) })
	registerMethod(classBasic, 21, func(d []byte) (Method, []byte, error) { return unpackBasicConsumeOk(d) })
	registerMethod(classBasic, 30, func(d []byte) (Method, []byte, error) { return unpackBasicCancel(d) })
	registerMethod(classBasic, 31, func(d []byte) (Method, []byte, error) { return unpackBasicCancelOk(d) })
	registerMethod(classBasic, 40, func(d []byte) (Method, []byte, error) { return unpackBasicPublish(d) })
	registerMethod(classBasic, 50, func(d []byte) (Method, []byte, error) { return unpackBasicReturn(d) })
	registerMethod(classBasic, 60, func(d []byte) (Method, []byte, error) { return unpackBasicDeliver(d) })
	registerMethod(classBasic, 70, func(d []byte) (Method, []byte, error) { return unpackBasicGet(d) })
	registerMethod(classBasic, 71, func(d []byte) (Method, []byte, error) { return unpackBasicGetOk(d) })
	registerMethod(classBasic, 72, func(d []byte) (Method, []byte, error) { return unpackBasicGetEmpty(d) })
	registerMethod(classBasic, 80, func(d []byte) (Method, []byte, error) { return unpackBasicAck(d) })
	registerMethod(classBasic, 90, func(d []byte) (Method, []byte, error) { return unpackBasicReject(d) })
	registerMethod(classBasic, 100, func(d []byte) (Method, []byte, error) { return unpackBasicRecoverAsync(d) })
	registerMethod(classBasic, 110, func(d []byte) (Method, []byte, error) { return unpackBasicRecover(d) })
	registerMethod(classBasic, 111, func(d []byte) (Method, []byte, error) { return unpackBasicRecoverOk(d) })
	registerMethod(classBasic, 120, func(d []byte) (Method, []byte, error) { return unpackBasicNack(d) })

	registerMethod(classTx, 10, func(d []byte) (Method, []byte, error) { return unpackTxSelect(d) })
	registerMethod(classTx, 11, func(d []byte) (Method, []byte, error) { return unpackTxSelectOk(d) })
	registerMethod(classTx, 20, func(d []byte) (Method, []byte, error) { return unpackTxCommit(d) })
	registerMethod(classTx, 21, func(d []byte) (Method, []byte, error) { return unpackTxCommitOk(d) })
	registerMethod(classTx, 30, func(d []byte) (Method, []byte, error) { return unpackTxRollback(d) })
	registerMethod(classTx, 31, func(d []byte) (Method, []byte, error) { return unpackTxRollbackOk(d) })

	registerMethod(classConfirm, 10, func(d []byte) (Method, []byte, error) { return unpackConfirmSelect(d) })
	registerMethod(classConfirm, 11, func(d []byte) (Method, []byte, error) { return unpackConfirmSelectOk(d) })
}

// ===================================================================
// connection (class 10)
// ===================================================================

// ConnectionStart begins connection negotiation; sent by the server.
type ConnectionStart struct {
	VersionMajor    uint8
	VersionMinor    uint8
	ServerProperties Table
	Mechanisms      string // space-separated
	Locales         string // space-separated
}

func (m *ConnectionStart) ClassID() uint16       { return classConnection }
func (m *ConnectionStart) MethodID() uint16      { return 10 }
func (m *ConnectionStart) HasContent() bool      { return false }
func (m *ConnectionStart) Responses() []methodKey { return []methodKey{{classConnection, 11}} }
func (m *ConnectionStart) pack(buf *bytes.Buffer) error {
	writeUint8(buf, m.VersionMajor)
	writeUint8(buf, m.VersionMinor)
	if err := encodeTable(buf, m.ServerProperties); err != nil {
		return err
	}
	if err := writeLongString(buf, []byte(m.Mechanisms)); err != nil {
		return err
	}
	return writeLongString(buf, []byte(m.Locales))
}
func unpackConnectionStart(d []byte) (*ConnectionStart, []byte, error) {
	m := &ConnectionStart{}
	var err error
	if m.VersionMajor, d, err = readUint8(d); err != nil {
		return nil, d, err
	}
	if m.VersionMinor, d, err = readUint8(d); err != nil {
		return nil, d, err
	}
	if m.ServerProperties, d, err = decodeTable(d); err != nil {
		return nil, d, err
	}
	var b []byte
	if b, d, err = readLongString(d); err != nil {
		return nil, d, err
	}
	m.Mechanisms = string(b)
	if b, d, err = readLongString(d); err != nil {
		return nil, d, err
	}
	m.Locales = string(b)
	return m, d, nil
}

// ConnectionStartOk responds to Start with the client's chosen mechanism,
// auth response, locale, and client properties.
type ConnectionStartOk struct {
	ClientProperties   Table
	SecurityMechanism  string
	SecurityResponse   []byte
	Locale             string
}

func (m *ConnectionStartOk) ClassID() uint16        { return classConnection }
func (m *ConnectionStartOk) MethodID() uint16       { return 11 }
func (m *ConnectionStartOk) HasContent() bool       { return false }
func (m *ConnectionStartOk) Responses() []methodKey { return nil }
func (m *ConnectionStartOk) pack(buf *bytes.Buffer) error {
	if err := encodeTable(buf, m.ClientProperties); err != nil {
		return err
	}
	if err := writeShortString(buf, m.SecurityMechanism); err != nil {
		return err
	}
	if err := writeLongString(buf, m.SecurityResponse); err != nil {
		return err
	}
	return writeShortString(buf, m.Locale)
}
func unpackConnectionStartOk(d []byte) (*ConnectionStartOk, []byte, error) {
	m := &ConnectionStartOk{}
	var err error
	if m.ClientProperties, d, err = decodeTable(d); err != nil {
		return nil, d, err
	}
	if m.SecurityMechanism, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	if m.SecurityResponse, d, err = readLongString(d); err != nil {
		return nil, d, err
	}
	if m.Locale, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	return m, d, nil
}

// ConnectionSecure carries a further security challenge; sent by server.
type ConnectionSecure struct{ Challenge []byte }

func (m *ConnectionSecure) ClassID() uint16        { return classConnection }
func (m *ConnectionSecure) MethodID() uint16       { return 20 }
func (m *ConnectionSecure) HasContent() bool       { return false }
func (m *ConnectionSecure) Responses() []methodKey { return []methodKey{{classConnection, 21}} }
func (m *ConnectionSecure) pack(buf *bytes.Buffer) error {
	return writeLongString(buf, m.Challenge)
}
func unpackConnectionSecure(d []byte) (*ConnectionSecure, []byte, error) {
	m := &ConnectionSecure{}
	var err error
	m.Challenge, d, err = readLongString(d)
	return m, d, err
}

// ConnectionSecureOk answers a security challenge; sent by client.
type ConnectionSecureOk struct{ Response []byte }

func (m *ConnectionSecureOk) ClassID() uint16        { return classConnection }
func (m *ConnectionSecureOk) MethodID() uint16       { return 21 }
func (m *ConnectionSecureOk) HasContent() bool       { return false }
func (m *ConnectionSecureOk) Responses() []methodKey { return nil }
func (m *ConnectionSecureOk) pack(buf *bytes.Buffer) error {
	return writeLongString(buf, m.Response)
}
func unpackConnectionSecureOk(d []byte) (*ConnectionSecureOk, []byte, error) {
	m := &ConnectionSecureOk{}
	var err error
	m.Response, d, err = readLongString(d)
	return m, d, err
}

// ConnectionTune proposes tuning parameters; sent by server.
type ConnectionTune struct {
	ChannelMax     uint16
	FrameSizeMax   uint32
	HeartbeatDelay uint16
}

func (m *ConnectionTune) ClassID() uint16        { return classConnection }
func (m *ConnectionTune) MethodID() uint16       { return 30 }
func (m *ConnectionTune) HasContent() bool       { return false }
func (m *ConnectionTune) Responses() []methodKey { return []methodKey{{classConnection, 31}} }
func (m *ConnectionTune) pack(buf *bytes.Buffer) error {
	writeUint16(buf, m.ChannelMax)
	writeUint32(buf, m.FrameSizeMax)
	writeUint16(buf, m.HeartbeatDelay)
	return nil
}
func unpackConnectionTune(d []byte) (*ConnectionTune, []byte, error) {
	m := &ConnectionTune{}
	var err error
	if m.ChannelMax, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	if m.FrameSizeMax, d, err = readUint32(d); err != nil {
		return nil, d, err
	}
	if m.HeartbeatDelay, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	return m, d, nil
}

// ConnectionTuneOk confirms tuning parameters; sent by client.
type ConnectionTuneOk struct {
	ChannelMax     uint16
	FrameSizeMax   uint32
	HeartbeatDelay uint16
}

func (m *ConnectionTuneOk) ClassID() uint16        { return classConnection }
func (m *ConnectionTuneOk) MethodID() uint16       { return 31 }
func (m *ConnectionTuneOk) HasContent() bool       { return false }
func (m *ConnectionTuneOk) Responses() []methodKey { return nil }
func (m *ConnectionTuneOk) pack(buf *bytes.Buffer) error {
	writeUint16(buf, m.ChannelMax)
	writeUint32(buf, m.FrameSizeMax)
	writeUint16(buf, m.HeartbeatDelay)
	return nil
}
func unpackConnectionTuneOk(d []byte) (*ConnectionTuneOk, []byte, error) {
	m := &ConnectionTuneOk{}
	var err error
	if m.ChannelMax, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	if m.FrameSizeMax, d, err = readUint32(d); err != nil {
		return nil, d, err
	}
	if m.HeartbeatDelay, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	return m, d, nil
}

// ConnectionOpen opens the given virtual host; sent by client.
type ConnectionOpen struct{ VirtualHost string }

func (m *ConnectionOpen) ClassID() uint16        { return classConnection }
func (m *ConnectionOpen) MethodID() uint16       { return 40 }
func (m *ConnectionOpen) HasContent() bool       { return false }
func (m *ConnectionOpen) Responses() []methodKey { return []methodKey{{classConnection, 41}} }
func (m *ConnectionOpen) pack(buf *bytes.Buffer) error {
	if err := writeShortString(buf, m.VirtualHost); err != nil {
		return err
	}
	if err := writeShortString(buf, ""); err != nil { // reserved1
		return err
	}
	writeBits(buf, false) // reserved2
	return nil
}
func unpackConnectionOpen(d []byte) (*ConnectionOpen, []byte, error) {
	m := &ConnectionOpen{}
	var err error
	if m.VirtualHost, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	if _, d, err = readShortString(d); err != nil { // reserved1
		return nil, d, err
	}
	if _, d, err = readBits(d, 1); err != nil { // reserved2
		return nil, d, err
	}
	return m, d, nil
}

// ConnectionOpenOk confirms the connection is ready; sent by server.
type ConnectionOpenOk struct{}

func (m *ConnectionOpenOk) ClassID() uint16        { return classConnection }
func (m *ConnectionOpenOk) MethodID() uint16       { return 41 }
func (m *ConnectionOpenOk) HasContent() bool       { return false }
func (m *ConnectionOpenOk) Responses() []methodKey { return nil }
func (m *ConnectionOpenOk) pack(buf *bytes.Buffer) error { return writeShortString(buf, "") }
func unpackConnectionOpenOk(d []byte) (*ConnectionOpenOk, []byte, error) {
	_, d, err := readShortString(d) // reserved
	return &ConnectionOpenOk{}, d, err
}

// ConnectionClose gracefully closes the connection, or reports the fatal
// error that is forcing it closed. method_id is 50 (spec.md §9 fixes the
// donor source's `method = 50` typo).
type ConnectionClose struct {
	ReplyCode   uint16
	ReplyText   string
	FailedClass uint16
	FailedMethod uint16
}

// NewConnectionClose builds a ConnectionClose from an AMQPError and the
// method that failed, mirroring grabbit's CloseMethod(error=, method=)
// constructor form. A causeless application close passes a nil err and nil
// method, encoding code=0, reason="", failed_class=0, failed_method=0.
func NewConnectionClose(err AMQPError, failed Method) *ConnectionClose {
	c := &ConnectionClose{}
	if err != nil {
		c.ReplyCode = err.Code()
		c.ReplyText = err.Error()
	}
	if failed != nil {
		c.FailedClass = failed.ClassID()
		c.FailedMethod = failed.MethodID()
	}
	return c
}

func (m *ConnectionClose) ClassID() uint16        { return classConnection }
func (m *ConnectionClose) MethodID() uint16       { return 50 }
func (m *ConnectionClose) HasContent() bool       { return false }
func (m *ConnectionClose) Responses() []methodKey { return []methodKey{{classConnection, 51}} }
func (m *ConnectionClose) pack(buf *bytes.Buffer) error {
	writeUint16(buf, m.ReplyCode)
	if err := writeShortString(buf, m.ReplyText); err != nil {
		return err
	}
	writeUint16(buf, m.FailedClass)
	writeUint16(buf, m.FailedMethod)
	return nil
}
func unpackConnectionClose(d []byte) (*ConnectionClose, []byte, error) {
	m := &ConnectionClose{}
	var err error
	if m.ReplyCode, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	if m.ReplyText, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	if m.FailedClass, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	if m.FailedMethod, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	return m, d, nil
}

// ConnectionCloseOk confirms graceful connection close.
type ConnectionCloseOk struct{}

func (m *ConnectionCloseOk) ClassID() uint16          { return classConnection }
func (m *ConnectionCloseOk) MethodID() uint16         { return 51 }
func (m *ConnectionCloseOk) HasContent() bool         { return false }
func (m *ConnectionCloseOk) Responses() []methodKey   { return nil }
func (m *ConnectionCloseOk) pack(buf *bytes.Buffer) error { return nil }
func unpackConnectionCloseOk(d []byte) (*ConnectionCloseOk, []byte, error) {
	return &ConnectionCloseOk{}, d, nil
}

// ===================================================================
// channel (class 20)
// ===================================================================

// ChannelOpen is the first method sent on a newly allocated channel.
type ChannelOpen struct{}

func (m *ChannelOpen) ClassID() uint16          { return classChannel }
func (m *ChannelOpen) MethodID() uint16         { return 10 }
func (m *ChannelOpen) HasContent() bool         { return false }
func (m *ChannelOpen) Responses() []methodKey   { return []methodKey{{classChannel, 11}} }
func (m *ChannelOpen) pack(buf *bytes.Buffer) error { return writeShortString(buf, "") }
func unpackChannelOpen(d []byte) (*ChannelOpen, []byte, error) {
	_, d, err := readShortString(d)
	return &ChannelOpen{}, d, err
}

// ChannelOpenOk confirms a channel is usable.
type ChannelOpenOk struct{}

func (m *ChannelOpenOk) ClassID() uint16          { return classChannel }
func (m *ChannelOpenOk) MethodID() uint16         { return 11 }
func (m *ChannelOpenOk) HasContent() bool         { return false }
func (m *ChannelOpenOk) Responses() []methodKey   { return nil }
func (m *ChannelOpenOk) pack(buf *bytes.Buffer) error { return writeLongString(buf, nil) }
func unpackChannelOpenOk(d []byte) (*ChannelOpenOk, []byte, error) {
	_, d, err := readLongString(d)
	return &ChannelOpenOk{}, d, err
}

// ChannelFlow requests flow control; RabbitMQ does not implement the broker
// side of this, it is registered only so an unsolicited Flow round-trips.
type ChannelFlow struct{ Active bool }

func (m *ChannelFlow) ClassID() uint16        { return classChannel }
func (m *ChannelFlow) MethodID() uint16       { return 20 }
func (m *ChannelFlow) HasContent() bool       { return false }
func (m *ChannelFlow) Responses() []methodKey { return []methodKey{{classChannel, 21}} }
func (m *ChannelFlow) pack(buf *bytes.Buffer) error { writeBits(buf, m.Active); return nil }
func unpackChannelFlow(d []byte) (*ChannelFlow, []byte, error) {
	bits, d, err := readBits(d, 1)
	if err != nil {
		return nil, d, err
	}
	return &ChannelFlow{Active: bits[0]}, d, nil
}

// ChannelFlowOk confirms flow control was acted on.
type ChannelFlowOk struct{ Active bool }

func (m *ChannelFlowOk) ClassID() uint16        { return classChannel }
func (m *ChannelFlowOk) MethodID() uint16       { return 21 }
func (m *ChannelFlowOk) HasContent() bool       { return false }
func (m *ChannelFlowOk) Responses() []methodKey { return nil }
func (m *ChannelFlowOk) pack(buf *bytes.Buffer) error { writeBits(buf, m.Active); return nil }
func unpackChannelFlowOk(d []byte) (*ChannelFlowOk, []byte, error) {
	bits, d, err := readBits(d, 1)
	if err != nil {
		return nil, d, err
	}
	return &ChannelFlowOk{Active: bits[0]}, d, nil
}

// ChannelClose gracefully closes a channel, or reports the channel-level
// error forcing it closed. method_id is 40 (spec.md §9 fixes the donor
// source's `method = 40` typo).
type ChannelClose struct {
	ReplyCode    uint16
	ReplyText    string
	FailedClass  uint16
	FailedMethod uint16
}

// NewChannelClose mirrors NewConnectionClose for the channel-level Close.
func NewChannelClose(err AMQPError, failed Method) *ChannelClose {
	c := &ChannelClose{}
	if err != nil {
		c.ReplyCode = err.Code()
		c.ReplyText = err.Error()
	}
	if failed != nil {
		c.FailedClass = failed.ClassID()
		c.FailedMethod = failed.MethodID()
	}
	return c
}

func (m *ChannelClose) ClassID() uint16        { return classChannel }
func (m *ChannelClose) MethodID() uint16       { return 40 }
func (m *ChannelClose) HasContent() bool       { return false }
func (m *ChannelClose) Responses() []methodKey { return []methodKey{{classChannel, 41}} }
func (m *ChannelClose) pack(buf *bytes.Buffer) error {
	writeUint16(buf, m.ReplyCode)
	if err := writeShortString(buf, m.ReplyText); err != nil {
		return err
	}
	writeUint16(buf, m.FailedClass)
	writeUint16(buf, m.FailedMethod)
	return nil
}
func unpackChannelClose(d []byte) (*ChannelClose, []byte, error) {
	m := &ChannelClose{}
	var err error
	if m.ReplyCode, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	if m.ReplyText, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	if m.FailedClass, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	if m.FailedMethod, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	return m, d, nil
}

// ChannelCloseOk confirms the channel is closed.
type ChannelCloseOk struct{}

func (m *ChannelCloseOk) ClassID() uint16          { return classChannel }
func (m *ChannelCloseOk) MethodID() uint16         { return 41 }
func (m *ChannelCloseOk) HasContent() bool         { return false }
func (m *ChannelCloseOk) Responses() []methodKey   { return nil }
func (m *ChannelCloseOk) pack(buf *bytes.Buffer) error { return nil }
func unpackChannelCloseOk(d []byte) (*ChannelCloseOk, []byte, error) {
	return &ChannelCloseOk{}, d, nil
}

// ===================================================================
// exchange (class 40)
// ===================================================================

type ExchangeDeclare struct {
	Exchange   string
	Type       string
	Passive    bool
	Durable    bool
	AutoDelete bool
	Internal   bool
	NoWait     bool
	Arguments  Table
}

func (m *ExchangeDeclare) ClassID() uint16        { return classExchange }
func (m *ExchangeDeclare) MethodID() uint16       { return 10 }
func (m *ExchangeDeclare) HasContent() bool       { return false }
func (m *ExchangeDeclare) Responses() []methodKey { return []methodKey{{classExchange, 11}} }
func (m *ExchangeDeclare) pack(buf *bytes.Buffer) error {
	writeUint16(buf, 0) // reserved
	if err := writeShortString(buf, m.Exchange); err != nil {
		return err
	}
	if err := writeShortString(buf, m.Type); err != nil {
		return err
	}
	writeBits(buf, m.Passive, m.Durable, m.AutoDelete, m.Internal, m.NoWait)
	return encodeTable(buf, m.Arguments)
}
func unpackExchangeDeclare(d []byte) (*ExchangeDeclare, []byte, error) {
	m := &ExchangeDeclare{}
	var err error
	if _, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	if m.Exchange, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	if m.Type, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	bits, d, err := readBits(d, 5)
	if err != nil {
		return nil, d, err
	}
	m.Passive, m.Durable, m.AutoDelete, m.Internal, m.NoWait = bits[0], bits[1], bits[2], bits[3], bits[4]
	if m.Arguments, d, err = decodeTable(d); err != nil {
		return nil, d, err
	}
	return m, d, nil
}

type ExchangeDeclareOk struct{}

func (m *ExchangeDeclareOk) ClassID() uint16          { return classExchange }
func (m *ExchangeDeclareOk) MethodID() uint16         { return 11 }
func (m *ExchangeDeclareOk) HasContent() bool         { return false }
func (m *ExchangeDeclareOk) Responses() []methodKey   { return nil }
func (m *ExchangeDeclareOk) pack(buf *bytes.Buffer) error { return nil }
func unpackExchangeDeclareOk(d []byte) (*ExchangeDeclareOk, []byte, error) {
	return &ExchangeDeclareOk{}, d, nil
}

type ExchangeDelete struct {
	Exchange  string
	IfUnused  bool
	NoWait    bool
}

func (m *ExchangeDelete) ClassID() uint16        { return classExchange }
func (m *ExchangeDelete) MethodID() uint16       { return 20 }
func (m *ExchangeDelete) HasContent() bool       { return false }
func (m *ExchangeDelete) Responses() []methodKey { return []methodKey{{classExchange, 21}} }
func (m *ExchangeDelete) pack(buf *bytes.Buffer) error {
	writeUint16(buf, 0)
	if err := writeShortString(buf, m.Exchange); err != nil {
		return err
	}
	writeBits(buf, m.IfUnused, m.NoWait)
	return nil
}
func unpackExchangeDelete(d []byte) (*ExchangeDelete, []byte, error) {
	m := &ExchangeDelete{}
	var err error
	if _, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	if m.Exchange, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	bits, d, err := readBits(d, 2)
	if err != nil {
		return nil, d, err
	}
	m.IfUnused, m.NoWait = bits[0], bits[1]
	return m, d, nil
}

type ExchangeDeleteOk struct{}

func (m *ExchangeDeleteOk) ClassID() uint16          { return classExchange }
func (m *ExchangeDeleteOk) MethodID() uint16         { return 21 }
func (m *ExchangeDeleteOk) HasContent() bool         { return false }
func (m *ExchangeDeleteOk) Responses() []methodKey   { return nil }
func (m *ExchangeDeleteOk) pack(buf *bytes.Buffer) error { return nil }
func unpackExchangeDeleteOk(d []byte) (*ExchangeDeleteOk, []byte, error) {
	return &ExchangeDeleteOk{}, d, nil
}

// ExchangeBind is a RabbitMQ extension (AMQP 0-9-1 removed exchange-to-
// exchange bindings; RabbitMQ restores them).
type ExchangeBind struct {
	Destination string
	Source      string
	RoutingKey  string
	NoWait      bool
	Arguments   Table
}

func (m *ExchangeBind) ClassID() uint16        { return classExchange }
func (m *ExchangeBind) MethodID() uint16       { return 30 }
func (m *ExchangeBind) HasContent() bool       { return false }
func (m *ExchangeBind) Responses() []methodKey { return []methodKey{{classExchange, 31}} }
func (m *ExchangeBind) pack(buf *bytes.Buffer) error {
	writeUint16(buf, 0)
	if err := writeShortString(buf, m.Destination); err != nil {
		return err
	}
	if err := writeShortString(buf, m.Source); err != nil {
		return err
	}
	if err := writeShortString(buf, m.RoutingKey); err != nil {
		return err
	}
	writeBits(buf, m.NoWait)
	return encodeTable(buf, m.Arguments)
}
func unpackExchangeBind(d []byte) (*ExchangeBind, []byte, error) {
	m := &ExchangeBind{}
	var err error
	if _, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	if m.Destination, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	if m.Source, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	if m.RoutingKey, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	bits, d, err := readBits(d, 1)
	if err != nil {
		return nil, d, err
	}
	m.NoWait = bits[0]
	if m.Arguments, d, err = decodeTable(d); err != nil {
		return nil, d, err
	}
	return m, d, nil
}

type ExchangeBindOk struct{}

func (m *ExchangeBindOk) ClassID() uint16          { return classExchange }
func (m *ExchangeBindOk) MethodID() uint16         { return 31 }
func (m *ExchangeBindOk) HasContent() bool         { return false }
func (m *ExchangeBindOk) Responses() []methodKey   { return nil }
func (m *ExchangeBindOk) pack(buf *bytes.Buffer) error { return nil }
func unpackExchangeBindOk(d []byte) (*ExchangeBindOk, []byte, error) {
	return &ExchangeBindOk{}, d, nil
}

// ===================================================================
// queue (class 50)
// ===================================================================

type QueueDeclare struct {
	Queue      string
	Passive    bool
	Durable    bool
	Exclusive  bool
	AutoDelete bool
	NoWait     bool
	Arguments  Table
}

func (m *QueueDeclare) ClassID() uint16        { return classQueue }
func (m *QueueDeclare) MethodID() uint16       { return 10 }
func (m *QueueDeclare) HasContent() bool       { return false }
func (m *QueueDeclare) Responses() []methodKey { return []methodKey{{classQueue, 11}} }
func (m *QueueDeclare) pack(buf *bytes.Buffer) error {
	writeUint16(buf, 0) // reserved
	if err := writeShortString(buf, m.Queue); err != nil {
		return err
	}
	writeBits(buf, m.Passive, m.Durable, m.Exclusive, m.AutoDelete, m.NoWait)
	return encodeTable(buf, m.Arguments)
}
func unpackQueueDeclare(d []byte) (*QueueDeclare, []byte, error) {
	m := &QueueDeclare{}
	var err error
	if _, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	if m.Queue, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	bits, d, err := readBits(d, 5)
	if err != nil {
		return nil, d, err
	}
	m.Passive, m.Durable, m.Exclusive, m.AutoDelete, m.NoWait = bits[0], bits[1], bits[2], bits[3], bits[4]
	if m.Arguments, d, err = decodeTable(d); err != nil {
		return nil, d, err
	}
	return m, d, nil
}

type QueueDeclareOk struct {
	Queue         string
	MessageCount  uint32
	ConsumerCount uint32
}

func (m *QueueDeclareOk) ClassID() uint16        { return classQueue }
func (m *QueueDeclareOk) MethodID() uint16       { return 11 }
func (m *QueueDeclareOk) HasContent() bool       { return false }
func (m *QueueDeclareOk) Responses() []methodKey { return nil }
func (m *QueueDeclareOk) pack(buf *bytes.Buffer) error {
	if err := writeShortString(buf, m.Queue); err != nil {
		return err
	}
	writeUint32(buf, m.MessageCount)
	writeUint32(buf, m.ConsumerCount)
	return nil
}
func unpackQueueDeclareOk(d []byte) (*QueueDeclareOk, []byte, error) {
	m := &QueueDeclareOk{}
	var err error
	if m.Queue, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	if m.MessageCount, d, err = readUint32(d); err != nil {
		return nil, d, err
	}
	if m.ConsumerCount, d, err = readUint32(d); err != nil {
		return nil, d, err
	}
	return m, d, nil
}

type QueueBind struct {
	Queue      string
	Exchange   string
	RoutingKey string
	NoWait     bool
	Arguments  Table
}

func (m *QueueBind) ClassID() uint16        { return classQueue }
func (m *QueueBind) MethodID() uint16       { return 20 }
func (m *QueueBind) HasContent() bool       { return false }
func (m *QueueBind) Responses() []methodKey { return []methodKey{{classQueue, 21}} }
func (m *QueueBind) pack(buf *bytes.Buffer) error {
	writeUint16(buf, 0)
	if err := writeShortString(buf, m.Queue); err != nil {
		return err
	}
	if err := writeShortString(buf, m.Exchange); err != nil {
		return err
	}
	if err := writeShortString(buf, m.RoutingKey); err != nil {
		return err
	}
	writeBits(buf, m.NoWait)
	return encodeTable(buf, m.Arguments)
}
func unpackQueueBind(d []byte) (*QueueBind, []byte, error) {
	m := &QueueBind{}
	var err error
	if _, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	if m.Queue, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	if m.Exchange, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	if m.RoutingKey, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	bits, d, err := readBits(d, 1)
	if err != nil {
		return nil, d, err
	}
	m.NoWait = bits[0]
	if m.Arguments, d, err = decodeTable(d); err != nil {
		return nil, d, err
	}
	return m, d, nil
}

type QueueBindOk struct{}

func (m *QueueBindOk) ClassID() uint16              { return classQueue }
func (m *QueueBindOk) MethodID() uint16             { return 21 }
func (m *QueueBindOk) HasContent() bool             { return false }
func (m *QueueBindOk) Responses() []methodKey       { return nil }
func (m *QueueBindOk) pack(buf *bytes.Buffer) error { return nil }
func unpackQueueBindOk(d []byte) (*QueueBindOk, []byte, error) {
	return &QueueBindOk{}, d, nil
}

type QueueUnbind struct {
	Queue      string
	Exchange   string
	RoutingKey string
	Arguments  Table
}

func (m *QueueUnbind) ClassID() uint16        { return classQueue }
func (m *QueueUnbind) MethodID() uint16       { return 50 }
func (m *QueueUnbind) HasContent() bool       { return false }
func (m *QueueUnbind) Responses() []methodKey { return []methodKey{{classQueue, 51}} }
func (m *QueueUnbind) pack(buf *bytes.Buffer) error {
	writeUint16(buf, 0)
	if err := writeShortString(buf, m.Queue); err != nil {
		return err
	}
	if err := writeShortString(buf, m.Exchange); err != nil {
		return err
	}
	if err := writeShortString(buf, m.RoutingKey); err != nil {
		return err
	}
	return encodeTable(buf, m.Arguments)
}
func unpackQueueUnbind(d []byte) (*QueueUnbind, []byte, error) {
	m := &QueueUnbind{}
	var err error
	if _, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	if m.Queue, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	if m.Exchange, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	if m.RoutingKey, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	if m.Arguments, d, err = decodeTable(d); err != nil {
		return nil, d, err
	}
	return m, d, nil
}

type QueueUnbindOk struct{}

func (m *QueueUnbindOk) ClassID() uint16              { return classQueue }
func (m *QueueUnbindOk) MethodID() uint16             { return 51 }
func (m *QueueUnbindOk) HasContent() bool             { return false }
func (m *QueueUnbindOk) Responses() []methodKey       { return nil }
func (m *QueueUnbindOk) pack(buf *bytes.Buffer) error { return nil }
func unpackQueueUnbindOk(d []byte) (*QueueUnbindOk, []byte, error) {
	return &QueueUnbindOk{}, d, nil
}

type QueuePurge struct {
	Queue  string
	NoWait bool
}

func (m *QueuePurge) ClassID() uint16        { return classQueue }
func (m *QueuePurge) MethodID() uint16       { return 30 }
func (m *QueuePurge) HasContent() bool       { return false }
func (m *QueuePurge) Responses() []methodKey { return []methodKey{{classQueue, 31}} }
func (m *QueuePurge) pack(buf *bytes.Buffer) error {
	writeUint16(buf, 0)
	if err := writeShortString(buf, m.Queue); err != nil {
		return err
	}
	writeBits(buf, m.NoWait)
	return nil
}
func unpackQueuePurge(d []byte) (*QueuePurge, []byte, error) {
	m := &QueuePurge{}
	var err error
	if _, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	if m.Queue, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	bits, d, err := readBits(d, 1)
	if err != nil {
		return nil, d, err
	}
	m.NoWait = bits[0]
	return m, d, nil
}

type QueuePurgeOk struct{ MessageCount uint32 }

func (m *QueuePurgeOk) ClassID() uint16        { return classQueue }
func (m *QueuePurgeOk) MethodID() uint16       { return 31 }
func (m *QueuePurgeOk) HasContent() bool       { return false }
func (m *QueuePurgeOk) Responses() []methodKey { return nil }
func (m *QueuePurgeOk) pack(buf *bytes.Buffer) error {
	writeUint32(buf, m.MessageCount)
	return nil
}
func unpackQueuePurgeOk(d []byte) (*QueuePurgeOk, []byte, error) {
	m := &QueuePurgeOk{}
	var err error
	if m.MessageCount, d, err = readUint32(d); err != nil {
		return nil, d, err
	}
	return m, d, nil
}

type QueueDelete struct {
	Queue    string
	IfUnused bool
	IfEmpty  bool
	NoWait   bool
}

func (m *QueueDelete) ClassID() uint16        { return classQueue }
func (m *QueueDelete) MethodID() uint16       { return 40 }
func (m *QueueDelete) HasContent() bool       { return false }
func (m *QueueDelete) Responses() []methodKey { return []methodKey{{classQueue, 41}} }
func (m *QueueDelete) pack(buf *bytes.Buffer) error {
	writeUint16(buf, 0)
	if err := writeShortString(buf, m.Queue); err != nil {
		return err
	}
	writeBits(buf, m.IfUnused, m.IfEmpty, m.NoWait)
	return nil
}
func unpackQueueDelete(d []byte) (*QueueDelete, []byte, error) {
	m := &QueueDelete{}
	var err error
	if _, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	if m.Queue, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	bits, d, err := readBits(d, 3)
	if err != nil {
		return nil, d, err
	}
	m.IfUnused, m.IfEmpty, m.NoWait = bits[0], bits[1], bits[2]
	return m, d, nil
}

type QueueDeleteOk struct{ MessageCount uint32 }

func (m *QueueDeleteOk) ClassID() uint16        { return classQueue }
func (m *QueueDeleteOk) MethodID() uint16       { return 41 }
func (m *QueueDeleteOk) HasContent() bool       { return false }
func (m *QueueDeleteOk) Responses() []methodKey { return nil }
func (m *QueueDeleteOk) pack(buf *bytes.Buffer) error {
	writeUint32(buf, m.MessageCount)
	return nil
}
func unpackQueueDeleteOk(d []byte) (*QueueDeleteOk, []byte, error) {
	m := &QueueDeleteOk{}
	var err error
	if m.MessageCount, d, err = readUint32(d); err != nil {
		return nil, d, err
	}
	return m, d, nil
}

// ===================================================================
// basic (class 60)
// ===================================================================

type BasicQos struct {
	PrefetchSize  uint32
	PrefetchCount uint16
	Global        bool
}

func (m *BasicQos) ClassID() uint16        { return classBasic }
func (m *BasicQos) MethodID() uint16       { return 10 }
func (m *BasicQos) HasContent() bool       { return false }
func (m *BasicQos) Responses() []methodKey { return []methodKey{{classBasic, 11}} }
func (m *BasicQos) pack(buf *bytes.Buffer) error {
	writeUint32(buf, m.PrefetchSize)
	writeUint16(buf, m.PrefetchCount)
	writeBits(buf, m.Global)
	return nil
}
func unpackBasicQos(d []byte) (*BasicQos, []byte, error) {
	m := &BasicQos{}
	var err error
	if m.PrefetchSize, d, err = readUint32(d); err != nil {
		return nil, d, err
	}
	if m.PrefetchCount, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	bits, d, err := readBits(d, 1)
	if err != nil {
		return nil, d, err
	}
	m.Global = bits[0]
	return m, d, nil
}

type BasicQosOk struct{}

func (m *BasicQosOk) ClassID() uint16          { return classBasic }
func (m *BasicQosOk) MethodID() uint16         { return 11 }
func (m *BasicQosOk) HasContent() bool         { return false }
func (m *BasicQosOk) Responses() []methodKey   { return nil }
func (m *BasicQosOk) pack(buf *bytes.Buffer) error { return nil }
func unpackBasicQosOk(d []byte) (*BasicQosOk, []byte, error) { return &BasicQosOk{}, d, nil }

type BasicConsume struct {
	Queue       string
	ConsumerTag string
	NoLocal     bool
	NoAck       bool
	Exclusive   bool
	NoWait      bool
	Arguments   Table
}

func (m *BasicConsume) ClassID() uint16        { return classBasic }
func (m *BasicConsume) MethodID() uint16       { return 20 }
func (m *BasicConsume) HasContent() bool       { return false }
func (m *BasicConsume) Responses() []methodKey { return []methodKey{{classBasic, 21}} }
func (m *BasicConsume) pack(buf *bytes.Buffer) error {
	writeUint16(buf, 0)
	if err := writeShortString(buf, m.Queue); err != nil {
		return err
	}
	if err := writeShortString(buf, m.ConsumerTag); err != nil {
		return err
	}
	writeBits(buf, m.NoLocal, m.NoAck, m.Exclusive, m.NoWait)
	return encodeTable(buf, m.Arguments)
}
func unpackBasicConsume(d []byte) (*BasicConsume, []byte, error) {
	m := &BasicConsume{}
	var err error
	if _, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	if m.Queue, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	if m.ConsumerTag, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	bits, d, err := readBits(d, 4)
	if err != nil {
		return nil, d, err
	}
	m.NoLocal, m.NoAck, m.Exclusive, m.NoWait = bits[0], bits[1], bits[2], bits[3]
	if m.Arguments, d, err = decodeTable(d); err != nil {
		return nil, d, err
	}
	return m, d, nil
}

type BasicConsumeOk struct{ ConsumerTag string }

func (m *BasicConsumeOk) ClassID() uint16        { return classBasic }
func (m *BasicConsumeOk) MethodID() uint16       { return 21 }
func (m *BasicConsumeOk) HasContent() bool       { return false }
func (m *BasicConsumeOk) Responses() []methodKey { return nil }
func (m *BasicConsumeOk) pack(buf *bytes.Buffer) error {
	return writeShortString(buf, m.ConsumerTag)
}
func unpackBasicConsumeOk(d []byte) (*BasicConsumeOk, []byte, error) {
	m := &BasicConsumeOk{}
	var err error
	m.ConsumerTag, d, err = readShortString(d)
	return m, d, err
}

type BasicCancel struct {
	ConsumerTag string
	NoWait      bool
}

func (m *BasicCancel) ClassID() uint16        { return classBasic }
func (m *BasicCancel) MethodID() uint16       { return 30 }
func (m *BasicCancel) HasContent() bool       { return false }
func (m *BasicCancel) Responses() []methodKey { return []methodKey{{classBasic, 31}} }
func (m *BasicCancel) pack(buf *bytes.Buffer) error {
	if err := writeShortString(buf, m.ConsumerTag); err != nil {
		return err
	}
	writeBits(buf, m.NoWait)
	return nil
}
func unpackBasicCancel(d []byte) (*BasicCancel, []byte, error) {
	m := &BasicCancel{}
	var err error
	if m.ConsumerTag, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	bits, d, err := readBits(d, 1)
	if err != nil {
		return nil, d, err
	}
	m.NoWait = bits[0]
	return m, d, nil
}

type BasicCancelOk struct{ ConsumerTag string }

func (m *BasicCancelOk) ClassID() uint16        { return classBasic }
func (m *BasicCancelOk) MethodID() uint16       { return 31 }
func (m *BasicCancelOk) HasContent() bool       { return false }
func (m *BasicCancelOk) Responses() []methodKey { return nil }
func (m *BasicCancelOk) pack(buf *bytes.Buffer) error {
	return writeShortString(buf, m.ConsumerTag)
}
func unpackBasicCancelOk(d []byte) (*BasicCancelOk, []byte, error) {
	m := &BasicCancelOk{}
	var err error
	m.ConsumerTag, d, err = readShortString(d)
	return m, d, err
}

type BasicPublish struct {
	Exchange   string
	RoutingKey string
	Mandatory  bool
	Immediate  bool
}

func (m *BasicPublish) ClassID() uint16        { return classBasic }
func (m *BasicPublish) MethodID() uint16       { return 40 }
func (m *BasicPublish) HasContent() bool       { return true }
func (m *BasicPublish) Responses() []methodKey { return nil }
func (m *BasicPublish) pack(buf *bytes.Buffer) error {
	writeUint16(buf, 0)
	if err := writeShortString(buf, m.Exchange); err != nil {
		return err
	}
	if err := writeShortString(buf, m.RoutingKey); err != nil {
		return err
	}
	writeBits(buf, m.Mandatory, m.Immediate)
	return nil
}
func unpackBasicPublish(d []byte) (*BasicPublish, []byte, error) {
	m := &BasicPublish{}
	var err error
	if _, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	if m.Exchange, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	if m.RoutingKey, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	bits, d, err := readBits(d, 2)
	if err != nil {
		return nil, d, err
	}
	m.Mandatory, m.Immediate = bits[0], bits[1]
	return m, d, nil
}

type BasicReturn struct {
	ReplyCode  uint16
	ReplyText  string
	Exchange   string
	RoutingKey string
}

func (m *BasicReturn) ClassID() uint16        { return classBasic }
func (m *BasicReturn) MethodID() uint16       { return 50 }
func (m *BasicReturn) HasContent() bool       { return true }
func (m *BasicReturn) Responses() []methodKey { return nil }
func (m *BasicReturn) pack(buf *bytes.Buffer) error {
	writeUint16(buf, m.ReplyCode)
	if err := writeShortString(buf, m.ReplyText); err != nil {
		return err
	}
	if err := writeShortString(buf, m.Exchange); err != nil {
		return err
	}
	return writeShortString(buf, m.RoutingKey)
}
func unpackBasicReturn(d []byte) (*BasicReturn, []byte, error) {
	m := &BasicReturn{}
	var err error
	if m.ReplyCode, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	if m.ReplyText, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	if m.Exchange, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	if m.RoutingKey, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	return m, d, nil
}

type BasicDeliver struct {
	ConsumerTag string
	DeliveryTag uint64
	Redelivered bool
	Exchange    string
	RoutingKey  string
}

func (m *BasicDeliver) ClassID() uint16        { return classBasic }
func (m *BasicDeliver) MethodID() uint16       { return 60 }
func (m *BasicDeliver) HasContent() bool       { return true }
func (m *BasicDeliver) Responses() []methodKey { return nil }
func (m *BasicDeliver) pack(buf *bytes.Buffer) error {
	if err := writeShortString(buf, m.ConsumerTag); err != nil {
		return err
	}
	writeUint64(buf, m.DeliveryTag)
	writeBits(buf, m.Redelivered)
	if err := writeShortString(buf, m.Exchange); err != nil {
		return err
	}
	return writeShortString(buf, m.RoutingKey)
}
func unpackBasicDeliver(d []byte) (*BasicDeliver, []byte, error) {
	m := &BasicDeliver{}
	var err error
	if m.ConsumerTag, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	if m.DeliveryTag, d, err = readUint64(d); err != nil {
		return nil, d, err
	}
	bits, d, err := readBits(d, 1)
	if err != nil {
		return nil, d, err
	}
	m.Redelivered = bits[0]
	if m.Exchange, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	if m.RoutingKey, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	return m, d, nil
}

type BasicGet struct {
	Queue string
	NoAck bool
}

func (m *BasicGet) ClassID() uint16        { return classBasic }
func (m *BasicGet) MethodID() uint16       { return 70 }
func (m *BasicGet) HasContent() bool       { return false }
func (m *BasicGet) Responses() []methodKey { return []methodKey{{classBasic, 71}, {classBasic, 72}} }
func (m *BasicGet) pack(buf *bytes.Buffer) error {
	writeUint16(buf, 0)
	if err := writeShortString(buf, m.Queue); err != nil {
		return err
	}
	writeBits(buf, m.NoAck)
	return nil
}
func unpackBasicGet(d []byte) (*BasicGet, []byte, error) {
	m := &BasicGet{}
	var err error
	if _, d, err = readUint16(d); err != nil {
		return nil, d, err
	}
	if m.Queue, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	bits, d, err := readBits(d, 1)
	if err != nil {
		return nil, d, err
	}
	m.NoAck = bits[0]
	return m, d, nil
}

type BasicGetOk struct {
	DeliveryTag  uint64
	Redelivered  bool
	Exchange     string
	RoutingKey   string
	MessageCount uint32
}

func (m *BasicGetOk) ClassID() uint16        { return classBasic }
func (m *BasicGetOk) MethodID() uint16       { return 71 }
func (m *BasicGetOk) HasContent() bool       { return true }
func (m *BasicGetOk) Responses() []methodKey { return nil }
func (m *BasicGetOk) pack(buf *bytes.Buffer) error {
	writeUint64(buf, m.DeliveryTag)
	writeBits(buf, m.Redelivered)
	if err := writeShortString(buf, m.Exchange); err != nil {
		return err
	}
	if err := writeShortString(buf, m.RoutingKey); err != nil {
		return err
	}
	writeUint32(buf, m.MessageCount)
	return nil
}
func unpackBasicGetOk(d []byte) (*BasicGetOk, []byte, error) {
	m := &BasicGetOk{}
	var err error
	if m.DeliveryTag, d, err = readUint64(d); err != nil {
		return nil, d, err
	}
	bits, d, err := readBits(d, 1)
	if err != nil {
		return nil, d, err
	}
	m.Redelivered = bits[0]
	if m.Exchange, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	if m.RoutingKey, d, err = readShortString(d); err != nil {
		return nil, d, err
	}
	if m.MessageCount, d, err = readUint32(d); err != nil {
		return nil, d, err
	}
	return m, d, nil
}

type BasicGetEmpty struct{}

func (m *BasicGetEmpty) ClassID() uint16        { return classBasic }
func (m *BasicGetEmpty) MethodID() uint16       { return 72 }
func (m *BasicGetEmpty) HasContent() bool       { return false }
func (m *BasicGetEmpty) Responses() []methodKey { return nil }
func (m *BasicGetEmpty) pack(buf *bytes.Buffer) error { return writeShortString(buf, "") }
func unpackBasicGetEmpty(d []byte) (*BasicGetEmpty, []byte, error) {
	_, d, err := readShortString(d)
	return &BasicGetEmpty{}, d, err
}

type BasicAck struct {
	DeliveryTag uint64
	Multiple    bool
}

func (m *BasicAck) ClassID() uint16        { return classBasic }
func (m *BasicAck) MethodID() uint16       { return 80 }
func (m *BasicAck) HasContent() bool       { return false }
func (m *BasicAck) Responses() []methodKey { return nil }
func (m *BasicAck) pack(buf *bytes.Buffer) error {
	writeUint64(buf, m.DeliveryTag)
	writeBits(buf, m.Multiple)
	return nil
}
func unpackBasicAck(d []byte) (*BasicAck, []byte, error) {
	m := &BasicAck{}
	var err error
	if m.DeliveryTag, d, err = readUint64(d); err != nil {
		return nil, d, err
	}
	bits, d, err := readBits(d, 1)
	if err != nil {
		return nil, d, err
	}
	m.Multiple = bits[0]
	return m, d, nil
}

type BasicReject struct {
	DeliveryTag uint64
	Requeue     bool
}

func (m *BasicReject) ClassID() uint16        { return classBasic }
func (m *BasicReject) MethodID() uint16       { return 90 }
func (m *BasicReject) HasContent() bool       { return false }
func (m *BasicReject) Responses() []methodKey { return nil }
func (m *BasicReject) pack(buf *bytes.Buffer) error {
	writeUint64(buf, m.DeliveryTag)
	writeBits(buf, m.Requeue)
	return nil
}
func unpackBasicReject(d []byte) (*BasicReject, []byte, error) {
	m := &BasicReject{}
	var err error
	if m.DeliveryTag, d, err = readUint64(d); err != nil {
		return nil, d, err
	}
	bits, d, err := readBits(d, 1)
	if err != nil {
		return nil, d, err
	}
	m.Requeue = bits[0]
	return m, d, nil
}

type BasicRecoverAsync struct{ Requeue bool }

func (m *BasicRecoverAsync) ClassID() uint16        { return classBasic }
func (m *BasicRecoverAsync) MethodID() uint16       { return 100 }
func (m *BasicRecoverAsync) HasContent() bool       { return false }
func (m *BasicRecoverAsync) Responses() []methodKey { return nil }
func (m *BasicRecoverAsync) pack(buf *bytes.Buffer) error { writeBits(buf, m.Requeue); return nil }
func unpackBasicRecoverAsync(d []byte) (*BasicRecoverAsync, []byte, error) {
	bits, d, err := readBits(d, 1)
	if err != nil {
		return nil, d, err
	}
	return &BasicRecoverAsync{Requeue: bits[0]}, d, nil
}

type BasicRecover struct{ Requeue bool }

func (m *BasicRecover) ClassID() uint16        { return classBasic }
func (m *BasicRecover) MethodID() uint16       { return 110 }
func (m *BasicRecover) HasContent() bool       { return false }
func (m *BasicRecover) Responses() []methodKey { return []methodKey{{classBasic, 111}} }
func (m *BasicRecover) pack(buf *bytes.Buffer) error { writeBits(buf, m.Requeue); return nil }
func unpackBasicRecover(d []byte) (*BasicRecover, []byte, error) {
	bits, d, err := readBits(d, 1)
	if err != nil {
		return nil, d, err
	}
	return &BasicRecover{Requeue: bits[0]}, d, nil
}

type BasicRecoverOk struct{}

func (m *BasicRecoverOk) ClassID() uint16          { return classBasic }
func (m *BasicRecoverOk) MethodID() uint16         { return 111 }
func (m *BasicRecoverOk) HasContent() bool         { return false }
func (m *BasicRecoverOk) Responses() []methodKey   { return nil }
func (m *BasicRecoverOk) pack(buf *bytes.Buffer) error { return nil }
func unpackBasicRecoverOk(d []byte) (*BasicRecoverOk, []byte, error) {
	return &BasicRecoverOk{}, d, nil
}

// BasicNack is a RabbitMQ extension acting like Reject but with Ack-like
// fields, and is also how the broker rejects messages in confirm mode.
type BasicNack struct {
	DeliveryTag uint64
	Multiple    bool
	Requeue     bool
}

func (m *BasicNack) ClassID() uint16        { return classBasic }
func (m *BasicNack) MethodID() uint16       { return 120 }
func (m *BasicNack) HasContent() bool       { return false }
func (m *BasicNack) Responses() []methodKey { return nil }
func (m *BasicNack) pack(buf *bytes.Buffer) error {
	writeUint64(buf, m.DeliveryTag)
	writeBits(buf, m.Multiple, m.Requeue)
	return nil
}
func unpackBasicNack(d []byte) (*BasicNack, []byte, error) {
	m := &BasicNack{}
	var err error
	if m.DeliveryTag, d, err = readUint64(d); err != nil {
		return nil, d, err
	}
	bits, d, err := readBits(d, 2)
	if err != nil {
		return nil, d, err
	}
	m.Multiple, m.Requeue = bits[0], bits[1]
	return m, d, nil
}

// ===================================================================
// tx (class 90)
// ===================================================================

type TxSelect struct{}

func (m *TxSelect) ClassID() uint16          { return classTx }
func (m *TxSelect) MethodID() uint16         { return 10 }
func (m *TxSelect) HasContent() bool         { return false }
func (m *TxSelect) Responses() []methodKey   { return []methodKey{{classTx, 11}} }
func (m *TxSelect) pack(buf *bytes.Buffer) error { return nil }
func unpackTxSelect(d []byte) (*TxSelect, []byte, error) { return &TxSelect{}, d, nil }

type TxSelectOk struct{}

func (m *TxSelectOk) ClassID() uint16          { return classTx }
func (m *TxSelectOk) MethodID() uint16         { return 11 }
func (m *TxSelectOk) HasContent() bool         { return false }
func (m *TxSelectOk) Responses() []methodKey   { return nil }
func (m *TxSelectOk) pack(buf *bytes.Buffer) error { return nil }
func unpackTxSelectOk(d []byte) (*TxSelectOk, []byte, error) { return &TxSelectOk{}, d, nil }

type TxCommit struct{}

func (m *TxCommit) ClassID() uint16          { return classTx }
func (m *TxCommit) MethodID() uint16         { return 20 }
func (m *TxCommit) HasContent() bool         { return false }
func (m *TxCommit) Responses() []methodKey   { return []methodKey{{classTx, 21}} }
func (m *TxCommit) pack(buf *bytes.Buffer) error { return nil }
func unpackTxCommit(d []byte) (*TxCommit, []byte, error) { return &TxCommit{}, d, nil }

type TxCommitOk struct{}

func (m *TxCommitOk) ClassID() uint16          { return classTx }
func (m *TxCommitOk) MethodID() uint16         { return 21 }
func (m *TxCommitOk) HasContent() bool         { return false }
func (m *TxCommitOk) Responses() []methodKey   { return nil }
func (m *TxCommitOk) pack(buf *bytes.Buffer) error { return nil }
func unpackTxCommitOk(d []byte) (*TxCommitOk, []byte, error) { return &TxCommitOk{}, d, nil }

type TxRollback struct{}

func (m *TxRollback) ClassID() uint16          { return classTx }
func (m *TxRollback) MethodID() uint16         { return 30 }
func (m *TxRollback) HasContent() bool         { return false }
func (m *TxRollback) Responses() []methodKey   { return []methodKey{{classTx, 31}} }
func (m *TxRollback) pack(buf *bytes.Buffer) error { return nil }
func unpackTxRollback(d []byte) (*TxRollback, []byte, error) { return &TxRollback{}, d, nil }

type TxRollbackOk struct{}

func (m *TxRollbackOk) ClassID() uint16          { return classTx }
func (m *TxRollbackOk) MethodID() uint16         { return 31 }
func (m *TxRollbackOk) HasContent() bool         { return false }
func (m *TxRollbackOk) Responses() []methodKey   { return nil }
func (m *TxRollbackOk) pack(buf *bytes.Buffer) error { return nil }
func unpackTxRollbackOk(d []byte) (*TxRollbackOk, []byte, error) { return &TxRollbackOk{}, d, nil }

// ===================================================================
// confirm (class 85, RabbitMQ extension)
// ===================================================================

type ConfirmSelect struct{ NoWait bool }

func (m *ConfirmSelect) ClassID() uint16        { return classConfirm }
func (m *ConfirmSelect) MethodID() uint16       { return 10 }
func (m *ConfirmSelect) HasContent() bool       { return false }
func (m *ConfirmSelect) Responses() []methodKey { return []methodKey{{classConfirm, 11}} }
func (m *ConfirmSelect) pack(buf *bytes.Buffer) error { writeBits(buf, m.NoWait); return nil }
func unpackConfirmSelect(d []byte) (*ConfirmSelect, []byte, error) {
	bits, d, err := readBits(d, 1)
	if err != nil {
		return nil, d, err
	}
	return &ConfirmSelect{NoWait: bits[0]}, d, nil
}

type ConfirmSelectOk struct{}

func (m *ConfirmSelectOk) ClassID() uint16          { return classConfirm }
func (m *ConfirmSelectOk) MethodID() uint16         { return 11 }
func (m *ConfirmSelectOk) HasContent() bool         { return false }
func (m *ConfirmSelectOk) Responses() []methodKey   { return nil }
func (m *ConfirmSelectOk) pack(buf *bytes.Buffer) error { return nil }
func unpackConfirmSelectOk(d []byte) (*ConfirmSelectOk, []byte, error) {
	return &ConfirmSelectOk{}, d, nil
}

// responseMatches reports whether candidate is one of want's acceptable
// response methods, used by the channel's send-sync waiter.
func responseMatches(want []methodKey, candidate Method) bool {
	k := keyOf(candidate)
	for _, w := range want {
		if w == k {
			return true
		}
	}
	return false
}
