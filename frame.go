package amqpwire

import (
	"bytes"
	"fmt"
)

// Frame type octets, spec.md §4.4.
const (
	frameMethod    = 1
	frameHeader    = 2
	frameBody      = 3
	frameHeartbeat = 8
	frameEnd       = 0xCE
)

const frameHeaderSize = 7 // type(1) + channel(2) + size(4)
const frameMinSize = 4096

// Frame is the wire unit every AMQP connection reads and writes: a typed,
// channel-addressed payload terminated by the frame-end octet.
type Frame struct {
	Type    byte
	Channel uint16
	Payload []byte
}

func (f Frame) pack() []byte {
	var buf bytes.Buffer
	writeUint8(&buf, f.Type)
	writeUint16(&buf, f.Channel)
	writeUint32(&buf, uint32(len(f.Payload)))
	buf.Write(f.Payload)
	writeUint8(&buf, frameEnd)
	return buf.Bytes()
}

// unpackFrame reads one complete frame from data, returning errIncomplete if
// data does not yet hold a whole frame. Returns a FrameError if the
// frame-end octet is missing or corrupted - the one case that is not simply
// "need more bytes".
func unpackFrame(data []byte) (Frame, []byte, error) {
	if len(data) < frameHeaderSize {
		return Frame{}, data, errIncomplete
	}
	typ, rest, err := readUint8(data)
	if err != nil {
		return Frame{}, data, err
	}
	channel, rest, err := readUint16(rest)
	if err != nil {
		return Frame{}, data, err
	}
	size, rest, err := readUint32(rest)
	if err != nil {
		return Frame{}, data, err
	}
	if uint64(len(rest)) < uint64(size)+1 {
		return Frame{}, data, errIncomplete
	}
	payload := rest[:size]
	end := rest[size]
	if end != frameEnd {
		return Frame{}, data, &FrameError{
			Reason: fmt.Sprintf("expected frame-end octet 0x%02x, got 0x%02x", frameEnd, end),
		}
	}
	return Frame{Type: typ, Channel: channel, Payload: payload}, rest[size+1:], nil
}

// FrameError reports a malformed frame envelope: a frame-end octet other
// than 0xCE. Distinct from SyntaxError, which is for malformed
// content inside an otherwise well-formed frame.
type FrameError struct {
	Reason string
}

func (e *FrameError) Error() string { return "amqpwire: frame error: " + e.Reason }
func (e *FrameError) Code() uint16  { return 501 }
func (e *FrameError) Fatal() bool   { return true }

// ContentHeader is the header-frame payload that follows a content-bearing
// method: the method's class id (repeated for framing symmetry, not
// re-validated against the preceding method), a reserved weight field, the
// total body size in bytes, and the sparse-encoded BasicProperties.
type ContentHeader struct {
	ClassID    uint16
	BodySize   uint64
	Properties *BasicProperties
}

func packContentHeader(h ContentHeader) ([]byte, error) {
	var buf bytes.Buffer
	writeUint16(&buf, h.ClassID)
	writeUint16(&buf, 0) // weight, always 0
	writeUint64(&buf, h.BodySize)
	props := h.Properties
	if props == nil {
		props = &BasicProperties{}
	}
	packed, err := props.pack()
	if err != nil {
		return nil, err
	}
	buf.Write(packed)
	return buf.Bytes(), nil
}

func unpackContentHeader(data []byte) (ContentHeader, error) {
	classID, rest, err := readUint16(data)
	if err != nil {
		return ContentHeader{}, err
	}
	_, rest, err = readUint16(rest) // weight, ignored
	if err != nil {
		return ContentHeader{}, err
	}
	bodySize, rest, err := readUint64(rest)
	if err != nil {
		return ContentHeader{}, err
	}
	props, _, err := unpackBasicProperties(rest)
	if err != nil {
		return ContentHeader{}, err
	}
	return ContentHeader{ClassID: classID, BodySize: bodySize, Properties: props}, nil
}

// packMethodFrame packs a Method's class-id/method-id header and its own
// argument encoding into a complete method frame for the given channel.
func packMethodFrame(channel uint16, m Method) (Frame, error) {
	var buf bytes.Buffer
	writeUint16(&buf, m.ClassID())
	writeUint16(&buf, m.MethodID())
	if err := m.pack(&buf); err != nil {
		return Frame{}, err
	}
	return Frame{Type: frameMethod, Channel: channel, Payload: buf.Bytes()}, nil
}

// unpackMethodFrame decodes a method-frame payload into its concrete Method,
// dispatching through the method registry built up in spec091.go.
func unpackMethodFrame(payload []byte) (Method, error) {
	classID, rest, err := readUint16(payload)
	if err != nil {
		return nil, err
	}
	methodID, rest, err := readUint16(rest)
	if err != nil {
		return nil, err
	}
	unpack, ok := lookupMethod(classID, methodID)
	if !ok {
		return nil, errCommandInvalid(fmt.Sprintf("unknown method (class=%d, method=%d)", classID, methodID))
	}
	m, _, err := unpack(rest)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func packBodyFrame(channel uint16, chunk []byte) Frame {
	return Frame{Type: frameBody, Channel: channel, Payload: chunk}
}

func packHeartbeatFrame() Frame {
	return Frame{Type: frameHeartbeat, Channel: 0, Payload: nil}
}

func packHeaderFrame(channel uint16, h ContentHeader) (Frame, error) {
	payload, err := packContentHeader(h)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Type: frameHeader, Channel: channel, Payload: payload}, nil
}
