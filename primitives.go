package amqpwire

import (
	"bytes"
	"errors"
	"fmt"
	"math"
)

// errIncomplete is returned internally by every unpack routine when the
// supplied buffer does not yet hold a complete value. When unpackFrame
// returns it, the connection's receive loop simply waits for more bytes,
// as grabbit's frame.Incomplete does; a method or header payload that ends
// early inside a complete frame ends the connection with this error.
var errIncomplete = errors.New("amqpwire: incomplete")

// protocolVersion is the default version of ProtocolHeader, matching AMQP
// 0-9-1 as spoken by RabbitMQ.
var protocolVersion = [3]byte{0x00, 0x09, 0x01}

// ProtocolHeader is the eight bytes written first by the client and
// expected first in the server's reply stream: the literal "AMQP", a
// protocol id octet (always 0 for 0-9-1), and a three-octet version.
type ProtocolHeader struct {
	ProtoID      byte
	ProtoVersion [3]byte
}

// DefaultProtocolHeader is "AMQP" 0x00 0x00 0x09 0x01.
func DefaultProtocolHeader() ProtocolHeader {
	return ProtocolHeader{ProtoID: 0x00, ProtoVersion: protocolVersion}
}

func (h ProtocolHeader) pack() []byte {
	out := make([]byte, 0, 8)
	out = append(out, 'A', 'M', 'Q', 'P', h.ProtoID)
	out = append(out, h.ProtoVersion[:]...)
	return out
}

func unpackProtocolHeader(data []byte) (ProtocolHeader, []byte, error) {
	if len(data) < 8 {
		return ProtocolHeader{}, data, errIncomplete
	}
	if string(data[:4]) != "AMQP" {
		return ProtocolHeader{}, data, fmt.Errorf("amqpwire: data did not begin with %q", "AMQP")
	}
	h := ProtocolHeader{ProtoID: data[4]}
	copy(h.ProtoVersion[:], data[5:8])
	return h, data[8:], nil
}

// --- fixed-width integers, big-endian -------------------------------------

func writeUint8(buf *bytes.Buffer, v uint8)   { buf.WriteByte(v) }
func writeUint16(buf *bytes.Buffer, v uint16) { buf.Write([]byte{byte(v >> 8), byte(v)}) }
func writeUint32(buf *bytes.Buffer, v uint32) {
	buf.Write([]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}
func writeUint64(buf *bytes.Buffer, v uint64) {
	writeUint32(buf, uint32(v>>32))
	writeUint32(buf, uint32(v))
}

func writeInt8(buf *bytes.Buffer, v int8)   { writeUint8(buf, uint8(v)) }
func writeInt16(buf *bytes.Buffer, v int16) { writeUint16(buf, uint16(v)) }
func writeInt32(buf *bytes.Buffer, v int32) { writeUint32(buf, uint32(v)) }
func writeInt64(buf *bytes.Buffer, v int64) { writeUint64(buf, uint64(v)) }

func writeFloat32(buf *bytes.Buffer, v float32) { writeUint32(buf, math.Float32bits(v)) }
func writeFloat64(buf *bytes.Buffer, v float64) { writeUint64(buf, math.Float64bits(v)) }

func readUint8(data []byte) (uint8, []byte, error) {
	if len(data) < 1 {
		return 0, data, errIncomplete
	}
	return data[0], data[1:], nil
}

func readUint16(data []byte) (uint16, []byte, error) {
	if len(data) < 2 {
		return 0, data, errIncomplete
	}
	return uint16(data[0])<<8 | uint16(data[1]), data[2:], nil
}

func readUint32(data []byte) (uint32, []byte, error) {
	if len(data) < 4 {
		return 0, data, errIncomplete
	}
	return uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3]), data[4:], nil
}

func readUint64(data []byte) (uint64, []byte, error) {
	hi, data, err := readUint32(data)
	if err != nil {
		return 0, data, err
	}
	lo, data, err := readUint32(data)
	if err != nil {
		return 0, data, err
	}
	return uint64(hi)<<32 | uint64(lo), data, nil
}

func readInt8(data []byte) (int8, []byte, error) {
	v, rest, err := readUint8(data)
	return int8(v), rest, err
}
func readInt16(data []byte) (int16, []byte, error) {
	v, rest, err := readUint16(data)
	return int16(v), rest, err
}
func readInt32(data []byte) (int32, []byte, error) {
	v, rest, err := readUint32(data)
	return int32(v), rest, err
}
func readInt64(data []byte) (int64, []byte, error) {
	v, rest, err := readUint64(data)
	return int64(v), rest, err
}

func readFloat32(data []byte) (float32, []byte, error) {
	v, rest, err := readUint32(data)
	return math.Float32frombits(v), rest, err
}
func readFloat64(data []byte) (float64, []byte, error) {
	v, rest, err := readUint64(data)
	return math.Float64frombits(v), rest, err
}

// --- strings ---------------------------------------------------------------

const shortStringMax = 255

// writeShortString packs a length-prefixed (one octet) string. Per spec.md
// §3, short strings must not contain a null byte and must be <= 255 bytes.
func writeShortString(buf *bytes.Buffer, s string) error {
	if len(s) > shortStringMax {
		return fmt.Errorf("amqpwire: short string value too long (%d > %d bytes)", len(s), shortStringMax)
	}
	if bytes.IndexByte([]byte(s), 0) >= 0 {
		return errors.New("amqpwire: short string cannot contain a nul byte")
	}
	writeUint8(buf, uint8(len(s)))
	buf.WriteString(s)
	return nil
}

func readShortString(data []byte) (string, []byte, error) {
	n, data, err := readUint8(data)
	if err != nil {
		return "", data, err
	}
	if len(data) < int(n) {
		return "", data, errIncomplete
	}
	return string(data[:n]), data[n:], nil
}

// writeLongString packs a length-prefixed (32-bit) byte string. Unlike
// ShortString this has no content restriction.
func writeLongString(buf *bytes.Buffer, b []byte) error {
	if uint64(len(b)) > math.MaxUint32 {
		return errors.New("amqpwire: long string value too long")
	}
	writeUint32(buf, uint32(len(b)))
	buf.Write(b)
	return nil
}

func readLongString(data []byte) ([]byte, []byte, error) {
	n, data, err := readUint32(data)
	if err != nil {
		return nil, data, err
	}
	if uint64(len(data)) < uint64(n) {
		return nil, data, errIncomplete
	}
	out := make([]byte, n)
	copy(out, data[:n])
	return out, data[n:], nil
}

// --- bit groups --------------------------------------------------------

// writeBits packs len(flags) boolean flags into ceil(n/8) octets,
// least-significant bit first within each octet.
func writeBits(buf *bytes.Buffer, flags ...bool) {
	n := (len(flags) + 7) / 8
	for octet := 0; octet < n; octet++ {
		var mask byte
		for bit := 0; bit < 8; bit++ {
			i := octet*8 + bit
			if i >= len(flags) {
				break
			}
			if flags[i] {
				mask |= 1 << uint(bit)
			}
		}
		writeUint8(buf, mask)
	}
}

// readBits unpacks count boolean flags, discarding any excess trailing bits
// in the final octet.
func readBits(data []byte, count int) ([]bool, []byte, error) {
	n := (count + 7) / 8
	flags := make([]bool, 0, count)
	for octet := 0; octet < n; octet++ {
		mask, rest, err := readUint8(data)
		if err != nil {
			return nil, data, err
		}
		data = rest
		for bit := 0; bit < 8; bit++ {
			if len(flags) >= count {
				break
			}
			flags = append(flags, mask&(1<<uint(bit)) != 0)
		}
	}
	return flags, data, nil
}
