package amqpwire

import (
	"bytes"
	"fmt"
	"time"
)

// Table is a field table: a self-describing, string-keyed map, used both for
// method "arguments" fields and for basic.Properties "headers". Values may
// be any of the types handled by encodeFieldValue's type switch.
type Table map[string]interface{}

// Decimal is a scaled signed integer: value * 10^-scale. Constructed
// directly rather than from a floating point type so that precision is
// never silently lost, matching grabbit's use of Python's Decimal.
type Decimal struct {
	Scale uint8
	Value int32
}

const fieldNameMax = 128

// validateFieldName enforces spec.md §3's FieldName character class: first
// char a letter or {$,#}, remaining chars letters/digits/_.
func validateFieldName(name string) error {
	if len(name) == 0 {
		return fmt.Errorf("amqpwire: field name must not be empty")
	}
	if len(name) > fieldNameMax {
		return fmt.Errorf("amqpwire: field name %q longer than %d bytes", name, fieldNameMax)
	}
	first := name[0]
	if !(isLetter(first) || first == '$' || first == '#') {
		return fmt.Errorf("amqpwire: illegal first character %q in field name %q", first, name)
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if !(isLetter(c) || isDigit(c) || c == '_') {
			return fmt.Errorf("amqpwire: illegal character %q in field name %q", c, name)
		}
	}
	return nil
}

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }

// RabbitMQ's field-table type tags. These are NOT the tags defined by the
// AMQP 0-9-1 spec text itself - they are the errata RabbitMQ actually
// implements (https://www.rabbitmq.com/amqp-0-9-1-errata.html), which is
// what spec.md §4.2 calls for.
const (
	tagBool      = 't'
	tagI8        = 'b'
	tagI16       = 's'
	tagI32       = 'I'
	tagI64       = 'l'
	tagF32       = 'f'
	tagF64       = 'd'
	tagDecimal   = 'D'
	tagString    = 'S'
	tagArray     = 'A'
	tagTimestamp = 'T'
	tagTable     = 'F'
	tagVoid      = 'V'
	tagByteArray = 'x'
)

// EncodeError is raised when a host value has no corresponding field-table
// representation.
type EncodeError struct {
	Value interface{}
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("amqpwire: cannot encode value of type %T as a field-table value", e.Value)
}

func encodeFieldValue(buf *bytes.Buffer, v interface{}) error {
	switch val := v.(type) {
	case nil:
		buf.WriteByte(tagVoid)
	case bool:
		buf.WriteByte(tagBool)
		if val {
			writeUint8(buf, 1)
		} else {
			writeUint8(buf, 0)
		}
	case int8:
		buf.WriteByte(tagI8)
		writeInt8(buf, val)
	case int16:
		buf.WriteByte(tagI16)
		writeInt16(buf, val)
	case int32:
		buf.WriteByte(tagI32)
		writeInt32(buf, val)
	case int64:
		buf.WriteByte(tagI64)
		writeInt64(buf, val)
	case int:
		// An unqualified integer coerces to the widest signed type, as per
		// spec.md §4.2's "integer -> l" coercion rule.
		buf.WriteByte(tagI64)
		writeInt64(buf, int64(val))
	case float32:
		buf.WriteByte(tagF32)
		writeFloat32(buf, val)
	case float64:
		buf.WriteByte(tagF64)
		writeFloat64(buf, val)
	case Decimal:
		buf.WriteByte(tagDecimal)
		writeUint8(buf, val.Scale)
		writeInt32(buf, val.Value)
	case string:
		buf.WriteByte(tagString)
		return writeLongString(buf, []byte(val))
	case []byte:
		buf.WriteByte(tagByteArray)
		return writeLongString(buf, val)
	case time.Time:
		buf.WriteByte(tagTimestamp)
		writeUint64(buf, uint64(val.Unix()))
	case Table:
		buf.WriteByte(tagTable)
		return encodeTable(buf, val)
	case []interface{}:
		buf.WriteByte(tagArray)
		return encodeArray(buf, val)
	default:
		return &EncodeError{Value: v}
	}
	return nil
}

func decodeFieldValue(tag byte, data []byte) (interface{}, []byte, error) {
	switch tag {
	case tagBool:
		n, rest, err := readUint8(data)
		return n != 0, rest, err
	case tagI8:
		return chain(readInt8(data))
	case tagI16:
		return chain(readInt16(data))
	case tagI32:
		return chain(readInt32(data))
	case tagI64:
		return chain(readInt64(data))
	case tagF32:
		return chain(readFloat32(data))
	case tagF64:
		return chain(readFloat64(data))
	case tagDecimal:
		scale, rest, err := readUint8(data)
		if err != nil {
			return nil, data, err
		}
		value, rest, err := readInt32(rest)
		if err != nil {
			return nil, data, err
		}
		return Decimal{Scale: scale, Value: value}, rest, nil
	case tagString:
		b, rest, err := readLongString(data)
		if err != nil {
			return nil, data, err
		}
		return string(b), rest, nil
	case tagByteArray:
		return readLongString(data)
	case tagTimestamp:
		secs, rest, err := readUint64(data)
		if err != nil {
			return nil, data, err
		}
		return time.Unix(int64(secs), 0).UTC(), rest, nil
	case tagTable:
		return decodeTable(data)
	case tagArray:
		return decodeArray(data)
	case tagVoid:
		return nil, data, nil
	default:
		return nil, data, &SyntaxError{Reason: fmt.Sprintf("unknown field-table type tag %q", tag), Data: data}
	}
}

// chain adapts the (value, rest, error) shape of the scalar read* helpers to
// the (interface{}, []byte, error) shape decodeFieldValue needs, without a
// case-by-case rewrite of each branch above.
func chain[T any](v T, rest []byte, err error) (interface{}, []byte, error) {
	if err != nil {
		return nil, rest, err
	}
	return v, rest, nil
}

func encodeTable(buf *bytes.Buffer, t Table) error {
	var payload bytes.Buffer
	for name, value := range t {
		if err := validateFieldName(name); err != nil {
			return err
		}
		if err := writeShortString(&payload, name); err != nil {
			return err
		}
		if err := encodeFieldValue(&payload, value); err != nil {
			return err
		}
	}
	return writeLongString(buf, payload.Bytes())
}

func decodeTable(data []byte) (Table, []byte, error) {
	payload, rest, err := readLongString(data)
	if err != nil {
		return nil, data, err
	}
	out := Table{}
	p := payload
	for len(p) > 0 {
		name, next, err := readShortString(p)
		if err != nil {
			return nil, data, wrapTableSyntaxError(err, p)
		}
		p = next
		if len(p) < 1 {
			return nil, data, wrapTableSyntaxError(errIncomplete, p)
		}
		tag := p[0]
		p = p[1:]
		value, next, err := decodeFieldValue(tag, p)
		if err != nil {
			return nil, data, wrapTableSyntaxError(err, p)
		}
		p = next
		out[name] = value
	}
	return out, rest, nil
}

func encodeArray(buf *bytes.Buffer, values []interface{}) error {
	var payload bytes.Buffer
	for _, v := range values {
		if err := encodeFieldValue(&payload, v); err != nil {
			return err
		}
	}
	return writeLongString(buf, payload.Bytes())
}

func decodeArray(data []byte) ([]interface{}, []byte, error) {
	payload, rest, err := readLongString(data)
	if err != nil {
		return nil, data, err
	}
	var out []interface{}
	p := payload
	for len(p) > 0 {
		tag := p[0]
		p = p[1:]
		value, next, err := decodeFieldValue(tag, p)
		if err != nil {
			return nil, data, wrapTableSyntaxError(err, p)
		}
		p = next
		out = append(out, value)
	}
	return out, rest, nil
}

// wrapTableSyntaxError turns a partial-payload failure (including
// errIncomplete, which is only meaningful across full-frame boundaries) into
// a SyntaxError carrying the undigested remainder, per spec.md §4.2's
// "Partial payloads during unpack surface as SyntaxError(data=payload)".
func wrapTableSyntaxError(err error, remaining []byte) error {
	if se, ok := err.(*SyntaxError); ok {
		return se
	}
	return &SyntaxError{Reason: "malformed field-table payload", Data: remaining, Cause: err}
}

// SyntaxError is raised when a field table, array, or method payload is
// malformed in a way that is not simply "more bytes needed" (that case is
// errIncomplete, which only makes sense relative to a whole frame). It
// always carries the undigested remainder of the payload in Data.
type SyntaxError struct {
	Reason string
	Data   []byte
	Cause  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("amqpwire: syntax error: %s", e.Reason)
}
func (e *SyntaxError) Code() uint16 { return 502 }
func (e *SyntaxError) Fatal() bool  { return true }
func (e *SyntaxError) Unwrap() error { return e.Cause }
