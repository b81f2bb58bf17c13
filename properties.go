package amqpwire

import (
	"bytes"
	"fmt"
	"time"
)

// propertyDescriptor is one entry of a content class's declared property
// list (spec.md §4.3). bit descriptors carry no encode/decode func: their
// entire value is the presence bit itself.
type propertyDescriptor struct {
	name   string
	bit    bool
	encode func(buf *bytes.Buffer, v interface{}) error
	decode func(data []byte) (interface{}, []byte, error)
}

func stringProperty(name string) propertyDescriptor {
	return propertyDescriptor{
		name: name,
		encode: func(buf *bytes.Buffer, v interface{}) error {
			return writeShortString(buf, v.(string))
		},
		decode: func(data []byte) (interface{}, []byte, error) { return chain(readShortString(data)) },
	}
}

func octetProperty(name string) propertyDescriptor {
	return propertyDescriptor{
		name: name,
		encode: func(buf *bytes.Buffer, v interface{}) error {
			writeUint8(buf, v.(uint8))
			return nil
		},
		decode: func(data []byte) (interface{}, []byte, error) { return chain(readUint8(data)) },
	}
}

func tableProperty(name string) propertyDescriptor {
	return propertyDescriptor{
		name: name,
		encode: func(buf *bytes.Buffer, v interface{}) error {
			return encodeTable(buf, v.(Table))
		},
		decode: func(data []byte) (interface{}, []byte, error) {
			t, rest, err := decodeTable(data)
			if err != nil {
				return nil, data, err
			}
			return t, rest, nil
		},
	}
}

func timestampProperty(name string) propertyDescriptor {
	return propertyDescriptor{
		name: name,
		encode: func(buf *bytes.Buffer, v interface{}) error {
			writeUint64(buf, uint64(v.(time.Time).Unix()))
			return nil
		},
		decode: func(data []byte) (interface{}, []byte, error) {
			secs, rest, err := readUint64(data)
			if err != nil {
				return nil, data, err
			}
			return time.Unix(int64(secs), 0).UTC(), rest, nil
		},
	}
}

func bitProperty(name string) propertyDescriptor {
	return propertyDescriptor{name: name, bit: true}
}

// basicPropertyDescriptors is the declaration order for class 60 (basic)
// content properties, matching grabbit's BasicProperties.property_map.
var basicPropertyDescriptors = []propertyDescriptor{
	stringProperty("content_type"),
	stringProperty("content_encoding"),
	tableProperty("headers"),
	octetProperty("delivery_mode"),
	octetProperty("priority"),
	stringProperty("correlation_id"),
	stringProperty("reply_to"),
	stringProperty("expiration"),
	stringProperty("message_id"),
	timestampProperty("timestamp"),
	stringProperty("type"),
	stringProperty("user_id"),
	stringProperty("app_id"),
	stringProperty("reserved"),
}

// packSparseProperties implements spec.md §4.3's bitmap encoding: walk the
// declared fields, set bit (15 - index%15) in the current 16-bit word when a
// value is present, set bit 0 when more words follow, then append each
// present non-bit value in declaration order. Bit-typed fields consume no
// value bytes - their truth is the presence bit itself.
func packSparseProperties(buf *bytes.Buffer, fields []propertyDescriptor, values map[string]interface{}) error {
	var pending []func(*bytes.Buffer) error
	idx := 0
	for idx < len(fields) {
		var mask uint16
		for bit := 15; bit >= 1 && idx < len(fields); bit-- {
			f := fields[idx]
			idx++
			if f.bit {
				if truthy, ok := values[f.name].(bool); ok && truthy {
					mask |= 1 << uint(bit)
				}
				continue
			}
			v, present := values[f.name]
			if !present {
				continue
			}
			mask |= 1 << uint(bit)
			value := v
			enc := f.encode
			pending = append(pending, func(b *bytes.Buffer) error { return enc(b, value) })
		}
		if idx < len(fields) {
			mask |= 1
		}
		writeUint16(buf, mask)
	}
	for _, enc := range pending {
		if err := enc(buf); err != nil {
			return err
		}
	}
	return nil
}

// unpackSparseProperties is the symmetric decoder. It fails if a presence
// bit maps to an index beyond the declared field list.
func unpackSparseProperties(data []byte, fields []propertyDescriptor) (map[string]interface{}, []byte, error) {
	values := map[string]interface{}{}
	var pendingDecode []propertyDescriptor
	index := -1
	for {
		mask, rest, err := readUint16(data)
		if err != nil {
			return nil, data, err
		}
		data = rest
		for bit := 15; bit >= 1; bit-- {
			index++
			if mask&(1<<uint(bit)) == 0 {
				continue
			}
			if index >= len(fields) {
				return nil, data, &SyntaxError{Reason: fmt.Sprintf("property bit out of range at index %d", index), Data: data}
			}
			f := fields[index]
			if f.bit {
				values[f.name] = true
				continue
			}
			pendingDecode = append(pendingDecode, f)
		}
		if mask&1 == 0 {
			break
		}
	}
	for _, f := range pendingDecode {
		v, rest, err := f.decode(data)
		if err != nil {
			return nil, data, err
		}
		data = rest
		values[f.name] = v
	}
	return values, data, nil
}

// BasicProperties is the content-property set for class 60 (basic), the
// only content-bearing class in AMQP 0-9-1. Fields are plain values; which
// ones are present is tracked separately in present, so an explicit empty
// value is distinguishable from an absent one, matching the sparse bitmap's
// presence semantics.
type BasicProperties struct {
	ContentType     string
	ContentEncoding string
	Headers         Table
	DeliveryMode    uint8
	Priority        uint8
	CorrelationID   string
	ReplyTo         string
	Expiration      string
	MessageID       string
	Timestamp       time.Time
	Type            string
	UserID          string
	AppID           string
	Reserved        string

	// present tracks which fields were explicitly set, so that a
	// zero-valued field (e.g. Priority 0) round-trips as present or absent
	// exactly as the sender intended. Set via the With* builder methods or
	// left nil to mean "nothing set".
	present map[string]bool
}

func (p *BasicProperties) markPresent(name string) *BasicProperties {
	if p.present == nil {
		p.present = map[string]bool{}
	}
	p.present[name] = true
	return p
}

func (p *BasicProperties) WithContentType(v string) *BasicProperties {
	p.ContentType = v
	return p.markPresent("content_type")
}
func (p *BasicProperties) WithContentEncoding(v string) *BasicProperties {
	p.ContentEncoding = v
	return p.markPresent("content_encoding")
}
func (p *BasicProperties) WithHeaders(v Table) *BasicProperties {
	p.Headers = v
	return p.markPresent("headers")
}
func (p *BasicProperties) WithDeliveryMode(v uint8) *BasicProperties {
	p.DeliveryMode = v
	return p.markPresent("delivery_mode")
}
func (p *BasicProperties) WithPriority(v uint8) *BasicProperties {
	p.Priority = v
	return p.markPresent("priority")
}
func (p *BasicProperties) WithCorrelationID(v string) *BasicProperties {
	p.CorrelationID = v
	return p.markPresent("correlation_id")
}
func (p *BasicProperties) WithReplyTo(v string) *BasicProperties {
	p.ReplyTo = v
	return p.markPresent("reply_to")
}
func (p *BasicProperties) WithExpiration(v string) *BasicProperties {
	p.Expiration = v
	return p.markPresent("expiration")
}
func (p *BasicProperties) WithMessageID(v string) *BasicProperties {
	p.MessageID = v
	return p.markPresent("message_id")
}
func (p *BasicProperties) WithTimestamp(v time.Time) *BasicProperties {
	p.Timestamp = v
	return p.markPresent("timestamp")
}
func (p *BasicProperties) WithType(v string) *BasicProperties {
	p.Type = v
	return p.markPresent("type")
}
func (p *BasicProperties) WithUserID(v string) *BasicProperties {
	p.UserID = v
	return p.markPresent("user_id")
}
func (p *BasicProperties) WithAppID(v string) *BasicProperties {
	p.AppID = v
	return p.markPresent("app_id")
}

func (p *BasicProperties) toValues() map[string]interface{} {
	values := map[string]interface{}{}
	for name := range p.present {
		switch name {
		case "content_type":
			values[name] = p.ContentType
		case "content_encoding":
			values[name] = p.ContentEncoding
		case "headers":
			values[name] = p.Headers
		case "delivery_mode":
			values[name] = p.DeliveryMode
		case "priority":
			values[name] = p.Priority
		case "correlation_id":
			values[name] = p.CorrelationID
		case "reply_to":
			values[name] = p.ReplyTo
		case "expiration":
			values[name] = p.Expiration
		case "message_id":
			values[name] = p.MessageID
		case "timestamp":
			values[name] = p.Timestamp
		case "type":
			values[name] = p.Type
		case "user_id":
			values[name] = p.UserID
		case "app_id":
			values[name] = p.AppID
		case "reserved":
			values[name] = p.Reserved
		}
	}
	return values
}

func (p *BasicProperties) pack() ([]byte, error) {
	var buf bytes.Buffer
	if err := packSparseProperties(&buf, basicPropertyDescriptors, p.toValues()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unpackBasicProperties(data []byte) (*BasicProperties, []byte, error) {
	values, rest, err := unpackSparseProperties(data, basicPropertyDescriptors)
	if err != nil {
		return nil, data, err
	}
	p := &BasicProperties{present: map[string]bool{}}
	for name, v := range values {
		p.present[name] = true
		switch name {
		case "content_type":
			p.ContentType = v.(string)
		case "content_encoding":
			p.ContentEncoding = v.(string)
		case "headers":
			p.Headers, _ = v.(Table)
		case "delivery_mode":
			p.DeliveryMode = v.(uint8)
		case "priority":
			p.Priority = v.(uint8)
		case "correlation_id":
			p.CorrelationID = v.(string)
		case "reply_to":
			p.ReplyTo = v.(string)
		case "expiration":
			p.Expiration = v.(string)
		case "message_id":
			p.MessageID = v.(string)
		case "timestamp":
			p.Timestamp = v.(time.Time)
		case "type":
			p.Type = v.(string)
		case "user_id":
			p.UserID = v.(string)
		case "app_id":
			p.AppID = v.(string)
		case "reserved":
			p.Reserved = v.(string)
		}
	}
	return p, rest, nil
}

// IsSet reports whether name was explicitly present (as opposed to a
// zero-valued Go field that was simply never set).
func (p *BasicProperties) IsSet(name string) bool {
	return p != nil && p.present[name]
}
