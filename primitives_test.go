package amqpwire

import (
	"bytes"
	"testing"
)

func TestUintRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	writeUint8(&buf, 0xAB)
	writeUint16(&buf, 0xBEEF)
	writeUint32(&buf, 0xDEADBEEF)
	writeUint64(&buf, 0x0102030405060708)

	data := buf.Bytes()

	u8, data, err := readUint8(data)
	if err != nil || u8 != 0xAB {
		t.Fatalf("readUint8 = %x, %v", u8, err)
	}
	u16, data, err := readUint16(data)
	if err != nil || u16 != 0xBEEF {
		t.Fatalf("readUint16 = %x, %v", u16, err)
	}
	u32, data, err := readUint32(data)
	if err != nil || u32 != 0xDEADBEEF {
		t.Fatalf("readUint32 = %x, %v", u32, err)
	}
	u64, _, err := readUint64(data)
	if err != nil || u64 != 0x0102030405060708 {
		t.Fatalf("readUint64 = %x, %v", u64, err)
	}
}

func TestReadIncompleteYieldsErrIncomplete(t *testing.T) {
	if _, _, err := readUint32([]byte{1, 2}); err != errIncomplete {
		t.Fatalf("want errIncomplete, got %v", err)
	}
	if _, _, err := readShortString([]byte{5, 'a', 'b'}); err != errIncomplete {
		t.Fatalf("want errIncomplete, got %v", err)
	}
}

func TestShortStringRejectsOversizeAndNul(t *testing.T) {
	var buf bytes.Buffer
	if err := writeShortString(&buf, string(make([]byte, 256))); err == nil {
		t.Fatalf("want error for 256-byte short string")
	}
	buf.Reset()
	if err := writeShortString(&buf, "a\x00b"); err == nil {
		t.Fatalf("want error for nul byte in short string")
	}
}

func TestShortStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := writeShortString(&buf, "hello"); err != nil {
		t.Fatal(err)
	}
	s, rest, err := readShortString(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if s != "hello" || len(rest) != 0 {
		t.Fatalf("got %q, rest=%v", s, rest)
	}
}

func TestLongStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	body := []byte("a rather long byte string with embedded \x00 nul")
	if err := writeLongString(&buf, body); err != nil {
		t.Fatal(err)
	}
	out, rest, err := readLongString(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, body) || len(rest) != 0 {
		t.Fatalf("got %q", out)
	}
}

func TestBitsRoundTrip(t *testing.T) {
	flags := []bool{true, false, true, true, false, false, false, true, true}
	var buf bytes.Buffer
	writeBits(&buf, flags...)
	if buf.Len() != 2 {
		t.Fatalf("want 2 octets for 9 bits, got %d", buf.Len())
	}
	out, rest, err := readBits(buf.Bytes(), len(flags))
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Fatalf("unexpected trailing bytes: %v", rest)
	}
	for i, want := range flags {
		if out[i] != want {
			t.Fatalf("bit %d: got %v, want %v", i, out[i], want)
		}
	}
}

func TestProtocolHeaderRoundTrip(t *testing.T) {
	packed := DefaultProtocolHeader().pack()
	want := []byte{'A', 'M', 'Q', 'P', 0x00, 0x00, 0x09, 0x01}
	if !bytes.Equal(packed, want) {
		t.Fatalf("got %v, want %v", packed, want)
	}
	h, rest, err := unpackProtocolHeader(packed)
	if err != nil {
		t.Fatal(err)
	}
	if h.ProtoID != 0 || h.ProtoVersion != protocolVersion || len(rest) != 0 {
		t.Fatalf("unexpected header %+v, rest=%v", h, rest)
	}
}

func TestUnpackProtocolHeaderRejectsBadMagic(t *testing.T) {
	_, _, err := unpackProtocolHeader([]byte("XXXP\x00\x00\x09\x01"))
	if err == nil {
		t.Fatal("want error for bad protocol magic")
	}
}
