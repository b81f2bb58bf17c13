package amqpwire

import (
	"bytes"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	f := Frame{Type: frameMethod, Channel: 7, Payload: []byte{0x00, 0x0A, 0x00, 0x28}}
	packed := f.pack()

	got, rest, err := unpackFrame(packed)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Fatalf("unexpected trailing bytes: %v", rest)
	}
	if got.Type != f.Type || got.Channel != f.Channel || !bytes.Equal(got.Payload, f.Payload) {
		t.Fatalf("got %+v, want %+v", got, f)
	}
}

func TestUnpackFrameYieldsIncompleteOnShortInput(t *testing.T) {
	f := Frame{Type: frameMethod, Channel: 1, Payload: []byte("hello")}
	packed := f.pack()

	if _, _, err := unpackFrame(packed[:len(packed)-1]); err != errIncomplete {
		t.Fatalf("want errIncomplete for truncated payload, got %v", err)
	}
	if _, _, err := unpackFrame(packed[:3]); err != errIncomplete {
		t.Fatalf("want errIncomplete for truncated header, got %v", err)
	}
}

func TestUnpackFrameRejectsBadFrameEnd(t *testing.T) {
	f := Frame{Type: frameMethod, Channel: 1, Payload: []byte("x")}
	packed := f.pack()
	packed[len(packed)-1] = 0x00 // corrupt the frame-end octet

	_, _, err := unpackFrame(packed)
	fe, ok := err.(*FrameError)
	if !ok {
		t.Fatalf("want *FrameError, got %v", err)
	}
	if fe.Code() != 501 || !fe.Fatal() {
		t.Fatalf("unexpected FrameError shape: %+v", fe)
	}
}

func TestPackUnpackMethodFrameRoundTrip(t *testing.T) {
	want := &QueueDeclare{Queue: "jobs", Durable: true}
	f, err := packMethodFrame(3, want)
	if err != nil {
		t.Fatal(err)
	}
	if f.Type != frameMethod || f.Channel != 3 {
		t.Fatalf("unexpected frame envelope: %+v", f)
	}

	got, err := unpackMethodFrame(f.Payload)
	if err != nil {
		t.Fatal(err)
	}
	gq, ok := got.(*QueueDeclare)
	if !ok {
		t.Fatalf("want *QueueDeclare, got %T", got)
	}
	if gq.Queue != want.Queue || gq.Durable != want.Durable {
		t.Fatalf("got %+v, want %+v", gq, want)
	}
}

func TestUnpackMethodFrameRejectsUnknownMethod(t *testing.T) {
	var buf bytes.Buffer
	writeUint16(&buf, 9999) // bogus class id
	writeUint16(&buf, 9999) // bogus method id

	_, err := unpackMethodFrame(buf.Bytes())
	ae, ok := err.(AMQPError)
	if !ok {
		t.Fatalf("want AMQPError, got %v", err)
	}
	if ae.Code() != 503 {
		t.Fatalf("want code 503 (COMMAND-INVALID), got %d", ae.Code())
	}
}

func TestContentHeaderRoundTrip(t *testing.T) {
	props := (&BasicProperties{}).WithContentType("text/plain").WithDeliveryMode(2)
	h := ContentHeader{ClassID: classBasic, BodySize: 11, Properties: props}

	packed, err := packContentHeader(h)
	if err != nil {
		t.Fatal(err)
	}
	got, err := unpackContentHeader(packed)
	if err != nil {
		t.Fatal(err)
	}
	if got.ClassID != h.ClassID || got.BodySize != h.BodySize {
		t.Fatalf("got %+v, want %+v", got, h)
	}
	if got.Properties.ContentType != "text/plain" || got.Properties.DeliveryMode != 2 {
		t.Fatalf("properties not preserved: %+v", got.Properties)
	}
}

func TestPackHeartbeatFrameIsChannelZeroWithNoPayload(t *testing.T) {
	f := packHeartbeatFrame()
	if f.Type != frameHeartbeat || f.Channel != 0 || len(f.Payload) != 0 {
		t.Fatalf("unexpected heartbeat frame: %+v", f)
	}
}

func TestPackBodyFrameCarriesRawChunk(t *testing.T) {
	chunk := []byte("payload chunk")
	f := packBodyFrame(4, chunk)
	if f.Type != frameBody || f.Channel != 4 || !bytes.Equal(f.Payload, chunk) {
		t.Fatalf("unexpected body frame: %+v", f)
	}
}
