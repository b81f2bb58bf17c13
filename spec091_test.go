package amqpwire

import (
	"bytes"
	"testing"
)

// packMethod serialises only a method's argument payload, without the
// class-id/method-id header frame.go puts ahead of it, since that payload is
// what the unpacker returned by lookupMethod consumes.
func packMethod(t *testing.T, m Method) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := m.pack(&buf); err != nil {
		t.Fatalf("pack %T: %v", m, err)
	}
	return buf.Bytes()
}

func TestMethodRegistryRoundTrip(t *testing.T) {
	cases := []Method{
		&ConnectionStart{VersionMajor: 0, VersionMinor: 9, Mechanisms: "PLAIN", Locales: "en_US"},
		&ConnectionTune{ChannelMax: 2047, FrameSizeMax: 131072, HeartbeatDelay: 60},
		&ConnectionOpen{VirtualHost: "/"},
		&ConnectionClose{ReplyCode: 320, ReplyText: "CONNECTION_FORCED", FailedClass: 10, FailedMethod: 40},
		&ChannelOpen{},
		&ChannelClose{ReplyCode: 404, ReplyText: "NOT_FOUND", FailedClass: 50, FailedMethod: 10},
		&ExchangeDeclare{Exchange: "logs", Type: "fanout", Durable: true},
		&QueueDeclare{Queue: "tasks", Durable: true, Arguments: Table{"x-max-length": int64(100)}},
		&QueueDeclareOk{Queue: "tasks", MessageCount: 3, ConsumerCount: 1},
		&QueueBind{Queue: "tasks", Exchange: "logs", RoutingKey: "info"},
		&QueueUnbind{Queue: "tasks", Exchange: "logs", RoutingKey: "info"},
		&QueuePurge{Queue: "tasks"},
		&QueuePurgeOk{MessageCount: 7},
		&QueueDelete{Queue: "tasks", IfUnused: true},
		&QueueDeleteOk{MessageCount: 0},
		&BasicPublish{Exchange: "logs", RoutingKey: "info"},
		&BasicDeliver{ConsumerTag: "ctag-1", DeliveryTag: 42, Exchange: "logs", RoutingKey: "info"},
	}

	for _, want := range cases {
		data := packMethod(t, want)
		unpack, ok := lookupMethod(want.ClassID(), want.MethodID())
		if !ok {
			t.Fatalf("no unpacker registered for class=%d method=%d (%T)", want.ClassID(), want.MethodID(), want)
		}
		got, rest, err := unpack(data)
		if err != nil {
			t.Fatalf("unpack %T: %v", want, err)
		}
		if len(rest) != 0 {
			t.Fatalf("unpack %T left trailing bytes: %v", want, rest)
		}
		if got.ClassID() != want.ClassID() || got.MethodID() != want.MethodID() {
			t.Fatalf("got class=%d/method=%d, want class=%d/method=%d", got.ClassID(), got.MethodID(), want.ClassID(), want.MethodID())
		}
	}
}

func TestQueueClassRegisteredUnderRealWireMethodIDs(t *testing.T) {
	// queue.Declare=10/11, Bind=20/21, Unbind=50/51, Purge=30/31, Delete=40/41
	// per AMQP 0-9-1, not the placeholder numbering a naive reading of a
	// test scenario's failed_method might suggest.
	want := map[uint16]bool{10: true, 11: true, 20: true, 21: true, 50: true, 51: true, 30: true, 31: true, 40: true, 41: true}
	for id := range want {
		if _, ok := lookupMethod(classQueue, id); !ok {
			t.Errorf("expected queue method id %d to be registered", id)
		}
	}
	if _, ok := lookupMethod(classQueue, 99); ok {
		t.Errorf("unexpected method registered at class=queue id=99")
	}
}

func TestConnectionCloseResponsesPointsAtCloseOk(t *testing.T) {
	m := &ConnectionClose{}
	resp := m.Responses()
	if len(resp) != 1 || resp[0] != (methodKey{classConnection, 51}) {
		t.Fatalf("unexpected Responses(): %+v", resp)
	}
}

func TestNewConnectionCloseEncodesFailedMethod(t *testing.T) {
	c := NewConnectionClose(NewAMQPError(404, "NOT_FOUND"), &QueueDeclare{})
	if c.FailedClass != classQueue || c.FailedMethod != 10 {
		t.Fatalf("got failed_class=%d failed_method=%d, want 50/10", c.FailedClass, c.FailedMethod)
	}
	if c.ReplyCode != 404 {
		t.Fatalf("got reply_code=%d, want 404", c.ReplyCode)
	}
}

func TestBasicPublishHasContentButQueueDeclareDoesNot(t *testing.T) {
	if !(&BasicPublish{}).HasContent() {
		t.Fatal("BasicPublish must carry content")
	}
	if (&QueueDeclare{}).HasContent() {
		t.Fatal("QueueDeclare must not carry content")
	}
}
