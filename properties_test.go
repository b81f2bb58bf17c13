package amqpwire

import (
	"testing"
	"time"
)

func TestBasicPropertiesRoundTripSparse(t *testing.T) {
	ts := time.Unix(1700000000, 0).UTC()
	p := (&BasicProperties{}).
		WithContentType("application/json").
		WithDeliveryMode(2).
		WithCorrelationID("corr-1").
		WithTimestamp(ts).
		WithHeaders(Table{"x-retry": int64(3)})

	packed, err := p.pack()
	if err != nil {
		t.Fatal(err)
	}

	out, rest, err := unpackBasicProperties(packed)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Fatalf("unexpected trailing bytes: %v", rest)
	}
	if out.ContentType != "application/json" || out.DeliveryMode != 2 || out.CorrelationID != "corr-1" {
		t.Fatalf("got %+v", out)
	}
	if !out.Timestamp.Equal(ts) {
		t.Fatalf("timestamp mismatch: got %v want %v", out.Timestamp, ts)
	}
	if !out.IsSet("content_type") || !out.IsSet("delivery_mode") {
		t.Fatalf("expected fields marked present: %+v", out.present)
	}
	if out.IsSet("reply_to") {
		t.Fatalf("reply_to should not be present")
	}
}

func TestBasicPropertiesEmptyPacksToAllAbsent(t *testing.T) {
	p := &BasicProperties{}
	packed, err := p.pack()
	if err != nil {
		t.Fatal(err)
	}
	out, rest, err := unpackBasicProperties(packed)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Fatalf("unexpected trailing bytes: %v", rest)
	}
	for _, f := range basicPropertyDescriptors {
		if out.IsSet(f.name) {
			t.Fatalf("field %q unexpectedly present", f.name)
		}
	}
}

func TestBasicPropertiesRoundTripEverySettableField(t *testing.T) {
	// The 14 declared fields fit in the 15 presence slots of one bitmap
	// word, so no continuation word is written. Set every field that has a
	// With* builder (all but reserved) and check the round trip.
	p := (&BasicProperties{}).
		WithContentType("t").
		WithContentEncoding("e").
		WithHeaders(Table{}).
		WithDeliveryMode(1).
		WithPriority(9).
		WithCorrelationID("c").
		WithReplyTo("r").
		WithExpiration("60000").
		WithMessageID("m").
		WithTimestamp(time.Unix(0, 0).UTC()).
		WithType("ty").
		WithUserID("u").
		WithAppID("a")

	packed, err := p.pack()
	if err != nil {
		t.Fatal(err)
	}
	out, rest, err := unpackBasicProperties(packed)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Fatalf("unexpected trailing bytes: %v", rest)
	}
	if out.AppID != "a" || out.Type != "ty" || out.UserID != "u" {
		t.Fatalf("got %+v", out)
	}
}
