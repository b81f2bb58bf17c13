package amqpwire

import (
	"bytes"
	"testing"
	"time"
)

func TestTableRoundTrip(t *testing.T) {
	in := Table{
		"str":   "value",
		"flag":  true,
		"i64":   int64(42),
		"f64":   3.5,
		"nested": Table{"inner": "x"},
		"list":  []interface{}{int64(1), "two"},
		"empty": nil,
	}

	var buf bytes.Buffer
	if err := encodeTable(&buf, in); err != nil {
		t.Fatal(err)
	}
	out, rest, err := decodeTable(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Fatalf("unexpected trailing bytes: %v", rest)
	}
	if out["str"] != "value" || out["flag"] != true || out["i64"] != int64(42) {
		t.Fatalf("got %+v", out)
	}
	if out["empty"] != nil {
		t.Fatalf("want nil for void entry, got %v", out["empty"])
	}
	inner, ok := out["nested"].(Table)
	if !ok || inner["inner"] != "x" {
		t.Fatalf("nested table mismatch: %+v", out["nested"])
	}
}

func TestTableIntCoercesToI64(t *testing.T) {
	var buf bytes.Buffer
	if err := encodeTable(&buf, Table{"n": 7}); err != nil {
		t.Fatal(err)
	}
	out, _, err := decodeTable(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := out["n"].(int64); !ok || v != 7 {
		t.Fatalf("want int64(7), got %#v", out["n"])
	}
}

func TestTimestampRoundTripsToSecondPrecision(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := encodeTable(&buf, Table{"ts": now}); err != nil {
		t.Fatal(err)
	}
	out, _, err := decodeTable(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	got, ok := out["ts"].(time.Time)
	if !ok || !got.Equal(now) {
		t.Fatalf("got %v, want %v", got, now)
	}
}

func TestValidateFieldNameRejectsBadNames(t *testing.T) {
	cases := []string{"", "1abc", "has space", "has-dash"}
	for _, name := range cases {
		if err := validateFieldName(name); err == nil {
			t.Errorf("field name %q: want error", name)
		}
	}
	for _, name := range []string{"ok", "$special", "#tag", "under_score", "a1"} {
		if err := validateFieldName(name); err != nil {
			t.Errorf("field name %q: unexpected error %v", name, err)
		}
	}
}

func TestEncodeFieldValueRejectsUnknownType(t *testing.T) {
	var buf bytes.Buffer
	err := encodeFieldValue(&buf, struct{}{})
	if _, ok := err.(*EncodeError); !ok {
		t.Fatalf("want *EncodeError, got %v", err)
	}
}

func TestDecodeTableSurfacesSyntaxErrorOnUnknownTag(t *testing.T) {
	var buf bytes.Buffer
	writeShortString(&buf, "key")
	buf.WriteByte('?') // unrecognised tag
	var outer bytes.Buffer
	writeLongString(&outer, buf.Bytes())

	_, _, err := decodeTable(outer.Bytes())
	se, ok := err.(*SyntaxError)
	if !ok {
		t.Fatalf("want *SyntaxError, got %v", err)
	}
	if se.Code() != 502 || !se.Fatal() {
		t.Fatalf("unexpected SyntaxError shape: %+v", se)
	}
}
