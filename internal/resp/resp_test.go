package resp

import (
	"bytes"
	"testing"
)

func sampleFrames() []Frame {
	return []Frame{
		SimpleString("PONG"),
		ErrorReply("ERR command `FOO` not found"),
		Int(42),
		Int(-17),
		Bulk([]byte("hello")),
		Bulk([]byte("")),
		Bulk([]byte("has\r\nembedded crlf")),
		NullBulk(),
		ArrayOf([]Frame{BulkFromString("a"), BulkFromString("b")}),
		ArrayOf([]Frame{Int(1), Int(2), ArrayOf([]Frame{BulkFromString("nested")})}),
		NullArr(),
		Null(),
	}
}

func TestRoundTrip(t *testing.T) {
	for _, f := range sampleFrames() {
		wire := f.Encode()
		got, n, err := Parse(wire)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", wire, err)
		}
		if n != len(wire) {
			t.Fatalf("Parse(%q) consumed %d bytes, want %d", wire, n, len(wire))
		}
		if !got.Equal(f) {
			t.Fatalf("Parse(%q) = %+v, want %+v", wire, got, f)
		}
	}
}

func TestConcatenationPrefix(t *testing.T) {
	trailer := []byte("*1\r\n$4\r\nPING\r\n")
	for _, f := range sampleFrames() {
		wire := f.Encode()
		buf := append(append([]byte(nil), wire...), trailer...)
		got, n, err := Parse(buf)
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if n != len(wire) {
			t.Fatalf("consumed %d bytes, want %d (frame %+v)", n, len(wire), f)
		}
		if !got.Equal(f) {
			t.Fatalf("got %+v, want %+v", got, f)
		}
	}
}

func TestIncompleteInputsDoNotError(t *testing.T) {
	cases := [][]byte{
		{},
		[]byte("+PONG"),
		[]byte("$5\r\nhel"),
		[]byte("*2\r\n$1\r\na\r\n"),
		[]byte(":4"),
	}
	for _, c := range cases {
		_, n, err := Parse(c)
		if err != nil {
			t.Fatalf("Parse(%q) returned error %v, want incomplete", c, err)
		}
		if n != 0 {
			t.Fatalf("Parse(%q) consumed %d bytes, want 0 (incomplete)", c, n)
		}
	}
}

func TestMalformedInputsError(t *testing.T) {
	cases := [][]byte{
		[]byte("x garbage\r\n"),
		[]byte(":notanumber\r\n"),
		[]byte("$abc\r\nhello\r\n"),
		[]byte("$5\r\nhelloXX"),
	}
	for _, c := range cases {
		_, n, err := Parse(c)
		if err == nil {
			t.Fatalf("Parse(%q) returned nil error, want malformed", c)
		}
		if n != 0 {
			t.Fatalf("Parse(%q) consumed %d bytes on error, want 0", c, n)
		}
	}
}

func TestByteAtATimeFeeding(t *testing.T) {
	for _, f := range sampleFrames() {
		wire := f.Encode()
		var buf []byte
		var got Frame
		var n int
		for i := 0; i < len(wire); i++ {
			buf = append(buf, wire[i])
			var err error
			got, n, err = Parse(buf)
			if err != nil {
				t.Fatalf("Parse errored mid-feed for %+v: %v", f, err)
			}
			if n > 0 {
				break
			}
		}
		if n != len(wire) {
			t.Fatalf("byte-at-a-time: consumed %d, want %d for %+v", n, len(wire), f)
		}
		if !got.Equal(f) {
			t.Fatalf("byte-at-a-time: got %+v, want %+v", got, f)
		}
	}
}

func TestLiteralWireForms(t *testing.T) {
	cases := []struct {
		frame Frame
		wire  string
	}{
		{SimpleString("PONG"), "+PONG\r\n"},
		{Int(42), ":42\r\n"},
		{Bulk([]byte("hello")), "$5\r\nhello\r\n"},
		{Bulk(nil), "$0\r\n\r\n"},
		{NullBulk(), "$-1\r\n"},
		{NullArr(), "*0\r\n"},
		{Null(), "_\r\n"},
	}
	for _, c := range cases {
		if got := c.frame.Encode(); !bytes.Equal(got, []byte(c.wire)) {
			t.Errorf("Encode(%+v) = %q, want %q", c.frame, got, c.wire)
		}
	}
}

func TestAsBulkStringNormalizesIntegers(t *testing.T) {
	got := Int(42).AsBulkString()
	if got.Kind != KindBulkString || string(got.Str) != "42" {
		t.Fatalf("AsBulkString(Int(42)) = %+v, want BulkString(\"42\")", got)
	}
}
