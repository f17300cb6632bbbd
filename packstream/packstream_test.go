package packstream_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Gudahtt/bolt/bolterr"
	"github.com/Gudahtt/bolt/packstream"
)

func roundTrip(t *testing.T, v packstream.Value) packstream.Value {
	t.Helper()
	buf, err := packstream.Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, n, err := packstream.Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("Decode consumed %d bytes, want %d", n, len(buf))
	}
	return got
}

func TestRoundTripScalars(t *testing.T) {
	t.Parallel()

	tests := []packstream.Value{
		packstream.Null,
		packstream.Bool(true),
		packstream.Bool(false),
		packstream.Int(0),
		packstream.Int(-16),
		packstream.Int(127),
		packstream.Int(-17),
		packstream.Int(-128),
		packstream.Int(128),
		packstream.Int(32767),
		packstream.Int(-32768),
		packstream.Int(-32769),
		packstream.Int(2147483647),
		packstream.Int(-2147483648),
		packstream.Int(2147483648),
		packstream.Int(-2147483649),
		packstream.Int(9223372036854775807),
		packstream.Int(-9223372036854775808),
		packstream.Float(3.14159),
		packstream.Float(-0.0),
		packstream.String(""),
		packstream.String("hello"),
	}

	for _, v := range tests {
		got := roundTrip(t, v)
		if got.Kind != v.Kind {
			t.Fatalf("Kind mismatch: got %v, want %v", got.Kind, v.Kind)
		}
		switch v.Kind {
		case packstream.KindBool:
			if got.Bool != v.Bool {
				t.Fatalf("Bool mismatch: got %v, want %v", got.Bool, v.Bool)
			}
		case packstream.KindInt:
			if got.Int != v.Int {
				t.Fatalf("Int mismatch: got %d, want %d", got.Int, v.Int)
			}
		case packstream.KindFloat:
			if got.Float != v.Float {
				t.Fatalf("Float mismatch: got %v, want %v", got.Float, v.Float)
			}
		case packstream.KindString:
			if got.String != v.String {
				t.Fatalf("String mismatch: got %q, want %q", got.String, v.String)
			}
		}
	}
}

func TestIntegerMarkerSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		val        int64
		wantMarker byte
	}{
		{0, 0x00},
		{127, 0x7F},  // TinyInt covers positive Int8 range
		{-16, 0xF0},  // TinyInt lower bound, two's complement u8
		{-17, 0xC8},  // first value requiring Int8
		{-128, 0xC8}, // Int8 lower bound
		{128, 0xC9},  // first value requiring Int16 (positive Int8 overlap goes to TinyInt/not reachable beyond 127)
		{32767, 0xC9},
		{-32768, 0xC9},
		{-32769, 0xCA},
		{2147483647, 0xCA},
		{-2147483648, 0xCA},
		{2147483648, 0xCB},
		{-2147483649, 0xCB},
	}

	for _, tt := range tests {
		buf, err := packstream.Encode(packstream.Int(tt.val))
		if err != nil {
			t.Fatalf("Encode(%d): %v", tt.val, err)
		}
		if buf[0] != tt.wantMarker {
			t.Errorf("Encode(%d)[0] = 0x%02X, want 0x%02X", tt.val, buf[0], tt.wantMarker)
		}
	}
}

func TestRoundTripContainers(t *testing.T) {
	t.Parallel()

	list := packstream.List(packstream.Int(1), packstream.String("two"), packstream.Bool(true))
	got := roundTrip(t, list)
	if got.Kind != packstream.KindList || len(got.List) != 3 {
		t.Fatalf("got %+v", got)
	}
	if got.List[0].Int != 1 || got.List[1].String != "two" || got.List[2].Bool != true {
		t.Fatalf("list contents mismatch: %+v", got.List)
	}

	m := packstream.Map(
		packstream.Pair{Key: "a", Value: packstream.Int(1)},
		packstream.Pair{Key: "b", Value: packstream.String("x")},
	)
	gotMap := roundTrip(t, m)
	if gotMap.Kind != packstream.KindMap || len(gotMap.Map) != 2 {
		t.Fatalf("got %+v", gotMap)
	}
	if gotMap.Map[0].Key != "a" || gotMap.Map[1].Key != "b" {
		t.Fatalf("map order not preserved: %+v", gotMap.Map)
	}

	st := packstream.Struct(0x4E, packstream.Int(1), packstream.List(packstream.String("Person")))
	gotSt := roundTrip(t, st)
	if gotSt.Kind != packstream.KindStruct || gotSt.Signature != 0x4E || len(gotSt.Fields) != 2 {
		t.Fatalf("got %+v", gotSt)
	}
}

func TestContainerSizeClasses(t *testing.T) {
	t.Parallel()

	// Tiny (<=15): header byte 0x90|n.
	small := packstream.List(packstream.Int(1), packstream.Int(2))
	buf, err := packstream.Encode(small)
	if err != nil {
		t.Fatal(err)
	}
	if buf[0] != 0x92 {
		t.Fatalf("tiny list marker = 0x%02X, want 0x92", buf[0])
	}

	// 16 items requires List8 (0xD4).
	items := make([]packstream.Value, 16)
	for i := range items {
		items[i] = packstream.Int(0)
	}
	buf, err = packstream.Encode(packstream.List(items...))
	if err != nil {
		t.Fatal(err)
	}
	if buf[0] != 0xD4 {
		t.Fatalf("16-item list marker = 0x%02X, want 0xD4", buf[0])
	}

	// 256 items requires List16 (0xD5).
	items = make([]packstream.Value, 256)
	for i := range items {
		items[i] = packstream.Int(0)
	}
	buf, err = packstream.Encode(packstream.List(items...))
	if err != nil {
		t.Fatal(err)
	}
	if buf[0] != 0xD5 {
		t.Fatalf("256-item list marker = 0x%02X, want 0xD5", buf[0])
	}
}

func TestStructTooLong(t *testing.T) {
	t.Parallel()

	fields := make([]packstream.Value, 70000)
	for i := range fields {
		fields[i] = packstream.Int(0)
	}
	_, err := packstream.Encode(packstream.Struct(0x01, fields...))
	if err == nil {
		t.Fatal("expected error for oversized struct")
	}
	var encErr *bolterr.EncodeError
	if !asEncodeError(err, &encErr) {
		t.Fatalf("got %T, want *bolterr.EncodeError", err)
	}
}

func asEncodeError(err error, target **bolterr.EncodeError) bool {
	e, ok := err.(*bolterr.EncodeError)
	if ok {
		*target = e
	}
	return ok
}

func TestDecodeTruncated(t *testing.T) {
	t.Parallel()

	// A String8 marker promising one byte of length header but nothing follows.
	_, _, err := packstream.Decode([]byte{0xD0})
	if err == nil {
		t.Fatal("expected Truncated error")
	}
	var decErr *bolterr.DecodeError
	if e, ok := err.(*bolterr.DecodeError); ok {
		decErr = e
	} else {
		t.Fatalf("got %T, want *bolterr.DecodeError", err)
	}
	if decErr.Kind != "truncated" {
		t.Fatalf("got Kind %q, want %q", decErr.Kind, "truncated")
	}
}

func TestDecodeUnknownMarker(t *testing.T) {
	t.Parallel()

	// 0xC4-0xC7 are reserved/unused in the v1 marker table.
	_, _, err := packstream.Decode([]byte{0xC5})
	if err == nil {
		t.Fatal("expected UnknownMarker error")
	}
	if !strings.Contains(err.Error(), "marker") {
		t.Fatalf("error %v does not mention marker", err)
	}
}

func TestDecodeDepthExceeded(t *testing.T) {
	t.Parallel()

	// Nest a tiny list inside itself past the configured cap.
	var buf bytes.Buffer
	depth := 4
	for i := 0; i < depth+1; i++ {
		buf.WriteByte(0x91) // tiny list, 1 item
	}
	buf.WriteByte(0xC0) // innermost Null

	_, _, err := packstream.DecodeDepth(buf.Bytes(), depth)
	if err == nil {
		t.Fatal("expected DepthExceeded error")
	}
}

func TestDecodeTruncatedStringPayload(t *testing.T) {
	t.Parallel()

	// String8 header claims 5 bytes, only 2 provided.
	_, _, err := packstream.Decode([]byte{0xD0, 0x05, 0x41, 0x41})
	if err == nil {
		t.Fatal("expected Truncated error")
	}
	decErr, ok := err.(*bolterr.DecodeError)
	if !ok {
		t.Fatalf("got %T, want *bolterr.DecodeError", err)
	}
	if decErr.Kind != "truncated" {
		t.Fatalf("got Kind %q, want %q", decErr.Kind, "truncated")
	}
}

func TestBoundaryEncodings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    packstream.Value
		want []byte
	}{
		{"int 127", packstream.Int(127), []byte{0x7F}},
		{"int -16", packstream.Int(-16), []byte{0xF0}},
		{"int -17", packstream.Int(-17), []byte{0xC8, 0xEF}},
		{"int 128", packstream.Int(128), []byte{0xC9, 0x00, 0x80}},
		{"int -129", packstream.Int(-129), []byte{0xC9, 0xFF, 0x7F}},
		{"int 32768", packstream.Int(32768), []byte{0xCA, 0x00, 0x00, 0x80, 0x00}},
		{"string len 15", packstream.String(strings.Repeat("A", 15)),
			append([]byte{0x8F}, bytes.Repeat([]byte{0x41}, 15)...)},
		{"string len 16", packstream.String(strings.Repeat("A", 16)),
			append([]byte{0xD0, 0x10}, bytes.Repeat([]byte{0x41}, 16)...)},
		{"empty list", packstream.List(), []byte{0x90}},
		{"empty map", packstream.Map(), []byte{0xA0}},
		{"null", packstream.Null, []byte{0xC0}},
		{"true", packstream.Bool(true), []byte{0xC3}},
	}

	for _, tt := range tests {
		got, err := packstream.Encode(tt.v)
		if err != nil {
			t.Fatalf("%s: Encode: %v", tt.name, err)
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("%s: got % X, want % X", tt.name, got, tt.want)
		}
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	t.Parallel()

	// Tiny string of length 1 containing an invalid UTF-8 byte.
	_, _, err := packstream.Decode([]byte{0x81, 0xFF})
	if err == nil {
		t.Fatal("expected InvalidUtf8 error")
	}
}

func TestEncodingDeterminism(t *testing.T) {
	t.Parallel()

	v := packstream.Map(
		packstream.Pair{Key: "z", Value: packstream.Int(1)},
		packstream.Pair{Key: "a", Value: packstream.String("hi")},
	)
	a, err := packstream.Encode(v)
	if err != nil {
		t.Fatal(err)
	}
	b, err := packstream.Encode(v)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("encoding the same value twice produced different bytes")
	}
}
