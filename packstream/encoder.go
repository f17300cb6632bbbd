package packstream

import "github.com/Gudahtt/bolt/bolterr"

// Encode serializes v to its canonical PackStream byte representation.
// Identical input in identical insertion order always produces
// byte-identical output.
func Encode(v Value) ([]byte, error) {
	w := newWriter()
	if err := encodeValue(w, v); err != nil {
		return nil, err
	}
	return w.buf, nil
}

func encodeValue(w *writer, v Value) error {
	switch v.Kind {
	case KindNull:
		w.byte(markerNull)
		return nil
	case KindBool:
		if v.Bool {
			w.byte(markerTrue)
		} else {
			w.byte(markerFalse)
		}
		return nil
	case KindInt:
		return encodeInt(w, v.Int)
	case KindFloat:
		w.byte(markerFloat)
		w.float64(v.Float)
		return nil
	case KindString:
		return encodeString(w, v.String)
	case KindList:
		return encodeList(w, v.List)
	case KindMap:
		return encodeMap(w, v.Map)
	case KindStruct:
		return encodeStruct(w, v.Signature, v.Fields)
	default:
		return &bolterr.EncodeError{Kind: "unknown value kind"}
	}
}

// encodeInt picks the narrowest marker whose range covers val: TinyInt
// first (it covers the positive
// Int8 range too, so Int8 is only ever used for the negative band that
// TinyInt doesn't reach).
func encodeInt(w *writer, val int64) error {
	switch {
	case val >= tinyIntMin && val <= tinyIntMax:
		w.int8(int8(val))
	case val >= int8Min && val <= int8Max:
		w.byte(markerInt8)
		w.int8(int8(val))
	case val >= int16Min && val <= int16Max:
		w.byte(markerInt16)
		w.int16(int16(val))
	case val >= int32Min && val <= int32Max:
		w.byte(markerInt32)
		w.int32(int32(val))
	default:
		w.byte(markerInt64)
		w.int64(val)
	}
	return nil
}

// lengthClass picks the marker for a container's size field among
// tiny/8/16/32-bit classes, so the four-way match lives in one place
// instead of at every call site.
type lengthClass struct {
	tinyBase byte
	marker8  byte
	marker16 byte
	marker32 byte // 0 if the kind has no 32-bit class (Struct)
	maxTiny  int
	errKind  string
}

func (c lengthClass) writeHeader(w *writer, n int) error {
	switch {
	case n <= c.maxTiny:
		w.byte(c.tinyBase | byte(n))
	case n <= 0xFF:
		w.byte(c.marker8)
		w.uint8(uint8(n))
	case n <= 0xFFFF:
		w.byte(c.marker16)
		w.uint16(uint16(n))
	case c.marker32 != 0 && int64(n) <= 0xFFFFFFFF:
		w.byte(c.marker32)
		w.uint32(uint32(n))
	default:
		return &bolterr.EncodeError{Kind: c.errKind, Size: n}
	}
	return nil
}

var (
	stringClass = lengthClass{markerTinyStringBase, markerString8, markerString16, markerString32, 15, "string too long"}
	listClass   = lengthClass{markerTinyListBase, markerList8, markerList16, markerList32, 15, "list too long"}
	mapClass    = lengthClass{markerTinyMapBase, markerMap8, markerMap16, markerMap32, 15, "map too long"}
	structClass = lengthClass{markerTinyStructBase, markerStruct8, markerStruct16, 0, 15, "struct too long"}
)

func encodeString(w *writer, s string) error {
	if err := stringClass.writeHeader(w, len(s)); err != nil {
		return err
	}
	w.string(s)
	return nil
}

func encodeList(w *writer, items []Value) error {
	if err := listClass.writeHeader(w, len(items)); err != nil {
		return err
	}
	for _, item := range items {
		if err := encodeValue(w, item); err != nil {
			return err
		}
	}
	return nil
}

func encodeMap(w *writer, pairs []Pair) error {
	if err := mapClass.writeHeader(w, len(pairs)); err != nil {
		return err
	}
	for _, p := range pairs {
		if err := encodeString(w, p.Key); err != nil {
			return err
		}
		if err := encodeValue(w, p.Value); err != nil {
			return err
		}
	}
	return nil
}

func encodeStruct(w *writer, signature byte, fields []Value) error {
	if err := structClass.writeHeader(w, len(fields)); err != nil {
		return err
	}
	w.byte(signature)
	for _, f := range fields {
		if err := encodeValue(w, f); err != nil {
			return err
		}
	}
	return nil
}
