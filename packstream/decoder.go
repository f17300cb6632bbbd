package packstream

import "github.com/Gudahtt/bolt/bolterr"

// DefaultMaxDepth bounds container/structure recursion in Decode, guarding
// against stack exhaustion from adversarial nesting.
const DefaultMaxDepth = 64

// Decode parses one value from buf and returns it along with the number
// of bytes consumed. It uses DefaultMaxDepth for recursion.
func Decode(buf []byte) (Value, int, error) {
	return DecodeDepth(buf, DefaultMaxDepth)
}

// DecodeDepth is Decode with a caller-supplied recursion cap.
func DecodeDepth(buf []byte, maxDepth int) (Value, int, error) {
	r := newReader(buf)
	v, err := decodeValue(r, maxDepth)
	if err != nil {
		return Value{}, 0, err
	}
	return v, r.pos, nil
}

func decodeValue(r *reader, depth int) (Value, error) {
	marker, err := r.byte()
	if err != nil {
		return Value{}, err
	}
	return decodeMarked(r, marker, depth)
}

func decodeMarked(r *reader, marker byte, depth int) (Value, error) {
	switch {
	case marker == markerNull:
		return Null, nil
	case marker == markerTrue:
		return Bool(true), nil
	case marker == markerFalse:
		return Bool(false), nil
	case marker == markerFloat:
		f, err := r.float64()
		if err != nil {
			return Value{}, err
		}
		return Float(f), nil
	case isTinyInt(marker):
		return Int(int64(int8(marker))), nil
	case marker == markerInt8:
		n, err := r.int8()
		if err != nil {
			return Value{}, err
		}
		return Int(int64(n)), nil
	case marker == markerInt16:
		n, err := r.int16()
		if err != nil {
			return Value{}, err
		}
		return Int(int64(n)), nil
	case marker == markerInt32:
		n, err := r.int32()
		if err != nil {
			return Value{}, err
		}
		return Int(int64(n)), nil
	case marker == markerInt64:
		n, err := r.int64()
		if err != nil {
			return Value{}, err
		}
		return Int(n), nil
	case isTinyString(marker):
		return decodeString(r, int(marker&0x0F))
	case marker == markerString8:
		return decodeLengthPrefixedString(r, 1)
	case marker == markerString16:
		return decodeLengthPrefixedString(r, 2)
	case marker == markerString32:
		return decodeLengthPrefixedString(r, 4)
	case isTinyList(marker):
		return decodeList(r, int(marker&0x0F), depth)
	case marker == markerList8, marker == markerList16, marker == markerList32:
		return decodeLengthPrefixedList(r, marker, depth)
	case isTinyMap(marker):
		return decodeMap(r, int(marker&0x0F), depth)
	case marker == markerMap8, marker == markerMap16, marker == markerMap32:
		return decodeLengthPrefixedMap(r, marker, depth)
	case isTinyStruct(marker):
		return decodeStruct(r, int(marker&0x0F), depth)
	case marker == markerStruct8, marker == markerStruct16:
		return decodeLengthPrefixedStruct(r, marker, depth)
	default:
		return Value{}, bolterr.UnknownMarker(marker)
	}
}

func isTinyInt(m byte) bool {
	// TinyInt spans two ranges of the marker byte: 0x00..0x7F (0..127) and
	// 0xF0..0xFF (-16..-1, two's complement).
	return m <= 0x7F || m >= 0xF0
}

func isTinyString(m byte) bool { return m >= markerTinyStringBase && m <= markerTinyStringBase+15 }
func isTinyList(m byte) bool   { return m >= markerTinyListBase && m <= markerTinyListBase+15 }
func isTinyMap(m byte) bool    { return m >= markerTinyMapBase && m <= markerTinyMapBase+15 }
func isTinyStruct(m byte) bool { return m >= markerTinyStructBase && m <= markerTinyStructBase+15 }

func decodeString(r *reader, n int) (Value, error) {
	s, err := r.utf8string(n)
	if err != nil {
		return Value{}, err
	}
	return String(s), nil
}

func decodeLengthPrefixedString(r *reader, lenBytes int) (Value, error) {
	n, err := readLength(r, lenBytes)
	if err != nil {
		return Value{}, err
	}
	return decodeString(r, n)
}

func decodeList(r *reader, n int, depth int) (Value, error) {
	if depth <= 0 {
		return Value{}, bolterr.DepthExceeded()
	}
	items := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		v, err := decodeValue(r, depth-1)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
	return List(items...), nil
}

func decodeLengthPrefixedList(r *reader, marker byte, depth int) (Value, error) {
	lenBytes := map[byte]int{markerList8: 1, markerList16: 2, markerList32: 4}[marker]
	n, err := readLength(r, lenBytes)
	if err != nil {
		return Value{}, err
	}
	return decodeList(r, n, depth)
}

func decodeMap(r *reader, n int, depth int) (Value, error) {
	if depth <= 0 {
		return Value{}, bolterr.DepthExceeded()
	}
	pairs := make([]Pair, 0, n)
	for i := 0; i < n; i++ {
		key, err := decodeValue(r, depth-1)
		if err != nil {
			return Value{}, err
		}
		val, err := decodeValue(r, depth-1)
		if err != nil {
			return Value{}, err
		}
		pairs = append(pairs, Pair{Key: key.String, Value: val})
	}
	return Map(pairs...), nil
}

func decodeLengthPrefixedMap(r *reader, marker byte, depth int) (Value, error) {
	lenBytes := map[byte]int{markerMap8: 1, markerMap16: 2, markerMap32: 4}[marker]
	n, err := readLength(r, lenBytes)
	if err != nil {
		return Value{}, err
	}
	return decodeMap(r, n, depth)
}

func decodeStruct(r *reader, n int, depth int) (Value, error) {
	if depth <= 0 {
		return Value{}, bolterr.DepthExceeded()
	}
	sig, err := r.byte()
	if err != nil {
		return Value{}, err
	}
	fields := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		v, err := decodeValue(r, depth-1)
		if err != nil {
			return Value{}, err
		}
		fields = append(fields, v)
	}
	return Struct(sig, fields...), nil
}

func decodeLengthPrefixedStruct(r *reader, marker byte, depth int) (Value, error) {
	lenBytes := map[byte]int{markerStruct8: 1, markerStruct16: 2}[marker]
	n, err := readLength(r, lenBytes)
	if err != nil {
		return Value{}, err
	}
	return decodeStruct(r, n, depth)
}

func readLength(r *reader, lenBytes int) (int, error) {
	switch lenBytes {
	case 1:
		n, err := r.uint8()
		return int(n), err
	case 2:
		n, err := r.uint16()
		return int(n), err
	case 4:
		n, err := r.uint32()
		return int(n), err
	default:
		return 0, bolterr.Truncated()
	}
}
