package packstream

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/Gudahtt/bolt/bolterr"
)

// reader advances a cursor over an in-memory byte slice. Every accessor
// bounds-checks before reading and returns bolterr.Truncated() on underrun.
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) remaining() int { return len(r.buf) - r.pos }

func (r *reader) byte() (byte, error) {
	if r.remaining() < 1 {
		return 0, bolterr.Truncated()
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) peek() (byte, error) {
	if r.remaining() < 1 {
		return 0, bolterr.Truncated()
	}
	return r.buf[r.pos], nil
}

func (r *reader) take(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, bolterr.Truncated()
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) uint8() (uint8, error) {
	b, err := r.byte()
	return b, err
}

func (r *reader) uint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *reader) uint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) int8() (int8, error) {
	b, err := r.uint8()
	return int8(b), err
}

func (r *reader) int16() (int16, error) {
	b, err := r.uint16()
	return int16(b), err
}

func (r *reader) int32() (int32, error) {
	b, err := r.uint32()
	return int32(b), err
}

func (r *reader) int64() (int64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func (r *reader) float64() (float64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

func (r *reader) utf8string(n int) (string, error) {
	b, err := r.take(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", bolterr.InvalidUTF8()
	}
	return string(b), nil
}
