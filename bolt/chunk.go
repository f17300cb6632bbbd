// Package bolt implements the Bolt v1 session layer: chunked framing, the
// version handshake, and the request/response state machine that rides on
// top of the packstream codec.
package bolt

import (
	"encoding/binary"
	"io"

	"github.com/Gudahtt/bolt/bolterr"
)

const maxChunkSize = 0xFFFF

// WriteChunked splits message into <=65535-byte chunks, each preceded by a
// big-endian u16 length header, and terminates the sequence with a single
// zero-length chunk header — exactly one terminator per message.
func WriteChunked(w io.Writer, message []byte) error {
	for len(message) > 0 {
		n := len(message)
		if n > maxChunkSize {
			n = maxChunkSize
		}
		if err := writeChunkHeader(w, uint16(n)); err != nil {
			return err
		}
		if _, err := w.Write(message[:n]); err != nil {
			return &bolterr.Transport{Op: "write chunk body", Err: err}
		}
		message = message[n:]
	}
	return writeChunkHeader(w, 0)
}

func writeChunkHeader(w io.Writer, n uint16) error {
	var hdr [2]byte
	binary.BigEndian.PutUint16(hdr[:], n)
	if _, err := w.Write(hdr[:]); err != nil {
		return &bolterr.Transport{Op: "write chunk header", Err: err}
	}
	return nil
}

// ReadChunked reassembles one message from r by reading length-prefixed
// chunks until a zero-length terminator arrives, concatenating payloads in
// order.
func ReadChunked(r io.Reader) ([]byte, error) {
	var message []byte
	var hdr [2]byte
	for {
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, &bolterr.Transport{Op: "read chunk header", Err: err}
		}
		n := binary.BigEndian.Uint16(hdr[:])
		if n == 0 {
			return message, nil
		}
		chunk := make([]byte, n)
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, &bolterr.Transport{Op: "read chunk body", Err: err}
		}
		message = append(message, chunk...)
	}
}
