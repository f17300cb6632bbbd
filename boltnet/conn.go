// Package boltnet owns the TCP socket a Bolt session rides on: dialing,
// read timeouts, and mapping OS-level errors into bolterr.Transport.
package boltnet

import (
	"errors"
	"io"
	"log"
	"net"
	"strings"
	"time"

	"github.com/Gudahtt/bolt/bolt"
	"github.com/Gudahtt/bolt/bolterr"
	"github.com/Gudahtt/bolt/packstream"
)

// Conn wraps a net.Conn with Bolt message framing: encode+chunk on send,
// dechunk+decode on receive. It satisfies the transport interface bolt.Session
// depends on.
type Conn struct {
	nc net.Conn

	// ReadTimeout, when non-zero, is applied before every ReceiveMessage
	// call. There is no timeout by default after the handshake.
	ReadTimeout time.Duration
}

// Dial opens a TCP connection to addr and runs the Bolt v1 handshake.
// On success the returned *Conn is ready for Init.
func Dial(addr string) (*Conn, error) {
	nc, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, &bolterr.Transport{Op: "dial", Err: err}
	}
	c := &Conn{nc: nc}
	if err := bolt.Handshake(nc); err != nil {
		_ = nc.Close()
		return nil, err
	}
	return c, nil
}

// SendMessage encodes v with packstream and writes it as chunked frames.
func (c *Conn) SendMessage(v packstream.Value) error {
	buf, err := packstream.Encode(v)
	if err != nil {
		return err
	}
	if err := bolt.WriteChunked(c.nc, buf); err != nil {
		return err
	}
	return nil
}

// ReceiveMessage reassembles one chunked message and decodes it.
func (c *Conn) ReceiveMessage() (packstream.Value, error) {
	if c.ReadTimeout > 0 {
		if err := c.nc.SetReadDeadline(time.Now().Add(c.ReadTimeout)); err != nil {
			return packstream.Value{}, &bolterr.Transport{Op: "set read deadline", Err: err}
		}
	}
	buf, err := bolt.ReadChunked(c.nc)
	if err != nil {
		return packstream.Value{}, err
	}
	v, _, err := packstream.Decode(buf)
	if err != nil {
		return packstream.Value{}, err
	}
	return v, nil
}

// Connect dials addr, runs the handshake, and sends Init, returning a
// ready-to-use *bolt.Session.
func Connect(addr, clientName string, authToken packstream.Value, logger *log.Logger) (*bolt.Session, error) {
	conn, err := Dial(addr)
	if err != nil {
		return nil, err
	}
	session, err := bolt.Connect(conn, clientName, authToken, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return session, nil
}

// Close closes the underlying socket. Idempotent: closing twice returns
// nil rather than surfacing the OS's "already closed" error.
func (c *Conn) Close() error {
	err := c.nc.Close()
	if err == nil || isClosedErr(err) {
		return nil
	}
	return &bolterr.Transport{Op: "close", Err: err}
}

// isClosedErr reports whether err indicates the connection was already
// shut down.
func isClosedErr(err error) bool {
	if errors.Is(err, io.EOF) {
		return true
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return netErr.Err.Error() == "use of closed network connection"
	}
	return strings.Contains(err.Error(), "closed")
}
