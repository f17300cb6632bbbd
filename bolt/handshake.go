package bolt

import (
	"encoding/binary"
	"io"
	"time"

	"github.com/Gudahtt/bolt/bolterr"
)

// boltMagic is the 4-byte preamble every Bolt connection begins with.
var boltMagic = [4]byte{0x60, 0x60, 0xB0, 0x17}

// supportedVersion is the sole version this v1-only client proposes.
const supportedVersion uint32 = 1

// noVersion is the server's "no compatible version" sentinel.
const noVersion uint32 = 0

// handshakeTimeout bounds the read of the server's version choice.
// Removed (or replaced by the caller's configured read
// timeout) once the handshake completes.
const handshakeTimeout = 5 * time.Second

// deadlineConn is satisfied by net.Conn; kept narrow so tests can supply a
// fake without implementing the whole interface.
type deadlineConn interface {
	io.Reader
	io.Writer
	SetReadDeadline(t time.Time) error
}

// Handshake runs the Bolt v1 version negotiation on a freshly connected
// stream: the 4-byte magic, four 4-byte version proposals (this client's
// sole supported version first, the rest zero-padded), then a bounded read
// of the server's chosen version. The response must equal the advertised
// version exactly; any other non-zero value is rejected as unsupported.
func Handshake(conn deadlineConn) error {
	if err := conn.SetReadDeadline(time.Now().Add(handshakeTimeout)); err != nil {
		return &bolterr.Transport{Op: "set handshake deadline", Err: err}
	}
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	var out [20]byte
	copy(out[:4], boltMagic[:])
	binary.BigEndian.PutUint32(out[4:8], supportedVersion)
	// out[8:20] stays zero: three empty version proposal slots.
	if _, err := conn.Write(out[:]); err != nil {
		return &bolterr.Transport{Op: "write handshake", Err: err}
	}

	var resp [4]byte
	if _, err := io.ReadFull(conn, resp[:]); err != nil {
		return &bolterr.Transport{Op: "read handshake response", Err: err}
	}
	version := binary.BigEndian.Uint32(resp[:])

	switch {
	case version == noVersion:
		return bolterr.NoCompatibleVersion()
	case version != supportedVersion:
		return bolterr.UnsupportedVersion(version)
	}
	return nil
}
