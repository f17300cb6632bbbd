package bolt

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Gudahtt/bolt/bolterr"
	"github.com/Gudahtt/bolt/packstream"
)

// State is one of the seven states a Session moves through.
type State int

const (
	Disconnected State = iota
	Connected
	Ready
	Streaming
	Failed
	Interrupted
	Defunct
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connected:
		return "Connected"
	case Ready:
		return "Ready"
	case Streaming:
		return "Streaming"
	case Failed:
		return "Failed"
	case Interrupted:
		return "Interrupted"
	case Defunct:
		return "Defunct"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Record is one server-sent result row: the decoded entries of a Bolt
// Record message's single list field.
type Record struct {
	Fields []packstream.Value
}

// Summary is the terminal metadata of a successfully completed request
// (a Success message's map field).
type Summary struct {
	Metadata packstream.Value

	// QueryID correlates a PullAll/DiscardAll Summary back to the Run
	// that produced it — a UUID minted per Run.
	QueryID string
}

// transport is the narrow surface Session needs from the wire: chunked
// message exchange. boltnet.Conn satisfies it; tests supply fakes.
type transport interface {
	SendMessage(v packstream.Value) error
	ReceiveMessage() (packstream.Value, error)
	Close() error
}

// pendingKind distinguishes the requests a caller may enqueue.
type pendingKind int

const (
	pendingInit pendingKind = iota
	pendingRun
	pendingPullAll
	pendingDiscardAll
	pendingAckFailure
	pendingReset
)

// pendingRequest is one FIFO entry: the kind of request sent and where its
// eventual response(s) should land.
type pendingRequest struct {
	kind    pendingKind
	records *[]Record // PullAll accumulates records here before the terminal response
	queryID string    // set for pendingRun/pendingPullAll/pendingDiscardAll
}

// Session owns one exclusive TCP connection's Bolt conversation: state and
// the outbound FIFO. Decoded results are returned to the caller of each
// request, not kept on the Session.
//
// Session is single-owner, single-threaded with respect to its connection:
// callers must not invoke Run/PullAll/Reset concurrently on the same
// Session.
type Session struct {
	ID        string
	conn      transport
	Logger    *log.Logger
	StartedAt time.Time

	mu      sync.Mutex
	state   State
	pending []pendingRequest

	// lastStatements records every statement submitted via Run, for
	// callers like detect.Detector that watch for repeated queries.
	lastStatements []string

	// currentQueryID is the UUID minted by the most recent Run, carried
	// forward onto the PullAll/DiscardAll that drains it.
	currentQueryID string
}

// newSession wraps an already-handshaken transport in Connected state.
func newSession(conn transport, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		ID:        uuid.NewString(),
		conn:      conn,
		Logger:    logger,
		StartedAt: time.Now(),
		state:     Connected,
	}
}

// Connect wraps an already-handshaken transport, sends Init, and returns
// a Session in Ready state. The transport parameter is satisfied by
// *boltnet.Conn; boltnet.Connect is the usual entry point for real TCP
// connections, calling this after Dial+Handshake complete.
func Connect(conn transport, clientName string, authToken packstream.Value, logger *log.Logger) (*Session, error) {
	s := newSession(conn, logger)
	if err := s.init(clientName, authToken); err != nil {
		return nil, err
	}
	return s, nil
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Statements returns every Cypher statement submitted so far via Run, in
// submission order.
func (s *Session) Statements() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lastStatements))
	copy(out, s.lastStatements)
	return out
}

// init sends the Init message and waits for Ready.
func (s *Session) init(clientName string, authToken packstream.Value) error {
	s.mu.Lock()
	if s.state != Connected {
		s.mu.Unlock()
		return &bolterr.ProtocolError{State: s.state.String(), Message: "Init"}
	}
	s.pending = append(s.pending, pendingRequest{kind: pendingInit})
	s.mu.Unlock()

	if err := s.send(initMessage(clientName, authToken)); err != nil {
		return err
	}
	_, err := s.awaitOne()
	return err
}

// Run sends a Run message carrying statement and parameters. It must be
// followed by PullAll or DiscardAll to drain the response, matching the
// Bolt v1 normal query pattern.
func (s *Session) Run(statement string, parameters packstream.Value) error {
	s.mu.Lock()
	if s.state == Failed || s.state == Interrupted {
		s.mu.Unlock()
		return &bolterr.ServerFailure{Code: "", Message: "session is " + s.state.String() + "; call AckFailure or Reset first"}
	}
	if s.state != Ready {
		s.mu.Unlock()
		return &bolterr.ProtocolError{State: s.state.String(), Message: "Run"}
	}
	queryID := uuid.NewString()
	s.lastStatements = append(s.lastStatements, statement)
	s.currentQueryID = queryID
	s.pending = append(s.pending, pendingRequest{kind: pendingRun, queryID: queryID})
	s.mu.Unlock()

	if err := s.send(runMessage(statement, parameters)); err != nil {
		return err
	}
	_, err := s.awaitOne()
	return err
}

// PullAll streams the current result set: zero or more Records, then a
// terminal Success (with summary metadata) or Failure.
func (s *Session) PullAll() ([]Record, Summary, error) {
	s.mu.Lock()
	if s.state != Streaming {
		s.mu.Unlock()
		return nil, Summary{}, &bolterr.ProtocolError{State: s.state.String(), Message: "PullAll"}
	}
	var records []Record
	s.pending = append(s.pending, pendingRequest{kind: pendingPullAll, records: &records, queryID: s.currentQueryID})
	s.mu.Unlock()

	if err := s.send(pullAllMessage()); err != nil {
		return nil, Summary{}, err
	}
	summary, err := s.awaitOne()
	if err != nil {
		return nil, Summary{}, err
	}
	return records, summary, nil
}

// DiscardAll discards the current result set without buffering records.
func (s *Session) DiscardAll() (Summary, error) {
	s.mu.Lock()
	if s.state != Streaming {
		s.mu.Unlock()
		return Summary{}, &bolterr.ProtocolError{State: s.state.String(), Message: "DiscardAll"}
	}
	s.pending = append(s.pending, pendingRequest{kind: pendingDiscardAll, queryID: s.currentQueryID})
	s.mu.Unlock()

	if err := s.send(discardAllMessage()); err != nil {
		return Summary{}, err
	}
	return s.awaitOne()
}

// AckFailure acknowledges a server Failure, returning the session to
// Ready. It is legal from both Failed and Interrupted.
func (s *Session) AckFailure() error {
	s.mu.Lock()
	if s.state != Failed && s.state != Interrupted {
		s.mu.Unlock()
		return &bolterr.ProtocolError{State: s.state.String(), Message: "AckFailure"}
	}
	s.pending = append(s.pending, pendingRequest{kind: pendingAckFailure})
	s.mu.Unlock()

	if err := s.send(ackFailureMessage()); err != nil {
		return err
	}
	_, err := s.awaitOne()
	return err
}

// Reset aborts a Failed/Interrupted session back to Ready without
// tearing down the TCP connection.
func (s *Session) Reset() error {
	s.mu.Lock()
	if s.state != Failed && s.state != Interrupted && s.state != Ready {
		s.mu.Unlock()
		return &bolterr.ProtocolError{State: s.state.String(), Message: "Reset"}
	}
	s.pending = append(s.pending, pendingRequest{kind: pendingReset})
	s.mu.Unlock()

	if err := s.send(resetMessage()); err != nil {
		return err
	}
	_, err := s.awaitOne()
	return err
}

// Close closes the underlying TCP connection. Idempotent.
func (s *Session) Close() error {
	return s.conn.Close()
}

func (s *Session) send(v packstream.Value) error {
	if err := s.conn.SendMessage(v); err != nil {
		s.fail(err)
		return err
	}
	return nil
}

// awaitOne drives the response loop for the request at the front of the
// FIFO: it consumes Records (buffering them if the pending entry wants
// that) until a terminal Success/Failure/Ignored arrives, then applies the
// resulting state transition.
func (s *Session) awaitOne() (Summary, error) {
	for {
		v, err := s.conn.ReceiveMessage()
		if err != nil {
			s.fail(err)
			return Summary{}, err
		}

		s.mu.Lock()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return Summary{}, s.protocolFailure("unsolicited response")
		}
		cur := s.pending[0]
		s.mu.Unlock()

		kind := classify(v)
		switch kind {
		case msgRecord:
			// Records are only legal while draining a PullAll/DiscardAll.
			if cur.kind != pendingPullAll && cur.kind != pendingDiscardAll {
				return Summary{}, s.protocolFailure("Record")
			}
			if len(v.Fields) != 1 || v.Fields[0].Kind != packstream.KindList {
				return Summary{}, s.protocolFailure("malformed Record")
			}
			rec := Record{Fields: v.Fields[0].List}
			if cur.records != nil {
				*cur.records = append(*cur.records, rec)
			}
			continue // stay in Streaming; keep waiting for the terminal response
		case msgSuccess:
			if len(v.Fields) != 1 || v.Fields[0].Kind != packstream.KindMap {
				return Summary{}, s.protocolFailure("malformed Success")
			}
			s.popPending()
			s.transition(cur.kind, true)
			return Summary{Metadata: v.Fields[0], QueryID: cur.queryID}, nil
		case msgFailure:
			if len(v.Fields) != 1 || v.Fields[0].Kind != packstream.KindMap {
				return Summary{}, s.protocolFailure("malformed Failure")
			}
			s.popPending()
			s.transition(cur.kind, false)
			code, _ := v.Fields[0].MapGet("code")
			message, _ := v.Fields[0].MapGet("message")
			return Summary{}, &bolterr.ServerFailure{Code: code.String, Message: message.String}
		case msgIgnored:
			s.popPending()
			s.mu.Lock()
			s.state = Interrupted
			s.mu.Unlock()
			return Summary{}, &bolterr.IgnoredError{}
		default:
			return Summary{}, s.protocolFailure("unrecognized message")
		}
	}
}

// protocolFailure builds a ProtocolError for the current state and marks
// the session Defunct; unexpected or malformed messages are always fatal.
func (s *Session) protocolFailure(message string) *bolterr.ProtocolError {
	s.mu.Lock()
	state := s.state.String()
	s.mu.Unlock()
	protoErr := &bolterr.ProtocolError{State: state, Message: message}
	s.fail(protoErr)
	return protoErr
}

func (s *Session) popPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) > 0 {
		s.pending = s.pending[1:]
	}
}

// transition applies the state change for the request kind that just
// received a terminal response.
func (s *Session) transition(kind pendingKind, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !ok {
		switch kind {
		case pendingInit, pendingAckFailure, pendingReset:
			s.state = Defunct
		default:
			s.state = Failed
		}
		return
	}

	switch kind {
	case pendingInit:
		s.state = Ready
	case pendingRun:
		s.state = Streaming
	case pendingPullAll, pendingDiscardAll:
		s.state = Ready
	case pendingAckFailure, pendingReset:
		s.state = Ready
	}
}

// fail transitions the session to Defunct and closes the connection; it
// is invoked on any transport/decode/protocol error, which are always
// fatal.
func (s *Session) fail(err error) {
	s.mu.Lock()
	s.state = Defunct
	s.mu.Unlock()
	s.Logger.Printf("bolt: session %s: fatal: %v", s.ID, err)
	_ = s.conn.Close()
}
