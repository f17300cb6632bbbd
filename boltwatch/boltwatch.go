// Package boltwatch streams boltbroker.Event values to remote observers
// over a plain TCP connection: events are gob-encoded onto the wire in
// publish order, one stream per connected watcher, for as long as the
// watcher stays connected.
package boltwatch

import (
	"encoding/gob"
	"fmt"
	"log"
	"net"
	"sync"

	"github.com/Gudahtt/bolt/boltbroker"
)

// Server accepts watcher connections and streams every Broker event to
// each of them until a write to the connection fails or the broker closes
// the subscription. Stop closes only the listener; streams already running
// are not ended by it.
type Server struct {
	broker *boltbroker.Broker
	logger *log.Logger

	mu      sync.Mutex
	lis     net.Listener
	wg      sync.WaitGroup
	stopped bool
}

// New creates a Server backed by the given Broker. If logger is nil,
// log.Default() is used.
func New(b *boltbroker.Broker, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{broker: b, logger: logger}
}

// Serve accepts connections on lis, streaming broker events to each one.
// It blocks until the listener is closed (by Stop or externally) and
// returns the resulting error, or nil if that closure was expected.
func (s *Server) Serve(lis net.Listener) error {
	s.mu.Lock()
	s.lis = lis
	s.mu.Unlock()

	for {
		conn, err := lis.Accept()
		if err != nil {
			s.mu.Lock()
			stopped := s.stopped
			s.mu.Unlock()
			if stopped {
				s.wg.Wait()
				return nil
			}
			return fmt.Errorf("boltwatch: accept: %w", err)
		}
		s.wg.Add(1)
		go s.stream(conn)
	}
}

// Stop closes the listener, causing Serve to return once in-flight
// streams finish.
func (s *Server) Stop() {
	s.mu.Lock()
	s.stopped = true
	lis := s.lis
	s.mu.Unlock()
	if lis != nil {
		_ = lis.Close()
	}
}

func (s *Server) stream(conn net.Conn) {
	defer s.wg.Done()
	defer func() { _ = conn.Close() }()

	ch, unsub := s.broker.Subscribe()
	defer unsub()

	enc := gob.NewEncoder(conn)
	for ev := range ch {
		if err := enc.Encode(&ev); err != nil {
			s.logger.Printf("boltwatch: encode: %v", err)
			return
		}
	}
}

// Dial connects to a boltwatch Server at addr and returns a channel of
// streamed events, plus a close function the caller must invoke when
// done. The channel is closed when the connection ends.
func Dial(addr string) (<-chan boltbroker.Event, func() error, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("boltwatch: dial: %w", err)
	}

	out := make(chan boltbroker.Event)
	go func() {
		defer close(out)
		dec := gob.NewDecoder(conn)
		for {
			var ev boltbroker.Event
			if err := dec.Decode(&ev); err != nil {
				return
			}
			out <- ev
		}
	}()

	return out, conn.Close, nil
}
