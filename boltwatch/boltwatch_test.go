package boltwatch_test

import (
	"net"
	"testing"
	"time"

	"github.com/Gudahtt/bolt/boltbroker"
	"github.com/Gudahtt/bolt/boltwatch"
)

func TestServeAndDial(t *testing.T) {
	t.Parallel()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	broker := boltbroker.New()
	srv := boltwatch.New(broker, nil)
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	events, closeFn, err := boltwatch.Dial(lis.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = closeFn() }()

	// Give the server a moment to register the subscriber before publishing.
	time.Sleep(50 * time.Millisecond)
	broker.Publish(boltbroker.Event{SessionID: "s1", Statement: "RETURN 1"})

	select {
	case ev := <-events:
		if ev.Statement != "RETURN 1" {
			t.Fatalf("got statement %q, want %q", ev.Statement, "RETURN 1")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for streamed event")
	}
}
