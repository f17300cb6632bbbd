// Command bolt-cli is a client for the Bolt v1 library: run a single
// statement and print the results, or read statements from stdin while
// serving the resulting events to boltwatch watchers.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/Gudahtt/bolt/auth"
	"github.com/Gudahtt/bolt/bolt"
	"github.com/Gudahtt/bolt/boltbroker"
	"github.com/Gudahtt/bolt/bolterr"
	"github.com/Gudahtt/bolt/boltnet"
	"github.com/Gudahtt/bolt/boltstat"
	"github.com/Gudahtt/bolt/boltwatch"
	"github.com/Gudahtt/bolt/clipboard"
	"github.com/Gudahtt/bolt/detect"
	"github.com/Gudahtt/bolt/explain"
	"github.com/Gudahtt/bolt/highlight"
	"github.com/Gudahtt/bolt/packstream"
	"github.com/Gudahtt/bolt/query"
)

var version = "dev"

// Exit codes: 0 success, 1 protocol/transport error, 2 usage error.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	fs := flag.NewFlagSet("bolt-cli", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "bolt-cli — run Cypher statements over Bolt v1\n\nUsage:\n  bolt-cli [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	server := fs.String("server", "localhost:7687", "Bolt server address")
	username := fs.String("username", "", "basic auth username")
	password := fs.String("password", "", "basic auth password")
	statement := fs.String("statement", "", "Cypher statement to run (required unless -watch or -serve)")
	watchAddr := fs.String("watch", "", "boltwatch server address to tail instead of running a statement")
	serveAddr := fs.String("serve", "", "serve boltwatch events on this address while reading statements from stdin")
	clip := fs.Bool("clipboard", false, "copy the rendered statement to the clipboard before running it")
	explainPlan := fs.Bool("explain", false, "print the server's EXPLAIN plan instead of executing the statement")
	profilePlan := fs.Bool("profile", false, "execute the statement under PROFILE and print the plan with db hits")
	width := fs.Int("width", 0, "clamp plan output to this many columns (0 = no clamp)")
	showVersion := fs.Bool("version", false, "show version and exit")

	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(exitUsage)
	}

	if *showVersion {
		fmt.Printf("bolt-cli %s\n", version)
		return
	}

	if *watchAddr != "" {
		if err := watch(*watchAddr); err != nil {
			fmt.Fprintln(os.Stderr, friendlyError(err, errPanelWidth))
			os.Exit(exitError)
		}
		return
	}

	if *serveAddr != "" {
		if err := serve(*server, *username, *password, *serveAddr); err != nil {
			fmt.Fprintln(os.Stderr, friendlyError(err, errPanelWidth))
			os.Exit(exitError)
		}
		return
	}

	if *statement == "" {
		fs.Usage()
		os.Exit(exitUsage)
	}
	if *explainPlan && *profilePlan {
		fmt.Fprintln(os.Stderr, "bolt-cli: -explain and -profile are mutually exclusive")
		os.Exit(exitUsage)
	}

	if *clip {
		if err := clipboard.Copy(context.Background(), *statement); err != nil {
			log.Printf("bolt-cli: clipboard: %v", err)
		}
	}

	if err := run(*server, *username, *password, *statement, *explainPlan, *profilePlan, *width); err != nil {
		fmt.Fprintln(os.Stderr, friendlyError(err, errPanelWidth))
		os.Exit(exitError)
	}
}

func connect(server, username, password string) (*bolt.Session, error) {
	var token packstream.Value
	if username != "" {
		token = auth.Basic(username, password)
	} else {
		token = auth.None()
	}

	session, err := boltnet.Connect(server, "bolt-cli/"+version, token, log.Default())
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return session, nil
}

func run(server, username, password, statement string, explainPlan, profilePlan bool, width int) error {
	session, err := connect(server, username, password)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	if explainPlan || profilePlan {
		mode := explain.Explain
		if profilePlan {
			mode = explain.Profile
		}
		return showPlan(session, mode, statement, width)
	}

	stats := boltstat.New()
	if err := runStatement(session, nil, stats, statement); err != nil {
		return err
	}
	printStats(stats)
	return nil
}

// runStatement runs one statement over the session, prints the records
// and summary banner, and records the resulting event. When broker is
// non-nil the event is also published to its subscribers.
func runStatement(session *bolt.Session, broker *boltbroker.Broker, stats *boltstat.Stats, statement string) error {
	fmt.Println(highlight.Cypher(statement))

	start := time.Now()
	if err := session.Run(statement, packstream.Map()); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	records, summary, err := session.PullAll()
	if err != nil {
		return fmt.Errorf("pull: %w", err)
	}

	printRecords(records)

	ev := boltbroker.Event{
		SessionID:           session.ID,
		Statement:           statement,
		NormalizedStatement: query.Normalize(statement),
		StartTime:           start,
		Duration:            time.Since(start),
		RecordCount:         len(records),
	}
	if broker != nil {
		broker.Publish(ev)
	}
	stats.Record(ev)

	fmt.Println(bannerStyle.Render(fmt.Sprintf("%d record(s) in %s, query id %s",
		len(records), formatDurationValue(time.Since(start)), summary.QueryID)))
	return nil
}

func printStats(stats *boltstat.Stats) {
	for _, row := range stats.Snapshot(boltstat.SortTotalDuration) {
		fmt.Println(statStyle.Render(fmt.Sprintf("  %s: %d call(s), %s total",
			row.NormalizedStatement, row.Count, formatDurationValue(row.TotalDuration))))
	}
}

// serve reads statements from stdin (one per line), runs each over a
// single session, and streams the resulting events to boltwatch watchers
// connected on serveAddr, so a second bolt-cli -watch can tail them.
func serve(server, username, password, serveAddr string) error {
	session, err := connect(server, username, password)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	lis, err := net.Listen("tcp", serveAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	broker := boltbroker.New()
	defer broker.Close()
	stats := boltstat.New()

	ws := boltwatch.New(broker, log.Default())
	go func() {
		if err := ws.Serve(lis); err != nil {
			log.Printf("bolt-cli: %v", err)
		}
	}()
	defer ws.Stop()

	log.Printf("bolt-cli: serving events on %s", lis.Addr())

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		statement := strings.TrimSpace(sc.Text())
		if statement == "" {
			continue
		}
		if err := runStatement(session, broker, stats, statement); err != nil {
			fmt.Fprintln(os.Stderr, friendlyError(err, errPanelWidth))

			// A server Failure leaves the session Failed (or Interrupted,
			// when the failure surfaced as Ignored); acknowledge and keep
			// reading. Anything else is fatal.
			var sf *bolterr.ServerFailure
			var ig *bolterr.IgnoredError
			switch {
			case errors.As(err, &sf), errors.As(err, &ig):
				if ackErr := session.AckFailure(); ackErr != nil {
					return fmt.Errorf("ack failure: %w", ackErr)
				}
			default:
				return err
			}
		}
	}
	printStats(stats)
	return sc.Err()
}

// showPlan runs the statement under EXPLAIN/PROFILE and prints the
// highlighted plan, clamped to width columns when requested.
func showPlan(session *bolt.Session, mode explain.Mode, statement string, width int) error {
	result, err := explain.NewClient(session).Run(mode, statement, packstream.Map())
	if err != nil {
		return fmt.Errorf("%s: %w", mode, err)
	}

	for _, line := range strings.Split(explain.FormatPlan(result.Plan), "\n") {
		line = highlight.Plan(line)
		if width > 0 {
			line = ansi.Cut(line, 0, width)
		}
		fmt.Println(line)
	}
	fmt.Printf("%s completed in %s\n", mode, formatDurationValue(result.Duration))
	return nil
}

func watch(addr string) error {
	events, closeFn, err := boltwatch.Dial(addr)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	det := detect.New(5, time.Second, 10*time.Second)
	for ev := range events {
		marker := ""
		if res := det.Record(ev.NormalizedStatement, time.Now()); res.Alert != nil {
			marker = fmt.Sprintf("  [N+1 x%d]", res.Alert.Count)
		}
		fmt.Printf("[%s] %s (%s, %d rows)%s\n", ev.SessionID, ev.Statement, formatDurationValue(ev.Duration), ev.RecordCount, marker)
	}
	return nil
}
