// Package explain runs EXPLAIN/PROFILE Cypher statements over a
// bolt.Session and collects the resulting plan.
package explain

import (
	"fmt"
	"strings"
	"time"

	"github.com/Gudahtt/bolt/bolt"
	"github.com/Gudahtt/bolt/packstream"
)

// Mode selects between EXPLAIN and PROFILE.
type Mode int

const (
	Explain Mode = iota // EXPLAIN: plan only, does not execute
	Profile             // PROFILE: plan plus actual execution (db hits, rows)
)

func (m Mode) String() string {
	switch m {
	case Explain:
		return "EXPLAIN"
	case Profile:
		return "PROFILE"
	}
	return "EXPLAIN"
}

func (m Mode) prefix() string {
	switch m {
	case Explain:
		return "EXPLAIN "
	case Profile:
		return "PROFILE "
	}
	return "EXPLAIN "
}

// Result holds the outcome of an EXPLAIN/PROFILE run: the server's plan,
// carried back in the Success summary's "plan" metadata entry, and the
// wall-clock duration of the Run+DiscardAll round trip.
type Result struct {
	Plan     packstream.Value
	Duration time.Duration
}

// Client runs EXPLAIN/PROFILE statements over an existing Session.
type Client struct {
	session *bolt.Session
}

// NewClient creates a new Client from an existing *bolt.Session.
func NewClient(session *bolt.Session) *Client {
	return &Client{session: session}
}

// Run executes EXPLAIN or PROFILE for the given statement with the given
// parameters and returns the resulting plan.
func (c *Client) Run(mode Mode, statement string, params packstream.Value) (*Result, error) {
	start := time.Now()

	if err := c.session.Run(mode.prefix()+statement, params); err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}

	summary, err := c.session.DiscardAll()
	if err != nil {
		return nil, fmt.Errorf("discard: %w", err)
	}

	plan, _ := summary.Metadata.MapGet("plan")
	return &Result{
		Plan:     plan,
		Duration: time.Since(start),
	}, nil
}

// FormatPlan renders a decoded plan Value as indented text, for display
// when the server's plan metadata is a nested Map of "operatorType",
// "children", and argument entries rather than a single string line.
func FormatPlan(plan packstream.Value) string {
	var b strings.Builder
	formatPlanNode(&b, plan, 0)
	return strings.TrimRight(b.String(), "\n")
}

func formatPlanNode(b *strings.Builder, v packstream.Value, depth int) {
	if v.Kind != packstream.KindMap {
		return
	}

	indent := strings.Repeat("  ", depth)
	op, _ := v.MapGet("operatorType")
	b.WriteString(indent)
	if op.Kind == packstream.KindString {
		b.WriteString(op.String)
	} else {
		b.WriteString("?")
	}

	for _, p := range v.Map {
		if p.Key == "operatorType" || p.Key == "children" {
			continue
		}
		fmt.Fprintf(b, " (%s: %s)", p.Key, scalarString(p.Value))
	}
	b.WriteByte('\n')

	children, _ := v.MapGet("children")
	for _, child := range children.List {
		formatPlanNode(b, child, depth+1)
	}
}

func scalarString(v packstream.Value) string {
	switch v.Kind {
	case packstream.KindString:
		return v.String
	case packstream.KindInt:
		return fmt.Sprintf("%d", v.Int)
	case packstream.KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case packstream.KindBool:
		return fmt.Sprintf("%t", v.Bool)
	default:
		return "?"
	}
}
