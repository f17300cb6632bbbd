package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Gudahtt/bolt/bolt"
	"github.com/Gudahtt/bolt/graph"
	"github.com/Gudahtt/bolt/packstream"
)

// errPanelWidth bounds the wrapped error panel.
const errPanelWidth = 80

var (
	bannerStyle = lipgloss.NewStyle().Bold(true)
	statStyle   = lipgloss.NewStyle().Faint(true)
)

func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func formatDurationValue(dur time.Duration) string {
	switch {
	case dur < time.Millisecond:
		us := float64(dur.Microseconds())
		return fmt.Sprintf("%.0fµs", us)
	case dur < time.Second:
		ms := float64(dur.Microseconds()) / 1000
		return fmt.Sprintf("%.1fms", ms)
	}
	return fmt.Sprintf("%.2fs", dur.Seconds())
}

// printRecords renders records as a table, columns padded to the widest
// cell of each column.
func printRecords(records []bolt.Record) {
	rows := make([][]string, len(records))
	var widths []int
	for i, rec := range records {
		cells := make([]string, len(rec.Fields))
		for j, f := range rec.Fields {
			cells[j] = fieldString(f)
			if j >= len(widths) {
				widths = append(widths, 0)
			}
			if w := lipgloss.Width(cells[j]); w > widths[j] {
				widths[j] = w
			}
		}
		rows[i] = cells
	}
	for _, cells := range rows {
		parts := make([]string, len(cells))
		for j, c := range cells {
			parts[j] = padRight(c, widths[j])
		}
		fmt.Println(strings.TrimRight(strings.Join(parts, "  "), " "))
	}
}

func friendlyError(err error, width int) string {
	msg := err.Error()

	var text string
	switch {
	case strings.Contains(msg, "connection refused"):
		text = "Could not connect to the Bolt server.\n" +
			"Is the server running?\n\n" +
			"Error: " + msg
	}
	if text == "" {
		text = "Error: " + msg
	}

	return lipgloss.NewStyle().Width(width).Render(text)
}

func fieldString(v packstream.Value) string {
	switch v.Kind {
	case packstream.KindNull:
		return "null"
	case packstream.KindString:
		return v.String
	case packstream.KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case packstream.KindInt:
		return fmt.Sprintf("%d", v.Int)
	case packstream.KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case packstream.KindStruct:
		return structString(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// structString renders the graph structures records commonly carry.
func structString(v packstream.Value) string {
	switch {
	case graph.IsNode(v) && len(v.Fields) == 3:
		n := graph.DecodeNode(v)
		return fmt.Sprintf("(:%s {id: %d})", strings.Join(n.Labels, ":"), n.ID)
	case graph.IsRelationship(v) && len(v.Fields) == 5:
		r := graph.DecodeRelationship(v)
		return fmt.Sprintf("[:%s {id: %d, %d->%d}]", r.Type, r.ID, r.StartID, r.EndID)
	case graph.IsPath(v) && len(v.Fields) == 3:
		p := graph.DecodePath(v)
		return fmt.Sprintf("path(%d nodes, %d rels)", len(p.Nodes), len(p.Relationships))
	default:
		return fmt.Sprintf("struct(0x%02X, %d fields)", v.Signature, len(v.Fields))
	}
}
