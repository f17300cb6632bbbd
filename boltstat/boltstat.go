// Package boltstat aggregates per-statement timing counters: count, total
// duration, average, p95, and max, grouped by normalized statement text.
// Counters update incrementally as boltbroker.Event values arrive.
package boltstat

import (
	"cmp"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Gudahtt/bolt/boltbroker"
)

// Row is one aggregated statement's timing summary.
type Row struct {
	NormalizedStatement string
	Count               int
	TotalDuration       time.Duration
	AvgDuration         time.Duration
	P95Duration         time.Duration
	MaxDuration         time.Duration
}

type aggregate struct {
	count     int
	totalDur  time.Duration
	durations []time.Duration
}

// Stats accumulates Row data across Record calls.
type Stats struct {
	mu     sync.Mutex
	groups map[string]*aggregate
}

// New creates an empty Stats.
func New() *Stats {
	return &Stats{groups: make(map[string]*aggregate)}
}

// Record registers one completed statement's duration under its
// normalized form. Events with an empty NormalizedStatement are ignored.
func (s *Stats) Record(ev boltbroker.Event) {
	if ev.NormalizedStatement == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[ev.NormalizedStatement]
	if !ok {
		g = &aggregate{}
		s.groups[ev.NormalizedStatement] = g
	}
	g.count++
	g.totalDur += ev.Duration
	g.durations = append(g.durations, ev.Duration)
}

// SortMode selects how Snapshot orders its rows.
type SortMode int

const (
	SortTotalDuration SortMode = iota
	SortCount
	SortAvgDuration
	SortP95Duration
)

// Snapshot returns the current aggregate rows, sorted descending by mode.
func (s *Stats) Snapshot(mode SortMode) []Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]Row, 0, len(s.groups))
	for stmt, g := range s.groups {
		durations := slices.Clone(g.durations)
		slices.SortFunc(durations, cmp.Compare)
		rows = append(rows, Row{
			NormalizedStatement: stmt,
			Count:               g.count,
			TotalDuration:       g.totalDur,
			AvgDuration:         g.totalDur / time.Duration(g.count),
			P95Duration:         percentile(durations, 0.95),
			MaxDuration:         durations[len(durations)-1],
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		switch mode {
		case SortCount:
			return rows[i].Count > rows[j].Count
		case SortAvgDuration:
			return rows[i].AvgDuration > rows[j].AvgDuration
		case SortP95Duration:
			return rows[i].P95Duration > rows[j].P95Duration
		default:
			return rows[i].TotalDuration > rows[j].TotalDuration
		}
	})
	return rows
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}
