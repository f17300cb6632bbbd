// Package query provides display-time helpers for Cypher statements:
// substituting named parameters for human-readable logging, and
// normalizing statements into templates so structurally identical
// statements can be grouped (used by detect.Detector). These never touch
// the wire — the Run message always sends parameters as a PackStream Map,
// never interpolated into the statement text — they exist purely for
// CLI/log output.
package query

import (
	"fmt"
	"strings"

	"github.com/Gudahtt/bolt/packstream"
)

// Bind renders statement with every $name placeholder replaced by a
// display form of params[name]. Cypher only has named parameters, so this
// walks $identifier occurrences rather than positional ones.
func Bind(statement string, params map[string]packstream.Value) string {
	if len(params) == 0 {
		return statement
	}

	var b strings.Builder
	b.Grow(len(statement))

	i := 0
	for i < len(statement) {
		if statement[i] == '$' && i+1 < len(statement) && isIdentStart(statement[i+1]) {
			j := i + 1
			for j < len(statement) && isIdentPart(statement[j]) {
				j++
			}
			name := statement[i+1 : j]
			if v, ok := params[name]; ok {
				b.WriteString(render(v))
				i = j
				continue
			}
		}
		b.WriteByte(statement[i])
		i++
	}
	return b.String()
}

// render produces a Cypher-literal display form of v.
func render(v packstream.Value) string {
	switch v.Kind {
	case packstream.KindNull:
		return "null"
	case packstream.KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case packstream.KindInt:
		return fmt.Sprintf("%d", v.Int)
	case packstream.KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case packstream.KindString:
		return "'" + strings.ReplaceAll(v.String, "'", "\\'") + "'"
	case packstream.KindList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = render(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case packstream.KindMap:
		parts := make([]string, len(v.Map))
		for i, p := range v.Map {
			parts[i] = p.Key + ": " + render(p.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "?"
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
