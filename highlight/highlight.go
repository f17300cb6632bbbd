// Package highlight applies ANSI terminal syntax highlighting to Cypher
// statements and EXPLAIN/PROFILE plan output, for cmd/bolt-cli's display
// of captured statements.
package highlight

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	lexer     chroma.Lexer
	formatter chroma.Formatter
	style     *chroma.Style
)

func init() {
	lexer = lexers.Get("cypher")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	formatter = formatters.Get("terminal256")
	style = styles.Get("monokai")
}

// Cypher returns the input with ANSI terminal syntax highlighting applied.
// On error or empty input, the original string is returned unchanged.
func Cypher(s string) string {
	if s == "" {
		return s
	}

	iterator, err := lexer.Tokenise(nil, s)
	if err != nil {
		return s
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return s
	}

	return strings.TrimRight(buf.String(), "\n")
}

var (
	nodeRe = regexp.MustCompile(
		//nolint:dupword // regex alternatives, not duplicate words
		`(?i)\b(AllNodesScan|NodeByLabelScan|NodeByIdSeek|NodeUniqueIndexSeek|` +
			`NodeIndexSeek|NodeIndexScan|NodeIndexContainsScan|DirectedRelationshipTypeScan|` +
			`Expand\(All\)|Expand\(Into\)|VarLengthExpand\(All\)|OptionalExpand\(All\)|` +
			`Filter|Projection|Distinct|OrderedDistinct|Sort|Top|Limit|Skip|` +
			`Aggregation|EagerAggregation|Apply|CartesianProduct|` +
			`NodeHashJoin|ValueHashJoin|Eager|ProduceResults|` +
			`UnwindCollection|Create|Merge|SetProperty|Delete|` +
			`AntiSemiApply|SemiApply|Optional|Union)\b`,
	)
	metricsRe = regexp.MustCompile(`\((?:db hits|rows|memory|time)[^)]*\)`)
	arrowRe   = regexp.MustCompile(`->`)
	summaryRe = regexp.MustCompile(`(?i)^\s*(Planning Time|Execution Time|Query time):`)

	boldStyle = lipgloss.NewStyle().Bold(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

// Plan returns EXPLAIN/PROFILE output with ANSI highlighting applied.
// Operator names are bold, metrics are dim, arrows are dim, and summary
// lines are bold.
func Plan(s string) string {
	if s == "" {
		return s
	}

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if summaryRe.MatchString(line) {
			lines[i] = boldStyle.Render(line)
			continue
		}

		line = arrowRe.ReplaceAllStringFunc(line, func(m string) string {
			return dimStyle.Render(m)
		})
		line = metricsRe.ReplaceAllStringFunc(line, func(m string) string {
			return dimStyle.Render(m)
		})
		line = nodeRe.ReplaceAllStringFunc(line, func(m string) string {
			return boldStyle.Render(m)
		})
		lines[i] = line
	}

	return strings.Join(lines, "\n")
}
