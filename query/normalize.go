package query

import "strings"

// Normalize replaces literal values in a Cypher statement with
// placeholders, so that structurally identical statements can be grouped
// together (query/bind.go's header explains why this exists instead of
// touching the wire). String literals ('...' or "...") are replaced with
// '?', standalone numeric literals are replaced with ?, and $name
// parameters are kept as-is. Consecutive whitespace is collapsed to a
// single space.
func Normalize(statement string) string {
	if statement == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(statement))

	i := 0
	prevSpace := false
	for i < len(statement) {
		ch := statement[i]

		if ch == '\'' || ch == '"' {
			i = normalizeString(&b, statement, i, ch)
			prevSpace = false
			continue
		}

		if ch == '$' && i+1 < len(statement) && isIdentStart(statement[i+1]) {
			i = keepParam(&b, statement, i)
			prevSpace = false
			continue
		}

		if isDigit(ch) && (i == 0 || isNumBoundary(statement[i-1])) {
			if next, ok := normalizeNumber(&b, statement, i); ok {
				i = next
				prevSpace = false
				continue
			}
		}

		if isSpace(ch) {
			if !prevSpace && b.Len() > 0 {
				b.WriteByte(' ')
				prevSpace = true
			}
			i++
			continue
		}

		b.WriteByte(ch)
		i++
		prevSpace = false
	}

	return strings.TrimRight(b.String(), " ")
}

// normalizeString replaces a string literal starting at pos (delimited by
// quote, either ' or ") with '?'.
func normalizeString(b *strings.Builder, statement string, pos int, quote byte) int {
	j := pos + 1
	for j < len(statement) {
		if statement[j] == '\\' && j+1 < len(statement) {
			j += 2
			continue
		}
		if statement[j] == quote {
			j++
			break
		}
		j++
	}
	b.WriteString("'?'")
	return j
}

// keepParam writes a $name parameter as-is and returns the new position.
func keepParam(b *strings.Builder, statement string, pos int) int {
	b.WriteByte('$')
	j := pos + 1
	for j < len(statement) && isIdentPart(statement[j]) {
		b.WriteByte(statement[j])
		j++
	}
	return j
}

// normalizeNumber replaces a numeric literal at pos with a bare ?.
// Returns (newPos, true) if replaced, or (0, false) if not a standalone number.
func normalizeNumber(b *strings.Builder, statement string, pos int) (int, bool) {
	j := pos + 1
	for j < len(statement) && (isDigit(statement[j]) || statement[j] == '.') {
		j++
	}
	if j >= len(statement) || isNumBoundary(statement[j]) {
		b.WriteByte('?')
		return j, true
	}
	return 0, false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isNumBoundary(c byte) bool {
	return isSpace(c) ||
		c == ',' || c == '(' || c == ')' || c == '[' || c == ']' ||
		c == '=' || c == '<' || c == '>' || c == '+' || c == '-' ||
		c == '*' || c == '/' || c == ';' || c == ':'
}
