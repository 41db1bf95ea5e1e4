package gfc

import (
	"regexp"
	"strconv"
	"strings"
)

var indexTokenPattern = regexp.MustCompile(`^\s*#\s*([0-9]+)\s*$`)

// ParseIndex parses an instance reference token such as "#123".
func ParseIndex(token string) (int, bool) {
	m := indexTokenPattern.FindStringSubmatch(token)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// IDAt returns the id of the #<digits> token under or just before offset.
// The search never leaves the line holding offset, so references inside a
// parameter list such as (#5,#12) are found as well as headers.
func IDAt(text string, offset int) (int, bool) {
	if offset < 0 || offset > len(text) {
		return 0, false
	}
	start := lineStart(text, offset)
	end := strings.IndexByte(text[start:], '\n')
	if end < 0 {
		end = len(text)
	} else {
		end += start
	}
	line := text[start:end]
	if line == "" {
		return 0, false
	}
	pos := offset - start

	left := pos
	if left >= len(line) {
		left = len(line) - 1
	}
	if left+1 < len(line) && line[left+1] == '#' {
		left++
	}
	for left >= 0 && isDigit(line[left]) {
		left--
	}
	if left < 0 || line[left] != '#' {
		if pos < len(line) && line[pos] == '#' {
			left = pos
		} else {
			return 0, false
		}
	}

	i := left + 1
	for i < len(line) && isDigit(line[i]) {
		i++
	}
	if i == left+1 {
		return 0, false
	}
	n, err := strconv.Atoi(line[left+1 : i])
	if err != nil {
		return 0, false
	}
	return n, true
}

// FindDefinition returns the offset of the '#' that defines instance id:
// the first "#<id>" opening a line, after optional indentation, and not
// followed by another digit. Spaces may sit between '#' and the digits, as
// Scan allows.
func FindDefinition(text string, id int) (int, bool) {
	re := regexp.MustCompile(`(?m)^[ \t]*(#)[ \t]*` + strconv.Itoa(id) + `\b`)
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return 0, false
	}
	return loc[2], true
}

// Span is a half-open byte range.
type Span struct {
	Start int
	End   int
}

// Occurrences returns the spans of every use of class as a record
// constructor, i.e. the whole word followed by an opening parenthesis.
// Matching ignores case because data files use free casing.
func Occurrences(text, class string) []Span {
	if strings.TrimSpace(class) == "" {
		return nil
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(class) + `\b\s*\(`)
	var spans []Span
	for _, loc := range re.FindAllStringIndex(text, -1) {
		spans = append(spans, Span{Start: loc[0], End: loc[0] + len(class)})
	}
	return spans
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
