package gfc

import "strings"

// SplitParams splits the interior of a parameter list into trimmed
// top-level fields. Commas nested in parentheses or inside a quoted string
// do not separate fields, and a doubled quote inside a string is kept as
// data.
func SplitParams(s string) []string {
	var out []string
	var cur strings.Builder
	cur.Grow(len(s))

	depth := 0
	inStr := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inStr {
			cur.WriteByte(ch)
			if isQuoteEscape(s, i) {
				cur.WriteByte(s[i+1])
				i++
				continue
			}
			if ch == '\'' {
				inStr = false
			}
			continue
		}
		switch ch {
		case '\'':
			inStr = true
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(cur.String()))
				cur.Reset()
				continue
			}
		}
		cur.WriteByte(ch)
	}

	last := strings.TrimSpace(cur.String())
	if last != "" || strings.HasSuffix(s, ",") {
		out = append(out, last)
	}
	return out
}

// isQuoteEscape reports whether s[i:] starts with the STEP escape for a
// literal quote, as in 'it''s'.
func isQuoteEscape(s string, i int) bool {
	return i+1 < len(s) && s[i] == '\'' && s[i+1] == '\''
}
