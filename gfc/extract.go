package gfc

import (
	"errors"
	"strings"
)

var (
	// ErrNoInstance is returned when no instance header follows the offset.
	// A header without an opening parenthesis is not a header.
	ErrNoInstance = errors.New("no instance header")
	// ErrUnterminated is returned when the parameter list never closes.
	ErrUnterminated = errors.New("unterminated instance")
)

// Instance is a fully extracted record.
type Instance struct {
	Index  int
	Class  string // upper-cased class name
	Params []string
	Start  int // offset of '#'
	End    int // one past ')' and an optional ';'
}

// InstanceAt extracts the first instance whose header starts on or after
// the beginning of the line containing offset.
func InstanceAt(text string, offset int) (Instance, error) {
	return extractFrom(text, lineStart(text, offset))
}

// Extract extracts the instance whose header was reported by Scan.
func Extract(text string, ref InstanceRef) (Instance, error) {
	return extractFrom(text, ref.Pos)
}

func extractFrom(text string, from int) (Instance, error) {
	if from < 0 || from > len(text) {
		return Instance{}, ErrNoInstance
	}
	m := headerPattern.FindStringSubmatchIndex(text[from:])
	if m == nil {
		return Instance{}, ErrNoInstance
	}
	for i := range m {
		m[i] += from
	}

	openPos := m[1] - 1
	closePos := matchingParen(text, openPos)
	if closePos < 0 {
		return Instance{}, ErrUnterminated
	}

	end := closePos + 1
	if end < len(text) && text[end] == ';' {
		end++
	}

	return Instance{
		Index:  parseDigits(text[m[2]:m[3]]),
		Class:  strings.ToUpper(text[m[4]:m[5]]),
		Params: SplitParams(text[openPos+1 : closePos]),
		Start:  m[0],
		End:    end,
	}, nil
}

// matchingParen returns the offset of the ')' closing the '(' at openPos,
// or -1 if the text ends first.
func matchingParen(text string, openPos int) int {
	depth := 0
	inStr := false
	for i := openPos; i < len(text); i++ {
		ch := text[i]
		if inStr {
			if isQuoteEscape(text, i) {
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
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// lineStart returns the offset of the first byte of the line holding
// offset. Offsets outside the text are clamped.
func lineStart(text string, offset int) int {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	return strings.LastIndexByte(text[:offset], '\n') + 1
}
