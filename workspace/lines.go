package workspace

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"
)

// LineIndex converts between byte offsets and zero-based line/character
// positions, counting characters in UTF-16 code units as editors do.
type LineIndex struct {
	text   string
	starts []int
}

// NewLineIndex indexes the line starts of text.
func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{text: text, starts: starts}
}

// Position returns the line and character of a byte offset.
func (l *LineIndex) Position(offset int) (line, char int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(l.text) {
		offset = len(l.text)
	}
	line = sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > offset }) - 1
	for i := l.starts[line]; i < offset; {
		r, size := utf8.DecodeRuneInString(l.text[i:])
		char += utf16.RuneLen(r)
		i += size
	}
	return line, char
}

// Offset returns the byte offset of a line and character. Positions past
// the end of a line clamp to its end.
func (l *LineIndex) Offset(line, char int) int {
	if line < 0 {
		return 0
	}
	if line >= len(l.starts) {
		return len(l.text)
	}
	end := len(l.text)
	if line+1 < len(l.starts) {
		end = l.starts[line+1] - 1
	}
	i := l.starts[line]
	for units := 0; i < end && units < char; {
		r, size := utf8.DecodeRuneInString(l.text[i:])
		units += utf16.RuneLen(r)
		i += size
	}
	return i
}

// Lines returns the number of lines.
func (l *LineIndex) Lines() int {
	return len(l.starts)
}
