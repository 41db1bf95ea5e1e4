package gfc

import (
	"regexp"
	"strconv"
)

// headerPattern matches an instance header up to and including its opening
// parenthesis: #12 = GFCWALL (
var headerPattern = regexp.MustCompile(`#\s*([0-9]+)\s*=\s*([A-Za-z0-9_]+)\s*\(`)

// InstanceRef is one instance header found by Scan.
type InstanceRef struct {
	Index int    // instance id, -1 if the digits overflow an int
	Class string // class name as written in the text
	Pos   int    // offset of the '#'
}

// Scan returns every instance header in text, left to right. It does not
// look for the end of the parameter list, so an unterminated record is still
// reported.
func Scan(text string) []InstanceRef {
	matches := headerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	refs := make([]InstanceRef, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, InstanceRef{
			Index: parseDigits(text[m[2]:m[3]]),
			Class: text[m[4]:m[5]],
			Pos:   m[0],
		})
	}
	return refs
}

func parseDigits(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
