package express

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var (
	entityPattern  = regexp.MustCompile(`(?i)^\s*ENTITY\s+([A-Za-z_][A-Za-z0-9_]*)\s*;?`)
	subtypePattern = regexp.MustCompile(`(?i)^\s*SUBTYPE\s+OF\s*\(\s*([A-Za-z_][A-Za-z0-9_]*)\s*\)\s*;?`)
	attrPattern    = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*:\s*(.+);$`)
)

// maxLineSize bounds a single schema line.
const maxLineSize = 1 << 20

type parseState int

const (
	stateOutside parseState = iota
	stateInsideEntity
)

// parser is the statement state machine. Each source line is cut after
// every ';' so that one-line blocks such as "ENTITY Wall; END_ENTITY;" read
// the same as the usual one-statement-per-line layout. Keywords match
// case-insensitively, identifiers are kept as written.
type parser struct {
	state   parseState
	pending Class
	schema  *Schema
}

func newParser() *parser {
	return &parser{schema: &Schema{Classes: make(map[string]*Class)}}
}

func (p *parser) line(line string) {
	line = strings.TrimRight(line, "\r")
	for line != "" {
		i := strings.IndexByte(line, ';')
		if i < 0 {
			p.statement(line)
			return
		}
		if stmt := line[:i+1]; trimSpace(stmt) != ";" {
			p.statement(stmt)
		}
		line = line[i+1:]
	}
}

func (p *parser) statement(line string) {
	if p.state == stateOutside {
		if m := entityPattern.FindStringSubmatch(line); m != nil {
			p.state = stateInsideEntity
			p.pending = Class{Name: m[1]}
		}
		return
	}

	if hasPrefixFold(trimSpace(line), "END_ENTITY") {
		c := p.pending
		p.schema.Classes[c.Name] = &c
		p.state = stateOutside
		p.pending = Class{}
		return
	}
	if m := subtypePattern.FindStringSubmatch(line); m != nil {
		p.pending.Parent = m[1]
		return
	}
	if attrPattern.MatchString(trimSpace(line)) {
		p.pending.Attributes = append(p.pending.Attributes, trimSemicolon(line))
		return
	}
	// Clause keywords, comments and SUPERTYPE constraints are skipped.
}

func (p *parser) finish() *Schema {
	if p.state != stateOutside {
		p.schema.Malformed = append(p.schema.Malformed, p.pending.Name)
	}
	return p.schema
}

// Parse reads schema source from r. Read errors are returned; a block that
// is still open at end of input is dropped and listed in Schema.Malformed.
func Parse(r io.Reader) (*Schema, error) {
	p := newParser()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		p.line(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return p.finish(), nil
}

// ParseString parses schema source held in memory.
func ParseString(src string) *Schema {
	p := newParser()
	for _, line := range strings.Split(src, "\n") {
		p.line(line)
	}
	return p.finish()
}

// ParseFile parses the schema file at path.
func ParseFile(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return s, nil
}

// LoadError reports a schema file that could not be read.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load schema %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func trimSemicolon(s string) string {
	t := trimSpace(s)
	t = strings.TrimSuffix(t, ";")
	return trimSpace(t)
}

func trimSpace(s string) string {
	return strings.TrimSpace(s)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
