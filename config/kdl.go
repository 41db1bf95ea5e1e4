package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL reads root/.gfcedit.kdl. It returns nil, nil when the file does
// not exist.
//
//	schema "resource/GFC3X.exp"
//	schema_patterns "resource/*.exp" "**/*.exp"
//	editor {
//	    debounce_ms 300
//	    hide_empty true
//	    suggest_threshold 0.8
//	}
//	log {
//	    file "/tmp/gfc.log"
//	    verbosity 2
//	}
func LoadKDL(root string) (*Config, error) {
	path := filepath.Join(root, KDLFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", KDLFile, err)
	}
	return parseKDL(root, data)
}

func parseKDL(root string, data []byte) (*Config, error) {
	cfg := Default(root)

	doc, err := kdl.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "schema":
			if s, ok := firstStringArg(n); ok {
				cfg.Schema = s
			}
		case "schema_patterns":
			cfg.SchemaPatterns = collectStringArgs(n)
		case "editor":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.DebounceMs = v
					}
				case "hide_empty":
					if b, ok := firstBoolArg(cn); ok {
						cfg.HideEmpty = b
					}
				case "suggest_threshold":
					if v, ok := firstFloatArg(cn); ok {
						cfg.SuggestThreshold = v
					}
				}
			}
		case "log":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "file":
					if s, ok := firstStringArg(cn); ok {
						cfg.LogFile = s
					}
				case "verbosity":
					if v, ok := firstIntArg(cn); ok {
						cfg.Verbosity = v
					}
				}
			}
		}
	}
	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	s, ok := n.Arguments[0].Value.(string)
	return s, ok
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	b, ok := n.Arguments[0].Value.(bool)
	return b, ok
}

func collectStringArgs(n *document.Node) []string {
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
