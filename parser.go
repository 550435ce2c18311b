package taskweaver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defKey    = "def"
	doubleKey = "double"
)

// Parser turns a YAML definition document into tasks.
//
// The document is a sequence of mappings. Each mapping holds a "def" key
// (a string split on whitespace, or a sequence of scalars), an optional
// boolean "double" key, and any number of attributes:
//
//	- def: run make build
//	  dir: ./src
//	  env:
//	    GOOS: linux
//	- def: [copy, a.txt, b.txt]
type Parser struct {
	reg    *Registry
	policy UnknownPolicy
	log    *slog.Logger
}

type ParserOption func(*Parser)

// WithUnknownPolicy sets how unclassified definitions are handled.
func WithUnknownPolicy(p UnknownPolicy) ParserOption {
	return func(ps *Parser) { ps.policy = p }
}

// WithLogger sets the logger used for classification diagnostics.
func WithLogger(l *slog.Logger) ParserOption {
	return func(ps *Parser) {
		if l != nil {
			ps.log = l
		}
	}
}

func NewParser(reg *Registry, opts ...ParserOption) *Parser {
	if reg == nil {
		reg = DefaultRegistry()
	}
	p := &Parser{
		reg:    reg,
		policy: UnknownFallback,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Parse reads the whole document from r.
func (p *Parser) Parse(r io.Reader) ([]Task, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read definitions: %w", err)
	}
	return p.ParseBytes(src)
}

// ParseBytes classifies every definition in every YAML document of src.
// Structural problems stop parsing with a *ParseError; unclassified
// definitions do not.
func (p *Parser) ParseBytes(src []byte) ([]Task, error) {
	content := string(src)
	if len(bytes.TrimSpace(src)) == 0 {
		return nil, nil
	}

	var (
		tasks []Task
		count int
	)
	dec := yaml.NewDecoder(bytes.NewReader(src))
	for {
		var doc yaml.Node
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, yamlParseError(err, content)
		}
		if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
			continue
		}
		root := doc.Content[0]
		if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
			continue
		}
		if root.Kind != yaml.SequenceNode {
			return nil, NewParseError(nodePos(root), "definitions must be a sequence", content)
		}

		for _, entry := range root.Content {
			def, err := readDefinition(entry, content)
			if err != nil {
				return nil, err
			}
			count++
			if t := p.classify(def); t != nil {
				tasks = append(tasks, t)
			}
		}
	}
	p.log.Debug("definitions parsed", "count", count, "tasks", len(tasks), "policy", p.policy)
	return tasks, nil
}

func (p *Parser) classify(def Definition) Task {
	var reason error
	if len(def.Params) == 0 {
		reason = errors.New("empty def")
	} else if k, ok := p.reg.get(def.Params[0]); !ok {
		reason = fmt.Errorf("no kind named %q", def.Params[0])
	} else {
		t, err := k.Build(def)
		if err == nil {
			return t
		}
		reason = err
	}

	if p.policy == UnknownDrop {
		p.log.Debug("dropping unknown definition", "pos", def.Pos.String(), "params", def.Params, "reason", reason)
		return nil
	}
	p.log.Debug("unknown definition", "pos", def.Pos.String(), "params", def.Params, "reason", reason)
	return NewUnknownTask(def.Params, def.DoubleTask, def.Attributes)
}

func readDefinition(n *yaml.Node, content string) (Definition, error) {
	def := Definition{Pos: nodePos(n)}
	if n.Kind != yaml.MappingNode {
		return def, NewParseError(def.Pos, "definition must be a mapping", content)
	}

	seen := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if seen[key.Value] {
			return def, NewParseError(nodePos(key), fmt.Sprintf("duplicate key %q", key.Value), content)
		}
		seen[key.Value] = true
		switch key.Value {
		case defKey:
			params, err := readParams(val, content)
			if err != nil {
				return def, err
			}
			def.Params = params
		case doubleKey:
			var b bool
			if err := val.Decode(&b); err != nil {
				return def, NewParseError(nodePos(val), "double must be a boolean", content)
			}
			def.DoubleTask = b
		default:
			if def.Attributes == nil {
				def.Attributes = map[string]string{}
			}
			if err := flattenAttr(def.Attributes, key.Value, val, content); err != nil {
				return def, err
			}
		}
	}
	return def, nil
}

func readParams(n *yaml.Node, content string) ([]string, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, nil
		}
		return strings.Fields(n.Value), nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			if c.Kind != yaml.ScalarNode {
				return nil, NewParseError(nodePos(c), "def tokens must be scalars", content)
			}
			out = append(out, c.Value)
		}
		return out, nil
	default:
		return nil, NewParseError(nodePos(n), "def must be a string or a sequence", content)
	}
}

// flattenAttr stores scalars as-is, nested mappings under dotted keys, and
// sequences of scalars joined by commas. A key produced twice is an error.
func flattenAttr(dst map[string]string, key string, n *yaml.Node, content string) error {
	if n.Kind == yaml.ScalarNode || n.Kind == yaml.SequenceNode {
		if _, ok := dst[key]; ok {
			return NewParseError(nodePos(n), fmt.Sprintf("attribute %q defined twice", key), content)
		}
	}
	switch n.Kind {
	case yaml.ScalarNode:
		dst[key] = n.Value
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			if err := flattenAttr(dst, key+"."+n.Content[i].Value, n.Content[i+1], content); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		vals := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			if c.Kind != yaml.ScalarNode {
				return NewParseError(nodePos(c), fmt.Sprintf("attribute %q: nested sequences are not supported", key), content)
			}
			vals = append(vals, c.Value)
		}
		dst[key] = strings.Join(vals, ",")
	case yaml.AliasNode:
		return flattenAttr(dst, key, n.Alias, content)
	default:
		return NewParseError(nodePos(n), fmt.Sprintf("attribute %q has unsupported value", key), content)
	}
	return nil
}

func nodePos(n *yaml.Node) Position {
	return Position{Line: n.Line, Column: n.Column}
}

// yamlParseError converts a yaml.v3 syntax error ("yaml: line N: ...") into
// a *ParseError. Errors without a line number are reported at line 1.
func yamlParseError(err error, content string) *ParseError {
	pos := Position{Line: 1, Column: 1}
	var line int
	if _, scanErr := fmt.Sscanf(err.Error(), "yaml: line %d:", &line); scanErr == nil && line > 0 {
		pos.Line = line
	}
	return NewParseError(pos, err.Error(), content)
}
