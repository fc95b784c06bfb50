// ABOUTME: Pattern acceptors matching message fields by regexp, glob, or JSONPath
// ABOUTME: Patterns are compiled up front so bad config fails at load time

package acceptor

import (
	"fmt"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/theory/jsonpath"

	"github.com/smartnetguru/mokai/internal/message"
)

// Regexp accepts messages whose field matches a regular expression.
type Regexp struct {
	field string
	re    *regexp.Regexp
}

// NewRegexp compiles pattern for matching against field.
func NewRegexp(field, pattern string) (*Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling regexp %q: %w", pattern, err)
	}
	return &Regexp{field: field, re: re}, nil
}

func (a *Regexp) Accepts(msg *message.Message) (bool, error) {
	v, err := fieldText(msg, a.field)
	if err != nil {
		return false, err
	}
	return a.re.MatchString(v), nil
}

func (a *Regexp) String() string {
	return fmt.Sprintf("regexp(%s=~%s)", a.field, a.re)
}

// Glob accepts messages whose field matches a doublestar glob, e.g.
// "+57300*" for a destination number prefix or "alerts/**" for a topic.
type Glob struct {
	field   string
	pattern string
}

// NewGlob validates pattern for matching against field.
func NewGlob(field, pattern string) (*Glob, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	return &Glob{field: field, pattern: pattern}, nil
}

func (a *Glob) Accepts(msg *message.Message) (bool, error) {
	v, err := fieldText(msg, a.field)
	if err != nil {
		return false, err
	}
	return doublestar.Match(a.pattern, v)
}

func (a *Glob) String() string {
	return fmt.Sprintf("glob(%s~%s)", a.field, a.pattern)
}

// JSONPath accepts messages whose document yields at least one node for the
// path. With a value set, one of the selected nodes must render equal to it.
type JSONPath struct {
	expr     string
	path     *jsonpath.Path
	value    any
	hasValue bool
}

// NewJSONPath parses expr, e.g. "$.properties.tags[*]".
func NewJSONPath(expr string) (*JSONPath, error) {
	p, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parsing jsonpath %q: %w", expr, err)
	}
	return &JSONPath{expr: expr, path: p}, nil
}

// WithValue restricts matches to nodes equal to value.
func (a *JSONPath) WithValue(value any) *JSONPath {
	c := *a
	c.value = value
	c.hasValue = true
	return &c
}

func (a *JSONPath) Accepts(msg *message.Message) (bool, error) {
	nodes := a.path.Select(msg.Document())
	if !a.hasValue {
		return len(nodes) > 0, nil
	}
	want := fmt.Sprint(a.value)
	for _, n := range nodes {
		if fmt.Sprint(n) == want {
			return true, nil
		}
	}
	return false, nil
}

func (a *JSONPath) String() string {
	if a.hasValue {
		return fmt.Sprintf("jsonpath(%s==%v)", a.expr, a.value)
	}
	return fmt.Sprintf("jsonpath(%s)", a.expr)
}
