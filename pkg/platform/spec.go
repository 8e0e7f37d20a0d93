package platform

import (
	"fmt"
	"strings"
)

// ParseError reports a target spec that could not be parsed.
type ParseError struct {
	Input  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse target spec %q: %s: %v", e.Input, e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to parse target spec %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TargetSpec is a parsed platform condition: either a cfg() expression or a
// target triple. TargetSpecs are immutable.
type TargetSpec struct {
	raw    string
	expr   *Expression
	triple *Triple
}

// Parse parses a [target.<spec>] key. Strings starting with "cfg(" are parsed
// as expressions; everything else must be a target triple.
func Parse(input string) (*TargetSpec, error) {
	s := strings.TrimSpace(input)
	if strings.HasPrefix(s, "cfg(") {
		expr, err := ParseExpression(s)
		if err != nil {
			return nil, err
		}
		return &TargetSpec{raw: s, expr: expr}, nil
	}
	t, err := ParseTriple(s)
	if err != nil {
		return nil, err
	}
	return &TargetSpec{raw: s, triple: &t}, nil
}

// MustParse is like [Parse] but panics on error. It is intended for tests and
// package-level variables.
func MustParse(input string) *TargetSpec {
	s, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return s
}

// String returns the spec as it was written, minus surrounding whitespace.
func (s *TargetSpec) String() string { return s.raw }

// IsTriple reports whether the spec is a target triple.
func (s *TargetSpec) IsTriple() bool { return s.triple != nil }

// Expression returns the parsed cfg() expression, or nil for triples.
func (s *TargetSpec) Expression() *Expression { return s.expr }

// Triple returns the parsed triple, or nil for expressions.
func (s *TargetSpec) Triple() *Triple { return s.triple }

// Eval evaluates the spec against p. Triples match by exact string
// comparison.
func (s *TargetSpec) Eval(p *Platform) Ternary {
	if s.triple != nil {
		return boolTernary(s.triple.Raw == p.Triple.Raw)
	}
	return s.expr.Eval(p)
}
