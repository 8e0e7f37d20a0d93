package platform

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	cfgParser = participle.MustBuild[cfgExpression](
		participle.Lexer(cfgLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
		participle.UseLookahead(2),
	)
	cfgLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "String", Pattern: `"(\\.|[^"])*"`},
		{Name: "Punct", Pattern: `[(),=]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})
)

type cfgExpression struct {
	Predicate *Predicate `parser:"'cfg' '(' @@ ')'"`
}

// Predicate is a node of a parsed cfg() expression. Exactly one of Func and
// Key is set.
type Predicate struct {
	Func *Func     `parser:"  @@"`
	Key  *KeyValue `parser:"| @@"`
}

// Func is an all(), any() or not() combinator.
type Func struct {
	Name string       `parser:"@('all' | 'any' | 'not') '('"`
	Args []*Predicate `parser:"(@@ (',' @@)* ','?)? ')'"`
}

// KeyValue is a bare flag such as unix, or a key = "value" pair such as
// target_os = "linux".
type KeyValue struct {
	Key   string  `parser:"@Ident"`
	Value *string `parser:"('=' @String)?"`
}

// Expression is a parsed cfg() expression.
type Expression struct {
	root *Predicate
}

// ParseExpression parses a cfg() expression such as
// cfg(all(unix, target_arch = "x86_64")).
func ParseExpression(input string) (*Expression, error) {
	parsed, err := cfgParser.ParseString("", input)
	if err != nil {
		return nil, &ParseError{Input: input, Reason: "invalid cfg() expression", Err: err}
	}
	if err := validate(parsed.Predicate); err != nil {
		return nil, &ParseError{Input: input, Reason: err.Error()}
	}
	return &Expression{root: parsed.Predicate}, nil
}

func validate(p *Predicate) error {
	if p.Func == nil {
		return nil
	}
	if p.Func.Name == "not" && len(p.Func.Args) != 1 {
		return fmt.Errorf("not() takes exactly 1 predicate, found %d", len(p.Func.Args))
	}
	for _, arg := range p.Func.Args {
		if err := validate(arg); err != nil {
			return err
		}
	}
	return nil
}

// Root returns the top-level predicate.
func (e *Expression) Root() *Predicate { return e.root }

// String formats the expression in canonical form.
func (e *Expression) String() string { return "cfg(" + e.root.String() + ")" }

// Eval evaluates the expression against p.
func (e *Expression) Eval(p *Platform) Ternary { return e.root.Eval(p) }

// String formats the predicate in canonical form.
func (p *Predicate) String() string {
	if p.Func != nil {
		args := make([]string, len(p.Func.Args))
		for i, a := range p.Func.Args {
			args[i] = a.String()
		}
		return p.Func.Name + "(" + strings.Join(args, ", ") + ")"
	}
	if p.Key.Value != nil {
		return fmt.Sprintf("%s = %q", p.Key.Key, *p.Key.Value)
	}
	return p.Key.Key
}

// Eval evaluates the predicate against pl.
func (p *Predicate) Eval(pl *Platform) Ternary {
	if p.Func != nil {
		switch p.Func.Name {
		case "all":
			result := Enabled
			for _, a := range p.Func.Args {
				switch a.Eval(pl) {
				case Disabled:
					return Disabled
				case Unknown:
					result = Unknown
				}
			}
			return result
		case "any":
			result := Disabled
			for _, a := range p.Func.Args {
				switch a.Eval(pl) {
				case Enabled:
					return Enabled
				case Unknown:
					result = Unknown
				}
			}
			return result
		default:
			return p.Func.Args[0].Eval(pl).Not()
		}
	}
	if p.Key.Value == nil {
		return pl.evalFlag(p.Key.Key)
	}
	return pl.evalKey(p.Key.Key, *p.Key.Value)
}
