// Package dsl parses the studio's edit scripts: one assignment per line or
// separated by semicolons, for example
//
//	title = "Havuçlu Püre"
//	watermark.opacity = 0.5; visibility.ingredients = false
//	listItems = ["Havuç", "Patates"]
//
// and compiles them into content patches and editor changes.
package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{8})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][,.=;]`},
	})

	scriptParser = participle.MustBuild[Script](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Script is the root AST node of an edit script.
type Script struct {
	Statements []*Statement `parser:"( @@ | ';' | Newline )*"`
}

// Statement assigns a value to a dotted path.
type Statement struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Path  []string       `parser:"@Ident ( '.' @Ident )*"`
	Value *Value         `parser:"'=' @@"`
}

// Key returns the dotted path.
func (s *Statement) Key() string { return strings.Join(s.Path, ".") }

// Value is a literal on the right-hand side of an assignment.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *float64       `parser:"| @Number"`
	Bool   *Boolean       `parser:"| @('true' | 'false')"`
	Color  *string        `parser:"| @Color"`
	Ident  *string        `parser:"| @Ident"`
	Array  *ArrayValue    `parser:"| @@"`
}

// ArrayValue captures `[ ... ]` lists.
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// Kind returns a short description of the literal type, used in errors.
func (v *Value) Kind() string {
	switch {
	case v == nil:
		return "nothing"
	case v.String != nil:
		return "string"
	case v.Number != nil:
		return "number"
	case v.Bool != nil:
		return "bool"
	case v.Color != nil:
		return "color"
	case v.Ident != nil:
		return "identifier"
	case v.Array != nil:
		return "list"
	default:
		return "unknown"
	}
}

// Text returns the value as a string. Strings, identifiers, colours and
// numbers qualify.
func (v *Value) Text() (string, bool) {
	switch {
	case v == nil:
		return "", false
	case v.String != nil:
		return string(*v.String), true
	case v.Ident != nil:
		return *v.Ident, true
	case v.Color != nil:
		return *v.Color, true
	case v.Number != nil:
		return strconv.FormatFloat(*v.Number, 'f', -1, 64), true
	}
	return "", false
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Boolean captures the true/false keywords.
type Boolean bool

// Capture implements participle.Capture.
func (b *Boolean) Capture(values []string) error {
	*b = values[0] == "true"
	return nil
}

// Parse parses an edit script from an io.Reader.
func Parse(r io.Reader) (*Script, error) {
	return scriptParser.Parse("", r)
}

// ParseString parses an edit script from a string.
func ParseString(input string) (*Script, error) {
	return scriptParser.ParseString("", input)
}
