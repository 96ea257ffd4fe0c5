package parser

import (
	"errors"
	"math"
	"testing"

	"github.com/alecthomas/repr"

	"github.com/JaniM/katlang/op"
)

var (
	begin = op.Plain(op.BeginBlock)
	end   = op.Plain(op.EndBlock)
	scope = op.Plain(op.ExecuteScoped)
)

func prog(ins ...op.Instruction) []op.Instruction { return ins }

func sameProgram(got, want []op.Instruction) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if !got[i].Equal(want[i]) {
			return false
		}
	}
	return true
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []op.Instruction
	}{
		{"hello", `"Hello, world!"P`, prog(op.Text("Hello, world!"), op.Plain(op.WriteLine))},
		{"integers", "12 3+", prog(op.Int(12), op.Int(3), op.Plain(op.Add))},
		{"spaced", "12 3 +", prog(op.Int(12), op.Int(3), op.Plain(op.Add))},
		{"escapes", `"a\"b\\c\n"`, prog(op.Text(`a"b\cn`))},
		{"char literal", `'"'\`, prog(op.Text(`"`), op.Text(`\`))},
		{"quote", "`+", prog(op.Quote(op.Plain(op.Add)))},
		{"quote quote", "``+", prog(op.Quote(op.Quote(op.Plain(op.Add))))},
		{"quote at end", "1`", prog(op.Int(1))},
		{"quote combinator", "`M", prog(op.Quote(op.Plain(op.Map)))},
		{"quote close paren", "`)", prog(op.Quote(end))},
		{"paren block", "(1 2)", prog(begin, op.Int(1), op.Int(2), end, scope)},
		{"bracket block", "[1 2]", prog(begin, op.Int(1), op.Int(2), end)},
		{"stray close", "]", prog(end)},
		{"rotations", "xX", prog(op.Rot(2), op.Rot(3))},
		{"shuffles", ":;_p^~", prog(
			op.Plain(op.Duplicate), op.Plain(op.DuplicateSecond), op.Plain(op.Drop),
			op.Plain(op.PushSide), op.Plain(op.PopSide), op.Plain(op.ConsumeSide),
		)},
		{"text ops", "SJIrRWw!", prog(
			op.Plain(op.Split), op.Plain(op.Join), op.Plain(op.ToInteger), op.Plain(op.Range),
			op.Plain(op.ReadLine), op.Plain(op.WriteLine), op.Plain(op.Write), op.Plain(op.Execute),
		)},
		{"bind and read", ">a a<a", prog(op.BindVar('a'), op.ReadVar('a', false), op.ReadVar('a', true))},
		{"named block", "{2*}d 5d", prog(
			begin, op.Int(2), op.Plain(op.Multiply), end, op.BindVar('d'),
			op.Int(5), op.ReadVar('d', false),
		)},
		{"map implicit", "(1 2 3)M2*", prog(
			begin, op.Int(1), op.Int(2), op.Int(3), end, scope,
			begin, op.Int(2), op.Plain(op.Multiply), end, op.Plain(op.Map),
		)},
		{"map dollar", "M2*$3+", prog(
			begin, op.Int(2), op.Plain(op.Multiply), end, op.Plain(op.Map),
			op.Int(3), op.Plain(op.Add),
		)},
		{"map explicit", "M[2*]3+", prog(
			begin, op.Int(2), op.Plain(op.Multiply), end, op.Plain(op.Map),
			op.Int(3), op.Plain(op.Add),
		)},
		{"implicit leaves bracket", "[M1]", prog(
			begin, begin, op.Int(1), end, op.Plain(op.Map), end,
		)},
		{"foreach explicit", "F[1]!", prog(
			begin, op.Int(1), end, op.Plain(op.ForEach), op.Plain(op.Execute),
		)},
		{"repeat nested paren", "#(1)2", prog(
			begin, begin, op.Int(1), end, scope, op.Int(2), end, op.Plain(op.Repeat),
		)},
		{"pre-named", "1 d{2*}3", prog(
			begin, op.Int(2), op.Plain(op.Multiply), end, op.BindVar('d'),
			op.Int(1), op.ReadVar('d', false), op.Int(3),
		)},
		{"pre-named order", "d{1$e{2}", prog(
			begin, op.Int(2), end, op.BindVar('e'),
			begin, op.Int(1), end, op.BindVar('d'),
			op.ReadVar('d', true), op.ReadVar('e', false),
		)},
		{"pre-named left open", "(d{1)", prog(
			begin, op.Int(1), end, op.BindVar('d'),
			begin, op.ReadVar('d', false), end, scope,
		)},
		{"wrapping overflow", "9223372036854775808", prog(op.Int(math.MinInt64))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.src)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.src, err)
			}
			if !sameProgram(got, tt.want) {
				t.Errorf("Parse(%q) =\n%s\nwant\n%s", tt.src, repr.String(got, repr.Indent("  ")), repr.String(tt.want, repr.Indent("  ")))
			}
		})
	}
}

func TestParseWhitespace(t *testing.T) {
	tests := []struct {
		src  string
		want []op.Instruction
	}{
		{"1 2", prog(op.Int(1), op.Int(2))},
		{"1  2", prog(op.Int(1), op.Text(" "), op.Int(2))},
		{`"a" "b"`, prog(op.Text("a"), op.Text(" "), op.Text("b"))},
		{"1\n+", prog(op.Int(1), op.Plain(op.Add))},
		{"+\n", prog(op.Plain(op.Add), op.Text("\n"))},
		{"` ", prog(op.Quote(op.Text(" ")))},
	}

	for _, tt := range tests {
		got, err := Parse(tt.src, WithWhitespace(true))
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tt.src, err)
		}
		if !sameProgram(got, tt.want) {
			t.Errorf("Parse(%q) = %s, want %s", tt.src, repr.String(got), repr.String(tt.want))
		}
	}
}

func TestParseKnown(t *testing.T) {
	got, err := Parse("a", WithKnown('a'))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if want := prog(op.ReadVar('a', false)); !sameProgram(got, want) {
		t.Errorf("Parse = %s, want %s", repr.String(got), repr.String(want))
	}

	// Known names shadow operators.
	got, err = Parse(">++")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if want := prog(op.BindVar('+'), op.ReadVar('+', false)); !sameProgram(got, want) {
		t.Errorf("Parse = %s, want %s", repr.String(got), repr.String(want))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src  string
		kind ErrorKind
		is   error
		char rune
	}{
		{"a", UnexpectedChar, ErrUnexpectedChar, 'a'},
		{"1 2 $", UnexpectedChar, ErrUnexpectedChar, '$'},
		{"}", UnexpectedChar, ErrUnexpectedChar, '}'},
		{`"abc`, UnexpectedEOF, ErrUnexpectedEOF, 0},
		{`'`, UnexpectedEOF, ErrUnexpectedEOF, 0},
		{`"a\`, UnexpectedEOF, ErrUnexpectedEOF, 0},
		{">", UnexpectedEOF, ErrUnexpectedEOF, 0},
		{"<", UnexpectedEOF, ErrUnexpectedEOF, 0},
		{"{12", UnexpectedEOF, ErrUnexpectedEOF, 0},
		{"{12}", UnexpectedEOF, ErrUnexpectedEOF, 0},
		{"{1]}a", UnexpectedChar, ErrUnexpectedChar, ']'},
		{"{[1}a", UnterminatedBlock, ErrUnterminatedBlock, '}'},
		{"M[1", UnexpectedEOF, ErrUnexpectedEOF, 0},
		{"M[1)", UnexpectedChar, ErrUnexpectedChar, ')'},
		{"M(1", UnterminatedBlock, ErrUnterminatedBlock, 0},
		{"`{1}a", UnexpectedChar, ErrUnexpectedChar, '{'},
		{"d{1", UnexpectedEOF, ErrUnexpectedEOF, 0},
	}

	for _, tt := range tests {
		_, err := Parse(tt.src)
		if err == nil {
			t.Errorf("Parse(%q) succeeded, want error", tt.src)
			continue
		}
		var perr *Error
		if !errors.As(err, &perr) {
			t.Errorf("Parse(%q) error %T is not *Error", tt.src, err)
			continue
		}
		if perr.Kind != tt.kind || perr.Char != tt.char {
			t.Errorf("Parse(%q) = %s, want kind %d char %q", tt.src, repr.String(perr), tt.kind, tt.char)
		}
		if !errors.Is(err, tt.is) {
			t.Errorf("Parse(%q) error %v is not %v", tt.src, err, tt.is)
		}
	}
}

func TestErrorMessages(t *testing.T) {
	_, err := Parse("a")
	if err == nil || err.Error() != "unexpected character: a" {
		t.Errorf("got %v, want unexpected character: a", err)
	}
	_, err = Parse(`"a`)
	if err == nil || err.Error() != "unexpected end of input" {
		t.Errorf("got %v, want unexpected end of input", err)
	}
}

func TestBlockBalance(t *testing.T) {
	sources := []string{
		"(1 2 3)M2*",
		"[[1]M2*$]",
		"{M[1]F2*}a a!",
		"d{#(1)}e{2}3",
	}
	for _, src := range sources {
		got, err := Parse(src)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", src, err)
		}
		depth := 0
		for i, in := range got {
			switch in.Kind {
			case op.BeginBlock:
				depth++
			case op.EndBlock:
				depth--
			}
			if depth < 0 {
				t.Fatalf("Parse(%q): depth negative at %d", src, i)
			}
		}
		if depth != 0 {
			t.Errorf("Parse(%q): unbalanced, depth %d", src, depth)
		}
	}
}
