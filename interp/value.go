package interp

import (
	"strconv"
	"strings"

	"github.com/JaniM/katlang/op"
)

// Value is one of Int, Text, Stack or Command.
type Value interface {
	// Display renders the value for output.
	Display() string
	// DebugDisplay is Display with text quoted and escaped.
	DebugDisplay() string

	value()
}

type Int int64

type Text string

// Command is a quoted instruction. Quoted literal pushes stand in for the
// literal they push wherever a value is expected as data.
type Command struct {
	Instr op.Instruction
}

func (Int) value()     {}
func (Text) value()    {}
func (Stack) value()   {}
func (Command) value() {}

func (v Int) Display() string      { return strconv.FormatInt(int64(v), 10) }
func (v Int) DebugDisplay() string { return v.Display() }

func (v Text) Display() string { return string(v) }

func (v Text) DebugDisplay() string {
	var b strings.Builder
	b.WriteByte('"')
	for _, c := range v {
		switch c {
		case '\n':
			b.WriteString(`\n`)
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(c)
		default:
			b.WriteRune(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func (s Stack) Display() string {
	return s.join(Value.Display)
}

func (s Stack) DebugDisplay() string {
	return s.join(Value.DebugDisplay)
}

func (s Stack) join(show func(Value) string) string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = show(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (c Command) Display() string {
	if c.Instr.IsLiteral() {
		return datum(c).Display()
	}
	return c.Instr.String()
}

func (c Command) DebugDisplay() string {
	if c.Instr.IsLiteral() {
		return datum(c).DebugDisplay()
	}
	return c.Instr.String()
}

// Clone returns a deep copy of v. Only stacks own mutable storage.
func Clone(v Value) Value {
	if s, ok := v.(Stack); ok {
		return s.clone()
	}
	return v
}

// datum unwraps quoted literal pushes into the value they push.
func datum(v Value) Value {
	c, ok := v.(Command)
	if !ok {
		return v
	}
	switch c.Instr.Kind {
	case op.PushInt:
		return Int(c.Instr.Int)
	case op.PushText:
		return Text(c.Instr.Text)
	case op.PushCommand:
		if c.Instr.Quoted != nil {
			return Command{Instr: *c.Instr.Quoted}
		}
	}
	return v
}

// Broadcast applies f to v. If v is a Stack, f is applied to every element
// instead, recursively, and the results are collected in order. The first
// failure aborts the whole operation.
func Broadcast(v Value, f func(Value) (Value, error)) (Value, error) {
	s, ok := v.(Stack)
	if !ok {
		return f(datum(v))
	}
	out := make(Stack, len(s))
	for i, e := range s {
		r, err := Broadcast(e, f)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// Broadcast2 lifts a binary scalar operation over both operands. The right
// operand is expanded first, so two stacks give one row per element of b.
func Broadcast2(a, b Value, f func(a, b Value) (Value, error)) (Value, error) {
	return Broadcast(b, func(b Value) (Value, error) {
		return Broadcast(a, func(a Value) (Value, error) {
			return f(a, b)
		})
	})
}

// Each calls f for every scalar in v, descending into stacks.
func Each(v Value, f func(Value) error) error {
	s, ok := v.(Stack)
	if !ok {
		return f(datum(v))
	}
	for _, e := range s {
		if err := Each(e, f); err != nil {
			return err
		}
	}
	return nil
}
