// Package op defines the instruction set shared by the parser and the
// interpreter.
package op

import (
	"strconv"
)

// Kind identifies an instruction.
type Kind uint8

const (
	PushInt Kind = iota
	PushText
	PushCommand
	BeginBlock
	EndBlock
	ReadLine
	WriteLine
	Write
	Add
	Multiply
	Execute
	ExecuteScoped
	Map
	ForEach
	Repeat
	Split
	Join
	ToInteger
	Range
	Duplicate
	DuplicateSecond
	Drop
	Rotate
	PushSide
	PopSide
	ConsumeSide
	Bind
	Read

	numKinds
)

var kindNames = [numKinds]string{
	PushInt:         "Int",
	PushText:        "Text",
	PushCommand:     "Quote",
	BeginBlock:      "StartBlock",
	EndBlock:        "CloseBlock",
	ReadLine:        "ReadLine",
	WriteLine:       "WriteLine",
	Write:           "Write",
	Add:             "Add",
	Multiply:        "Multiply",
	Execute:         "Execute",
	ExecuteScoped:   "ExecuteScoped",
	Map:             "Map",
	ForEach:         "ForEach",
	Repeat:          "Repeat",
	Split:           "Split",
	Join:            "Join",
	ToInteger:       "ToInteger",
	Range:           "Range",
	Duplicate:       "Duplicate",
	DuplicateSecond: "DuplicateSecond",
	Drop:            "Drop",
	Rotate:          "Rotate",
	PushSide:        "PushSide",
	PopSide:         "PopSide",
	ConsumeSide:     "ConsumeSide",
	Bind:            "Bind",
	Read:            "Read",
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Instruction is a single operation. Only the payload field matching Kind is
// meaningful. Instructions are never mutated after construction, so copying
// the struct is a full clone.
type Instruction struct {
	Kind Kind

	Int     int64        // PushInt literal, Rotate depth
	Text    string       // PushText literal
	Quoted  *Instruction // PushCommand payload
	Name    rune         // Bind, Read
	Consume bool         // Read removes the binding
}

func Plain(k Kind) Instruction { return Instruction{Kind: k} }

func Int(n int64) Instruction { return Instruction{Kind: PushInt, Int: n} }

func Text(s string) Instruction { return Instruction{Kind: PushText, Text: s} }

// Quote wraps in so that executing the result pushes in as a value.
func Quote(in Instruction) Instruction {
	return Instruction{Kind: PushCommand, Quoted: &in}
}

func Rot(n int64) Instruction { return Instruction{Kind: Rotate, Int: n} }

func BindVar(name rune) Instruction { return Instruction{Kind: Bind, Name: name} }

func ReadVar(name rune, consume bool) Instruction {
	return Instruction{Kind: Read, Name: name, Consume: consume}
}

// IsLiteral reports whether the instruction only pushes its payload.
func (in Instruction) IsLiteral() bool {
	switch in.Kind {
	case PushInt, PushText, PushCommand:
		return true
	}
	return false
}

// Equal compares instructions by kind and payload.
func (in Instruction) Equal(other Instruction) bool {
	if in.Kind != other.Kind {
		return false
	}
	switch in.Kind {
	case PushInt, Rotate:
		return in.Int == other.Int
	case PushText:
		return in.Text == other.Text
	case PushCommand:
		if in.Quoted == nil || other.Quoted == nil {
			return in.Quoted == other.Quoted
		}
		return in.Quoted.Equal(*other.Quoted)
	case Bind:
		return in.Name == other.Name
	case Read:
		return in.Name == other.Name && in.Consume == other.Consume
	}
	return true
}

func (in Instruction) String() string {
	switch in.Kind {
	case PushInt:
		return "Int(" + strconv.FormatInt(in.Int, 10) + ")"
	case PushText:
		return "Text(" + strconv.Quote(in.Text) + ")"
	case PushCommand:
		if in.Quoted == nil {
			return "Quote()"
		}
		return "Quote(" + in.Quoted.String() + ")"
	case Rotate:
		return "Rotate(" + strconv.FormatInt(in.Int, 10) + ")"
	case Bind:
		return "Bind(" + string(in.Name) + ")"
	case Read:
		if in.Consume {
			return "Take(" + string(in.Name) + ")"
		}
		return "Read(" + string(in.Name) + ")"
	}
	return in.Kind.String()
}
