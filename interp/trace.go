package interp

import (
	"fmt"
	"io"
	"strings"

	"github.com/JaniM/katlang/op"
)

// Frame records one traced instruction. Children are the frames of the
// instructions it ran, such as the body of a map.
type Frame struct {
	Before   Stack
	After    Stack
	Reading  bool // a block was open when the instruction arrived
	Instr    op.Instruction
	Children []Frame
	Err      string
}

func (it *Interpreter) traced(in op.Instruction) error {
	before := it.stack.clone()
	reading := it.capture != nil
	mark := len(it.frames)

	err := it.dispatch(in)

	children := append([]Frame(nil), it.frames[mark:]...)
	it.frames = it.frames[:mark]
	f := Frame{
		Before:   before,
		After:    it.stack.clone(),
		Reading:  reading,
		Instr:    in,
		Children: children,
	}
	if err != nil {
		f.Err = err.Error()
	}
	it.frames = append(it.frames, f)
	return err
}

// TakeFrames returns the frames recorded since the last call.
func (it *Interpreter) TakeFrames() []Frame {
	frames := it.frames
	it.frames = nil
	return frames
}

// TraceRecord is a Frame flattened to text, ready to print or store.
type TraceRecord struct {
	Instr    string        `cbor:"1,keyasint"`
	Reading  bool          `cbor:"2,keyasint,omitempty"`
	Before   []string      `cbor:"3,keyasint"`
	After    []string      `cbor:"4,keyasint"`
	Err      string        `cbor:"5,keyasint,omitempty"`
	Children []TraceRecord `cbor:"6,keyasint,omitempty"`
}

func (f Frame) Record() TraceRecord {
	r := TraceRecord{
		Instr:   f.Instr.String(),
		Reading: f.Reading,
		Before:  debugStrings(f.Before),
		After:   debugStrings(f.After),
		Err:     f.Err,
	}
	for _, c := range f.Children {
		r.Children = append(r.Children, c.Record())
	}
	return r
}

// Records converts frames in order.
func Records(frames []Frame) []TraceRecord {
	out := make([]TraceRecord, len(frames))
	for i, f := range frames {
		out[i] = f.Record()
	}
	return out
}

func debugStrings(s Stack) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = v.DebugDisplay()
	}
	return out
}

const beforeWidth = 37

// WriteTrace prints records as an indented tree, one line per instruction.
func WriteTrace(w io.Writer, records []TraceRecord) error {
	for _, r := range records {
		if err := writeRecord(w, r, 0); err != nil {
			return err
		}
	}
	return nil
}

func writeRecord(w io.Writer, r TraceRecord, depth int) error {
	mark := "      "
	if r.Reading {
		mark = "(read)"
	}
	before := "[" + strings.Join(r.Before, " ") + "]"
	if runes := []rune(before); len(runes) > beforeWidth {
		before = "..." + string(runes[len(runes)-beforeWidth:])
	}
	line := fmt.Sprintf(">  %-40s %s | Stack before: %-40s | Stack after: [%s]",
		strings.Repeat(" ", depth*2)+r.Instr, mark, before, strings.Join(r.After, " "))
	if r.Err != "" {
		line += " | Error: " + r.Err
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}
	for _, c := range r.Children {
		if err := writeRecord(w, c, depth+1); err != nil {
			return err
		}
	}
	return nil
}
