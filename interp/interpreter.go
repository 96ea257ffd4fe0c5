// Package interp implements the katlang value model and stack machine.
package interp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/JaniM/katlang/op"
)

var log = commonlog.GetLogger("katlang.interp")

// Interpreter executes instructions one at a time against its stacks. It is
// not safe for concurrent use; separate interpreters share nothing.
type Interpreter struct {
	stack Stack
	side  Stack
	vars  map[rune]Value

	capture *blockCapture
	// floor is the stack depth below which a scoped run does not collect.
	floor int

	trace  bool
	frames []Frame

	in  *bufio.Reader
	out io.Writer
}

type Option func(*Interpreter)

// WithInput sets where ReadLine reads from. The default is stdin.
func WithInput(r io.Reader) Option {
	return func(it *Interpreter) { it.in = bufio.NewReader(r) }
}

// WithOutput sets where WriteLine and Write print to. The default is stdout.
func WithOutput(w io.Writer) Option {
	return func(it *Interpreter) { it.out = w }
}

// New creates an interpreter. With trace set, every executed instruction
// leaves a Frame to be collected with TakeFrames.
func New(trace bool, opts ...Option) *Interpreter {
	it := &Interpreter{
		stack: Stack{},
		side:  Stack{},
		vars:  map[rune]Value{},
		trace: trace,
	}
	for _, opt := range opts {
		opt(it)
	}
	if it.in == nil {
		it.in = bufio.NewReader(os.Stdin)
	}
	if it.out == nil {
		it.out = os.Stdout
	}
	return it
}

// Stack returns a copy of the primary stack, bottom first.
func (it *Interpreter) Stack() Stack {
	return append(Stack{}, it.stack...)
}

// SideStack returns a copy of the side stack, bottom first.
func (it *Interpreter) SideStack() Stack {
	return append(Stack{}, it.side...)
}

// Capturing reports whether a block is open.
func (it *Interpreter) Capturing() bool {
	return it.capture != nil
}

// Pop removes and returns the top of the primary stack.
func (it *Interpreter) Pop() (Value, bool) {
	v, err := it.pop()
	return v, err == nil
}

// Execute runs prog, stopping at the first failing instruction.
func (it *Interpreter) Execute(prog []op.Instruction) error {
	for _, in := range prog {
		if err := it.ExecuteOne(in); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteOne runs a single instruction. While a block is open the
// instruction is buffered instead.
func (it *Interpreter) ExecuteOne(in op.Instruction) error {
	if it.trace {
		return it.traced(in)
	}
	return it.dispatch(in)
}

func (it *Interpreter) dispatch(in op.Instruction) error {
	if it.capture != nil {
		if !it.capture.feed(in) {
			return nil
		}
		block := it.capture.items
		it.capture = nil
		log.Debugf("block closed with %d instructions", len(block))
		it.push(block)
		return nil
	}

	switch in.Kind {
	case op.BeginBlock:
		it.capture = newCapture()
	case op.EndBlock:
		return ErrCloseOutsideBlock
	case op.PushInt:
		it.push(Int(in.Int))
	case op.PushText:
		it.push(Text(in.Text))
	case op.PushCommand:
		if in.Quoted == nil {
			return fmt.Errorf("%w: empty quote", ErrNotExecutable)
		}
		it.push(Command{Instr: *in.Quoted})
	case op.ReadLine:
		return it.readLine()
	case op.WriteLine:
		return it.write("\n")
	case op.Write:
		return it.write("")
	case op.Add:
		return it.binary(add)
	case op.Multiply:
		return it.binary(multiply)
	case op.Execute:
		v, err := it.pop()
		if err != nil {
			return err
		}
		return it.run(v)
	case op.ExecuteScoped:
		v, err := it.pop()
		if err != nil {
			return err
		}
		return it.collect(func() error { return it.run(v) })
	case op.Map:
		return it.mapOver()
	case op.ForEach:
		return it.forEach()
	case op.Repeat:
		return it.repeat()
	case op.Split:
		return it.split()
	case op.Join:
		return it.join()
	case op.ToInteger:
		return it.replaceTop(toInteger)
	case op.Range:
		return it.replaceTop(rangeTo)
	case op.Duplicate:
		v, err := it.peek(0)
		if err != nil {
			return err
		}
		it.push(Clone(v))
	case op.DuplicateSecond:
		v, err := it.peek(1)
		if err != nil {
			return err
		}
		it.touch(1)
		it.push(Clone(v))
		it.stack.Swap(1, 0)
	case op.Drop:
		_, err := it.pop()
		return err
	case op.Rotate:
		return it.rotate(int(in.Int))
	case op.PushSide:
		v, err := it.peek(0)
		if err != nil {
			return err
		}
		it.side.Push(Clone(v))
	case op.PopSide:
		v, ok := it.side.Pop()
		if !ok {
			return ErrEmptySideStack
		}
		it.push(v)
	case op.ConsumeSide:
		side := it.side
		it.side = Stack{}
		it.push(side)
	case op.Bind:
		v, err := it.pop()
		if err != nil {
			return err
		}
		it.vars[in.Name] = v
	case op.Read:
		v, ok := it.vars[in.Name]
		if !ok {
			return fmt.Errorf("%w: %c", ErrUnboundVariable, in.Name)
		}
		if in.Consume {
			delete(it.vars, in.Name)
		} else {
			v = Clone(v)
		}
		it.push(v)
	default:
		return fmt.Errorf("unknown instruction %v", in)
	}
	return nil
}

func (it *Interpreter) push(v Value) {
	it.stack.Push(v)
}

// touch records that the top n values are about to be consumed. Reaching
// below the floor of a scoped run lowers the floor.
func (it *Interpreter) touch(n int) {
	if low := len(it.stack) - n; low < it.floor {
		it.floor = low
	}
}

func (it *Interpreter) pop() (Value, error) {
	if it.stack.IsEmpty() {
		return nil, ErrEmptyStack
	}
	it.touch(1)
	v, _ := it.stack.Pop()
	return v, nil
}

func (it *Interpreter) peek(n int) (Value, error) {
	v, ok := it.stack.Peek(n)
	if !ok {
		return nil, ErrEmptyStack
	}
	return v, nil
}

// drop pops n values already checked to exist.
func (it *Interpreter) drop(n int) {
	for i := 0; i < n; i++ {
		it.pop()
	}
}

// binary computes f(second, top) and replaces both operands with the result.
// The stack is untouched when f fails.
func (it *Interpreter) binary(f func(a, b Value) (Value, error)) error {
	b, err := it.peek(0)
	if err != nil {
		return err
	}
	a, err := it.peek(1)
	if err != nil {
		return err
	}
	r, err := f(a, b)
	if err != nil {
		return err
	}
	it.drop(2)
	it.push(r)
	return nil
}

// replaceTop swaps the top value for f broadcast over it.
func (it *Interpreter) replaceTop(f func(Value) (Value, error)) error {
	v, err := it.peek(0)
	if err != nil {
		return err
	}
	r, err := Broadcast(v, f)
	if err != nil {
		return err
	}
	it.touch(1)
	it.stack[len(it.stack)-1] = r
	return nil
}

// rotate brings the nth value to the top.
func (it *Interpreter) rotate(n int) error {
	if n < 2 {
		return nil
	}
	if len(it.stack) < n {
		return ErrEmptyStack
	}
	it.touch(n)
	for i := n - 1; i > 0; i-- {
		it.stack.Swap(i, i-1)
	}
	return nil
}

func (it *Interpreter) readLine() error {
	line, err := it.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("read line: %w", err)
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	it.push(Text(line))
	return nil
}

func (it *Interpreter) write(end string) error {
	v, err := it.pop()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(it.out, v.Display()+end); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
