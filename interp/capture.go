package interp

import "github.com/JaniM/katlang/op"

// blockCapture buffers the instructions of an open block. Nested blocks are
// buffered with their delimiters; only the outermost pair is dropped.
type blockCapture struct {
	depth int
	items Stack
}

func newCapture() *blockCapture {
	return &blockCapture{depth: 1, items: Stack{}}
}

// feed buffers in and reports whether it closed the outermost block.
func (c *blockCapture) feed(in op.Instruction) bool {
	switch in.Kind {
	case op.BeginBlock:
		c.depth++
	case op.EndBlock:
		c.depth--
		if c.depth == 0 {
			return true
		}
	}
	c.items.Push(Command{Instr: in})
	return false
}
