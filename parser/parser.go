// Package parser turns katlang source text into an instruction sequence.
//
// Every construct is a single character. Digits, quotes and a handful of
// structural characters ([ ] ( ) { } $ > < ` ') are handled specially, the
// combinators M, F and # read a block argument, and everything else maps
// to one instruction through a fixed table.
package parser

import (
	"unicode"

	"github.com/tliron/commonlog"

	"github.com/JaniM/katlang/op"
)

var log = commonlog.GetLogger("katlang.parser")

var table = map[rune]op.Instruction{
	'+': op.Plain(op.Add),
	'*': op.Plain(op.Multiply),
	'R': op.Plain(op.ReadLine),
	'W': op.Plain(op.WriteLine),
	'P': op.Plain(op.WriteLine),
	'w': op.Plain(op.Write),
	'!': op.Plain(op.Execute),
	'S': op.Plain(op.Split),
	'J': op.Plain(op.Join),
	'I': op.Plain(op.ToInteger),
	'r': op.Plain(op.Range),
	':': op.Plain(op.Duplicate),
	';': op.Plain(op.DuplicateSecond),
	'_': op.Plain(op.Drop),
	'x': op.Rot(2),
	'X': op.Rot(3),
	'p': op.Plain(op.PushSide),
	'^': op.Plain(op.PopSide),
	'~': op.Plain(op.ConsumeSide),
}

var combinators = map[rune]op.Kind{
	'M': op.Map,
	'F': op.ForEach,
	'#': op.Repeat,
}

// mode says what ends the sequence currently being read.
type mode int

const (
	top      mode = iota // end of input
	implicit             // combinator body: $ (eaten), ) ] } (left), end of input
	bracket              // explicit combinator block: matching ]
	braces               // named block: matching }
	preNamed             // c{...}: } or $ (eaten), ) ] (left)
)

// Parser holds the transient state of one Parse call.
type Parser struct {
	src []rune
	pos int

	known       map[rune]bool
	depth       int  // open [ and ( inside the current non-top sequence
	afterNumber bool // the previous token was a digit run
	whitespace  bool
	term        rune // terminator eaten by the last nested sequence

	prelude []op.Instruction // pre-named blocks, most recent first
}

type Option func(*Parser)

// WithWhitespace makes whitespace significant: each whitespace character
// pushes itself as text, except the one right after a number.
func WithWhitespace(on bool) Option {
	return func(p *Parser) { p.whitespace = on }
}

// WithKnown marks names as already bound, so bare references to them parse
// as variable reads.
func WithKnown(names ...rune) Option {
	return func(p *Parser) {
		for _, n := range names {
			p.known[n] = true
		}
	}
}

// Parse parses a whole program.
func Parse(src string, opts ...Option) ([]op.Instruction, error) {
	p := &Parser{
		src:   []rune(src),
		known: map[rune]bool{},
	}
	for _, opt := range opts {
		opt(p)
	}

	body, err := p.parseSeq(top)
	if err != nil {
		return nil, err
	}
	out := make([]op.Instruction, 0, len(p.prelude)+len(body))
	out = append(out, p.prelude...)
	out = append(out, body...)
	log.Debugf("parsed %d instructions (%d from pre-named blocks)", len(out), len(p.prelude))
	return out, nil
}

func (p *Parser) peek() (rune, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *Parser) next() (rune, bool) {
	c, ok := p.peek()
	if ok {
		p.pos++
	}
	return c, ok
}

func (p *Parser) errChar(c rune) error {
	return &Error{Kind: UnexpectedChar, Char: c, Pos: p.pos}
}

func (p *Parser) errEOF() error {
	return &Error{Kind: UnexpectedEOF, Pos: p.pos}
}

func (p *Parser) errUnterminated(c rune) error {
	return &Error{Kind: UnterminatedBlock, Char: c, Pos: p.pos}
}

func (p *Parser) parseSeq(m mode) ([]op.Instruction, error) {
	savedDepth := p.depth
	p.depth = 0
	defer func() { p.depth = savedDepth }()

	var out []op.Instruction
	for {
		c, ok := p.peek()
		if !ok {
			switch {
			case m == top, m == implicit && p.depth == 0:
				return out, nil
			case m == implicit:
				return nil, p.errUnterminated(0)
			}
			return nil, p.errEOF()
		}
		if m != top {
			p.term = 0
			done, err := p.terminates(m, c)
			if err != nil {
				return nil, err
			}
			if done {
				return out, nil
			}
		}

		ins, err := p.readToken(false)
		if err != nil {
			return nil, err
		}
		out = append(out, ins...)
	}
}

// terminates decides whether c ends a sequence read in mode m, eating the
// terminator when the mode owns it.
func (p *Parser) terminates(m mode, c rune) (bool, error) {
	switch c {
	case '$':
		if p.depth == 0 && (m == implicit || m == preNamed) {
			p.eat(c)
			return true, nil
		}
		return false, p.errChar(c)
	case ']', ')':
		if p.depth > 0 {
			return false, nil
		}
		switch m {
		case implicit, preNamed:
			return true, nil
		case bracket:
			if c == ']' {
				p.eat(c)
				return true, nil
			}
		}
		return false, p.errChar(c)
	case '}':
		if p.depth > 0 {
			return false, p.errUnterminated(c)
		}
		switch m {
		case braces, preNamed:
			p.eat(c)
			return true, nil
		case implicit:
			return true, nil
		}
		return false, p.errUnterminated(c)
	}
	return false, nil
}

func (p *Parser) eat(term rune) {
	p.pos++
	p.term = term
	p.afterNumber = false
}

func one(in op.Instruction) []op.Instruction {
	return []op.Instruction{in}
}

// readToken reads one token at the current position. In bare mode the token
// is read on its own: combinators do not take a block and ) does not run the
// block it closes.
func (p *Parser) readToken(bare bool) ([]op.Instruction, error) {
	c, ok := p.peek()
	if !ok {
		return nil, p.errEOF()
	}
	afterNumber := p.afterNumber
	p.afterNumber = false

	switch {
	case unicode.IsSpace(c):
		p.pos++
		if !p.whitespace || afterNumber {
			return nil, nil
		}
		return one(op.Text(string(c))), nil
	case c == '"':
		p.pos++
		return p.readText()
	case c == '\'':
		p.pos++
		ch, ok := p.next()
		if !ok {
			return nil, p.errEOF()
		}
		return one(op.Text(string(ch))), nil
	case isDigit(c):
		p.afterNumber = true
		return one(op.Int(p.readNumber())), nil
	case c == '`':
		p.pos++
		return p.readQuote()
	case c == '[', c == '(':
		p.pos++
		p.depth++
		return one(op.Plain(op.BeginBlock)), nil
	case c == ']', c == ')':
		p.pos++
		if p.depth > 0 {
			p.depth--
		}
		if c == ']' || bare {
			return one(op.Plain(op.EndBlock)), nil
		}
		return []op.Instruction{op.Plain(op.EndBlock), op.Plain(op.ExecuteScoped)}, nil
	case c == '{':
		if bare {
			return nil, p.errChar(c)
		}
		p.pos++
		return p.readNamedBlock()
	case c == '>':
		p.pos++
		name, ok := p.next()
		if !ok {
			return nil, p.errEOF()
		}
		p.known[name] = true
		return one(op.BindVar(name)), nil
	case c == '<':
		p.pos++
		name, ok := p.next()
		if !ok {
			return nil, p.errEOF()
		}
		return one(op.ReadVar(name, true)), nil
	}

	if p.known[c] {
		p.pos++
		return one(op.ReadVar(c, false)), nil
	}
	if !bare && p.isPreNamed(c) {
		return p.readPreNamed(c)
	}
	if k, ok := combinators[c]; ok {
		p.pos++
		if bare {
			return one(op.Plain(k)), nil
		}
		return p.readCombinator(k)
	}
	if in, ok := table[c]; ok {
		p.pos++
		return one(in), nil
	}
	return nil, p.errChar(c)
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

// readNumber reads a digit run. Overflow wraps.
func (p *Parser) readNumber() int64 {
	var n int64
	for {
		c, ok := p.peek()
		if !ok || !isDigit(c) {
			return n
		}
		n = n*10 + int64(c-'0')
		p.pos++
	}
}

// readText reads the rest of a "..." literal. A backslash takes the next
// character verbatim.
func (p *Parser) readText() ([]op.Instruction, error) {
	var buf []rune
	for {
		c, ok := p.next()
		if !ok {
			return nil, p.errEOF()
		}
		switch c {
		case '\\':
			c, ok = p.next()
			if !ok {
				return nil, p.errEOF()
			}
		case '"':
			return one(op.Text(string(buf))), nil
		}
		buf = append(buf, c)
	}
}

func (p *Parser) readQuote() ([]op.Instruction, error) {
	for !p.whitespace {
		c, ok := p.peek()
		if !ok || !unicode.IsSpace(c) {
			break
		}
		p.pos++
	}
	if _, ok := p.peek(); !ok {
		return nil, nil
	}

	depth := p.depth
	ins, err := p.readToken(true)
	p.depth = depth
	if err != nil || len(ins) == 0 {
		return nil, err
	}
	return one(op.Quote(ins[0])), nil
}

func (p *Parser) readNamedBlock() ([]op.Instruction, error) {
	body, err := p.parseSeq(braces)
	if err != nil {
		return nil, err
	}
	name, ok := p.next()
	if !ok {
		return nil, p.errEOF()
	}
	p.known[name] = true
	return block(body, op.BindVar(name)), nil
}

func (p *Parser) isPreNamed(c rune) bool {
	if !unicode.IsLetter(c) || p.pos+1 >= len(p.src) || p.src[p.pos+1] != '{' {
		return false
	}
	if _, ok := table[c]; ok {
		return false
	}
	_, ok := combinators[c]
	return !ok
}

// readPreNamed reads c{...}. The block and its binding move to the front of
// the program; the read stays here.
func (p *Parser) readPreNamed(name rune) ([]op.Instruction, error) {
	p.pos += 2
	p.known[name] = true
	body, err := p.parseSeq(preNamed)
	if err != nil {
		return nil, err
	}
	consume := p.term == '$'

	prefix := block(body, op.BindVar(name))
	p.prelude = append(prefix, p.prelude...)
	return one(op.ReadVar(name, consume)), nil
}

func (p *Parser) readCombinator(k op.Kind) ([]op.Instruction, error) {
	m := implicit
	if c, ok := p.peek(); ok && c == '[' {
		p.pos++
		m = bracket
	}
	body, err := p.parseSeq(m)
	if err != nil {
		return nil, err
	}
	return block(body, op.Plain(k)), nil
}

// block wraps body in block markers and appends tail.
func block(body []op.Instruction, tail op.Instruction) []op.Instruction {
	out := make([]op.Instruction, 0, len(body)+3)
	out = append(out, op.Plain(op.BeginBlock))
	out = append(out, body...)
	out = append(out, op.Plain(op.EndBlock), tail)
	return out
}
