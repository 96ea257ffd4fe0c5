package parser

import (
	"errors"
	"fmt"
)

// ErrorKind classifies parse failures.
type ErrorKind int

const (
	UnexpectedChar ErrorKind = iota
	UnexpectedEOF
	UnterminatedBlock
)

var (
	ErrUnexpectedChar    = errors.New("unexpected character")
	ErrUnexpectedEOF     = errors.New("unexpected end of input")
	ErrUnterminatedBlock = errors.New("unterminated block")
)

// Error is returned by Parse. Char is the offending character; it is zero for
// UnexpectedEOF.
type Error struct {
	Kind ErrorKind
	Char rune
	Pos  int // rune offset into the source
}

func (e *Error) Error() string {
	switch e.Kind {
	case UnexpectedChar:
		return fmt.Sprintf("unexpected character: %c", e.Char)
	case UnexpectedEOF:
		return "unexpected end of input"
	}
	if e.Char == 0 {
		return "unterminated block"
	}
	return fmt.Sprintf("unterminated block before %c at %d", e.Char, e.Pos)
}

func (e *Error) Unwrap() error {
	switch e.Kind {
	case UnexpectedChar:
		return ErrUnexpectedChar
	case UnexpectedEOF:
		return ErrUnexpectedEOF
	}
	return ErrUnterminatedBlock
}
