package interp

import (
	"fmt"
	"strconv"
	"strings"
)

// add concatenates two stacks; anything else is broadcast to addScalar.
func add(a, b Value) (Value, error) {
	if as, ok := a.(Stack); ok {
		if bs, ok := b.(Stack); ok {
			out := make(Stack, 0, len(as)+len(bs))
			out = append(out, as...)
			return append(out, bs...), nil
		}
	}
	return Broadcast2(a, b, addScalar)
}

func addScalar(a, b Value) (Value, error) {
	switch x := a.(type) {
	case Int:
		switch y := b.(type) {
		case Int:
			return x + y, nil
		case Text:
			return Text(x.Display()) + y, nil
		}
	case Text:
		switch y := b.(type) {
		case Int:
			return x + Text(y.Display()), nil
		case Text:
			return x + y, nil
		}
	}
	return nil, fmt.Errorf("%w: can't add %s and %s", ErrTypeMismatch, a.DebugDisplay(), b.DebugDisplay())
}

func multiply(a, b Value) (Value, error) {
	return Broadcast2(a, b, func(a, b Value) (Value, error) {
		x, ok := a.(Int)
		y, ok2 := b.(Int)
		if !ok || !ok2 {
			return nil, fmt.Errorf("%w: can't multiply %s and %s", ErrTypeMismatch, a.DebugDisplay(), b.DebugDisplay())
		}
		return x * y, nil
	})
}

func toInteger(v Value) (Value, error) {
	switch v := v.(type) {
	case Int:
		return v, nil
	case Text:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrNotNumber, v.DebugDisplay())
		}
		return Int(n), nil
	}
	return nil, fmt.Errorf("%w: can't convert %s to an integer", ErrTypeMismatch, v.DebugDisplay())
}

// rangeTo turns n into [1 2 ... n].
func rangeTo(v Value) (Value, error) {
	n, ok := v.(Int)
	if !ok {
		return nil, fmt.Errorf("%w: range needs an integer, got %s", ErrTypeMismatch, v.DebugDisplay())
	}
	out := Stack{}
	for i := Int(1); i <= n; i++ {
		out = append(out, i)
	}
	return out, nil
}

func separator(v Value, what string) (string, error) {
	t, ok := datum(v).(Text)
	if !ok {
		return "", fmt.Errorf("%w: %s separator isn't text: %s", ErrTypeMismatch, what, v.DebugDisplay())
	}
	return string(t), nil
}

// split replaces "sep" and the text below it with the text split on sep.
func (it *Interpreter) split() error {
	sv, err := it.peek(0)
	if err != nil {
		return err
	}
	v, err := it.peek(1)
	if err != nil {
		return err
	}
	sep, err := separator(sv, "split")
	if err != nil {
		return err
	}
	r, err := Broadcast(v, func(v Value) (Value, error) {
		t, ok := v.(Text)
		if !ok {
			return nil, fmt.Errorf("%w: can't split %s", ErrTypeMismatch, v.DebugDisplay())
		}
		parts := strings.Split(string(t), sep)
		out := make(Stack, len(parts))
		for i, p := range parts {
			out[i] = Text(p)
		}
		return out, nil
	})
	if err != nil {
		return err
	}
	it.drop(2)
	it.push(r)
	return nil
}

// join replaces "sep" and the stack below it with the stack's elements
// joined by sep.
func (it *Interpreter) join() error {
	sv, err := it.peek(0)
	if err != nil {
		return err
	}
	v, err := it.peek(1)
	if err != nil {
		return err
	}
	sep, err := separator(sv, "join")
	if err != nil {
		return err
	}
	r, err := joinStack(v, sep)
	if err != nil {
		return err
	}
	it.drop(2)
	it.push(r)
	return nil
}

// joinStack joins a flat stack. A stack made only of stacks is joined row by
// row.
func joinStack(v Value, sep string) (Value, error) {
	s, ok := v.(Stack)
	if !ok {
		return nil, fmt.Errorf("%w: join needs a stack, got %s", ErrTypeMismatch, v.DebugDisplay())
	}
	if nested(s) {
		out := make(Stack, len(s))
		for i, e := range s {
			r, err := joinStack(e, sep)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}
	parts := make([]string, len(s))
	for i, e := range s {
		parts[i] = e.Display()
	}
	return Text(strings.Join(parts, sep)), nil
}

func nested(s Stack) bool {
	if len(s) == 0 {
		return false
	}
	for _, e := range s {
		if _, ok := e.(Stack); !ok {
			return false
		}
	}
	return true
}
