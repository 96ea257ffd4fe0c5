package interp

import (
	"fmt"
	"strconv"
)

// run executes a quoted value inline: a single command, or a stack that
// holds only commands.
func (it *Interpreter) run(v Value) error {
	switch v := v.(type) {
	case Command:
		return it.ExecuteOne(v.Instr)
	case Stack:
		for _, e := range v {
			if _, ok := e.(Command); !ok {
				return fmt.Errorf("%w: executed stack has non-command values", ErrNotExecutable)
			}
		}
		for _, e := range v {
			if err := it.ExecuteOne(e.(Command).Instr); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotExecutable, v.DebugDisplay())
}

// collect runs fn with a floor at the current depth and then replaces
// everything above the floor with a single stack holding it. Popping below
// the floor during fn lowers it, for this run and any enclosing one.
func (it *Interpreter) collect(fn func() error) error {
	saved := it.floor
	it.floor = len(it.stack)

	err := fn()

	floor := it.floor
	if err == nil {
		result := make(Stack, len(it.stack)-floor)
		copy(result, it.stack[floor:])
		it.stack = it.stack[:floor]
		it.push(result)
	}
	if floor < saved {
		saved = floor
	}
	it.floor = saved
	return err
}

// items lists what Map and ForEach iterate: the elements of a stack or the
// characters of a text.
func items(v Value) (Stack, error) {
	switch v := datum(v).(type) {
	case Stack:
		out := make(Stack, len(v))
		for i, e := range v {
			out[i] = datum(e)
		}
		return out, nil
	case Text:
		out := Stack{}
		for _, c := range v {
			out = append(out, Text(string(c)))
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: can't iterate over %s", ErrTypeMismatch, v.DebugDisplay())
}

// iteration pops a function and the collection below it.
func (it *Interpreter) iteration() (fn Value, src Stack, err error) {
	fn, err = it.peek(0)
	if err != nil {
		return nil, nil, err
	}
	v, err := it.peek(1)
	if err != nil {
		return nil, nil, err
	}
	src, err = items(v)
	if err != nil {
		return nil, nil, err
	}
	it.drop(2)
	return fn, src, nil
}

func (it *Interpreter) mapOver() error {
	fn, src, err := it.iteration()
	if err != nil {
		return err
	}
	log.Debugf("map over %d items", len(src))

	results := make(Stack, 0, len(src))
	for _, item := range src {
		item := item
		err := it.collect(func() error {
			it.push(item)
			return it.run(fn)
		})
		if err != nil {
			return err
		}
		r, _ := it.stack.Pop()
		if s, ok := r.(Stack); ok && len(s) == 1 {
			r = s[0]
		}
		results = append(results, r)
	}
	it.push(results)
	return nil
}

func (it *Interpreter) forEach() error {
	fn, src, err := it.iteration()
	if err != nil {
		return err
	}
	log.Debugf("for each over %d items", len(src))

	for _, item := range src {
		it.push(item)
		if err := it.run(fn); err != nil {
			return err
		}
	}
	return nil
}

// repeat pops a function and a count and runs the function count times. A
// stack of counts runs it once per count, in order.
func (it *Interpreter) repeat() error {
	fn, err := it.peek(0)
	if err != nil {
		return err
	}
	cv, err := it.peek(1)
	if err != nil {
		return err
	}

	var counts []int64
	err = Each(cv, func(v Value) error {
		switch v := v.(type) {
		case Int:
			counts = append(counts, int64(v))
		case Text:
			n, err := strconv.ParseInt(string(v), 10, 64)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrNotNumber, v.DebugDisplay())
			}
			counts = append(counts, n)
		default:
			return fmt.Errorf("%w: repeat count isn't an integer: %s", ErrTypeMismatch, v.DebugDisplay())
		}
		return nil
	})
	if err != nil {
		return err
	}
	it.drop(2)

	for _, n := range counts {
		log.Debugf("repeat %d times", n)
		for i := int64(0); i < n; i++ {
			if err := it.run(fn); err != nil {
				return err
			}
		}
	}
	return nil
}
