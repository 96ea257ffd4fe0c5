package interp

// Stack is an ordered sequence of values, top last. It is both the
// interpreter's working stack and the value type for collections and blocks.
type Stack []Value

// IsEmpty: check if stack is empty
func (s *Stack) IsEmpty() bool {
	return len(*s) == 0
}

func (s *Stack) Push(v Value) {
	*s = append(*s, v)
}

func (s *Stack) Pop() (Value, bool) {
	if s.IsEmpty() {
		return nil, false
	}

	index := len(*s) - 1
	element := (*s)[index]
	(*s)[index] = nil
	*s = (*s)[:index]
	return element, true
}

// Peek returns the nth value from the top, 0 being the top.
func (s Stack) Peek(n int) (Value, bool) {
	if n < 0 || n >= len(s) {
		return nil, false
	}
	return s[len(s)-1-n], true
}

// Swap exchanges the nth and mth values from the top.
func (s Stack) Swap(n, m int) bool {
	l := len(s)
	if n >= l || m >= l || n < 0 || m < 0 {
		return false
	}
	s[l-1-n], s[l-1-m] = s[l-1-m], s[l-1-n]
	return true
}

func (s Stack) clone() Stack {
	out := make(Stack, len(s))
	for i, v := range s {
		out[i] = Clone(v)
	}
	return out
}
