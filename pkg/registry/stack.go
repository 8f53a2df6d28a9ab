package registry

import "sync"

// Stack is a last-in-first-out record of values under construction.
// Reset it between independent configuration passes so a stale top of
// stack never leaks into the next one.
type Stack[T any] struct {
	mu    sync.Mutex
	items []T
}

// Push makes v the top of the stack.
func (s *Stack[T]) Push(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, v)
}

// Last returns the top of the stack. ok is false when the stack is empty.
func (s *Stack[T]) Last() (v T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return v, false
	}
	return s.items[len(s.items)-1], true
}

// Pop removes and returns the top of the stack.
func (s *Stack[T]) Pop() (v T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return v, false
	}
	v = s.items[len(s.items)-1]
	var zero T
	s.items[len(s.items)-1] = zero
	s.items = s.items[:len(s.items)-1]
	return v, true
}

// Len returns the stack depth.
func (s *Stack[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Reset empties the stack.
func (s *Stack[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}
