package collection

import (
	"errors"
	"iter"
)

// List errors.
var (
	// ErrInvalidArgument indicates a nil list or nil node was passed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInconsistentState indicates the node is not a member of the list.
	ErrInconsistentState = errors.New("node not in list")
)

// List is an ordered collection of caller-owned nodes.
// Membership is decided by pointer identity, never by field equality.
// The zero value is an empty list ready for use.
//
// List is not safe for concurrent use; callers serialize access.
type List[T any] struct {
	nodes []*T
}

// Add appends n at the tail. Adding a node that is already a member
// leaves the list unchanged.
func (l *List[T]) Add(n *T) error {
	if l == nil || n == nil {
		return ErrInvalidArgument
	}
	if l.index(n) >= 0 {
		return nil
	}
	l.nodes = append(l.nodes, n)
	return nil
}

// Remove unlinks n from the list. The node itself is left untouched.
func (l *List[T]) Remove(n *T) error {
	if l == nil || n == nil || len(l.nodes) == 0 {
		return ErrInvalidArgument
	}
	i := l.index(n)
	if i < 0 {
		return ErrInconsistentState
	}
	copy(l.nodes[i:], l.nodes[i+1:])
	l.nodes[len(l.nodes)-1] = nil
	l.nodes = l.nodes[:len(l.nodes)-1]
	return nil
}

// FindNth returns the node at zero-based position i, or nil if the
// list is shorter.
func (l *List[T]) FindNth(i int) *T {
	if l == nil || i < 0 || i >= len(l.nodes) {
		return nil
	}
	return l.nodes[i]
}

// FindBy returns the first node whose selected field equals value.
func (l *List[T]) FindBy(field func(*T) string, value string) *T {
	if l == nil || field == nil {
		return nil
	}
	for _, n := range l.nodes {
		if field(n) == value {
			return n
		}
	}
	return nil
}

// Contains reports whether n is a member of the list.
func (l *List[T]) Contains(n *T) bool {
	return l != nil && n != nil && l.index(n) >= 0
}

// Len returns the number of nodes.
func (l *List[T]) Len() int {
	if l == nil {
		return 0
	}
	return len(l.nodes)
}

// Empty reports whether the list holds no nodes.
func (l *List[T]) Empty() bool {
	return l.Len() == 0
}

// Each calls fn for every node in insertion order, stopping at the
// first error.
func (l *List[T]) Each(fn func(*T) error) error {
	if l == nil {
		return nil
	}
	for _, n := range l.nodes {
		if err := fn(n); err != nil {
			return err
		}
	}
	return nil
}

// All iterates over the nodes in insertion order.
func (l *List[T]) All() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		if l == nil {
			return
		}
		for _, n := range l.nodes {
			if !yield(n) {
				return
			}
		}
	}
}

// Items returns a snapshot of the nodes in insertion order.
func (l *List[T]) Items() []*T {
	if l == nil || len(l.nodes) == 0 {
		return nil
	}
	out := make([]*T, len(l.nodes))
	copy(out, l.nodes)
	return out
}

func (l *List[T]) index(n *T) int {
	for i, m := range l.nodes {
		if m == n {
			return i
		}
	}
	return -1
}
