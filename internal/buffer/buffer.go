package buffer

import "errors"

var ErrEmpty = errors.New("buffer is empty")

// Buffer is an ordered, append-only sequence emptied only by Clear or DrainAll.
// It is owned by a single training session and is not safe for concurrent use.
type Buffer[T any] struct {
	items []T
}

func NewRollout() *Buffer[Transition] {
	return &Buffer[Transition]{}
}

func NewAux() *Buffer[AuxSnapshot] {
	return &Buffer[AuxSnapshot]{}
}

func (b *Buffer[T]) Append(item T) {
	b.items = append(b.items, item)
}

// All returns the items in insertion order without removing them.
func (b *Buffer[T]) All() []T {
	return b.items
}

// DrainAll returns every item in insertion order and leaves the buffer empty.
func (b *Buffer[T]) DrainAll() []T {
	items := b.items
	b.items = nil
	return items
}

func (b *Buffer[T]) Len() int {
	return len(b.items)
}

func (b *Buffer[T]) Clear() {
	b.items = nil
}
