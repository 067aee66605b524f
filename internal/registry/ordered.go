package registry

import (
	"iter"
	"slices"

	"github.com/pkg/errors"
)

var (
	// ErrDuplicateID indicates an identifier already present in the registry.
	ErrDuplicateID = errors.New("registry: duplicate identifier")

	// ErrNotFound indicates an identifier absent from the registry.
	ErrNotFound = errors.New("registry: identifier not found")
)

// Ordered maps identifiers to items and iterates in insertion order.
type Ordered[T any] struct {
	index map[string]int
	names []string
	items []T
}

func New[T any]() *Ordered[T] {
	return &Ordered[T]{index: make(map[string]int)}
}

// Add registers item under name. If name exists, Add fails with
// ErrDuplicateID unless force is set, in which case the item is replaced in
// place and keeps its position.
func (o *Ordered[T]) Add(name string, item T, force bool) error {
	if i, ok := o.index[name]; ok {
		if !force {
			return errors.Wrapf(ErrDuplicateID, "%q", name)
		}
		o.items[i] = item
		return nil
	}
	o.index[name] = len(o.items)
	o.names = append(o.names, name)
	o.items = append(o.items, item)
	return nil
}

// Remove deletes name and returns the removed item.
func (o *Ordered[T]) Remove(name string) (T, error) {
	i, ok := o.index[name]
	if !ok {
		var zero T
		return zero, errors.Wrapf(ErrNotFound, "%q", name)
	}
	item := o.items[i]

	o.names = slices.Delete(o.names, i, i+1)
	o.items = slices.Delete(o.items, i, i+1)

	delete(o.index, name)
	for j := i; j < len(o.names); j++ {
		o.index[o.names[j]] = j
	}
	return item, nil
}

func (o *Ordered[T]) Get(name string) (T, error) {
	i, ok := o.index[name]
	if !ok {
		var zero T
		return zero, errors.Wrapf(ErrNotFound, "%q", name)
	}
	return o.items[i], nil
}

func (o *Ordered[T]) Has(name string) bool {
	_, ok := o.index[name]
	return ok
}

func (o *Ordered[T]) Len() int { return len(o.items) }

// Items returns the registered items in insertion order. The slice is owned
// by the registry and must not be modified.
func (o *Ordered[T]) Items() []T { return o.items }

// Names returns a copy of the identifiers in insertion order.
func (o *Ordered[T]) Names() []string {
	names := make([]string, len(o.names))
	copy(names, o.names)
	return names
}

// All iterates over (name, item) pairs in insertion order.
func (o *Ordered[T]) All() iter.Seq2[string, T] {
	return func(yield func(string, T) bool) {
		for i, name := range o.names {
			if !yield(name, o.items[i]) {
				return
			}
		}
	}
}

// Clear removes every item.
func (o *Ordered[T]) Clear() {
	clear(o.index)
	clear(o.items)
	o.names = o.names[:0]
	o.items = o.items[:0]
}
