// Package registry stores grouping level lists by configuration handle and
// by column, and tracks which table is under construction.
//
// Both types are explicit values owned by a table builder rather than
// process-wide state; create one per independent configuration pass.
package registry

import "sync"

// Registry is an append-only index of entries by owner handle and by
// column name. Registering the same owner or column again appends; earlier
// entries are never replaced. It is safe for concurrent use.
type Registry[T any] struct {
	mu       sync.RWMutex
	byOwner  map[string][]T
	byColumn map[string][]T
}

// New creates an empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{
		byOwner:  make(map[string][]T),
		byColumn: make(map[string][]T),
	}
}

// Register appends entries under owner and, when column is non-empty,
// under column.
func (r *Registry[T]) Register(owner string, entries []T, column string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byOwner[owner] = append(r.byOwner[owner], entries...)
	if column != "" {
		r.byColumn[column] = append(r.byColumn[column], entries...)
	}
}

// ByOwner returns the entries registered under owner, or an empty slice.
func (r *Registry[T]) ByOwner(owner string) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return clone(r.byOwner[owner])
}

// ByColumn returns the entries registered under column, or an empty slice.
func (r *Registry[T]) ByColumn(column string) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return clone(r.byColumn[column])
}

// Has reports whether any entry is registered under owner.
func (r *Registry[T]) Has(owner string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byOwner[owner]) > 0
}

// HasByColumn reports whether any entry is registered under column.
func (r *Registry[T]) HasByColumn(column string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byColumn[column]) > 0
}

func clone[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
