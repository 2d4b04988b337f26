package dispatch

import (
	"sync"

	"github.com/BaSui01/dispatchd/types"
)

// Table is the single source of truth mapping operation identifiers to
// handler references. Reads are safe to call concurrently with each
// other and with guard mutations; a reader sees either the pre- or
// post-mutation state of a batch commit, never an intermediate one.
type Table struct {
	mu      sync.RWMutex
	entries map[types.OperationID]types.HandlerRef
}

// NewTable creates an empty dispatch table.
func NewTable() *Table {
	return &Table{
		entries: make(map[types.OperationID]types.HandlerRef),
	}
}

// Resolve returns the handler bound to op, or the unbound sentinel if
// op has never been bound. Pure read, never fails.
func (t *Table) Resolve(op types.OperationID) types.HandlerRef {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entries[op]
}

// Len returns the number of currently bound operation identifiers.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Entries returns a snapshot copy of all current bindings.
func (t *Table) Entries() map[types.OperationID]types.HandlerRef {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[types.OperationID]types.HandlerRef, len(t.entries))
	for op, ref := range t.entries {
		out[op] = ref
	}
	return out
}

// bind unconditionally overwrites the entry for op. Callers must hold
// the write lock. All safety checks live in the Guard.
func (t *Table) bind(op types.OperationID, handler types.HandlerRef) {
	t.entries[op] = handler
}

// clear removes the entry for op. Callers must hold the write lock.
func (t *Table) clear(op types.OperationID) {
	delete(t.entries, op)
}

// resolveLocked reads an entry without taking the lock. Callers must
// hold at least the read lock.
func (t *Table) resolveLocked(op types.OperationID) types.HandlerRef {
	return t.entries[op]
}
