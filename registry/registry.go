package registry

import (
	"sync"

	"go.uber.org/zap"

	"github.com/BaSui01/dispatchd/dispatch"
	"github.com/BaSui01/dispatchd/types"
)

// Registry defines the interface for managing the extension inventory.
type Registry interface {
	// RegisterExtension adds a new extension and binds its advertised
	// operations, all-or-nothing.
	RegisterExtension(ext types.Extension) error
	// RemoveExtension retires an extension, unbinding every operation
	// it advertises.
	RemoveExtension(name string) error
	// Get returns a copy of the named extension.
	Get(name string) (types.Extension, bool)
	// ListExtensions returns every registered extension in insertion
	// order. The order is stable across calls absent mutation.
	ListExtensions() []types.Extension
	// Resolve returns the handler bound to op, or the unbound sentinel.
	Resolve(op types.OperationID) types.HandlerRef
	// Verify audits the dispatch-consistency invariant.
	Verify() ConsistencyReport
	// FindCollisions reports advertised identifiers claimed by more
	// than one distinct signature. Advisory, never blocks mutation.
	FindCollisions() []Collision
}

// InMemoryRegistry is a thread-safe in-memory implementation of
// Registry. Mutations are serialized by a write lock; reads take a
// read lock and hand out copies, so a reader never observes a
// partially applied mutation.
type InMemoryRegistry struct {
	table      *dispatch.Table
	guard      *dispatch.Guard
	extensions map[string]*types.Extension
	order      []string
	mu         sync.RWMutex
	logger     *zap.Logger
}

// Compile-time interface compliance check.
var _ Registry = (*InMemoryRegistry)(nil)

// NewInMemoryRegistry creates an empty registry with its own dispatch
// table and upgrade guard.
func NewInMemoryRegistry(logger *zap.Logger) *InMemoryRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	table := dispatch.NewTable()
	return &InMemoryRegistry{
		table:      table,
		guard:      dispatch.NewGuard(table, logger),
		extensions: make(map[string]*types.Extension),
		logger:     logger.With(zap.String("component", "extension_registry")),
	}
}

// NewSeededRegistry creates a registry pre-populated with an initial
// extension set. Registration order follows the slice order. If any
// seed extension fails to register, the error is returned and the
// partially seeded registry is discarded by the caller.
func NewSeededRegistry(logger *zap.Logger, seed []types.Extension) (*InMemoryRegistry, error) {
	r := NewInMemoryRegistry(logger)
	for _, ext := range seed {
		if err := r.RegisterExtension(ext); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Table returns the underlying dispatch table for read-side
// collaborators such as the invocation forwarder.
func (r *InMemoryRegistry) Table() *dispatch.Table {
	return r.table
}

// Guard returns the upgrade guard. The embedding system uses it to
// express handler upgrades as explicit clear-then-bind steps; direct
// guard mutations are what Verify exists to audit.
func (r *InMemoryRegistry) Guard() *dispatch.Guard {
	return r.guard
}

// RegisterExtension adds a new extension. It fails with DUPLICATE_NAME
// if the name is taken, INVALID_EXTENSION if the record is malformed,
// and DIRECT_REBIND_REJECTED if any advertised operation is already
// bound to a different handler. On failure no state changes: the
// advertised bindings are committed through a single guarded batch.
func (r *InMemoryRegistry) RegisterExtension(ext types.Extension) error {
	if err := ext.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.extensions[ext.Name]; exists {
		return types.Errorf(types.ErrDuplicateName, "extension %s already registered", ext.Name)
	}

	bindings := make([]dispatch.Binding, 0, len(ext.Operations))
	for _, op := range ext.Operations {
		bindings = append(bindings, dispatch.Binding{Op: op.ID, Handler: ext.Handler})
	}
	if err := r.guard.Apply(bindings); err != nil {
		return err
	}

	stored := ext.Clone()
	r.extensions[ext.Name] = &stored
	r.order = append(r.order, ext.Name)

	r.logger.Info("extension registered",
		zap.String("name", ext.Name),
		zap.Stringer("handler", ext.Handler),
		zap.Int("operations", len(ext.Operations)))
	return nil
}

// RemoveExtension retires an extension: the record is removed from the
// inventory, then its advertised operations are cleared back to the
// unbound sentinel. The record goes first so no observer ever sees a
// listed extension with unbound operations. An operation still
// advertised by a remaining extension (same handler, shared
// advertisement) is left bound for the same reason.
func (r *InMemoryRegistry) RemoveExtension(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ext, exists := r.extensions[name]
	if !exists {
		return types.Errorf(types.ErrNotFound, "extension %s not registered", name)
	}

	delete(r.extensions, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	stillClaimed := make(map[types.OperationID]struct{})
	for _, other := range r.extensions {
		for _, op := range other.Operations {
			stillClaimed[op.ID] = struct{}{}
		}
	}

	ops := make([]types.OperationID, 0, len(ext.Operations))
	for _, op := range ext.Operations {
		if _, claimed := stillClaimed[op.ID]; claimed {
			continue
		}
		ops = append(ops, op.ID)
	}
	r.guard.Clear(ops)

	r.logger.Info("extension removed",
		zap.String("name", name),
		zap.Int("operations", len(ops)))
	return nil
}

// Get returns a copy of the named extension.
func (r *InMemoryRegistry) Get(name string) (types.Extension, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ext, ok := r.extensions[name]
	if !ok {
		return types.Extension{}, false
	}
	return ext.Clone(), true
}

// ListExtensions returns every extension in insertion order. Returned
// records are copies; mutating them does not affect the registry.
func (r *InMemoryRegistry) ListExtensions() []types.Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]types.Extension, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.extensions[name].Clone())
	}
	return result
}

// Resolve returns the handler bound to op, or the unbound sentinel.
// Pure read, never fails.
func (r *InMemoryRegistry) Resolve(op types.OperationID) types.HandlerRef {
	return r.table.Resolve(op)
}

// Len returns the number of registered extensions.
func (r *InMemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.extensions)
}
