package dispatch

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/dispatchd/types"
)

// Binding pairs an operation identifier with the handler it should be
// bound to.
type Binding struct {
	Op      types.OperationID
	Handler types.HandlerRef
}

// Guard gates every mutation of a dispatch table. Per operation
// identifier the legal transitions are:
//
//	Unbound  -> Bound(h)  for any non-sentinel h
//	Bound(h) -> Unbound   (explicit clear)
//	Bound(h) -> Bound(h)  (idempotent no-op)
//
// Bound(h1) -> Bound(h2) with h1 != h2 always fails with
// DIRECT_REBIND_REJECTED. The guard never clears on a caller's behalf;
// an upgrade is expressed as two explicit steps.
type Guard struct {
	table  *Table
	logger *zap.Logger
}

// NewGuard creates a guard over the given table.
func NewGuard(table *Table, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		table:  table,
		logger: logger.With(zap.String("component", "upgrade_guard")),
	}
}

// RequestBind applies the transition rule for a single binding and
// returns the previous state of the identifier. Failures leave the
// table unchanged.
func (g *Guard) RequestBind(op types.OperationID, handler types.HandlerRef) (types.HandlerRef, error) {
	if handler.IsUnbound() {
		return types.UnboundHandler, fmt.Errorf("bind %s: handler must not be the unbound sentinel, use RequestClear", op)
	}

	g.table.mu.Lock()
	defer g.table.mu.Unlock()

	prev := g.table.resolveLocked(op)
	if err := checkTransition(op, prev, handler); err != nil {
		return prev, err
	}

	g.table.bind(op, handler)
	g.logger.Debug("operation bound",
		zap.Stringer("op", op),
		zap.Stringer("handler", handler),
		zap.Stringer("prev", prev))
	return prev, nil
}

// RequestClear moves op to the unbound state and returns the previous
// handler. Clearing an already-unbound operation succeeds as a no-op.
func (g *Guard) RequestClear(op types.OperationID) types.HandlerRef {
	g.table.mu.Lock()
	defer g.table.mu.Unlock()

	prev := g.table.resolveLocked(op)
	if prev.IsUnbound() {
		return prev
	}

	g.table.clear(op)
	g.logger.Debug("operation cleared",
		zap.Stringer("op", op),
		zap.Stringer("prev", prev))
	return prev
}

// Apply commits a batch of bindings all-or-nothing: every binding is
// validated against the current table state (and against earlier
// entries of the same batch) before any entry is written, all under a
// single table write lock. Readers observe either none or all of the
// batch.
func (g *Guard) Apply(bindings []Binding) error {
	g.table.mu.Lock()
	defer g.table.mu.Unlock()

	staged := make(map[types.OperationID]types.HandlerRef, len(bindings))
	for _, b := range bindings {
		if b.Handler.IsUnbound() {
			return fmt.Errorf("bind %s: handler must not be the unbound sentinel", b.Op)
		}
		prev, inBatch := staged[b.Op]
		if !inBatch {
			prev = g.table.resolveLocked(b.Op)
		}
		if err := checkTransition(b.Op, prev, b.Handler); err != nil {
			return err
		}
		staged[b.Op] = b.Handler
	}

	for op, handler := range staged {
		g.table.bind(op, handler)
	}
	return nil
}

// Clear unbinds a batch of operations under a single write lock.
// Idempotent per entry, never fails.
func (g *Guard) Clear(ops []types.OperationID) {
	g.table.mu.Lock()
	defer g.table.mu.Unlock()

	for _, op := range ops {
		g.table.clear(op)
	}
}

func checkTransition(op types.OperationID, prev, next types.HandlerRef) error {
	if prev.IsUnbound() || prev == next {
		return nil
	}
	return types.Errorf(types.ErrDirectRebindRejected,
		"operation %s is bound to %s; clear it before rebinding to %s", op, prev, next)
}
