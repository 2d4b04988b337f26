package forward

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/BaSui01/dispatchd/types"
)

// Invoker executes an operation on behalf of one handler reference.
type Invoker interface {
	Invoke(ctx context.Context, op types.OperationID, input []byte) ([]byte, error)
}

// InvokerFunc adapts a plain function to the Invoker interface.
type InvokerFunc func(ctx context.Context, op types.OperationID, input []byte) ([]byte, error)

// Invoke implements Invoker.
func (f InvokerFunc) Invoke(ctx context.Context, op types.OperationID, input []byte) ([]byte, error) {
	return f(ctx, op, input)
}

// Resolver answers "who handles this operation". Both dispatch.Table
// and registry.InMemoryRegistry satisfy it.
type Resolver interface {
	Resolve(op types.OperationID) types.HandlerRef
}

// Forwarder routes calls through a Resolver to locally attached
// Invokers. Safe for concurrent use.
type Forwarder struct {
	resolver Resolver
	invokers map[types.HandlerRef]Invoker
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewForwarder creates a forwarder over the given resolver.
func NewForwarder(resolver Resolver, logger *zap.Logger) *Forwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Forwarder{
		resolver: resolver,
		invokers: make(map[types.HandlerRef]Invoker),
		logger:   logger.With(zap.String("component", "forwarder")),
	}
}

// Attach associates an invoker with a handler reference. Attaching to
// a reference that already has an invoker replaces it; the dispatch
// table, not this map, is the upgrade-guarded surface.
func (f *Forwarder) Attach(ref types.HandlerRef, invoker Invoker) error {
	if ref.IsUnbound() {
		return fmt.Errorf("attach: handler ref must not be the unbound sentinel")
	}
	if invoker == nil {
		return fmt.Errorf("attach: invoker must not be nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.invokers[ref] = invoker

	f.logger.Debug("invoker attached", zap.Stringer("handler", ref))
	return nil
}

// Detach removes the invoker for a handler reference. No-op if absent.
func (f *Forwarder) Detach(ref types.HandlerRef) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.invokers, ref)
}

// Forward resolves op and hands the call to the attached invoker.
// Resolution happens on every call; nothing is cached across calls.
func (f *Forwarder) Forward(ctx context.Context, op types.OperationID, input []byte) ([]byte, error) {
	ref := f.resolver.Resolve(op)
	if ref.IsUnbound() {
		return nil, types.Errorf(types.ErrOperationUnbound, "operation %s has no handler", op)
	}

	f.mu.RLock()
	invoker, ok := f.invokers[ref]
	f.mu.RUnlock()
	if !ok {
		return nil, types.Errorf(types.ErrHandlerNotAttached, "handler %s has no attached invoker", ref)
	}

	return invoker.Invoke(ctx, op, input)
}
