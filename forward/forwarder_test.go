package forward

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/dispatchd/registry"
	"github.com/BaSui01/dispatchd/types"
)

var (
	opEcho = types.DeriveOperationID("echo(bytes)")

	handlerV1 = types.HandlerRef{19: 0x01}
	handlerV2 = types.HandlerRef{19: 0x02}
)

func echoExtension(handler types.HandlerRef, name string) types.Extension {
	return types.Extension{
		Name:    name,
		Handler: handler,
		Operations: []types.Operation{
			{ID: opEcho, Signature: "echo(bytes)"},
		},
	}
}

func prefixInvoker(prefix string) Invoker {
	return InvokerFunc(func(ctx context.Context, op types.OperationID, input []byte) ([]byte, error) {
		return append([]byte(prefix), input...), nil
	})
}

func TestForwarder_Forward(t *testing.T) {
	r := registry.NewInMemoryRegistry(nil)
	require.NoError(t, r.RegisterExtension(echoExtension(handlerV1, "Echo")))

	f := NewForwarder(r, nil)
	require.NoError(t, f.Attach(handlerV1, prefixInvoker("v1:")))

	out, err := f.Forward(context.Background(), opEcho, []byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1:hi"), out)
}

func TestForwarder_UnboundOperation(t *testing.T) {
	f := NewForwarder(registry.NewInMemoryRegistry(nil), nil)

	_, err := f.Forward(context.Background(), opEcho, nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrOperationUnbound, types.GetErrorCode(err))
}

func TestForwarder_HandlerNotAttached(t *testing.T) {
	r := registry.NewInMemoryRegistry(nil)
	require.NoError(t, r.RegisterExtension(echoExtension(handlerV1, "Echo")))

	f := NewForwarder(r, nil)

	_, err := f.Forward(context.Background(), opEcho, nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrHandlerNotAttached, types.GetErrorCode(err))
}

func TestForwarder_Attach(t *testing.T) {
	f := NewForwarder(registry.NewInMemoryRegistry(nil), nil)

	assert.Error(t, f.Attach(types.UnboundHandler, prefixInvoker("x:")))
	assert.Error(t, f.Attach(handlerV1, nil))
	assert.NoError(t, f.Attach(handlerV1, prefixInvoker("x:")))
}

// Resolution is per-call: after a clear-then-bind upgrade the next
// forwarded call reaches the new handler without any invalidation.
func TestForwarder_SeesUpgradeImmediately(t *testing.T) {
	r := registry.NewInMemoryRegistry(nil)
	require.NoError(t, r.RegisterExtension(echoExtension(handlerV1, "EchoV1")))

	f := NewForwarder(r, nil)
	require.NoError(t, f.Attach(handlerV1, prefixInvoker("v1:")))
	require.NoError(t, f.Attach(handlerV2, prefixInvoker("v2:")))

	out, err := f.Forward(context.Background(), opEcho, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1:x"), out)

	require.NoError(t, r.RemoveExtension("EchoV1"))
	require.NoError(t, r.RegisterExtension(echoExtension(handlerV2, "EchoV2")))

	out, err = f.Forward(context.Background(), opEcho, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2:x"), out)
}

func TestForwarder_InvokerErrorPropagates(t *testing.T) {
	r := registry.NewInMemoryRegistry(nil)
	require.NoError(t, r.RegisterExtension(echoExtension(handlerV1, "Echo")))

	boom := errors.New("handler fault")
	f := NewForwarder(r, nil)
	require.NoError(t, f.Attach(handlerV1, InvokerFunc(
		func(ctx context.Context, op types.OperationID, input []byte) ([]byte, error) {
			return nil, boom
		})))

	_, err := f.Forward(context.Background(), opEcho, nil)
	assert.ErrorIs(t, err, boom)
}

func TestForwarder_Detach(t *testing.T) {
	r := registry.NewInMemoryRegistry(nil)
	require.NoError(t, r.RegisterExtension(echoExtension(handlerV1, "Echo")))

	f := NewForwarder(r, nil)
	require.NoError(t, f.Attach(handlerV1, prefixInvoker("v1:")))
	f.Detach(handlerV1)

	_, err := f.Forward(context.Background(), opEcho, nil)
	assert.Equal(t, types.ErrHandlerNotAttached, types.GetErrorCode(err))
}
