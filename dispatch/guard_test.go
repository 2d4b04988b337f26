package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/dispatchd/types"
)

var (
	opTransfer = types.DeriveOperationID("transfer(address,uint256)")
	opApprove  = types.DeriveOperationID("approve(address,uint256)")

	handlerA = types.HandlerRef{19: 0x01}
	handlerB = types.HandlerRef{19: 0x02}
)

func newTestGuard(t *testing.T) (*Table, *Guard) {
	t.Helper()
	table := NewTable()
	return table, NewGuard(table, nil)
}

func TestGuard_RequestBind(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, g *Guard)
		op       types.OperationID
		handler  types.HandlerRef
		wantPrev types.HandlerRef
		wantCode types.ErrorCode
		wantErr  bool
	}{
		{
			name:    "unbound to bound",
			op:      opTransfer,
			handler: handlerA,
		},
		{
			name: "idempotent rebind to same handler",
			setup: func(t *testing.T, g *Guard) {
				_, err := g.RequestBind(opTransfer, handlerA)
				require.NoError(t, err)
			},
			op:       opTransfer,
			handler:  handlerA,
			wantPrev: handlerA,
		},
		{
			name: "direct rebind rejected",
			setup: func(t *testing.T, g *Guard) {
				_, err := g.RequestBind(opTransfer, handlerA)
				require.NoError(t, err)
			},
			op:       opTransfer,
			handler:  handlerB,
			wantPrev: handlerA,
			wantErr:  true,
			wantCode: types.ErrDirectRebindRejected,
		},
		{
			name:    "sentinel handler rejected",
			op:      opTransfer,
			handler: types.UnboundHandler,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, guard := newTestGuard(t)
			if tt.setup != nil {
				tt.setup(t, guard)
			}

			prev, err := guard.RequestBind(tt.op, tt.handler)
			if tt.wantErr {
				require.Error(t, err)
				if tt.wantCode != "" {
					assert.Equal(t, tt.wantCode, types.GetErrorCode(err))
				}
				// Rejected mutations leave the table untouched.
				assert.Equal(t, tt.wantPrev, table.Resolve(tt.op))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrev, prev)
			assert.Equal(t, tt.handler, table.Resolve(tt.op))
		})
	}
}

func TestGuard_RequestClear(t *testing.T) {
	table, guard := newTestGuard(t)

	// Clearing an unbound operation is a no-op.
	prev := guard.RequestClear(opTransfer)
	assert.True(t, prev.IsUnbound())

	_, err := guard.RequestBind(opTransfer, handlerA)
	require.NoError(t, err)

	prev = guard.RequestClear(opTransfer)
	assert.Equal(t, handlerA, prev)
	assert.True(t, table.Resolve(opTransfer).IsUnbound())
}

// The canonical upgrade walk: bind, rejected direct rebind, clear,
// rebind to the new handler.
func TestGuard_ClearThenBind(t *testing.T) {
	table, guard := newTestGuard(t)

	_, err := guard.RequestBind(opTransfer, handlerA)
	require.NoError(t, err)
	assert.Equal(t, handlerA, table.Resolve(opTransfer))

	_, err = guard.RequestBind(opTransfer, handlerB)
	require.Error(t, err)
	assert.Equal(t, types.ErrDirectRebindRejected, types.GetErrorCode(err))
	assert.Equal(t, handlerA, table.Resolve(opTransfer))

	guard.RequestClear(opTransfer)
	assert.True(t, table.Resolve(opTransfer).IsUnbound())

	prev, err := guard.RequestBind(opTransfer, handlerB)
	require.NoError(t, err)
	assert.True(t, prev.IsUnbound())
	assert.Equal(t, handlerB, table.Resolve(opTransfer))
}

func TestGuard_Apply(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, g *Guard)
		bindings []Binding
		wantErr  bool
		check    func(t *testing.T, table *Table)
	}{
		{
			name: "batch commits all entries",
			bindings: []Binding{
				{Op: opTransfer, Handler: handlerA},
				{Op: opApprove, Handler: handlerA},
			},
			check: func(t *testing.T, table *Table) {
				assert.Equal(t, handlerA, table.Resolve(opTransfer))
				assert.Equal(t, handlerA, table.Resolve(opApprove))
			},
		},
		{
			name: "conflicting entry rejects whole batch",
			setup: func(t *testing.T, g *Guard) {
				_, err := g.RequestBind(opApprove, handlerB)
				require.NoError(t, err)
			},
			bindings: []Binding{
				{Op: opTransfer, Handler: handlerA},
				{Op: opApprove, Handler: handlerA},
			},
			wantErr: true,
			check: func(t *testing.T, table *Table) {
				assert.True(t, table.Resolve(opTransfer).IsUnbound(), "no partial commit")
				assert.Equal(t, handlerB, table.Resolve(opApprove))
			},
		},
		{
			name: "in-batch conflict rejected",
			bindings: []Binding{
				{Op: opTransfer, Handler: handlerA},
				{Op: opTransfer, Handler: handlerB},
			},
			wantErr: true,
			check: func(t *testing.T, table *Table) {
				assert.Equal(t, 0, table.Len())
			},
		},
		{
			name: "in-batch duplicate with same handler is idempotent",
			bindings: []Binding{
				{Op: opTransfer, Handler: handlerA},
				{Op: opTransfer, Handler: handlerA},
			},
			check: func(t *testing.T, table *Table) {
				assert.Equal(t, handlerA, table.Resolve(opTransfer))
			},
		},
		{
			name: "sentinel in batch rejected",
			bindings: []Binding{
				{Op: opTransfer, Handler: types.UnboundHandler},
			},
			wantErr: true,
			check: func(t *testing.T, table *Table) {
				assert.Equal(t, 0, table.Len())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, guard := newTestGuard(t)
			if tt.setup != nil {
				tt.setup(t, guard)
			}

			err := guard.Apply(tt.bindings)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			tt.check(t, table)
		})
	}
}

func TestGuard_ClearBatch(t *testing.T) {
	table, guard := newTestGuard(t)

	require.NoError(t, guard.Apply([]Binding{
		{Op: opTransfer, Handler: handlerA},
		{Op: opApprove, Handler: handlerA},
	}))

	// Batch clear includes an identifier that was never bound.
	guard.Clear([]types.OperationID{opTransfer, opApprove, types.DeriveOperationID("unknown()")})
	assert.Equal(t, 0, table.Len())
}
