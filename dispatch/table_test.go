package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/dispatchd/types"
)

func TestTable_ResolveUnknown(t *testing.T) {
	table := NewTable()
	op := types.DeriveOperationID("transfer(address,uint256)")

	assert.True(t, table.Resolve(op).IsUnbound(), "unknown operation resolves to the sentinel")
	assert.Equal(t, 0, table.Len())
}

func TestTable_EntriesSnapshot(t *testing.T) {
	table := NewTable()
	guard := NewGuard(table, nil)

	op := types.DeriveOperationID("transfer(address,uint256)")
	handler := types.HandlerRef{19: 0x01}

	_, err := guard.RequestBind(op, handler)
	require.NoError(t, err)

	entries := table.Entries()
	assert.Equal(t, handler, entries[op])

	// Mutating the snapshot must not leak back into the table.
	entries[op] = types.HandlerRef{19: 0x02}
	assert.Equal(t, handler, table.Resolve(op))
}
